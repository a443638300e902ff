// Package ingest turns statement CSV files into normalized, deduplicated rows
// ready for categorization.
package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical column names.
const (
	ColDate        = "date"
	ColDescription = "description"
	ColAmount      = "amount"
)

type (
	// RawRow is one CSV record keyed by (aliased) header name.
	RawRow map[string]string

	// HeaderAliases maps folded header names to canonical column names.
	// Keys are compared after lowercasing, trimming and removing accents.
	HeaderAliases map[string]string
)

var ErrEmptyFile = errors.New("csv file has no header row")

// DefaultAliases covers the Portuguese and English headers seen on bank and
// card exports.
var DefaultAliases = HeaderAliases{
	"data":        ColDate,
	"date":        ColDate,
	"descricao":   ColDescription,
	"descrição":   ColDescription,
	"descricão":   ColDescription,
	"description": ColDescription,
	"titulo":      ColDescription,
	"título":      ColDescription,
	"title":       ColDescription,
	"historico":   ColDescription,
	"valor":       ColAmount,
	"amount":      ColAmount,
}

// Canonical returns the canonical name for header, or the trimmed header
// itself when no alias applies.
func (a HeaderAliases) Canonical(header string) string {
	h := strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	lower := strings.ToLower(h)
	if c, ok := a[lower]; ok {
		return c
	}
	if c, ok := a[foldAccents(lower)]; ok {
		return c
	}
	return h
}

// foldAccents removes combining marks. Chained transformers are stateful, so
// each call builds its own.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ReadCSV reads a statement with a header row. The delimiter is detected
// from the header (comma or semicolon). Blank lines and blank records are
// skipped; short records simply lack the missing columns.
func ReadCSV(r io.Reader, aliases HeaderAliases) ([]RawRow, error) {
	br := bufio.NewReader(r)
	first, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read header: %w", err)
	}
	first = strings.TrimPrefix(first, "\ufeff")
	if strings.TrimSpace(first) == "" {
		return nil, ErrEmptyFile
	}

	cr := csv.NewReader(io.MultiReader(strings.NewReader(first), br))
	cr.Comma = detectDelimiter(first)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = aliases.Canonical(h)
	}

	var rows []RawRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if blank(rec) {
			continue
		}
		row := make(RawRow, len(cols))
		for i, v := range rec {
			if i >= len(cols) {
				break
			}
			row[cols[i]] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func detectDelimiter(header string) rune {
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Complete reports whether the row has non-blank date, description and
// amount cells.
func (r RawRow) Complete() bool {
	return strings.TrimSpace(r[ColDate]) != "" &&
		strings.TrimSpace(r[ColDescription]) != "" &&
		strings.TrimSpace(r[ColAmount]) != ""
}

// Signature identifies a raw row for deduplication across imports.
func (r RawRow) Signature() string {
	return strings.TrimSpace(r[ColDate]) + "|" +
		strings.TrimSpace(r[ColDescription]) + "|" +
		strings.TrimSpace(r[ColAmount])
}
