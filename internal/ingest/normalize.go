package ingest

import (
	"strings"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

// Row is a raw row that passed validation and deduplication.
type Row struct {
	Date        core.Date
	Description string
	Amount      decimal.Decimal
	Signature   string
}

// Result is the outcome of normalizing one import batch.
//
// Incomplete counts rows missing a required cell, InvalidDate rows whose
// date cell could not be parsed, Duplicates rows whose signature was already
// known (from earlier imports or earlier in the same batch).
type Result struct {
	Rows        []Row
	Incomplete  int
	InvalidDate int
	Duplicates  int
}

// Dropped is the number of rows rejected for missing or unusable data.
func (r Result) Dropped() int {
	return r.Incomplete + r.InvalidDate
}

// Signatures returns the signatures of the accepted rows in order.
func (r Result) Signatures() []string {
	out := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Signature
	}
	return out
}

// Normalize validates and deduplicates rows against seen. It never modifies
// seen; callers commit Result.Signatures together with the rows they keep.
func Normalize(rows []RawRow, seen SignatureSet) Result {
	var res Result
	batch := make(map[string]struct{}, len(rows))
	for _, raw := range rows {
		if !raw.Complete() {
			res.Incomplete++
			continue
		}
		date, ok := core.ParseDate(raw[ColDate])
		if !ok {
			res.InvalidDate++
			continue
		}
		sig := raw.Signature()
		if _, dup := batch[sig]; dup || seen.Has(sig) {
			res.Duplicates++
			continue
		}
		batch[sig] = struct{}{}
		res.Rows = append(res.Rows, Row{
			Date:        date,
			Description: strings.TrimSpace(raw[ColDescription]),
			Amount:      core.ParseCurrencyValue(raw[ColAmount]),
			Signature:   sig,
		})
	}
	return res
}

// SignatureSet is the append-only set of row signatures already imported.
// Values are treated as immutable: With returns a new set.
type SignatureSet map[string]struct{}

// NewSignatureSet builds a set from a list of signatures.
func NewSignatureSet(sigs ...string) SignatureSet {
	s := make(SignatureSet, len(sigs))
	for _, sig := range sigs {
		s[sig] = struct{}{}
	}
	return s
}

func (s SignatureSet) Has(sig string) bool {
	_, ok := s[sig]
	return ok
}

// With returns a copy of s that also contains sigs.
func (s SignatureSet) With(sigs ...string) SignatureSet {
	out := make(SignatureSet, len(s)+len(sigs))
	for k := range s {
		out[k] = struct{}{}
	}
	for _, sig := range sigs {
		out[sig] = struct{}{}
	}
	return out
}

// Slice returns the signatures in no particular order.
func (s SignatureSet) Slice() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}
