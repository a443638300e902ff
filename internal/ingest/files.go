package ingest

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// Source is one uploaded statement file.
type Source struct {
	Name   string
	Reader io.Reader
}

// FileReport describes how a single file was read. Incomplete rows lack a
// required column and will be dropped by Normalize.
type FileReport struct {
	Name       string `json:"name"`
	Rows       int    `json:"rows"`
	Incomplete int    `json:"incomplete"`
}

// ReadFiles parses every source concurrently and returns all rows in source
// order once every file has been read. The first read error aborts the
// whole batch.
func ReadFiles(ctx context.Context, sources []Source, aliases HeaderAliases) ([]RawRow, []FileReport, error) {
	perFile := make([][]RawRow, len(sources))
	reports := make([]FileReport, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := ReadCSV(src.Reader, aliases)
			if err != nil {
				return fmt.Errorf("%s: %w", src.Name, err)
			}
			rep := FileReport{Name: src.Name, Rows: len(rows)}
			for _, r := range rows {
				if !r.Complete() {
					rep.Incomplete++
				}
			}
			perFile[i] = rows
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var all []RawRow
	for _, rows := range perFile {
		all = append(all, rows...)
	}
	return all, reports, nil
}
