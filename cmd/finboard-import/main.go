// Command finboard-import loads statement files into a workspace and prints
// the resulting dashboard as JSON.
//
//	finboard-import -kind card -period month fatura-jan.csv fatura-fev.csv
//
// With DATA_BACKEND=sqlite the import is persisted and visible to a running
// finboard server after its next restart.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"

	"finboard/internal/backend"
	"finboard/internal/cli"
	"finboard/internal/config"
	"finboard/internal/core"
	"finboard/internal/dashboard"
	"finboard/internal/ingest"
	applog "finboard/internal/log"
)

type output struct {
	Import    dashboard.ImportReport `json:"import"`
	Dashboard dashboard.View         `json:"dashboard"`
}

func main() {
	var (
		kind     = flag.String("kind", "card", "statement kind: account or card")
		period   = flag.String("period", "all", "period filter: all, day, week, month, year or custom")
		start    = flag.String("start", "", "custom period start, YYYY-MM-DD")
		end      = flag.String("end", "", "custom period end, YYYY-MM-DD")
		category = flag.String("category", "", "only show this category")
		search   = flag.String("q", "", "only show descriptions containing this text")
	)
	flag.Parse()

	cli.LoadEnvFile()
	// stdout carries the JSON document only.
	cfg, logger, err := cli.LoadAndValidateConfig(applog.ComponentApp, os.Stderr)
	if err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	if err := run(ctx, cfg, logger, *kind, url.Values{
		"period":   {*period},
		"start":    {*start},
		"end":      {*end},
		"category": {*category},
		"q":        {*search},
	}, flag.Args(), os.Stdout); err != nil {
		logger.Error("Import failed", applog.FieldError, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger, rawKind string, values url.Values, paths []string, stdout io.Writer) error {
	if len(paths) == 0 {
		return fmt.Errorf("no statement files given")
	}
	kind, err := core.ParseKind(rawKind)
	if err != nil {
		return err
	}
	q, err := dashboard.ParseQuery(values)
	if err != nil {
		return err
	}

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		return err
	}
	defer res.Close()

	collab, err := cli.NewCollaborators(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer collab.Caches.Stop()

	opts := dashboard.Options{
		Categorizer: collab.Categorizer,
		Narrator:    collab.Narrator,
		Logger:      logger,
	}
	if res.Store != nil {
		opts.Store = res.Store
	}
	svc := dashboard.NewService(opts)
	if err := svc.Restore(ctx); err != nil {
		return err
	}

	sources := make([]ingest.Source, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		sources = append(sources, ingest.Source{Name: p, Reader: f})
	}

	report, err := svc.Import(ctx, kind, sources)
	if err != nil {
		return err
	}
	view, err := svc.Dashboard(ctx, kind, q)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output{Import: report, Dashboard: view})
}
