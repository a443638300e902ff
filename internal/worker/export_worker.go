package worker

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/dashboard"
	"finboard/internal/export"
	"finboard/internal/sheets"
)

// ViewSource builds the dashboard view an export is made from.
type ViewSource interface {
	Dashboard(ctx context.Context, kind core.Kind, q dashboard.Query) (dashboard.View, error)
}

// StoreViews reads the latest persisted workspace on every call, so a
// worker running beside the API always exports current data.
type StoreViews struct {
	Store dashboard.Store
	Now   func() time.Time
}

func (s StoreViews) Dashboard(ctx context.Context, kind core.Kind, q dashboard.Query) (dashboard.View, error) {
	w, ok, err := s.Store.Load(ctx, kind)
	if err != nil {
		return dashboard.View{}, fmt.Errorf("load %s workspace: %w", kind, err)
	}
	if !ok {
		if w, err = dashboard.NewWorkspace(kind); err != nil {
			return dashboard.View{}, err
		}
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return dashboard.BuildView(w, q, now()), nil
}

// ExportWorker turns export requests into spreadsheet reports.
type ExportWorker struct {
	views  ViewSource
	writer sheets.ReportWriter
	logger *slog.Logger
}

func NewExportWorker(views ViewSource, writer sheets.ReportWriter, logger *slog.Logger) *ExportWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportWorker{views: views, writer: writer, logger: logger}
}

// HandleExportRequest processes a single export request from AMQP.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error {
	_, err := w.Export(ctx, msg)
	return err
}

// Export builds the requested view and writes its report, returning the
// writer's reference to it.
func (w *ExportWorker) Export(ctx context.Context, msg *amqp.ExportRequestMessage) (string, error) {
	kind, err := core.ParseKind(msg.Kind)
	if err != nil {
		return "", err
	}
	q, err := QueryOf(msg)
	if err != nil {
		return "", fmt.Errorf("export request query: %w", err)
	}

	start := time.Now()
	view, err := w.views.Dashboard(ctx, kind, q)
	if err != nil {
		return "", fmt.Errorf("build view: %w", err)
	}
	report := export.BuildReport(view)
	ref, err := w.writer.WriteReport(ctx, report)
	if err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	w.logger.InfoContext(ctx, "Report exported",
		"kind", kind,
		"period", view.Period,
		"transactions", len(view.Transactions),
		"ref", ref,
		"requested_at", msg.RequestedAt,
		"duration_ms", time.Since(start).Milliseconds())
	return ref, nil
}

// MessageFor encodes a dashboard query as an export request.
func MessageFor(kind core.Kind, q dashboard.Query) *amqp.ExportRequestMessage {
	msg := amqp.NewExportRequestMessage(kind)
	v := q.Values()
	msg.Period = v.Get("period")
	msg.Start = v.Get("start")
	msg.End = v.Get("end")
	msg.Category = v.Get("category")
	msg.Query = v.Get("q")
	return msg
}

// QueryOf is the inverse of MessageFor.
func QueryOf(msg *amqp.ExportRequestMessage) (dashboard.Query, error) {
	return dashboard.ParseQuery(url.Values{
		"period":   {msg.Period},
		"start":    {msg.Start},
		"end":      {msg.End},
		"category": {msg.Category},
		"q":        {msg.Query},
	})
}
