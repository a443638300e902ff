package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/dashboard"
	"finboard/internal/ingest"
	applog "finboard/internal/log"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/middleware/security"
	"finboard/internal/middleware/trace"
)

// DashboardService is what the API needs from the dashboard layer.
type DashboardService interface {
	Workspace(kind core.Kind) (dashboard.Workspace, error)
	Import(ctx context.Context, kind core.Kind, sources []ingest.Source) (dashboard.ImportReport, error)
	Dashboard(ctx context.Context, kind core.Kind, q dashboard.Query) (dashboard.View, error)
	UpdateCategory(ctx context.Context, kind core.Kind, id, category string) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, kind core.Kind, id string) error
	SetGoal(ctx context.Context, kind core.Kind, category string, planned decimal.Decimal) (core.Goals, error)
	Analyze(ctx context.Context, kind core.Kind, q dashboard.Query) (string, error)
	Reset(ctx context.Context, kind core.Kind) error
}

// ExportPublisher queues spreadsheet exports.
type ExportPublisher interface {
	PublishExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error
}

// Exporter writes a spreadsheet export synchronously and returns its reference.
type Exporter interface {
	Export(ctx context.Context, msg *amqp.ExportRequestMessage) (string, error)
}

// ReadinessCheck reports whether a dependency can serve requests.
type ReadinessCheck func(ctx context.Context) error

// Options wires the server. Service is required. Sheets exports are queued
// when Publisher is set, run inline when only Exporter is set, and disabled
// otherwise.
type Options struct {
	Service        DashboardService
	Publisher      ExportPublisher
	Exporter       Exporter
	Ready          map[string]ReadinessCheck
	Logger         *applog.Logger
	MaxUploadBytes int64
	ImportTimeout  time.Duration
	// RequestsPerMinute limits write requests per client.
	RequestsPerMinute int
}

type Server struct {
	http.Server
	service        DashboardService
	publisher      ExportPublisher
	exporter       Exporter
	ready          map[string]ReadinessCheck
	logger         *applog.Logger
	maxUploadBytes int64
	importTimeout  time.Duration

	limiter      *ratelimit.Limiter
	detector     *security.Detector
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.FromContext(context.Background())
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.ImportTimeout <= 0 {
		opts.ImportTimeout = 2 * time.Minute
	}

	s := &Server{
		service:        opts.Service,
		publisher:      opts.Publisher,
		exporter:       opts.Exporter,
		ready:          opts.Ready,
		logger:         opts.Logger.WithComponent(applog.ComponentHTTP),
		maxUploadBytes: opts.MaxUploadBytes,
		importTimeout:  opts.ImportTimeout,
		limiter:        ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		detector:       security.NewDetector(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/{kind}/imports", s.handleImport)
	mux.HandleFunc("GET /api/{kind}/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/{kind}/categories", s.handleCategories)
	mux.HandleFunc("PATCH /api/{kind}/transactions/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/{kind}/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("PUT /api/{kind}/goals/{category}", s.handleSetGoal)
	mux.HandleFunc("POST /api/{kind}/analysis", s.handleAnalysis)
	mux.HandleFunc("GET /api/{kind}/export.csv", s.handleExportCSV)
	mux.HandleFunc("POST /api/{kind}/exports/sheets", s.handleExportSheets)
	mux.HandleFunc("POST /api/{kind}/reset", s.handleReset)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// middleware wraps h from the outside in: security headers, tracing,
// suspicious request logging, then rate limiting of writes.
func (s *Server) middleware(h http.Handler) http.Handler {
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.detector.ExtractClientIP(r),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
	}
	h = s.limiter.Middleware(s.detector.ExtractClientIP, onLimit,
		http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete)(h)
	h = s.detector.Middleware(h)
	h = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP).Middleware(h)
	return security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{"status": "ok"}).Write(w)
}

// handleReady runs every readiness check with a short deadline.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.ready))
	status := http.StatusOK
	for name, check := range s.ready {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", "check", name, applog.FieldError, err)
			continue
		}
		checks[name] = "ok"
	}
	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	NewResponse().Status(status).JSON(map[string]any{"status": state, "checks": checks}).Write(w)
}
