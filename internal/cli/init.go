// Package cli provides the start-up steps shared by cmd/finboard,
// cmd/finboard-worker and cmd/finboard-import.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finboard/internal/cache"
	"finboard/internal/categorize"
	"finboard/internal/config"
	applog "finboard/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from cfg and makes it the default.
// A nil out keeps the configured output, stdout.
func SetupLogger(cfg *config.Config, component string, out io.Writer) *applog.Logger {
	lc := cfg.LoggerConfig(component)
	if out != nil {
		lc.Output = out
	}
	logger := applog.New(lc)
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it. It returns the
// logger too, since the log keys are part of the configuration. Logs go to
// out, or stdout when out is nil.
func LoadAndValidateConfig(component string, out io.Writer) (*config.Config, *applog.Logger, error) {
	cfg := config.Load()
	logger := SetupLogger(cfg, component, out)
	if err := cfg.Validate(); err != nil {
		return nil, logger, err
	}
	return cfg, logger, nil
}

// Collaborators are the categorizer and narrator selected by configuration.
type Collaborators struct {
	Categorizer categorize.Categorizer
	Narrator    categorize.Narrator
	// Caches are swept by the returned manager; Stop it on shutdown.
	Caches *cache.Manager
}

// NewCollaborators picks Gemini or the offline rules and wraps the
// categorizer in an LRU cache when CATEGORY_CACHE_SIZE is positive.
func NewCollaborators(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*Collaborators, error) {
	c := &Collaborators{Caches: cache.NewManager()}
	switch cfg.CategorizerBackend {
	case config.CategorizerGemini:
		g, err := categorize.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel,
			logger.WithComponent(applog.ComponentCategorize).Logger)
		if err != nil {
			return nil, fmt.Errorf("initialize gemini: %w", err)
		}
		c.Categorizer, c.Narrator = g, g
	default:
		c.Categorizer, c.Narrator = categorize.Static{}, categorize.Offline{}
	}

	if cfg.CategoryCacheSize > 0 {
		lru := cache.NewLRUCache[string](cfg.CategoryCacheSize, cfg.CategoryCacheTTL)
		c.Caches.Register("categories", lru)
		c.Categorizer = categorize.NewCached(c.Categorizer, lru,
			logger.WithComponent(applog.ComponentCache).Logger)
		c.Caches.StartCleanup(10 * time.Minute)
	}
	logger.Info("Categorization configured",
		"backend", cfg.CategorizerBackend,
		"model", cfg.GeminiModel,
		"cache_size", cfg.CategoryCacheSize)
	return c, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
