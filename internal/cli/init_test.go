package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"finboard/internal/categorize"
	"finboard/internal/config"
	"finboard/internal/core"
	applog "finboard/internal/log"
)

func TestNewCollaboratorsStatic(t *testing.T) {
	cfg := &config.Config{CategorizerBackend: config.CategorizerStatic, CategoryCacheSize: 10, CategoryCacheTTL: time.Hour}
	c, err := NewCollaborators(context.Background(), cfg, applog.New(applog.Config{Output: io.Discard}))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Caches.Stop()

	if _, ok := c.Categorizer.(*categorize.Cached); !ok {
		t.Fatalf("expected cached categorizer, got %T", c.Categorizer)
	}
	if _, ok := c.Narrator.(categorize.Offline); !ok {
		t.Fatalf("expected offline narrator, got %T", c.Narrator)
	}
	labels := c.Categorizer.Categorize(context.Background(), core.KindCard, []string{"UBER *TRIP", "xyz"})
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %v", labels)
	}
}

func TestNewCollaboratorsWithoutCache(t *testing.T) {
	cfg := &config.Config{CategorizerBackend: config.CategorizerStatic}
	c, err := NewCollaborators(context.Background(), cfg, applog.New(applog.Config{Output: io.Discard}))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Caches.Stop()
	if _, ok := c.Categorizer.(categorize.Static); !ok {
		t.Fatalf("expected bare static categorizer, got %T", c.Categorizer)
	}
}

func TestNewCollaboratorsGeminiNeedsKey(t *testing.T) {
	cfg := &config.Config{CategorizerBackend: config.CategorizerGemini, GeminiModel: "gemini-2.5-flash"}
	if _, err := NewCollaborators(context.Background(), cfg, applog.New(applog.Config{Output: io.Discard})); err == nil {
		t.Fatal("expected error without an API key")
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("CATEGORIZER_BACKEND", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("LOG_FORMAT", "json")
	if _, logger, err := LoadAndValidateConfig(applog.ComponentApp, io.Discard); err == nil || logger == nil {
		t.Fatalf("expected validation error and a logger, got err=%v", err)
	}

	t.Setenv("CATEGORIZER_BACKEND", "static")
	cfg, _, err := LoadAndValidateConfig(applog.ComponentWorker, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CategorizerBackend != "static" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestSetupLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{LogLevel: "info", LogFormat: "text"}
	logger := SetupLogger(cfg, applog.ComponentApp, &buf)
	logger.Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Fatalf("expected the log line in the given writer, got %q", buf.String())
	}
}
