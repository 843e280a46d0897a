package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"farmsim/internal/adapter/events/slogsink"
	"farmsim/internal/app/ports"
)

func TestLoadConfig_UsesEnv(t *testing.T) {
	t.Setenv("FARMSIM_ADDR", ":9090")
	t.Setenv("FARM_WIDTH", "10")
	t.Setenv("FARM_HEIGHT", "oops")
	t.Setenv("FARM_SEED", "77")
	t.Setenv("FARMSIM_HEADLESS", "1")

	cfg := loadConfig()
	if cfg.Addr != ":9090" || cfg.Width != 10 || cfg.Seed != 77 || !cfg.Headless {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Height != 16 {
		t.Fatalf("expected fallback height 16 for a bad value, got %d", cfg.Height)
	}
	if cfg.StartYearTick != 1 {
		t.Fatalf("expected default start year tick 1, got %d", cfg.StartYearTick)
	}
}

func TestNewLogger_RendersImportant(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(serverConfig{LogLevel: "important", LogFormat: "json"}, &buf)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Log(context.Background(), slogsink.LevelImportant, "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info to be filtered, got %q", out)
	}
	if !strings.Contains(out, `"level":"IMPORTANT"`) {
		t.Fatalf("expected IMPORTANT level, got %q", out)
	}
}

func TestNewLogger_RejectsUnknownFormat(t *testing.T) {
	if _, err := newLogger(serverConfig{LogFormat: "xml"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestBuildJournal_Backends(t *testing.T) {
	ctx := context.Background()

	repos, closeFn, err := buildJournal(ctx, serverConfig{})
	if err != nil {
		t.Fatalf("memory journal: %v", err)
	}
	closeFn()
	if repos.name != "memory" {
		t.Fatalf("expected memory journal, got %q", repos.name)
	}

	repos, closeFn, err = buildJournal(ctx, serverConfig{SQLitePath: filepath.Join(t.TempDir(), "j.db")})
	if err != nil {
		t.Fatalf("sqlite journal: %v", err)
	}
	defer closeFn()
	if repos.name != "sqlite" {
		t.Fatalf("expected sqlite journal, got %q", repos.name)
	}
	if err := repos.runs.Create(ctx, ports.RunRecord{RunID: "r", Status: ports.RunStatusRunning}); err != nil {
		t.Fatalf("create run: %v", err)
	}
}

func TestRunHeadless_AdvancesWorld(t *testing.T) {
	cfg := serverConfig{Width: 8, Height: 6, Seed: 5, StartYearTick: 3, MaxTicks: 12, Headless: true, LogLevel: "warn"}
	var buf bytes.Buffer
	logger, err := newLogger(cfg, &buf)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	if err := run(context.Background(), cfg, logger); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunHeadless_RequiresTicks(t *testing.T) {
	cfg := serverConfig{Width: 4, Height: 4, Seed: 1, Headless: true, LogLevel: "warn"}
	logger, _ := newLogger(cfg, &bytes.Buffer{})
	if err := run(context.Background(), cfg, logger); err == nil {
		t.Fatalf("expected error without FARM_MAX_TICKS")
	}
}
