package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	eventfanout "farmsim/internal/adapter/events/fanout"
	"farmsim/internal/adapter/events/journal"
	"farmsim/internal/adapter/events/slogsink"
	httpadapter "farmsim/internal/adapter/http"
	metricsinmem "farmsim/internal/adapter/metrics/inmemory"
	gormrepo "farmsim/internal/adapter/repo/gorm"
	memrepo "farmsim/internal/adapter/repo/memory"
	sqliterepo "farmsim/internal/adapter/repo/sqlite"
	"farmsim/internal/adapter/world/generator"
	"farmsim/internal/app/ports"
	"farmsim/internal/app/simulation"
	"farmsim/internal/domain/world"

	"github.com/cloudwego/hertz/pkg/app/server"
)

type serverConfig struct {
	Addr          string
	DSN           string
	SQLitePath    string
	MigrationsDir string
	Width         int
	Height        int
	Seed          int64
	StartYearTick int
	MaxTicks      int
	Headless      bool
	LogLevel      string
	LogFormat     string
}

func loadConfig() serverConfig {
	def := generator.DefaultConfig()
	return serverConfig{
		Addr:          stringEnv("FARMSIM_ADDR", ":8080"),
		DSN:           stringEnv("FARMSIM_DB_DSN", ""),
		SQLitePath:    stringEnv("FARMSIM_SQLITE_PATH", ""),
		MigrationsDir: stringEnv("FARMSIM_MIGRATIONS_DIR", ""),
		Width:         intEnv("FARM_WIDTH", def.Width),
		Height:        intEnv("FARM_HEIGHT", def.Height),
		Seed:          int64(intEnv("FARM_SEED", 0)),
		StartYearTick: intEnv("FARM_START_YEAR_TICK", 1),
		MaxTicks:      intEnv("FARM_MAX_TICKS", 0),
		Headless:      stringEnv("FARMSIM_HEADLESS", "") == "1",
		LogLevel:      stringEnv("LOG_LEVEL", "info"),
		LogFormat:     stringEnv("LOG_FORMAT", "text"),
	}
}

func main() {
	cfg := loadConfig()
	logger, err := newLogger(cfg, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	if err := run(context.Background(), cfg, logger); err != nil {
		slog.Error("farmsim stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg serverConfig, logger *slog.Logger) error {
	genCfg := generator.DefaultConfig()
	genCfg.Width, genCfg.Height, genCfg.Seed = cfg.Width, cfg.Height, cfg.Seed
	farm, err := generator.Generate(genCfg)
	if err != nil {
		return err
	}
	for category, n := range world.CategoryCounts(farm.Grid) {
		slog.Debug("terrain", "category", category, "tiles", n)
	}

	repos, closeRepos, err := buildJournal(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepos()

	buffer := journal.NewBuffer()
	kpi := metricsinmem.NewRecorder()
	runner, err := simulation.NewRunner(ctx, simulation.Config{
		Grid:          farm.Grid,
		Clouds:        farm.Clouds,
		StartYearTick: cfg.StartYearTick,
		Seed:          farm.Seed,
		Width:         farm.Width,
		Height:        farm.Height,
		Journal:       buffer,
		Events:        eventfanout.New(buffer, slogsink.New(logger), kpi),
		EventRepo:     repos.events,
		RunRepo:       repos.runs,
		TxManager:     repos.tx,
		Metrics:       kpi,
	})
	if err != nil {
		return err
	}
	slog.Info("farm ready",
		"run_id", runner.RunID(),
		"seed", farm.Seed,
		"size", fmt.Sprintf("%dx%d", farm.Width, farm.Height),
		"clouds", len(farm.Clouds),
		"journal", repos.name,
	)

	if cfg.Headless {
		return runHeadless(ctx, runner, cfg.MaxTicks)
	}

	h := httpadapter.Handler{Sim: runner, KPI: kpi}
	s := server.Default(server.WithHostPorts(cfg.Addr))
	h.RegisterRoutes(s)

	slog.Info("farmsim server listening", "addr", cfg.Addr)
	s.Spin()
	return nil
}

func runHeadless(ctx context.Context, runner *simulation.Runner, ticks int) error {
	if ticks <= 0 {
		return fmt.Errorf("headless mode needs FARM_MAX_TICKS > 0")
	}
	for ticks > 0 {
		n := min(ticks, simulation.MaxAdvance)
		res, err := runner.Advance(ctx, n)
		if err != nil {
			return err
		}
		ticks -= n
		slog.Info("advanced", "tick", res.ToTick, "year_tick", res.YearTick, "clouds", res.Clouds, "events", res.Events)
	}
	return nil
}

type journalRepos struct {
	name   string
	events ports.EventRepository
	runs   ports.RunRepository
	tx     ports.TxManager
}

// buildJournal prefers Postgres, then SQLite, then memory.
func buildJournal(ctx context.Context, cfg serverConfig) (journalRepos, func(), error) {
	switch {
	case cfg.DSN != "":
		db, err := gormrepo.OpenPostgres(cfg.DSN)
		if err != nil {
			return journalRepos{}, nil, err
		}
		migrations := gormrepo.Migrations()
		if cfg.MigrationsDir != "" {
			migrations = os.DirFS(cfg.MigrationsDir)
		}
		if err := gormrepo.ApplyMigrations(ctx, db, migrations); err != nil {
			return journalRepos{}, nil, err
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return journalRepos{
			name:   "postgres",
			events: gormrepo.NewEventRepo(db),
			runs:   gormrepo.NewRunRepo(db),
			tx:     gormrepo.NewTxManager(db),
		}, closeFn, nil
	case cfg.SQLitePath != "":
		db, err := sqliterepo.Open(cfg.SQLitePath)
		if err != nil {
			return journalRepos{}, nil, err
		}
		return journalRepos{
			name:   "sqlite",
			events: sqliterepo.NewEventRepo(db),
			runs:   sqliterepo.NewRunRepo(db),
			tx:     sqliterepo.NewTxManager(db),
		}, func() { _ = db.Close() }, nil
	default:
		store := memrepo.NewStore()
		return journalRepos{
			name:   "memory",
			events: memrepo.NewEventRepo(store),
			runs:   memrepo.NewRunRepo(store),
			tx:     memrepo.NewTxManager(store),
		}, func() {}, nil
	}
}

func newLogger(cfg serverConfig, w io.Writer) (*slog.Logger, error) {
	level, err := slogsink.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: slogsink.ReplaceLevel}
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
}

func stringEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
