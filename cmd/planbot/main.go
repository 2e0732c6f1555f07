package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lipohub/tg-planner-bot/internal/api"
	"github.com/lipohub/tg-planner-bot/internal/chart"
	"github.com/lipohub/tg-planner-bot/internal/cli"
	"github.com/lipohub/tg-planner-bot/internal/config"
	"github.com/lipohub/tg-planner-bot/internal/db"
	"github.com/lipohub/tg-planner-bot/internal/intelligence"
	"github.com/lipohub/tg-planner-bot/internal/llm"
	"github.com/lipohub/tg-planner-bot/internal/repository"
	"github.com/lipohub/tg-planner-bot/internal/service"
	"github.com/lipohub/tg-planner-bot/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envErr := loadDotEnv()

	cfg, err := config.Load(configPath(os.Args[1:]))
	if err != nil {
		return err
	}

	serving := len(os.Args) > 1 && os.Args[1] == "serve"
	logger := newLogger(cfg, serving)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Warn("dotenv_load_failed", "file", ".env", "error", envErr)
	}

	database, err := db.OpenDB(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	users := repository.NewSQLiteUserRepo(database)
	events := repository.NewSQLiteEventRepo(database)
	graphs := repository.NewSQLiteGraphRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	var client llm.LLMClient
	if cfg.LLM.Enabled {
		observers := llm.MultiObserver{llm.NewPrometheusObserver(reg)}
		if cfg.LLM.LogCalls {
			observers = append(observers, llm.NewLogObserver(logger))
		}
		client = llm.NewOpenAIClient(cfg.LLM, observers)
	}
	planner := intelligence.NewPlanService(client, logger, intelligence.WithLocation(cfg.Location()))

	engine := chart.NewEngine(
		chart.WithSize(cfg.Render.Width, cfg.Render.Height),
		chart.WithLocation(cfg.Location()),
		chart.WithLogger(logger),
		chart.WithMetrics(chart.NewMetrics(reg)),
	)
	pool := chart.NewPool(engine, cfg.Render.Workers)
	store := storage.NewChartStore(cfg.Storage.ChartsDir)
	observer := service.MultiUseCaseObserver{
		service.NewLogUseCaseObserver(logger),
		service.NewPrometheusUseCaseObserver(reg),
	}

	app := &cli.App{
		Planning: service.NewPlanningService(planner, users, events, graphs, pool, store, logger, observer),
		Goals:    service.NewGoalService(planner, uow, graphs, pool, store, logger, observer),
		Charts:   service.NewChartService(events, graphs, pool, store, logger, observer),
	}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	app.Serve = func(ctx context.Context) error {
		h := api.NewHandler(app.Planning, app.Goals, app.Charts, logger)
		router := api.NewRouter(h, api.RouterOptions{
			Logger:   logger,
			Gatherer: reg,
			Ready:    []api.ReadyCheck{pingDB(database)},
		})
		return api.Serve(ctx, cfg.HTTP.Address(), router, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// loadDotEnv reads .env (or files) without overriding variables that are
// already set. A missing file is fine; a broken one is reported.
func loadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// configPath pulls --config out of the arguments before cobra runs, since
// services are wired from the config before any command executes.
func configPath(args []string) string {
	path := os.Getenv("PLANBOT_CONFIG")
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--":
			return path
		case args[i] == "--config" && i+1 < len(args):
			path = args[i+1]
			i++
		case strings.HasPrefix(args[i], "--config="):
			path = strings.TrimPrefix(args[i], "--config=")
		}
	}
	return path
}

// newLogger uses JSON for the server and text on the terminal, where info
// chatter would drown out command output.
func newLogger(cfg config.Config, serving bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if serving || cfg.App.LogFormat == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	if cfg.Level() > slog.LevelDebug {
		opts.Level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func pingDB(database *sql.DB) api.ReadyCheck {
	return func(ctx context.Context) error {
		return database.PingContext(ctx)
	}
}
