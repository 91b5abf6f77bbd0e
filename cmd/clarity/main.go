package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/pflag"
	"github.com/terraincognita07/clarity/internal/api"
	"github.com/terraincognita07/clarity/internal/cli"
	"github.com/terraincognita07/clarity/internal/config"
	"github.com/terraincognita07/clarity/internal/db"
)

const usage = `Usage: clarity [command] [flags]

Commands:
  serve             run the HTTP API (default)
  seed              write default blocks and settings if missing
  migrate-defaults  backfill legacy zero scores
  summary           print recent per-day totals for a metric
  clear             delete all entries and daily meta (requires --yes)
`

func main() {
	if err := run(os.Args[1:], os.Getenv, os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("clarity: %v", err)
	}
}

func run(args []string, getenv func(string) string, stdout io.Writer) error {
	command, rest := splitCommand(args)

	flags := pflag.NewFlagSet("clarity "+command, pflag.ContinueOnError)
	flags.SetOutput(stdout)
	flags.Usage = func() {
		fmt.Fprint(stdout, usage)
		fmt.Fprintln(stdout, "\nFlags:")
		flags.PrintDefaults()
	}
	bound := config.BindFlags(flags)

	var metric string
	var limit int
	var confirmed bool
	switch command {
	case "summary":
		flags.StringVar(&metric, "metric", "rumination", "metric to total: rumination, compulsion or avoidance")
		flags.IntVar(&limit, "limit", 7, "number of most recent tracked days")
	case "clear":
		flags.BoolVar(&confirmed, "yes", false, "confirm deleting every entry and daily meta row")
	}

	if err := flags.Parse(rest); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))
	}

	cfg, err := bound.Resolve(getenv)
	if err != nil {
		return err
	}

	switch command {
	case "serve":
		return serve(cfg)
	case "seed", "migrate-defaults", "summary", "clear":
	default:
		return fmt.Errorf("unknown command %q", command)
	}

	store, err := db.Init(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer func() {
		if err := db.CloseDefault(); err != nil {
			log.Printf("close database: %v", err)
		}
	}()

	switch command {
	case "seed":
		return cli.RunSeedCommand(store, stdout)
	case "migrate-defaults":
		return cli.RunMigrateDefaultsCommand(store, stdout)
	case "clear":
		return cli.RunClearCommand(store, confirmed, stdout)
	default:
		return cli.RunSummaryCommand(store, metric, limit, stdout)
	}
}

func logMigrationReport(report db.MigrationReport) {
	log.Printf("schema: %s", report)
	for _, swallowed := range report.Swallowed {
		log.Printf("schema: %s skipped %q: %v", swallowed.Migration, swallowed.Statement, swallowed.Err)
	}
	if !report.Complete() {
		log.Printf("schema: required column(s) missing, scores and tracked flags will fail to save: %v", report.Missing)
	}
}

func splitCommand(args []string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "serve", args
	}
	return args[0], args[1:]
}

func serve(cfg config.Config) error {
	location := mustLoadLocation(cfg.Timezone)
	time.Local = location

	store, err := db.Init(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer func() {
		if err := db.CloseDefault(); err != nil {
			log.Printf("close database: %v", err)
		}
	}()

	logMigrationReport(store.MigrationReport())

	if _, err := store.SeedIfNeeded(); err != nil {
		return err
	}
	if updated := store.MigrateDefaults(); updated > 0 {
		log.Printf("backfilled %d legacy scores", updated)
	}

	app := newApp(api.NewHandler(store, location))

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Clarity listening on http://0.0.0.0:%s (db: %s, tz: %s)", cfg.Port, cfg.DBPath, location.String())
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newApp(handler *api.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Clarity",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app
}

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}
