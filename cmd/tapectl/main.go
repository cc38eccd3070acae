package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tapelabs/disclosure-tape/internal/config"
	"github.com/tapelabs/disclosure-tape/internal/database"
	"github.com/tapelabs/disclosure-tape/internal/model"
	"github.com/tapelabs/disclosure-tape/internal/query"
	"github.com/tapelabs/disclosure-tape/internal/store"
	"github.com/tapelabs/disclosure-tape/internal/transform"
	"github.com/tapelabs/disclosure-tape/internal/version"
)

const usage = `tapectl runs event-tape maintenance jobs.

Usage:
  tapectl repair  --event-type TYPE [--limit N] [--batch-size N] [--dry-run]
  tapectl rebuild --event-type TYPE [--limit N] [--batch-size N]
  tapectl verify
  tapectl version

Common flags:
  --config PATH     config file (default configs/tapeserver.local.yaml)
  --log-level LEVEL debug | info | warn | error
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	if command == "version" {
		fmt.Println("tapectl " + version.String())
		return
	}

	flags := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := flags.String("config", "configs/tapeserver.local.yaml", "path to config file")
	logLevel := flags.String("log-level", "info", "log level")
	eventType := flags.String("event-type", "", "event type to maintain")
	limit := flags.Int("limit", 0, "max records to scan, 0 for all")
	batchSize := flags.Int("batch-size", 0, "records per committed batch")
	dryRun := flags.Bool("dry-run", false, "report what repair would change without writing")
	flags.Parse(os.Args[2:])

	_ = godotenv.Load()

	level, err := config.ParseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	events := store.NewEventStore(pool, logger)
	raw := store.NewRawStore(pool, logger)
	maintenance := transform.NewMaintenance(events, raw, logger)
	opts := transform.MaintenanceOptions{Limit: *limit, BatchSize: *batchSize, DryRun: *dryRun}

	switch command {
	case "repair":
		requireEventType(*eventType)
		res, err := maintenance.Repair(ctx, *eventType, opts)
		if err != nil {
			logger.Error("repair failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("repair %s run=%s scanned=%d updated=%d skipped=%d missing_source=%d decode_failures=%d dry_run=%v\n",
			*eventType, res.RunID, res.Scanned, res.Updated, res.Skipped,
			res.MissingSource, res.DecodeFailures, res.DryRun)

	case "rebuild":
		requireEventType(*eventType)
		res, err := maintenance.Rebuild(ctx, *eventType, opts)
		if err != nil {
			logger.Error("rebuild failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("rebuild %s run=%s deleted=%d scanned=%d inserted=%d already_present=%d skipped=%d\n",
			*eventType, res.RunID, res.Deleted, res.Scanned, res.Inserted,
			res.AlreadyPresent, res.Skipped)

	case "verify":
		if err := verifyFilters(ctx, events); err != nil {
			logger.Error("verification failed", "error", err)
			os.Exit(1)
		}
		fmt.Println("verify ok")

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func requireEventType(eventType string) {
	if eventType == "" {
		fmt.Fprintln(os.Stderr, "--event-type is required")
		os.Exit(2)
	}
}

// verifyFilters runs post-maintenance sanity checks against the live
// store: filters that cannot match must return zero rows, and
// widening a recent-days window must never shrink the result set.
func verifyFilters(ctx context.Context, events *store.EventStore) error {
	now := time.Now().UTC()

	count := func(f query.Filter) (int64, error) {
		resolved, err := f.Resolve(now)
		if err != nil {
			return 0, err
		}
		return events.CountEvents(ctx, resolved)
	}

	impossibleAmount := 1e12
	checks := []struct {
		name string
		f    query.Filter
	}{
		{"impossible symbol", query.Filter{Symbols: []string{"ZZZZZZZZ"}}},
		{"absurd min amount", query.Filter{MinAmount: &impossibleAmount}},
	}
	for _, check := range checks {
		n, err := count(check.f)
		if err != nil {
			return fmt.Errorf("%s: %w", check.name, err)
		}
		if n != 0 {
			return fmt.Errorf("%s matched %d rows, want 0", check.name, n)
		}
	}

	var prev int64
	for _, days := range []int{7, 30, 90} {
		n, err := count(query.Filter{Types: []string{model.EventTypeCongressTrade}, RecentDays: days})
		if err != nil {
			return fmt.Errorf("recent %d days: %w", days, err)
		}
		if n < prev {
			return fmt.Errorf("recent window %d days matched %d rows, fewer than narrower window's %d", days, n, prev)
		}
		prev = n
	}
	return nil
}
