// Command loanetl runs the loan ETL pipeline against a DuckDB warehouse.
//
// Usage:
//
//	loanetl run       ingest + transform + validate as one journaled run
//	loanetl ingest    load workbooks into the raw layer only
//	loanetl transform rebuild silver and gold from the raw layer
//	loanetl validate  run the data-quality checks over the persisted layers
//	loanetl status    print the last journaled run and per-layer row counts
//
// Configuration comes from environment variables (or a .env file); flags
// override individual settings per invocation. On failure the process exits
// non-zero and prints the operator error code.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/astomelio/data-engineer-challenge-2025/internal/config"
	"github.com/astomelio/data-engineer-challenge-2025/internal/errdefs"
	"github.com/astomelio/data-engineer-challenge-2025/internal/ingest"
	"github.com/astomelio/data-engineer-challenge-2025/internal/logging"
	"github.com/astomelio/data-engineer-challenge-2025/internal/pipeline"
	"github.com/astomelio/data-engineer-challenge-2025/internal/validate"
	"github.com/astomelio/data-engineer-challenge-2025/internal/warehouse"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd := os.Args[1]

	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := parseFlags(cmd, cfg, os.Args[2:]); err != nil {
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded",
		"database", cfg.Database.Path,
		"mode", cfg.Ingest.Mode,
		"raw_dir", cfg.Archive.Dir,
		"s3_mirroring", cfg.S3.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, cmd, cfg); err != nil {
		slog.Error("command failed", "command", cmd, "code", errdefs.ErrorCode(err), "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: loanetl <run|ingest|transform|validate|status> [flags]")
	fmt.Fprintln(os.Stderr, "run 'loanetl <command> -h' for command flags")
}

// parseFlags overlays command-line flags onto the environment-derived
// config. Every flag defaults to the already-loaded value, so flags only
// change what the caller names.
// transformTarget is the layer selector for the transform subcommand.
var transformTarget = pipeline.TargetAll

func parseFlags(cmd string, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.StringVar(&cfg.Database.Path, "duckdb", cfg.Database.Path, "DuckDB database file")
	fs.StringVar(&cfg.Logging.Level, "log_level", cfg.Logging.Level, "log level: debug, info, warn, error")

	switch cmd {
	case "run", "ingest":
		fs.StringVar(&cfg.Ingest.Mode, "mode", cfg.Ingest.Mode, "ingestion mode: full_refresh or incremental")
		fs.StringVar(&cfg.Ingest.ExcelPath, "excel", cfg.Ingest.ExcelPath, "workbook path (full_refresh)")
		fs.StringVar(&cfg.Ingest.ExcelDir, "excel_dir", cfg.Ingest.ExcelDir, "workbook directory (incremental)")
		fs.StringVar(&cfg.Ingest.ExcelPattern, "excel_pattern", cfg.Ingest.ExcelPattern, "workbook glob (incremental)")
		fs.BoolVar(&cfg.Ingest.FailFast, "fail_fast", cfg.Ingest.FailFast, "abort the batch on the first unreadable workbook")
		fs.StringVar(&cfg.Archive.Dir, "raw_dir", cfg.Archive.Dir, "parquet snapshot directory")
		fs.BoolVar(&cfg.S3.Enabled, "prod", cfg.S3.Enabled, "mirror snapshots to S3")
		fs.StringVar(&cfg.S3.Bucket, "s3_bucket", cfg.S3.Bucket, "S3 bucket for snapshot mirroring")
		fs.StringVar(&cfg.S3.Prefix, "s3_prefix", cfg.S3.Prefix, "S3 key prefix for snapshot mirroring")
	case "transform":
		fs.StringVar(&transformTarget, "target", transformTarget, "layer to rebuild: silver, gold, or all")
	case "validate", "status":
		// Only the shared flags apply.
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}

	return fs.Parse(args)
}

func execute(ctx context.Context, cmd string, cfg *config.Config) error {
	// One run at a time per database file.
	release, err := pipeline.AcquireLock(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer release()

	store, err := warehouse.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	if cmd == "status" {
		return printStatus(ctx, store)
	}

	var uploader ingest.Uploader
	if cfg.S3.Enabled {
		up, err := ingest.NewS3Uploader(ctx, cfg.S3.Bucket, cfg.S3.Prefix)
		if err != nil {
			return err
		}
		uploader = up
	}

	loader := ingest.NewLoader(store, cfg.Archive.Dir, uploader, cfg.Ingest.FailFast, slog.Default())
	runner := pipeline.NewRunner(store, loader, slog.Default())

	spec := pipeline.IngestSpec{
		Mode:         cfg.Ingest.Mode,
		ExcelPath:    cfg.Ingest.ExcelPath,
		ExcelDir:     cfg.Ingest.ExcelDir,
		ExcelPattern: cfg.Ingest.ExcelPattern,
	}

	switch cmd {
	case "run":
		rep, err := runner.Run(ctx, spec)
		if err != nil {
			return err
		}
		slog.Info("run complete",
			"run_id", rep.RunID,
			"raw_rows", rep.RawRows,
			"silver_rows", rep.SilverRows,
			"fact_rows", rep.FactRows,
			"archive", rep.ArchivePath,
		)
		return nil

	case "ingest":
		sum, err := runner.IngestOnly(ctx, spec)
		if err != nil {
			return err
		}
		slog.Info("ingest complete",
			"mode", sum.Mode,
			"files", len(sum.Files),
			"rows", sum.RowCount,
			"archive", sum.ArchivePath,
		)
		return nil

	case "transform":
		rep, err := runner.TransformOnly(ctx, transformTarget)
		if err != nil {
			return err
		}
		slog.Info("transform complete",
			"raw_rows", rep.RawRows,
			"silver_rows", rep.SilverRows,
			"fact_rows", rep.FactRows,
		)
		return nil

	case "validate":
		results, err := runner.ValidateOnly(ctx)
		if err != nil {
			return err
		}
		slog.Info("validation complete", "checks", len(results), "failed", len(validate.Failures(results)))
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// printStatus reports the last journaled run and the row counts of each
// warehouse layer.
func printStatus(ctx context.Context, store *warehouse.Store) error {
	rawRows, err := store.RawCount(ctx)
	if err != nil {
		return err
	}
	silverRows, err := store.SilverCount(ctx)
	if err != nil {
		return err
	}
	factRows, err := store.FactCount(ctx)
	if err != nil {
		return err
	}

	rec, err := store.LastRun(ctx)
	if err != nil {
		return err
	}
	if rec == nil {
		slog.Info("no pipeline runs recorded")
	} else {
		attrs := []any{
			"run_id", rec.ID,
			"mode", rec.Mode,
			"state", rec.State,
			"started_at", rec.StartedAt,
		}
		if rec.FinishedAt.Valid {
			attrs = append(attrs, "finished_at", rec.FinishedAt.Time)
		}
		if rec.RawHash.Valid {
			attrs = append(attrs, "raw_hash", rec.RawHash.String)
		}
		if rec.Error.Valid {
			attrs = append(attrs, "error", rec.Error.String)
		}
		slog.Info("last run", attrs...)
	}

	slog.Info("layer row counts", "raw", rawRows, "silver", silverRows, "fact", factRows)
	return nil
}
