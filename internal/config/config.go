// Package config provides centralized configuration management for the
// pipeline. It loads configuration from environment variables with sensible
// defaults and validates all settings on startup to fail fast on
// misconfiguration. CLI flags may override individual fields after Load.
package config

// Config holds all pipeline configuration.
// All settings can be configured via environment variables.
type Config struct {
	Database DatabaseConfig
	Ingest   IngestConfig
	Archive  ArchiveConfig
	S3       S3Config
	Logging  LoggingConfig
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file (default: warehouse.duckdb).
	// Created on first run if absent.
	Path string `env:"DUCKDB_PATH" default:"warehouse.duckdb"`
}

// IngestConfig holds source-file and ingestion-mode settings.
type IngestConfig struct {
	// Mode is the ingestion mode: full_refresh or incremental (default: full_refresh)
	Mode string `env:"INGEST_MODE" default:"full_refresh"`

	// ExcelPath is the workbook to load in full_refresh mode (default: data/loans.xlsx)
	ExcelPath string `env:"EXCEL_PATH" default:"data/loans.xlsx"`

	// ExcelDir is the directory scanned in incremental mode (default: data)
	ExcelDir string `env:"EXCEL_DIR" default:"data"`

	// ExcelPattern is the glob matched against ExcelDir entries in
	// incremental mode (default: *.xlsx)
	ExcelPattern string `env:"EXCEL_PATTERN" default:"*.xlsx"`

	// FailFast aborts an incremental batch on the first unreadable
	// workbook; when false the file is skipped with a warning (default: true)
	FailFast bool `env:"INGEST_FAIL_FAST" default:"true"`
}

// ArchiveConfig holds parquet snapshot settings.
type ArchiveConfig struct {
	// Dir is where batch snapshots are written (default: raw_data)
	Dir string `env:"RAW_DIR" default:"raw_data"`
}

// S3Config holds object-storage mirroring settings.
type S3Config struct {
	// Enabled turns on mirroring of snapshots to S3 (default: false)
	Enabled bool `env:"PROD" default:"false"`

	// Bucket is the target bucket; required when Enabled
	Bucket string `env:"RAW_S3_BUCKET"`

	// Prefix is the key prefix snapshots are uploaded under (default: raw/loans)
	Prefix string `env:"RAW_S3_PREFIX" default:"raw/loans"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}
