package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "warehouse.duckdb" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "warehouse.duckdb")
	}
	if cfg.Ingest.Mode != "full_refresh" {
		t.Errorf("Ingest.Mode = %q, want %q", cfg.Ingest.Mode, "full_refresh")
	}
	if !cfg.Ingest.FailFast {
		t.Error("Ingest.FailFast = false, want true by default")
	}
	if cfg.Archive.Dir != "raw_data" {
		t.Errorf("Archive.Dir = %q, want %q", cfg.Archive.Dir, "raw_data")
	}
	if cfg.S3.Enabled {
		t.Error("S3.Enabled = true, want false by default")
	}
	if cfg.S3.Prefix != "raw/loans" {
		t.Errorf("S3.Prefix = %q, want %q", cfg.S3.Prefix, "raw/loans")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %q/%q, want info/text", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadOverrideDefaults(t *testing.T) {
	t.Setenv("DUCKDB_PATH", "/tmp/loans.duckdb")
	t.Setenv("INGEST_MODE", "incremental")
	t.Setenv("EXCEL_DIR", "/srv/drops")
	t.Setenv("EXCEL_PATTERN", "loans_*.xlsx")
	t.Setenv("INGEST_FAIL_FAST", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/loans.duckdb" {
		t.Errorf("Database.Path = %q, want override", cfg.Database.Path)
	}
	if cfg.Ingest.Mode != "incremental" {
		t.Errorf("Ingest.Mode = %q, want incremental", cfg.Ingest.Mode)
	}
	if cfg.Ingest.ExcelDir != "/srv/drops" || cfg.Ingest.ExcelPattern != "loans_*.xlsx" {
		t.Errorf("Ingest dir/pattern = %q/%q, want overrides", cfg.Ingest.ExcelDir, cfg.Ingest.ExcelPattern)
	}
	if cfg.Ingest.FailFast {
		t.Error("Ingest.FailFast = true, want false")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadInvalidMode(t *testing.T) {
	t.Setenv("INGEST_MODE", "upsert")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "INGEST_MODE") {
		t.Errorf("Load() error = %v, want INGEST_MODE validation failure", err)
	}
}

func TestLoadS3RequiresBucket(t *testing.T) {
	t.Setenv("PROD", "true")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "RAW_S3_BUCKET") {
		t.Errorf("Load() error = %v, want RAW_S3_BUCKET validation failure", err)
	}
}

func TestLoadS3WithBucket(t *testing.T) {
	t.Setenv("PROD", "true")
	t.Setenv("RAW_S3_BUCKET", "loan-archives")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.S3.Enabled || cfg.S3.Bucket != "loan-archives" {
		t.Errorf("S3 = %+v, want enabled with bucket loan-archives", cfg.S3)
	}
}

func TestLoadInvalidBool(t *testing.T) {
	t.Setenv("INGEST_FAIL_FAST", "definitely")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "INGEST_FAIL_FAST") {
		t.Errorf("Load() error = %v, want INGEST_FAIL_FAST parse failure", err)
	}
}

func TestLoadInvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "LOG_LEVEL") {
		t.Errorf("Load() error = %v, want LOG_LEVEL validation failure", err)
	}
}

func TestConfigString(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s := cfg.String()
	if !strings.Contains(s, "warehouse.duckdb") || !strings.Contains(s, "full_refresh") {
		t.Errorf("String() = %q, want database path and mode included", s)
	}
}
