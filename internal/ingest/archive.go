package ingest

// archive.go writes the immutable parquet snapshot of every ingested batch.
// The snapshot is encoded in memory first so the content hash can be part
// of the file name; files are never overwritten or mutated after creation.

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/astomelio/data-engineer-challenge-2025/internal/tables"
)

// hashLen is how many hex characters of the content hash go into the
// archive file name.
const hashLen = 8

// ArchiveName builds the snapshot file name for a batch:
// raw_loans_<mode>_<YYYYMMDD_HHMMSS>_<hash>.parquet. The hash prefix keeps
// names unique when two batches land within the same second.
func ArchiveName(mode string, ts time.Time, hash string) string {
	if len(hash) > hashLen {
		hash = hash[:hashLen]
	}
	return fmt.Sprintf("raw_loans_%s_%s_%s.parquet", mode, ts.UTC().Format("20060102_150405"), hash)
}

// Archive encodes the batch as parquet and writes it under dir, creating
// the directory if needed. It returns the written file path and the full
// content hash.
func Archive(dir, mode string, ts time.Time, rows []tables.RawLoan) (path, hash string, err error) {
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[tables.RawLoan](&buf)
	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			return "", "", fmt.Errorf("encoding parquet: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return "", "", fmt.Errorf("closing parquet writer: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	hash = hex.EncodeToString(sum[:])

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating archive dir %s: %w", dir, err)
	}

	path = filepath.Join(dir, ArchiveName(mode, ts, hash))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", "", fmt.Errorf("writing archive %s: %w", path, err)
	}
	return path, hash, nil
}
