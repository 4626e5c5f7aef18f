// Package errdefs defines the pipeline error taxonomy and maps errors to
// stable operator-facing codes.
//
// Error codes are grouped by category so an operator can quote a code when
// reporting a failed run:
//
//	ING001 - source file or directory not found
//	ING002 - source file exists but could not be parsed as tabular data
//	STO001 - database or archival write failed
//	UPL001 - object-storage upload failed (raw ingestion still succeeded)
//	VAL001 - one or more data-quality checks failed
//	RUN001 - another run holds the database lock
//	GEN001 - uncategorized failure
package errdefs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/astomelio/data-engineer-challenge-2025/internal/validate"
)

// InputNotFoundError reports a missing source file or directory.
// Fatal; raised before any write happens.
type InputNotFoundError struct {
	Path string
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("input not found: %s", e.Path)
}

// SourceReadError reports a source file that exists but could not be
// parsed into tabular form.
type SourceReadError struct {
	File string
	Err  error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("cannot read source %s: %v", e.File, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// StorageWriteError reports a failed database or archival write.
// Fatal; the run aborts.
type StorageWriteError struct {
	Op  string // what was being written, e.g. "raw table" or "parquet archive"
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("storage write failed (%s): %v", e.Op, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// UploadError reports a failed object-storage upload. Non-fatal with
// respect to raw ingestion: the local write already succeeded.
type UploadError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload to s3://%s/%s failed: %v", e.Bucket, e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// ValidationFailure reports failed data-quality checks. The written data
// is kept; only the run status fails.
type ValidationFailure struct {
	Failed []validate.Result
}

func (e *ValidationFailure) Error() string {
	msgs := make([]string, len(e.Failed))
	for i, r := range e.Failed {
		msgs[i] = r.String()
	}
	return fmt.Sprintf("%d data-quality checks failed: %s", len(e.Failed), strings.Join(msgs, "; "))
}

// ErrLocked is returned when another pipeline run holds the single-writer
// database lock.
var ErrLocked = errors.New("database is locked by another pipeline run")

// ErrorCode maps an error to its stable operator-facing code.
func ErrorCode(err error) string {
	var (
		notFound   *InputNotFoundError
		sourceRead *SourceReadError
		storage    *StorageWriteError
		upload     *UploadError
		validation *ValidationFailure
	)

	switch {
	case errors.As(err, &notFound):
		return "ING001"
	case errors.As(err, &sourceRead):
		return "ING002"
	case errors.As(err, &storage):
		return "STO001"
	case errors.As(err, &upload):
		return "UPL001"
	case errors.As(err, &validation):
		return "VAL001"
	case errors.Is(err, ErrLocked):
		return "RUN001"
	default:
		return "GEN001"
	}
}

// IsFatal reports whether an error must abort the run. Upload failures are
// the only non-fatal class: the raw write is authoritative even when the
// archival copy never reached object storage.
func IsFatal(err error) bool {
	var upload *UploadError
	return !errors.As(err, &upload)
}
