package errdefs

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/astomelio/data-engineer-challenge-2025/internal/validate"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"input not found", &InputNotFoundError{Path: "loans.xlsx"}, "ING001"},
		{"source read", &SourceReadError{File: "loans.xlsx", Err: errors.New("bad zip")}, "ING002"},
		{"storage write", &StorageWriteError{Op: "raw table", Err: errors.New("disk full")}, "STO001"},
		{"upload", &UploadError{Bucket: "b", Key: "k", Err: errors.New("timeout")}, "UPL001"},
		{"validation", &ValidationFailure{Failed: []validate.Result{{Name: "unique_loan_id"}}}, "VAL001"},
		{"locked", ErrLocked, "RUN001"},
		{"wrapped locked", fmt.Errorf("run aborted: %w", ErrLocked), "RUN001"},
		{"wrapped typed", fmt.Errorf("stage failed: %w", &UploadError{Bucket: "b", Key: "k", Err: errors.New("x")}), "UPL001"},
		{"unknown", errors.New("something else"), "GEN001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(&UploadError{Bucket: "b", Key: "k", Err: errors.New("x")}) {
		t.Error("upload errors must be non-fatal")
	}
	if IsFatal(fmt.Errorf("ingest: %w", &UploadError{Bucket: "b", Key: "k", Err: errors.New("x")})) {
		t.Error("wrapped upload errors must be non-fatal")
	}
	for _, err := range []error{
		&InputNotFoundError{Path: "x"},
		&SourceReadError{File: "x", Err: errors.New("y")},
		&StorageWriteError{Op: "x", Err: errors.New("y")},
		&ValidationFailure{},
		ErrLocked,
		errors.New("anything else"),
	} {
		if !IsFatal(err) {
			t.Errorf("IsFatal(%v) = false, want true", err)
		}
	}
}

func TestValidationFailureMessage(t *testing.T) {
	err := &ValidationFailure{Failed: []validate.Result{
		{Name: "unique_loan_id", Table: "silver.silver_loans", Violations: 3},
		{Name: "non_empty", Table: "gold.fact_loan", Violations: 1},
	}}

	msg := err.Error()
	if !strings.Contains(msg, "2 data-quality checks failed") {
		t.Errorf("message = %q, want failed-check count", msg)
	}
	if !strings.Contains(msg, "unique_loan_id") || !strings.Contains(msg, "gold.fact_loan") {
		t.Errorf("message = %q, want check names and tables", msg)
	}
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("root cause")
	for _, err := range []error{
		&SourceReadError{File: "x", Err: inner},
		&StorageWriteError{Op: "x", Err: inner},
		&UploadError{Bucket: "b", Key: "k", Err: inner},
	} {
		if !errors.Is(err, inner) {
			t.Errorf("%T does not unwrap to its cause", err)
		}
	}
}
