// Package ingest loads loan workbooks into the raw layer.
//
// Every batch follows the same sequence: read the workbook(s) verbatim,
// write the immutable parquet snapshot, optionally mirror it to object
// storage, then write the database. The snapshot-before-database order
// means a failed database write still leaves an archived copy of the
// batch on disk.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/astomelio/data-engineer-challenge-2025/internal/errdefs"
	"github.com/astomelio/data-engineer-challenge-2025/internal/excel"
	"github.com/astomelio/data-engineer-challenge-2025/internal/schema"
	"github.com/astomelio/data-engineer-challenge-2025/internal/tables"
)

// Ingestion modes. Full refresh drops and rebuilds the raw table from a
// single workbook; incremental appends every workbook matching a pattern.
const (
	ModeFullRefresh = "full_refresh"
	ModeIncremental = "incremental"
)

// RawStore is the slice of the warehouse the loader writes through.
type RawStore interface {
	ReplaceRaw(ctx context.Context, rows []tables.RawLoan) error
	AppendRaw(ctx context.Context, rows []tables.RawLoan) error
	NextRowSeq(ctx context.Context) (int64, error)
}

// Summary describes a completed ingestion batch.
type Summary struct {
	Mode        string
	Files       []string
	RowCount    int64
	ArchivePath string
	ArchiveHash string
	RemoteURI   string // empty unless the snapshot was mirrored
}

// Loader runs ingestion batches against a raw store.
type Loader struct {
	store      RawStore
	archiveDir string
	uploader   Uploader // nil when mirroring is disabled
	failFast   bool
	log        *slog.Logger

	now func() time.Time
}

// NewLoader builds a loader. uploader may be nil to skip object-storage
// mirroring. When failFast is false, unreadable workbooks in an
// incremental batch are skipped with a warning instead of aborting.
func NewLoader(store RawStore, archiveDir string, uploader Uploader, failFast bool, log *slog.Logger) *Loader {
	return &Loader{
		store:      store,
		archiveDir: archiveDir,
		uploader:   uploader,
		failFast:   failFast,
		log:        log,
		now:        time.Now,
	}
}

// FullRefresh ingests a single workbook, replacing the raw table.
func (l *Loader) FullRefresh(ctx context.Context, path string) (*Summary, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &errdefs.InputNotFoundError{Path: path}
	}

	ts := l.now().UTC()
	rows, err := l.readWorkbook(path, ts, 1)
	if err != nil {
		return nil, err
	}

	sum, err := l.persist(ctx, ModeFullRefresh, ts, []string{path}, rows, l.store.ReplaceRaw)
	if err != nil {
		return nil, err
	}
	return sum, nil
}

// Incremental ingests every workbook in dir matching pattern, appending to
// the raw table. Files are processed in lexicographic order so reruns
// assign the same row sequence.
func (l *Loader) Incremental(ctx context.Context, dir, pattern string) (*Summary, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, &errdefs.InputNotFoundError{Path: dir}
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, &errdefs.InputNotFoundError{Path: filepath.Join(dir, pattern)}
	}
	sort.Strings(matches)

	seq, err := l.store.NextRowSeq(ctx)
	if err != nil {
		return nil, &errdefs.StorageWriteError{Op: "raw table", Err: err}
	}

	ts := l.now().UTC()
	var batch []tables.RawLoan
	var files []string
	for _, path := range matches {
		rows, err := l.readWorkbook(path, ts, seq)
		if err != nil {
			if l.failFast {
				return nil, err
			}
			l.log.Warn("skipping unreadable workbook", "file", path, "error", err)
			continue
		}
		batch = append(batch, rows...)
		files = append(files, path)
		seq += int64(len(rows))
	}
	if len(files) == 0 {
		return nil, &errdefs.SourceReadError{
			File: filepath.Join(dir, pattern),
			Err:  fmt.Errorf("no readable workbooks in batch"),
		}
	}

	return l.persist(ctx, ModeIncremental, ts, files, batch, l.store.AppendRaw)
}

// persist archives the batch, mirrors it when configured, and writes the
// database through the given store operation.
func (l *Loader) persist(ctx context.Context, mode string, ts time.Time, files []string, rows []tables.RawLoan, write func(context.Context, []tables.RawLoan) error) (*Summary, error) {
	path, hash, err := Archive(l.archiveDir, mode, ts, rows)
	if err != nil {
		return nil, &errdefs.StorageWriteError{Op: "parquet archive", Err: err}
	}
	l.log.Info("wrote archive snapshot", "path", path, "rows", len(rows))

	var remote string
	if l.uploader != nil {
		remote, err = l.uploader.Upload(ctx, path)
		switch {
		case err != nil && errdefs.IsFatal(err):
			// Anything other than an upload failure (e.g. cancellation)
			// aborts before the database write.
			return nil, err
		case err != nil:
			// Upload failures are non-fatal: the local snapshot and the
			// database write stand.
			l.log.Warn("archive upload failed", "path", path, "error", err)
			remote = ""
		default:
			l.log.Info("mirrored archive snapshot", "uri", remote)
		}
	}

	if err := write(ctx, rows); err != nil {
		return nil, &errdefs.StorageWriteError{Op: "raw table", Err: err}
	}

	return &Summary{
		Mode:        mode,
		Files:       files,
		RowCount:    int64(len(rows)),
		ArchivePath: path,
		ArchiveHash: hash,
		RemoteURI:   remote,
	}, nil
}

// readWorkbook reads one workbook into raw rows, stamping provenance and
// row sequences starting at startSeq.
func (l *Loader) readWorkbook(path string, ts time.Time, startSeq int64) ([]tables.RawLoan, error) {
	sheet, err := excel.Read(path)
	if err != nil {
		return nil, &errdefs.SourceReadError{File: path, Err: err}
	}

	headerRow := excel.FindHeaderRow(sheet, schema.RequiredHeaders())
	if headerRow < 0 {
		return nil, &errdefs.SourceReadError{
			File: path,
			Err:  fmt.Errorf("no header row with columns %v in first %d rows", schema.RequiredHeaders(), excel.HeaderScanRows),
		}
	}
	idx := excel.MakeHeaderIndex(sheet[headerRow])

	source := filepath.Base(path)
	var out []tables.RawLoan
	for _, row := range sheet[headerRow+1:] {
		if excel.IsEmptyRow(row) {
			continue
		}
		r := rawFromRow(row, idx)
		r.SourceFile = source
		r.IngestionTimestamp = ts
		r.RowSeq = startSeq + int64(len(out))
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, &errdefs.SourceReadError{
			File: path,
			Err:  fmt.Errorf("workbook has a header but no data rows"),
		}
	}

	l.log.Info("read workbook", "file", path, "rows", len(out))
	return out, nil
}

// rawFromRow maps one data row onto a RawLoan by header name. Cells are
// kept verbatim; missing columns come through as empty strings.
func rawFromRow(row []string, idx schema.HeaderIndex) tables.RawLoan {
	var r tables.RawLoan
	for _, spec := range schema.LoanFieldSpecs {
		*rawField(&r, spec.DBColumn) = excel.Cell(row, idx, spec.Name)
	}
	return r
}

func rawField(r *tables.RawLoan, column string) *string {
	switch column {
	case "loan_id":
		return &r.LoanID
	case "customer_id":
		return &r.CustomerID
	case "loan_status":
		return &r.LoanStatus
	case "current_loan_amount":
		return &r.CurrentLoanAmount
	case "term":
		return &r.Term
	case "credit_score":
		return &r.CreditScore
	case "annual_income":
		return &r.AnnualIncome
	case "years_in_current_job":
		return &r.YearsInCurrentJob
	case "home_ownership":
		return &r.HomeOwnership
	case "purpose":
		return &r.Purpose
	case "monthly_debt":
		return &r.MonthlyDebt
	case "years_of_credit_history":
		return &r.YearsOfCreditHistory
	case "months_since_last_delinquent":
		return &r.MonthsSinceLastDelinquent
	case "number_of_open_accounts":
		return &r.NumberOfOpenAccounts
	case "number_of_credit_problems":
		return &r.NumberOfCreditProblems
	case "current_credit_balance":
		return &r.CurrentCreditBalance
	case "maximum_open_credit":
		return &r.MaximumOpenCredit
	case "bankruptcies":
		return &r.Bankruptcies
	case "tax_liens":
		return &r.TaxLiens
	default:
		panic(fmt.Sprintf("unknown raw column %q", column))
	}
}
