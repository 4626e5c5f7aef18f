// Package pipeline coordinates ETL runs: ingestion, the silver and gold
// transforms, and validation, tracked through a run-level state machine and
// recorded in the warehouse run journal.
package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/astomelio/data-engineer-challenge-2025/internal/errdefs"
	"github.com/astomelio/data-engineer-challenge-2025/internal/ingest"
	"github.com/astomelio/data-engineer-challenge-2025/internal/logging"
	"github.com/astomelio/data-engineer-challenge-2025/internal/tables"
	"github.com/astomelio/data-engineer-challenge-2025/internal/transform"
	"github.com/astomelio/data-engineer-challenge-2025/internal/validate"
	"github.com/astomelio/data-engineer-challenge-2025/internal/warehouse"
)

// Warehouse is the slice of the store the runner drives.
type Warehouse interface {
	FetchRaw(ctx context.Context) ([]tables.RawLoan, error)
	WriteSilver(ctx context.Context, rows []tables.CleanLoan) error
	FetchSilver(ctx context.Context) ([]tables.CleanLoan, error)
	WriteGold(ctx context.Context, facts []tables.FactLoan, customers []tables.DimCustomer, purposes []tables.DimPurpose) error
	FetchFact(ctx context.Context) ([]tables.FactLoan, error)

	CreateRun(ctx context.Context, id uuid.UUID, mode, state string, startedAt time.Time) error
	UpdateRunState(ctx context.Context, id uuid.UUID, state string) error
	FinishRun(ctx context.Context, rec warehouse.RunRecord) error
}

// Ingestor loads source workbooks into the raw layer.
type Ingestor interface {
	FullRefresh(ctx context.Context, path string) (*ingest.Summary, error)
	Incremental(ctx context.Context, dir, pattern string) (*ingest.Summary, error)
}

// IngestSpec says what a run should ingest. ExcelPath applies to full
// refresh; ExcelDir and ExcelPattern to incremental.
type IngestSpec struct {
	Mode         string
	ExcelPath    string
	ExcelDir     string
	ExcelPattern string
}

// Report summarizes a completed run.
type Report struct {
	RunID       uuid.UUID
	Mode        string
	RawRows     int64
	SilverRows  int64
	FactRows    int64
	ArchivePath string
	ArchiveHash string
	RemoteURI   string
	Results     []validate.Result
}

// Runner executes pipeline runs against a warehouse.
type Runner struct {
	store  Warehouse
	loader Ingestor
	log    *slog.Logger
	now    func() time.Time
}

// NewRunner builds a runner over the given store and loader.
func NewRunner(store Warehouse, loader Ingestor, log *slog.Logger) *Runner {
	return &Runner{store: store, loader: loader, log: log, now: time.Now}
}

// Run executes a full pipeline run: ingest, silver, gold, validate.
// Every stage boundary is journaled; on failure the journal row records
// the terminal FAILED state and the error, and Run returns the error.
func (r *Runner) Run(ctx context.Context, spec IngestSpec) (*Report, error) {
	rep := &Report{RunID: uuid.New(), Mode: spec.Mode}
	state := StatePending
	started := r.now().UTC()

	if err := r.store.CreateRun(ctx, rep.RunID, spec.Mode, string(state), started); err != nil {
		return nil, &errdefs.StorageWriteError{Op: "run journal", Err: err}
	}

	// The run ID travels in the context so every stage logs under it.
	ctx = logging.WithRunID(ctx, rep.RunID.String())
	log := logging.WithFields(ctx, "mode", spec.Mode)
	log.Info("pipeline run started")

	step := func(next State) error {
		state = advance(state, next)
		log.Info("entering stage", "state", state)
		return r.store.UpdateRunState(ctx, rep.RunID, string(state))
	}
	fail := func(err error) (*Report, error) {
		state = advance(state, StateFailed)
		log.Error("pipeline run failed", "state", state, "code", errdefs.ErrorCode(err), "error", err)
		r.finish(ctx, rep, state, started, err)
		return nil, err
	}

	// Ingest.
	if err := step(StateIngesting); err != nil {
		return fail(&errdefs.StorageWriteError{Op: "run journal", Err: err})
	}
	sum, err := r.ingest(ctx, spec)
	if err != nil {
		return fail(err)
	}
	rep.RawRows = sum.RowCount
	rep.ArchivePath = sum.ArchivePath
	rep.ArchiveHash = sum.ArchiveHash
	rep.RemoteURI = sum.RemoteURI

	// Silver.
	if err := step(StateTransformingSilver); err != nil {
		return fail(&errdefs.StorageWriteError{Op: "run journal", Err: err})
	}
	raw, err := r.store.FetchRaw(ctx)
	if err != nil {
		return fail(&errdefs.StorageWriteError{Op: "raw table", Err: err})
	}
	clean := transform.Clean(raw)
	if err := r.store.WriteSilver(ctx, clean); err != nil {
		return fail(&errdefs.StorageWriteError{Op: "silver table", Err: err})
	}
	rep.RawRows = int64(len(raw))
	rep.SilverRows = int64(len(clean))
	log.Info("silver layer rebuilt", "raw_rows", len(raw), "silver_rows", len(clean))

	// Gold.
	if err := step(StateTransformingGold); err != nil {
		return fail(&errdefs.StorageWriteError{Op: "run journal", Err: err})
	}
	purposes := transform.BuildDimPurpose(clean)
	customers := transform.BuildDimCustomer(clean)
	facts := transform.BuildFactLoan(clean, purposes)
	if err := r.store.WriteGold(ctx, facts, customers, purposes); err != nil {
		return fail(&errdefs.StorageWriteError{Op: "gold tables", Err: err})
	}
	rep.FactRows = int64(len(facts))
	log.Info("gold layer rebuilt", "fact_rows", len(facts),
		"customers", len(customers), "purposes", len(purposes))

	// Validate.
	if err := step(StateValidating); err != nil {
		return fail(&errdefs.StorageWriteError{Op: "run journal", Err: err})
	}
	rep.Results = validate.Run(validate.Snapshot{Raw: raw, Silver: clean, Fact: facts})
	for _, res := range rep.Results {
		if res.Passed() {
			log.Info(res.String())
		} else {
			log.Error(res.String())
		}
	}
	if failed := validate.Failures(rep.Results); len(failed) > 0 {
		return fail(&errdefs.ValidationFailure{Failed: failed})
	}

	state = advance(state, StateSucceeded)
	r.finish(ctx, rep, state, started, nil)
	log.Info("pipeline run succeeded",
		"raw_rows", rep.RawRows, "silver_rows", rep.SilverRows, "fact_rows", rep.FactRows)
	return rep, nil
}

func (r *Runner) ingest(ctx context.Context, spec IngestSpec) (*ingest.Summary, error) {
	if spec.Mode == ingest.ModeIncremental {
		return r.loader.Incremental(ctx, spec.ExcelDir, spec.ExcelPattern)
	}
	return r.loader.FullRefresh(ctx, spec.ExcelPath)
}

// finish writes the terminal journal row. Journal write failures at this
// point are logged, not returned; the run outcome is already decided.
func (r *Runner) finish(ctx context.Context, rep *Report, state State, started time.Time, runErr error) {
	rec := warehouse.RunRecord{
		ID:         rep.RunID,
		Mode:       rep.Mode,
		State:      string(state),
		StartedAt:  started,
		FinishedAt: sql.NullTime{Time: r.now().UTC(), Valid: true},
		RawRows:    sql.NullInt64{Int64: rep.RawRows, Valid: true},
		SilverRows: sql.NullInt64{Int64: rep.SilverRows, Valid: true},
		FactRows:   sql.NullInt64{Int64: rep.FactRows, Valid: true},
	}
	if rep.ArchiveHash != "" {
		rec.RawHash = sql.NullString{String: rep.ArchiveHash, Valid: true}
	}
	if runErr != nil {
		rec.Error = sql.NullString{String: runErr.Error(), Valid: true}
	}
	if err := r.store.FinishRun(ctx, rec); err != nil {
		r.log.Error("failed to finish run journal row", "run_id", rep.RunID, "error", err)
	}
}

// IngestOnly runs just the ingestion stage, journaled as its own run.
func (r *Runner) IngestOnly(ctx context.Context, spec IngestSpec) (*ingest.Summary, error) {
	rep := &Report{RunID: uuid.New(), Mode: spec.Mode}
	started := r.now().UTC()
	if err := r.store.CreateRun(ctx, rep.RunID, spec.Mode, string(StateIngesting), started); err != nil {
		return nil, &errdefs.StorageWriteError{Op: "run journal", Err: err}
	}

	sum, err := r.ingest(ctx, spec)
	if err != nil {
		r.finish(ctx, rep, StateFailed, started, err)
		return nil, err
	}
	rep.RawRows = sum.RowCount
	rep.ArchiveHash = sum.ArchiveHash
	r.finish(ctx, rep, StateSucceeded, started, nil)
	return sum, nil
}

// Transform targets. Silver must be built before gold; TargetAll runs both
// in dependency order, TargetGold rebuilds gold from the persisted silver
// table.
const (
	TargetSilver = "silver"
	TargetGold   = "gold"
	TargetAll    = "all"
)

// TransformOnly rebuilds the selected layers from what the warehouse
// holds, journaled as its own run.
func (r *Runner) TransformOnly(ctx context.Context, target string) (*Report, error) {
	if target != TargetSilver && target != TargetGold && target != TargetAll {
		return nil, fmt.Errorf("unknown transform target %q (want silver, gold, or all)", target)
	}

	rep := &Report{RunID: uuid.New(), Mode: "transform"}
	started := r.now().UTC()
	initial := StateTransformingSilver
	if target == TargetGold {
		initial = StateTransformingGold
	}
	if err := r.store.CreateRun(ctx, rep.RunID, rep.Mode, string(initial), started); err != nil {
		return nil, &errdefs.StorageWriteError{Op: "run journal", Err: err}
	}

	var clean []tables.CleanLoan
	if target == TargetSilver || target == TargetAll {
		raw, err := r.store.FetchRaw(ctx)
		if err != nil {
			r.finish(ctx, rep, StateFailed, started, err)
			return nil, &errdefs.StorageWriteError{Op: "raw table", Err: err}
		}
		clean = transform.Clean(raw)
		if err := r.store.WriteSilver(ctx, clean); err != nil {
			r.finish(ctx, rep, StateFailed, started, err)
			return nil, &errdefs.StorageWriteError{Op: "silver table", Err: err}
		}
		rep.RawRows = int64(len(raw))
		rep.SilverRows = int64(len(clean))
	}

	if target == TargetGold || target == TargetAll {
		if target == TargetGold {
			persisted, err := r.store.FetchSilver(ctx)
			if err != nil {
				r.finish(ctx, rep, StateFailed, started, err)
				return nil, &errdefs.StorageWriteError{Op: "silver table", Err: err}
			}
			clean = persisted
			rep.SilverRows = int64(len(clean))
		}
		purposes := transform.BuildDimPurpose(clean)
		customers := transform.BuildDimCustomer(clean)
		facts := transform.BuildFactLoan(clean, purposes)
		if err := r.store.WriteGold(ctx, facts, customers, purposes); err != nil {
			r.finish(ctx, rep, StateFailed, started, err)
			return nil, &errdefs.StorageWriteError{Op: "gold tables", Err: err}
		}
		rep.FactRows = int64(len(facts))
	}

	r.finish(ctx, rep, StateSucceeded, started, nil)
	return rep, nil
}

// ValidateOnly runs the data-quality checks over the persisted layers,
// journaled as its own run.
func (r *Runner) ValidateOnly(ctx context.Context) ([]validate.Result, error) {
	rep := &Report{RunID: uuid.New(), Mode: "validate"}
	started := r.now().UTC()
	if err := r.store.CreateRun(ctx, rep.RunID, rep.Mode, string(StateValidating), started); err != nil {
		return nil, &errdefs.StorageWriteError{Op: "run journal", Err: err}
	}
	ctx = logging.WithRunID(ctx, rep.RunID.String())
	log := logging.FromContext(ctx)

	raw, err := r.store.FetchRaw(ctx)
	if err != nil {
		r.finish(ctx, rep, StateFailed, started, err)
		return nil, &errdefs.StorageWriteError{Op: "raw table", Err: err}
	}
	silver, err := r.store.FetchSilver(ctx)
	if err != nil {
		r.finish(ctx, rep, StateFailed, started, err)
		return nil, &errdefs.StorageWriteError{Op: "silver table", Err: err}
	}
	facts, err := r.store.FetchFact(ctx)
	if err != nil {
		r.finish(ctx, rep, StateFailed, started, err)
		return nil, &errdefs.StorageWriteError{Op: "fact table", Err: err}
	}

	rep.RawRows = int64(len(raw))
	rep.SilverRows = int64(len(silver))
	rep.FactRows = int64(len(facts))

	results := validate.Run(validate.Snapshot{Raw: raw, Silver: silver, Fact: facts})
	for _, res := range results {
		if res.Passed() {
			log.Info(res.String())
		} else {
			log.Error(res.String())
		}
	}
	if failed := validate.Failures(results); len(failed) > 0 {
		err := &errdefs.ValidationFailure{Failed: failed}
		r.finish(ctx, rep, StateFailed, started, err)
		return results, err
	}
	r.finish(ctx, rep, StateSucceeded, started, nil)
	return results, nil
}
