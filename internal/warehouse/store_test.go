package warehouse

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/astomelio/data-engineer-challenge-2025/internal/tables"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.duckdb"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func rawRow(loanID string, seq int64) tables.RawLoan {
	return tables.RawLoan{
		LoanID:             loanID,
		CustomerID:         "C" + loanID,
		LoanStatus:         "Fully Paid",
		Term:               "Short Term",
		SourceFile:         "loans.xlsx",
		IngestionTimestamp: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		RowSeq:             seq,
	}
}

func TestReplaceRawIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	batch := []tables.RawLoan{rawRow("L1", 1), rawRow("L2", 2), rawRow("L3", 3)}

	// A second replace must replace, not union.
	for i := 0; i < 2; i++ {
		if err := s.ReplaceRaw(ctx, batch); err != nil {
			t.Fatalf("ReplaceRaw() #%d error: %v", i+1, err)
		}
	}

	n, err := s.RawCount(ctx)
	if err != nil {
		t.Fatalf("RawCount() error: %v", err)
	}
	if n != 3 {
		t.Errorf("raw count after double replace = %d, want 3", n)
	}

	rows, err := s.FetchRaw(ctx)
	if err != nil {
		t.Fatalf("FetchRaw() error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("fetched %d rows, want 3", len(rows))
	}
	for i, want := range []string{"L1", "L2", "L3"} {
		if rows[i].LoanID != want || rows[i].RowSeq != int64(i+1) {
			t.Errorf("row %d = %s/seq %d, want %s/seq %d", i, rows[i].LoanID, rows[i].RowSeq, want, i+1)
		}
	}
	if rows[0].CustomerID != "CL1" || rows[0].SourceFile != "loans.xlsx" {
		t.Errorf("row 0 content = %+v, want verbatim batch content", rows[0])
	}
}

func TestAppendRawAccumulates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AppendRaw(ctx, []tables.RawLoan{rawRow("L1", 1), rawRow("L2", 2)}); err != nil {
		t.Fatalf("AppendRaw() error: %v", err)
	}
	if err := s.AppendRaw(ctx, []tables.RawLoan{rawRow("L3", 3)}); err != nil {
		t.Fatalf("AppendRaw() error: %v", err)
	}

	n, err := s.RawCount(ctx)
	if err != nil {
		t.Fatalf("RawCount() error: %v", err)
	}
	if n != 3 {
		t.Errorf("raw count = %d, want 3 (sum of batches)", n)
	}

	// Re-appending the same loan produces a duplicate: the raw layer never
	// dedups, that is the silver transform's job.
	if err := s.AppendRaw(ctx, []tables.RawLoan{rawRow("L3", 4)}); err != nil {
		t.Fatalf("AppendRaw() error: %v", err)
	}
	n, err = s.RawCount(ctx)
	if err != nil {
		t.Fatalf("RawCount() error: %v", err)
	}
	if n != 4 {
		t.Errorf("raw count after re-append = %d, want 4", n)
	}
}

func TestNextRowSeq(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Missing table starts at 1.
	seq, err := s.NextRowSeq(ctx)
	if err != nil {
		t.Fatalf("NextRowSeq() error: %v", err)
	}
	if seq != 1 {
		t.Errorf("NextRowSeq() on missing table = %d, want 1", seq)
	}

	if err := s.AppendRaw(ctx, []tables.RawLoan{rawRow("L1", 1), rawRow("L2", 2)}); err != nil {
		t.Fatalf("AppendRaw() error: %v", err)
	}
	seq, err = s.NextRowSeq(ctx)
	if err != nil {
		t.Fatalf("NextRowSeq() error: %v", err)
	}
	if seq != 3 {
		t.Errorf("NextRowSeq() after seqs 1,2 = %d, want 3", seq)
	}

	// Empty but existing table starts at 1 again.
	if err := s.ReplaceRaw(ctx, nil); err != nil {
		t.Fatalf("ReplaceRaw() error: %v", err)
	}
	seq, err = s.NextRowSeq(ctx)
	if err != nil {
		t.Fatalf("NextRowSeq() error: %v", err)
	}
	if seq != 1 {
		t.Errorf("NextRowSeq() on empty table = %d, want 1", seq)
	}
}

func TestSilverRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows := []tables.CleanLoan{
		{
			LoanID:        "L2",
			CustomerID:    "C2",
			Term:          "Long Term",
			HomeOwnership: "Rent",
			PurposeName:   "Other",
		},
		{
			LoanID:            "L1",
			CustomerID:        "C1",
			LoanStatus:        sql.NullString{String: "Fully Paid", Valid: true},
			CurrentLoanAmount: sql.NullFloat64{Float64: 50000, Valid: true},
			Term:              "Short Term",
			CreditScore:       sql.NullInt64{Int64: 720, Valid: true},
			HomeOwnership:     "Mortgage",
			PurposeName:       "Debt Consolidation",
			Bankruptcies:      1,
		},
	}
	if err := s.WriteSilver(ctx, rows); err != nil {
		t.Fatalf("WriteSilver() error: %v", err)
	}

	got, err := s.FetchSilver(ctx)
	if err != nil {
		t.Fatalf("FetchSilver() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("fetched %d silver rows, want 2", len(got))
	}
	// Ordered by loan_id.
	if got[0].LoanID != "L1" || got[1].LoanID != "L2" {
		t.Errorf("order = %s, %s; want L1, L2", got[0].LoanID, got[1].LoanID)
	}
	if !got[0].CreditScore.Valid || got[0].CreditScore.Int64 != 720 {
		t.Errorf("L1 credit score = %+v, want 720", got[0].CreditScore)
	}
	if got[1].CreditScore.Valid {
		t.Errorf("L2 credit score = %+v, want NULL preserved", got[1].CreditScore)
	}
	if got[0].Bankruptcies != 1 || got[1].Bankruptcies != 0 {
		t.Errorf("bankruptcies = %d, %d; want 1, 0", got[0].Bankruptcies, got[1].Bankruptcies)
	}

	// Rebuild replaces, never appends.
	if err := s.WriteSilver(ctx, rows[:1]); err != nil {
		t.Fatalf("WriteSilver() rebuild error: %v", err)
	}
	n, err := s.SilverCount(ctx)
	if err != nil {
		t.Fatalf("SilverCount() error: %v", err)
	}
	if n != 1 {
		t.Errorf("silver count after rebuild = %d, want 1", n)
	}
}

func TestGoldRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	facts := []tables.FactLoan{
		{LoanID: "L1", CustomerID: "C1", PurposeID: sql.NullInt64{Int64: 1, Valid: true}},
		{LoanID: "L2", CustomerID: "C2"}, // join miss: NULL purpose_id
	}
	customers := []tables.DimCustomer{
		{CustomerID: "C1", JobTenureYears: sql.NullInt64{Int64: 10, Valid: true}, HomeOwnership: "Rent"},
		{CustomerID: "C2", HomeOwnership: "Other"},
	}
	purposes := []tables.DimPurpose{{PurposeID: 1, PurposeName: "Other"}}

	if err := s.WriteGold(ctx, facts, customers, purposes); err != nil {
		t.Fatalf("WriteGold() error: %v", err)
	}

	got, err := s.FetchFact(ctx)
	if err != nil {
		t.Fatalf("FetchFact() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("fetched %d fact rows, want 2", len(got))
	}
	if !got[0].PurposeID.Valid || got[0].PurposeID.Int64 != 1 {
		t.Errorf("L1 purpose_id = %+v, want 1", got[0].PurposeID)
	}
	if got[1].PurposeID.Valid {
		t.Errorf("L2 purpose_id = %+v, want NULL join miss preserved", got[1].PurposeID)
	}

	n, err := s.FactCount(ctx)
	if err != nil {
		t.Fatalf("FactCount() error: %v", err)
	}
	if n != 2 {
		t.Errorf("fact count = %d, want 2", n)
	}

	// Rebuild replaces all three tables.
	if err := s.WriteGold(ctx, facts[:1], customers[:1], purposes); err != nil {
		t.Fatalf("WriteGold() rebuild error: %v", err)
	}
	n, err = s.FactCount(ctx)
	if err != nil {
		t.Fatalf("FactCount() error: %v", err)
	}
	if n != 1 {
		t.Errorf("fact count after rebuild = %d, want 1", n)
	}
}

func TestCountsAndFetchesOnMissingTables(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for name, count := range map[string]func(context.Context) (int64, error){
		"RawCount":    s.RawCount,
		"SilverCount": s.SilverCount,
		"FactCount":   s.FactCount,
	} {
		n, err := count(ctx)
		if err != nil {
			t.Errorf("%s() on fresh store error: %v", name, err)
		}
		if n != 0 {
			t.Errorf("%s() on fresh store = %d, want 0", name, n)
		}
	}

	if rows, err := s.FetchRaw(ctx); err != nil || rows != nil {
		t.Errorf("FetchRaw() on fresh store = %v, %v; want nil, nil", rows, err)
	}
	if rows, err := s.FetchSilver(ctx); err != nil || rows != nil {
		t.Errorf("FetchSilver() on fresh store = %v, %v; want nil, nil", rows, err)
	}
	if rows, err := s.FetchFact(ctx); err != nil || rows != nil {
		t.Errorf("FetchFact() on fresh store = %v, %v; want nil, nil", rows, err)
	}
}

func TestRunJournal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Empty journal reads as no last run.
	rec, err := s.LastRun(ctx)
	if err != nil {
		t.Fatalf("LastRun() on fresh store error: %v", err)
	}
	if rec != nil {
		t.Fatalf("LastRun() on fresh store = %+v, want nil", rec)
	}

	first := uuid.New()
	started := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	if err := s.CreateRun(ctx, first, "full_refresh", "PENDING", started); err != nil {
		t.Fatalf("CreateRun() error: %v", err)
	}
	if err := s.UpdateRunState(ctx, first, "INGESTING"); err != nil {
		t.Fatalf("UpdateRunState() error: %v", err)
	}
	if err := s.FinishRun(ctx, RunRecord{
		ID:         first,
		State:      "SUCCEEDED",
		StartedAt:  started,
		FinishedAt: sql.NullTime{Time: started.Add(time.Minute), Valid: true},
		RawHash:    sql.NullString{String: "abc123", Valid: true},
		RawRows:    sql.NullInt64{Int64: 5, Valid: true},
		SilverRows: sql.NullInt64{Int64: 4, Valid: true},
		FactRows:   sql.NullInt64{Int64: 4, Valid: true},
	}); err != nil {
		t.Fatalf("FinishRun() error: %v", err)
	}

	rec, err = s.LastRun(ctx)
	if err != nil {
		t.Fatalf("LastRun() error: %v", err)
	}
	if rec == nil || rec.ID != first {
		t.Fatalf("LastRun() = %+v, want run %s", rec, first)
	}
	if rec.State != "SUCCEEDED" || !rec.FinishedAt.Valid {
		t.Errorf("finished run = state %s, finished %v; want SUCCEEDED with timestamp", rec.State, rec.FinishedAt.Valid)
	}
	if !rec.RawHash.Valid || rec.RawHash.String != "abc123" {
		t.Errorf("raw hash = %+v, want abc123", rec.RawHash)
	}
	if rec.RawRows.Int64 != 5 || rec.SilverRows.Int64 != 4 || rec.FactRows.Int64 != 4 {
		t.Errorf("counters = %d/%d/%d, want 5/4/4", rec.RawRows.Int64, rec.SilverRows.Int64, rec.FactRows.Int64)
	}

	// A later run becomes the last run even while still in flight.
	second := uuid.New()
	if err := s.CreateRun(ctx, second, "incremental", "PENDING", started.Add(time.Hour)); err != nil {
		t.Fatalf("CreateRun() error: %v", err)
	}
	rec, err = s.LastRun(ctx)
	if err != nil {
		t.Fatalf("LastRun() error: %v", err)
	}
	if rec == nil || rec.ID != second {
		t.Fatalf("LastRun() after second run = %+v, want run %s", rec, second)
	}
	if rec.Mode != "incremental" || rec.State != "PENDING" {
		t.Errorf("second run = %s/%s, want incremental/PENDING", rec.Mode, rec.State)
	}
	if rec.FinishedAt.Valid {
		t.Error("in-flight run has a finished timestamp")
	}
}
