package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/lowir/internal/ir"
)

func TestReadRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := createTestRun("run-0001", "buffers", 3)
	rec.Valid = false
	rec.Diagnostics = []ir.DiagnosticRecord{
		{Code: "E230", Category: "buffer", Message: "cluster count", ExprIndex: -1, Expected: "2", Actual: "3"},
		{Code: "E231", Category: "buffer", Message: "ids not dense", ExprIndex: -1, ClusterID: intp(5)},
		{Code: "E224", Category: "loop", Message: "shift", Expr: "E", ExprIndex: 4, LoopID: intp(0)},
	}
	if err := s.WriteRun(ctx, rec); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	got, err := s.ReadRun(ctx, "run-0001")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if got.ID != rec.ID || got.Unit != rec.Unit || got.Fingerprint != rec.Fingerprint {
		t.Errorf("header mismatch: %+v", got)
	}
	if got.Valid {
		t.Error("valid = true, want false")
	}
	if got.Seq != 3 {
		t.Errorf("seq = %d, want 3", got.Seq)
	}
	if len(got.Diagnostics) != 3 {
		t.Fatalf("diagnostics = %d, want 3", len(got.Diagnostics))
	}

	// Report order is preserved.
	codes := []string{got.Diagnostics[0].Code, got.Diagnostics[1].Code, got.Diagnostics[2].Code}
	want := []string{"E230", "E231", "E224"}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("diagnostic[%d].Code = %q, want %q", i, codes[i], want[i])
		}
	}

	if got.Diagnostics[0].LoopID != nil || got.Diagnostics[0].ClusterID != nil {
		t.Error("diagnostic[0] should carry no loop or cluster id")
	}
	if got.Diagnostics[0].Expected != "2" || got.Diagnostics[0].Actual != "3" {
		t.Errorf("diagnostic[0] expected/actual = %q/%q", got.Diagnostics[0].Expected, got.Diagnostics[0].Actual)
	}
	if c := got.Diagnostics[1].ClusterID; c == nil || *c != 5 {
		t.Errorf("diagnostic[1].ClusterID = %v, want 5", c)
	}
	if l := got.Diagnostics[2].LoopID; l == nil || *l != 0 {
		t.Errorf("diagnostic[2].LoopID = %v, want 0", l)
	}
	if got.Diagnostics[2].Expr != "E" || got.Diagnostics[2].ExprIndex != 4 {
		t.Errorf("diagnostic[2] expr = %q#%d", got.Diagnostics[2].Expr, got.Diagnostics[2].ExprIndex)
	}
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadRun() error = %v, want ErrNotFound", err)
	}
}

func TestListRuns_OrderAndFilter(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	runs := []ir.RunRecord{
		createTestRun("run-0001", "loop_unit", 1),
		createTestRun("run-0002", "buffers", 2),
		createTestRun("run-0003", "loop_unit", 3),
		createTestRun("run-0004", "loop_unit", 3),
	}
	runs[1].Valid = false
	runs[1].Diagnostics = []ir.DiagnosticRecord{
		{Code: "E230", Category: "buffer", Message: "cluster mixes static and dynamic buffers", ExprIndex: -1},
	}
	for _, r := range runs {
		if err := s.WriteRun(ctx, r); err != nil {
			t.Fatalf("WriteRun(%s) failed: %v", r.ID, err)
		}
	}

	tests := []struct {
		name   string
		filter RunFilter
		want   []string
	}{
		{"all newest first", RunFilter{}, []string{"run-0004", "run-0003", "run-0002", "run-0001"}},
		{"by unit", RunFilter{Unit: "loop_unit"}, []string{"run-0004", "run-0003", "run-0001"}},
		{"by fingerprint", RunFilter{Fingerprint: "fp-buffers"}, []string{"run-0002"}},
		{"limit", RunFilter{Unit: "loop_unit", Limit: 2}, []string{"run-0004", "run-0003"}},
		{"no match", RunFilter{Unit: "nope"}, []string{}},
		{"by code", RunFilter{Code: "E230"}, []string{"run-0002"}},
		{"code not raised", RunFilter{Code: "E222"}, []string{}},
		{"invalid only", RunFilter{InvalidOnly: true}, []string{"run-0002"}},
		{"unit and code", RunFilter{Unit: "loop_unit", Code: "E230"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListRuns(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListRuns() failed: %v", err)
			}
			if got == nil {
				t.Fatal("ListRuns() returned nil, want empty slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ListRuns() = %d runs, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("runs[%d] = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestListRuns_InvalidCode(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ListRuns(context.Background(), RunFilter{Code: "bogus"})
	if err == nil {
		t.Fatal("ListRuns() with invalid code succeeded, want error")
	}
}

func TestLatestRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.LatestRun(ctx, "loop_unit"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LatestRun() on empty store error = %v, want ErrNotFound", err)
	}

	for _, r := range []ir.RunRecord{
		createTestRun("run-0001", "loop_unit", 1),
		createTestRun("run-0002", "loop_unit", 2),
		createTestRun("run-0003", "buffers", 3),
	} {
		if err := s.WriteRun(ctx, r); err != nil {
			t.Fatalf("WriteRun() failed: %v", err)
		}
	}

	got, err := s.LatestRun(ctx, "loop_unit")
	if err != nil {
		t.Fatalf("LatestRun() failed: %v", err)
	}
	if got.ID != "run-0002" {
		t.Errorf("LatestRun() = %q, want run-0002", got.ID)
	}
}

func TestMaxSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.MaxSeq(ctx)
	if err != nil {
		t.Fatalf("MaxSeq() failed: %v", err)
	}
	if seq != 0 {
		t.Errorf("MaxSeq() on empty store = %d, want 0", seq)
	}

	for _, r := range []ir.RunRecord{
		createTestRun("run-0001", "a", 7),
		createTestRun("run-0002", "b", 3),
	} {
		if err := s.WriteRun(ctx, r); err != nil {
			t.Fatalf("WriteRun() failed: %v", err)
		}
	}

	seq, err = s.MaxSeq(ctx)
	if err != nil {
		t.Fatalf("MaxSeq() failed: %v", err)
	}
	if seq != 7 {
		t.Errorf("MaxSeq() = %d, want 7", seq)
	}
}
