package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/lowir/internal/ir"
)

// createTestStore opens a fresh store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a valid run with no diagnostics.
func createTestRun(id, unit string, seq int64) ir.RunRecord {
	return ir.RunRecord{
		ID:          id,
		Unit:        unit,
		Fingerprint: "fp-" + unit,
		IRVersion:   ir.IRVersion,
		Valid:       true,
		Seq:         seq,
		Diagnostics: []ir.DiagnosticRecord{},
	}
}

func intp(n int) *int { return &n }
