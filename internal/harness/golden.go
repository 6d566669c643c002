package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/lowir/internal/compiler"
	"github.com/roach88/lowir/internal/ir"
)

// RunWithGolden runs a scenario and compares its diagnostic snapshot with
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Expectation failures are reported through t; the returned error is for
// scenarios that could not be run.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	return AssertGolden(t, scenario.Name, result.Report)
}

// AssertGolden compares the canonical snapshot of res with the named golden
// file. Messages are not part of the snapshot.
func AssertGolden(t *testing.T, name string, res compiler.Result) error {
	t.Helper()

	data, err := SnapshotJSON(res)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}

// SnapshotJSON renders res as canonical JSON, the golden file format.
func SnapshotJSON(res compiler.Result) ([]byte, error) {
	return ir.MarshalCanonical(res.Snapshot())
}
