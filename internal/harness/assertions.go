package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/lowir/internal/compiler"
)

// ExpectationError describes one expectation that did not hold.
type ExpectationError struct {
	Field    string   // Expectation field: valid, codes, absent, loop_ids, cluster_ids
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Report   []string // Rendered diagnostics for context
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Expectation failed: %s\n", e.Field)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Report) > 0 {
		fmt.Fprintf(&buf, "\nDiagnostics:\n")
		for i, d := range e.Report {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, d)
		}
	}
	return buf.String()
}

// CheckExpectations matches res against exp and returns every mismatch.
func CheckExpectations(res compiler.Result, exp Expectation) []error {
	report := make([]string, len(res.Errors))
	for i, e := range res.Errors {
		report[i] = e.Error()
	}

	var errs []error
	fail := func(field, expected, actual string) {
		errs = append(errs, &ExpectationError{Field: field, Expected: expected, Actual: actual, Report: report})
	}

	if res.Valid() != exp.Valid {
		fail("valid", fmt.Sprintf("valid=%t", exp.Valid), fmt.Sprintf("valid=%t", res.Valid()))
	}

	codes := res.Codes()
	if missing := missingStrings(exp.Codes, codes); len(missing) > 0 {
		fail("codes", fmt.Sprintf("codes include %v", exp.Codes), fmt.Sprintf("missing %v in %v", missing, codes))
	}
	for _, c := range exp.Absent {
		if res.HasCode(c) {
			fail("absent", fmt.Sprintf("no %s diagnostic", c), fmt.Sprintf("%s reported", c))
		}
	}

	if missing := missingInts(exp.LoopIDs, loopIDs(res)); len(missing) > 0 {
		fail("loop_ids", fmt.Sprintf("diagnostics for loops %v", exp.LoopIDs), fmt.Sprintf("none for %v", missing))
	}
	if missing := missingInts(exp.ClusterIDs, clusterIDs(res)); len(missing) > 0 {
		fail("cluster_ids", fmt.Sprintf("diagnostics for clusters %v", exp.ClusterIDs), fmt.Sprintf("none for %v", missing))
	}
	return errs
}

func loopIDs(res compiler.Result) []int {
	var ids []int
	for _, e := range res.Errors {
		if e.LoopID != nil {
			ids = append(ids, *e.LoopID)
		}
	}
	return ids
}

func clusterIDs(res compiler.Result) []int {
	var ids []int
	for _, e := range res.Errors {
		if e.ClusterID != nil {
			ids = append(ids, *e.ClusterID)
		}
	}
	return ids
}

// missingStrings returns the elements of want absent from got.
func missingStrings(want, got []string) []string {
	var missing []string
	for _, w := range want {
		if !slices.Contains(got, w) {
			missing = append(missing, w)
		}
	}
	return missing
}

func missingInts(want, got []int) []int {
	var missing []int
	for _, w := range want {
		if !slices.Contains(got, w) {
			missing = append(missing, w)
		}
	}
	return missing
}
