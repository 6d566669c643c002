package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lowir/internal/compiler"
	"github.com/roach88/lowir/internal/testutil"
)

func scenarioCResult() compiler.Result {
	return compiler.NewValidator().RunAll(testutil.MixedCluster())
}

func TestCheckExpectations_Match(t *testing.T) {
	errs := CheckExpectations(scenarioCResult(), Expectation{
		Valid:      false,
		Codes:      []string{"E232"},
		Absent:     []string{"E234"},
		ClusterIDs: []int{1},
	})
	assert.Empty(t, errs)
}

func TestCheckExpectations_ValidUnit(t *testing.T) {
	res := compiler.NewValidator().RunAll(testutil.MatchingLoop().IR)
	assert.Empty(t, CheckExpectations(res, Expectation{Valid: true, Absent: []string{"E222"}}))
}

func TestCheckExpectations_Mismatches(t *testing.T) {
	tests := []struct {
		name  string
		exp   Expectation
		field string
	}{
		{"valid", Expectation{Valid: true}, "valid"},
		{"missing code", Expectation{Codes: []string{"E234"}}, "codes"},
		{"absent code reported", Expectation{Absent: []string{"E230"}}, "absent"},
		{"loop id", Expectation{LoopIDs: []int{0}}, "loop_ids"},
		{"cluster id", Expectation{ClusterIDs: []int{0}}, "cluster_ids"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := CheckExpectations(scenarioCResult(), tt.exp)
			require.Len(t, errs, 1)
			var ee *ExpectationError
			require.ErrorAs(t, errs[0], &ee)
			assert.Equal(t, tt.field, ee.Field)
			assert.Len(t, ee.Report, 3)
		})
	}
}

func TestExpectationError_Error(t *testing.T) {
	err := &ExpectationError{
		Field:    "codes",
		Expected: "codes include [E222]",
		Actual:   "missing [E222] in []",
		Report:   []string{"[E230] #-1: count"},
	}
	want := "Expectation failed: codes\n" +
		"  Expected: codes include [E222]\n" +
		"  Actual: missing [E222] in []\n" +
		"\nDiagnostics:\n" +
		"  [1] [E230] #-1: count\n"
	assert.Equal(t, want, err.Error())
}
