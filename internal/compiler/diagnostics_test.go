package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lowir/internal/ir"
	"github.com/roach88/lowir/internal/testutil"
)

func TestCategoryOf(t *testing.T) {
	tests := map[string]Category{
		ErrInvalidRange:      CategoryStructure,
		ErrSelfCheck:         CategoryStructure,
		ErrLayoutLength:      CategoryPort,
		ErrLayoutIndex:       CategoryPort,
		ErrShapeExtent:       CategoryPort,
		ErrParameterConsumer: CategoryBoundary,
		ErrMissingConnector:  CategoryBoundary,
		ErrNoLoopBegin:       CategoryLoop,
		ErrLoopArraysShort:   CategoryLoop,
		ErrClusterCount:      CategoryBuffer,
		ErrClusterOffset:     CategoryBuffer,
	}
	for code, want := range tests {
		assert.Equal(t, want, CategoryOf(code), code)
	}
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Code: ErrClusterDensity, Message: "cluster ids are not dense", Index: -1}
	assert.Equal(t, "[E231] cluster ids are not dense", e.Error())

	e.Expected, e.Actual = "0..1", "[0 2]"
	assert.Equal(t, "[E231] cluster ids are not dense (expected 0..1, got [0 2])", e.Error())

	e.Expr, e.Index = "B1", 3
	assert.Equal(t, "[E231] B1#3: cluster ids are not dense (expected 0..1, got [0 2])", e.Error())
}

func TestResult_ErrWrapsDiagnostics(t *testing.T) {
	res := NewValidator().RunAll(testutil.MismatchedIncrement().IR)

	err := res.Err()
	require.Error(t, err)

	var failure *ValidationFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "loop_unit", failure.Unit)

	var ve ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, ErrLoopBounds, ve.Code)

	assert.Contains(t, err.Error(), "unit loop_unit: [E222]")
}

func TestResult_ErrMultiple(t *testing.T) {
	res := NewValidator().RunAll(testutil.MixedCluster())
	assert.Contains(t, res.Err().Error(), "3 validation errors, first: [E230]")
}

func TestResult_HasCode(t *testing.T) {
	res := NewValidator().RunAll(testutil.MixedCluster())
	assert.True(t, res.HasCode(ErrClusterMixed))
	assert.False(t, res.HasCode(ErrLoopBounds))
}

func TestResult_CodesDeduplicated(t *testing.T) {
	res := Result{Errors: []ValidationError{
		{Code: ErrLoopBounds}, {Code: ErrLoopPortShift}, {Code: ErrLoopBounds},
	}}
	assert.Equal(t, []string{ErrLoopBounds, ErrLoopPortShift}, res.Codes())
}

func TestResult_Record(t *testing.T) {
	res := NewValidator().RunAll(testutil.MismatchedIncrement().IR)
	rec := res.Record("run-1", "abc", ir.IRVersion, 7)

	assert.Equal(t, "run-1", rec.ID)
	assert.Equal(t, "loop_unit", rec.Unit)
	assert.False(t, rec.Valid)
	assert.Equal(t, int64(7), rec.Seq)
	require.Len(t, rec.Diagnostics, 1)
	d := rec.Diagnostics[0]
	assert.Equal(t, ErrLoopBounds, d.Code)
	assert.Equal(t, "loop", d.Category)
	assert.Equal(t, 4, d.ExprIndex)
	require.NotNil(t, d.LoopID)
	assert.Equal(t, 0, *d.LoopID)
	assert.Nil(t, d.ClusterID)
}

func TestResult_Snapshot(t *testing.T) {
	res := NewValidator().RunAll(testutil.MixedCluster())
	raw, err := ir.MarshalCanonical(res.Snapshot())
	require.NoError(t, err)
	assert.Equal(t,
		`{"diagnostics":[{"code":"E230","index":-1},{"cluster_id":1,"code":"E231","index":-1},{"cluster_id":1,"code":"E232","expr":"B1","index":1}],"unit":"buffers","valid":false}`,
		string(raw))
}
