package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lowir/internal/ir"
)

func loadOne(t *testing.T, path string) *ir.LinearIR {
	t.Helper()
	res, errs := LoadUnits(path, LoadModeFailFast)
	require.Empty(t, errs)
	require.Len(t, res.Units, 1)
	return res.Units[0].Unit
}

func TestPrint_Text(t *testing.T) {
	unit := loadOne(t, unitPath("loop_unit.yaml"))
	fp, err := ir.Fingerprint(unit)
	require.NoError(t, err)

	out, err := execute(t, NewPrintCommand(&RootOptions{Format: "text"}), unitPath("loop_unit.yaml"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "unit loop_unit (ir 1.2.0)\n"), out)
	assert.Contains(t, out, "loop 0: work_amount=64 increment=8 inputs=1 outputs=1")
	assert.Contains(t, out, "fingerprint: "+fp+"\n")
}

func TestPrint_Canonical(t *testing.T) {
	unit := loadOne(t, unitPath("loop_unit.yaml"))
	want, err := ir.MarshalCanonical(ir.Snapshot(unit))
	require.NoError(t, err)

	out, err := execute(t, NewPrintCommand(&RootOptions{Format: "text"}), unitPath("loop_unit.yaml"), "--canonical")
	require.NoError(t, err)
	assert.Equal(t, string(want)+"\n", out)
}

func TestPrint_JSON(t *testing.T) {
	out, err := execute(t, NewPrintCommand(&RootOptions{Format: "json"}), unitPath("buffers.cue"))
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []PrintedUnit `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "buffers", resp.Data[0].Unit)
	assert.Equal(t, "split_offsets", resp.Data[1].Unit)
	assert.NotEqual(t, resp.Data[0].Fingerprint, resp.Data[1].Fingerprint)
	assert.NotEmpty(t, resp.Data[0].Snapshot)
}

func TestPrint_NotFound(t *testing.T) {
	_, err := execute(t, NewPrintCommand(&RootOptions{Format: "text"}), "/nonexistent.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
