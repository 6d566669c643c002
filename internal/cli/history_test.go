package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lowir/internal/ir"
	"github.com/roach88/lowir/internal/store"
)

// recordHistory validates loop_unit and loop_unit_b into a fresh database.
func recordHistory(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "history.db")
	dir := copyUnits(t, "loop_unit.yaml", "loop_unit_b.yaml")
	_, err := runValidateCmd(t, "text", dir, "--db", db)
	require.Equal(t, ExitFailure, GetExitCode(err))
	return db
}

func runHistoryCmd(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	return execute(t, NewHistoryCommand(opts), args...)
}

func TestHistory_Text(t *testing.T) {
	db := recordHistory(t)

	out, err := runHistoryCmd(t, &RootOptions{Format: "text"}, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "loop_unit_b")
	assert.Contains(t, out, "invalid (1)")
	assert.Contains(t, out, "  valid\n")
}

func TestHistory_Verbose(t *testing.T) {
	db := recordHistory(t)

	out, err := runHistoryCmd(t, &RootOptions{Format: "text", Verbose: true}, "--db", db, "--unit", "loop_unit_b")
	require.NoError(t, err)
	assert.Contains(t, out, "[E222] E#4:")
}

func TestHistory_JSON(t *testing.T) {
	db := recordHistory(t)

	out, err := runHistoryCmd(t, &RootOptions{Format: "json"}, "--db", db)
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   []ir.RunRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, int64(2), resp.Data[0].Seq)
	assert.Equal(t, "loop_unit_b", resp.Data[0].Unit)
	assert.False(t, resp.Data[0].Valid)
	require.Len(t, resp.Data[0].Diagnostics, 1)
	assert.Equal(t, "E222", resp.Data[0].Diagnostics[0].Code)
	assert.Equal(t, int64(1), resp.Data[1].Seq)
	assert.True(t, resp.Data[1].Valid)
}

func TestHistory_Filters(t *testing.T) {
	db := recordHistory(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unit", []string{"--unit", "loop_unit"}, 1},
		{"unknown unit", []string{"--unit", "missing"}, 0},
		{"limit", []string{"--limit", "1"}, 1},
		{"all", []string{"--limit", "0"}, 2},
		{"code", []string{"--code", "E222"}, 1},
		{"code not raised", []string{"--code", "E230"}, 0},
		{"invalid", []string{"--invalid"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--db", db}, tt.args...)
			out, err := runHistoryCmd(t, &RootOptions{Format: "json"}, args...)
			require.NoError(t, err)

			var resp struct {
				Data []ir.RunRecord `json:"data"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Len(t, resp.Data, tt.want)
		})
	}
}

func TestHistory_InvalidCode(t *testing.T) {
	db := recordHistory(t)

	out, err := runHistoryCmd(t, &RootOptions{Format: "text"}, "--db", db, "--code", "222")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E009]")
	assert.Contains(t, out, "invalid diagnostic code")
}

func TestHistory_Empty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := runHistoryCmd(t, &RootOptions{Format: "text"}, "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", out)
}

func TestHistory_MissingDatabase(t *testing.T) {
	out, err := runHistoryCmd(t, &RootOptions{Format: "text"}, "--db", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestHistory_RequiresDB(t *testing.T) {
	_, err := runHistoryCmd(t, &RootOptions{Format: "text"})
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestShortFingerprint(t *testing.T) {
	assert.Equal(t, "abc", shortFingerprint("abc"))
	assert.Equal(t, "0123456789ab", shortFingerprint("0123456789abcdef"))
}
