package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenarioFixtures = filepath.Join("..", "harness", "testdata", "scenarios")

// scenarioWorkspace lays out units/ and scenarios/ in a temporary directory
// with one scenario validating loop_unit.yaml.
func scenarioWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	units := filepath.Join(root, "units")
	scenarios := filepath.Join(root, "scenarios")
	require.NoError(t, os.MkdirAll(units, 0755))
	require.NoError(t, os.MkdirAll(scenarios, 0755))

	data, err := os.ReadFile(unitPath("loop_unit.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(units, "loop_unit.yaml"), data, 0644))

	scenario := "name: loop_ok\ndescription: valid loop\nunit: ../units/loop_unit.yaml\nexpect:\n  valid: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(scenarios, "loop_ok.yaml"), []byte(scenario), 0644))
	return root
}

func TestTest_AllScenariosPass(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), scenarioFixtures)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ loop_increment_mismatch")
	assert.Contains(t, out, "✓ mixed_cluster")
	assert.Contains(t, out, "Results: 6 passed, 0 failed, 6 total")
}

func TestTest_Filter(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), scenarioFixtures, "--filter", "loop_*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Data.Total)
	for _, sr := range resp.Data.Scenarios {
		assert.Equal(t, "match", sr.Golden, sr.Name)
	}
}

func TestTest_InvalidFilter(t *testing.T) {
	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), scenarioFixtures, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_UpdateThenMatch(t *testing.T) {
	root := scenarioWorkspace(t)
	scenarios := filepath.Join(root, "scenarios")

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), scenarios, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ loop_ok (golden updated)")

	golden, err := os.ReadFile(filepath.Join(root, "golden", "loop_ok.golden"))
	require.NoError(t, err)
	assert.Equal(t, `{"diagnostics":[],"unit":"loop_unit","valid":true}`, string(golden))

	out, err = execute(t, NewTestCommand(&RootOptions{Format: "json"}), scenarios)
	require.NoError(t, err)
	assert.Contains(t, out, `"golden": "match"`)
}

func TestTest_GoldenMismatch(t *testing.T) {
	root := scenarioWorkspace(t)
	goldenDir := filepath.Join(root, "golden")
	require.NoError(t, os.MkdirAll(goldenDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(goldenDir, "loop_ok.golden"), []byte(`{"stale":true}`), 0644))

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), filepath.Join(root, "scenarios"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ loop_ok")
	assert.Contains(t, out, "do not match golden file")
	assert.Contains(t, out, "Results: 0 passed, 1 failed, 1 total")
}

func TestTest_MissingGoldenStillPasses(t *testing.T) {
	root := scenarioWorkspace(t)

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), filepath.Join(root, "scenarios"))
	require.NoError(t, err)
	assert.Contains(t, out, "Results: 1 passed, 0 failed, 1 total")
}

func TestTest_DirectoryNotFound(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}
