package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: add-handler
description: Registers one handler
form: '<form><tabs /></form>'
ids: ["{lib-1}", "{handler-1}"]
steps:
  - op: upsert_handler
    event: onload
    library: new_/account.js
    function: Account.onLoad
assertions:
  - type: handler_count
    event: onload
    count: 1
`

const failingScenario = `name: wrong-count
description: Expects two libraries after registering one
form: '<form><tabs /></form>'
steps:
  - op: upsert_library
    library: new_/account.js
assertions:
  - type: library_count
    count: 2
`

func writeScenario(t *testing.T, dir, name, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
}

func TestTestCommand_PassAndGolden(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "add-handler.yaml", passingScenario)
	opts := &RootOptions{Format: "text"}

	out, err := runCommand(t, NewTestCommand(opts), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ add-handler")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")

	out, err = runCommand(t, NewTestCommand(opts), dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "golden updated")
	golden := readFile(t, filepath.Join(dir, "golden", "add-handler.golden"))
	assert.Contains(t, golden, "step 1 upsert_handler changed published")
	assert.Contains(t, golden, `handlerUniqueId="{handler-1}"`)

	_, err = runCommand(t, NewTestCommand(opts), dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "add-handler.golden"), []byte("stale\n"), 0o644))
	out, err = runCommand(t, NewTestCommand(opts), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "golden file mismatch")
}

func TestTestCommand_Failure(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "add-handler.yaml", passingScenario)
	writeScenario(t, dir, "wrong-count.yaml", failingScenario)

	out, err := runCommand(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong-count")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
}

func TestTestCommand_Filter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "add-handler.yaml", passingScenario)
	writeScenario(t, dir, "wrong-count.yaml", failingScenario)

	out, err := runCommand(t, NewTestCommand(&RootOptions{Format: "text"}), dir, "--filter", "add-*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, err := runCommand(t, NewTestCommand(&RootOptions{Format: "text"}), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_Empty(t *testing.T) {
	out, err := runCommand(t, NewTestCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}
