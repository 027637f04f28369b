package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFormFiles(t *testing.T) (dir string, paths []string) {
	t.Helper()
	dir = t.TempDir()
	for _, rel := range []string{"account/main.xml", "contact/quick/main.xml"} {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(testFormXML), 0o644))
		paths = append(paths, p)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a form"), 0o644))
	return dir, paths
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestPatch_UpsertHandler(t *testing.T) {
	dir, paths := writeFormFiles(t)
	opts := &RootOptions{Format: "text"}

	out, err := runCommand(t, NewPatchCommand(opts), filepath.Join(dir, "**", "*.xml"),
		"--library", "new_/account.js", "--function", "Account.onLoad")
	require.NoError(t, err)
	assert.Contains(t, out, "Patched 2 of 2 file(s).")

	first := make([]string, len(paths))
	for i, p := range paths {
		first[i] = readFile(t, p)
		assert.Contains(t, first[i], `<Library name="new_/account.js"`)
		assert.Contains(t, first[i], `functionName="Account.onLoad"`)
	}
	assert.Equal(t, "not a form", readFile(t, filepath.Join(dir, "notes.txt")))

	out, err = runCommand(t, NewPatchCommand(opts), filepath.Join(dir, "**", "*.xml"),
		"--library", "new_/account.js", "--function", "Account.onLoad")
	require.NoError(t, err)
	assert.Contains(t, out, "Patched 0 of 2 file(s).")
	for i, p := range paths {
		assert.Equal(t, first[i], readFile(t, p))
	}
}

func TestPatch_LeavesHandFormattedBoundFileAlone(t *testing.T) {
	bound := `<form>
  <tabs></tabs>
  <formLibraries><Library name='lib.js' libraryUniqueId='{L}'/></formLibraries>
  <events><event name='onload' application='false' active='false'><Handlers>
    <Handler functionName='fn' libraryName='lib.js' handlerUniqueId='{H}' enabled='true' parameters='' passExecutionContext='true'/>
  </Handlers></event></events>
</form>
`
	path := filepath.Join(t.TempDir(), "main.xml")
	require.NoError(t, os.WriteFile(path, []byte(bound), 0o644))
	opts := &RootOptions{Format: "text"}

	out, err := runCommand(t, NewPatchCommand(opts), path, "--library", "lib.js", "--function", "fn")
	require.NoError(t, err)
	assert.Contains(t, out, "Patched 0 of 1 file(s).")
	assert.Equal(t, bound, readFile(t, path))
}

func TestPatch_DryRun(t *testing.T) {
	dir, paths := writeFormFiles(t)
	opts := &RootOptions{Format: "text"}

	out, err := runCommand(t, NewPatchCommand(opts), filepath.Join(dir, "account", "*.xml"),
		"--library", "new_/common.js", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "--- "+paths[0])
	assert.Contains(t, out, "Would patch 1 of 1 file(s).")
	assert.Equal(t, testFormXML, readFile(t, paths[0]))
}

func TestPatch_RemoveLibrary(t *testing.T) {
	dir, paths := writeFormFiles(t)
	opts := &RootOptions{Format: "text"}
	glob := filepath.Join(dir, "**", "*.xml")

	_, err := runCommand(t, NewPatchCommand(opts), glob, "--library", "new_/legacy.js", "--function", "Legacy.onLoad")
	require.NoError(t, err)

	out, err := runCommand(t, NewPatchCommand(opts), glob, "--library", "new_/legacy.js", "--remove")
	require.NoError(t, err)
	assert.Contains(t, out, "Patched 2 of 2 file(s).")
	for _, p := range paths {
		assert.NotContains(t, readFile(t, p), "new_/legacy.js")
	}
}

func TestPatch_NoMatches(t *testing.T) {
	opts := &RootOptions{Format: "text"}
	out, err := runCommand(t, NewPatchCommand(opts), filepath.Join(t.TempDir(), "*.xml"), "--library", "a.js")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E003")
}

func TestPatch_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.xml")
	require.NoError(t, os.WriteFile(path, []byte("<form><tabs></form>"), 0o644))

	out, err := runCommand(t, NewPatchCommand(&RootOptions{Format: "text"}), path, "--library", "a.js")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E103")
}

func TestPatch_RequiresLibrary(t *testing.T) {
	_, err := runCommand(t, NewPatchCommand(&RootOptions{Format: "text"}), "*.xml")
	require.Error(t, err)
}
