package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/formscript/internal/forms"
	"github.com/roach88/formscript/internal/manifest"
	"github.com/roach88/formscript/internal/xmltree"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]int{"forms": 2}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeMissingStructure, "form element missing", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E102", resp.Error.Code)
	assert.Equal(t, "form element missing", resp.Error.Message)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Error("E001", "publish failed", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E001]")
	assert.Contains(t, buf.String(), "publish failed")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"form": "Account"}
	err := formatter.Error("E001", "publish failed", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			errOut := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: errOut,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Applying %s", "account.cue")

			assert.Empty(t, out.String())
			if tt.wantLog {
				assert.Contains(t, errOut.String(), "Applying account.cue")
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	cause := xmltree.InvalidArgument("library", "library needs to have a non-empty value")
	err := formatter.Fail(ExitFailure, "add failed", cause)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitFailure, exitErr.Code)
	assert.Equal(t, ErrCodeInvalidArgument, exitErr.ErrCode)
	assert.True(t, exitErr.reported)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, buf.String(), "Error [E101]: add failed")
}

func TestOutputFormatter_Reject(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Reject(ExitCommandError, ErrCodeNoFiles, "no files match *.xml")

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeNoFiles, ErrorCodeFor(err))
	assert.Contains(t, buf.String(), "Error [E003]: no files match *.xml")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitFailure, "x"))))
}

func TestErrorCodeFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{"invalid argument", xmltree.InvalidArgument("library", "empty"), ErrCodeInvalidArgument, ExitFailure},
		{"missing structure", fmt.Errorf("edit form: %w", xmltree.MissingStructure("form")), ErrCodeMissingStructure, ExitFailure},
		{"version conflict", fmt.Errorf("update: %w", forms.ErrVersionConflict), ErrCodeVersionConflict, ExitFailure},
		{"form not found", fmt.Errorf("get: %w", forms.ErrFormNotFound), ErrCodeNotFound, ExitCommandError},
		{"invalid query", forms.ErrInvalidQuery, ErrCodeInvalidInput, ExitCommandError},
		{"manifest", &manifest.LoadError{Path: "a.cue", Message: "entity is required"}, ErrCodeLoadFailed, ExitCommandError},
		{"loader", &LoadError{Code: ErrCodeNoFiles, Message: "none"}, ErrCodeNoFiles, ExitCommandError},
		{"generic", errors.New("disk on fire"), ErrCodeGeneric, ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, ErrorCodeFor(tt.err))
			assert.Equal(t, tt.wantExit, exitCodeFor(tt.err))
		})
	}
	assert.Empty(t, ErrorCodeFor(nil))
}
