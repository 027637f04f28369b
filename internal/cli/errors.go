package cli

import (
	"errors"

	"github.com/roach88/formscript/internal/forms"
	"github.com/roach88/formscript/internal/manifest"
	"github.com/roach88/formscript/internal/xmltree"
)

// Error code constants, shared by all commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeScanError    = "E002" // Directory or glob scan error
	ErrCodeNoFiles      = "E003" // No matching files
	ErrCodeLoadFailed   = "E004" // Manifest or scenario failed to load
	ErrCodeNotFound     = "E005" // Path or form not found
	ErrCodeStoreFailed  = "E006" // Database error
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeInvalidInput = "E008" // Bad command-line argument

	// Form XML errors
	ErrCodeInvalidArgument  = "E101" // Blank library, function or form XML
	ErrCodeMissingStructure = "E102" // Form XML has no <form> root
	ErrCodeMalformed        = "E103" // Form XML does not parse
	ErrCodeVersionConflict  = "E104" // Form changed concurrently

	ErrCodeTestFailed = "E_TEST_FAILED"
)

// ErrorCodeFor maps an error to its user-facing code.
func ErrorCodeFor(err error) string {
	var (
		exitErr    *ExitError
		cliLoadErr *LoadError
		loadErr    *manifest.LoadError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &exitErr) && exitErr.ErrCode != "":
		return exitErr.ErrCode
	case errors.As(err, &cliLoadErr):
		return cliLoadErr.Code
	case xmltree.IsInvalidArgument(err):
		return ErrCodeInvalidArgument
	case xmltree.IsMissingStructure(err):
		return ErrCodeMissingStructure
	case xmltree.IsMalformed(err):
		return ErrCodeMalformed
	case errors.Is(err, forms.ErrVersionConflict):
		return ErrCodeVersionConflict
	case errors.Is(err, forms.ErrFormNotFound):
		return ErrCodeNotFound
	case errors.Is(err, forms.ErrInvalidQuery):
		return ErrCodeInvalidInput
	case errors.As(err, &loadErr):
		return ErrCodeLoadFailed
	default:
		return ErrCodeGeneric
	}
}

// exitCodeFor returns ExitFailure for rejected edits and ExitCommandError
// for everything else. An ExitError keeps its own code.
func exitCodeFor(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	switch ErrorCodeFor(err) {
	case ErrCodeInvalidArgument, ErrCodeMissingStructure, ErrCodeMalformed, ErrCodeVersionConflict:
		return ExitFailure
	default:
		return ExitCommandError
	}
}
