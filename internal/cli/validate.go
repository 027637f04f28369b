package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Manifests int               `json:"manifests"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

// ValidationError is one manifest that failed to load.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest-path>...",
		Short: "Validate binding manifests",
		Long: `Validate CUE binding manifests against the manifest schema without
touching the form database. Directories are searched for .cue files.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	manifests, errs := LoadManifests(paths, LoadModeCollectAll)
	for _, m := range manifests {
		formatter.VerboseLog("Valid: %s (entity %s)", m.Source, m.Entity)
	}

	if len(errs) == 0 {
		if formatter.Format == "json" {
			return formatter.Success(ValidationResult{Valid: true, Manifests: len(manifests)})
		}
		fmt.Fprintf(formatter.Writer, "✓ %d manifest(s) valid\n", len(manifests))
		return nil
	}

	verrs := make([]ValidationError, 0, len(errs))
	for _, err := range errs {
		verrs = append(verrs, ValidationError{Code: ErrorCodeFor(err), Message: err.Error()})
	}

	// A missing path or empty directory is a command error, not a failed
	// validation.
	exitCode := ExitFailure
	if len(manifests) == 0 && verrs[0].Code != ErrCodeLoadFailed {
		exitCode = ExitCommandError
	}

	if formatter.Format == "json" {
		if err := writeJSON(formatter.Writer, CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Manifests: len(manifests), Errors: verrs},
			Error:  &CLIError{Code: verrs[0].Code, Message: verrs[0].Message},
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		fmt.Fprintln(formatter.Writer)
		for _, v := range verrs {
			fmt.Fprintf(formatter.Writer, "  %s\n\n", v.Message)
		}
	}
	return &ExitError{
		Code:    exitCode,
		ErrCode: verrs[0].Code,
		Message: fmt.Sprintf("%s: validation failed with %d error(s)", verrs[0].Code, len(verrs)),
	}
}
