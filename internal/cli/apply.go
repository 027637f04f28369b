package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/formscript/internal/forms"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	EditOptions
	KeepGoing bool
}

// ApplyResult is the outcome of one manifest.
type ApplyResult struct {
	Manifest string        `json:"manifest"`
	Result   *forms.Result `json:"result,omitempty"`
	Error    *CLIError     `json:"error,omitempty"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{EditOptions: EditOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "apply <manifest-path>...",
		Short: "Bring forms in line with binding manifests",
		Long: `Apply CUE binding manifests. Each manifest names an entity, the form
types to edit, the libraries and handlers that must be registered and the
bindings to remove. Applying a manifest twice changes nothing the second
time.

Example manifest:

  entity: "account"
  forms: ["main", "quickcreate"]
  libraries: ["new_/scripts/common.js"]
  handlers: [{
      event:    "onload"
      library:  "new_/scripts/account.js"
      function: "Account.onLoad"
  }]
  remove: [{library: "new_/scripts/legacy.js"}]`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "show the changes without saving or publishing")
	cmd.Flags().BoolVar(&opts.KeepGoing, "keep-going", false, "continue with the next manifest after a failure")

	return cmd
}

func runApply(opts *ApplyOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	mode := LoadModeFailFast
	if opts.KeepGoing {
		mode = LoadModeCollectAll
	}
	manifests, loadErrs := LoadManifests(paths, mode)
	if len(loadErrs) > 0 && (!opts.KeepGoing || len(manifests) == 0) {
		err := loadErrs[0]
		return formatter.Reject(ExitCommandError, ErrorCodeFor(err), err.Error())
	}
	for _, err := range loadErrs {
		fmt.Fprintf(formatter.GetErrWriter(), "skipping: %v\n", err)
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	p := opts.processor(st)
	results := make([]ApplyResult, 0, len(manifests))
	failed := 0
	var firstErr error
	for _, m := range manifests {
		formatter.VerboseLog("Applying %s (entity %s, forms %s)", m.Source, m.Entity, m.FormKinds())
		res, err := p.Apply(cmd.Context(), m)
		ar := ApplyResult{Manifest: m.Source, Result: res}
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			ar.Error = &CLIError{Code: ErrorCodeFor(err), Message: err.Error()}
		}
		results = append(results, ar)

		if formatter.Format != "json" {
			writeApplyText(formatter, ar)
		}
		if err != nil && !opts.KeepGoing {
			break
		}
	}

	if formatter.Format == "json" {
		status := "ok"
		if failed > 0 {
			status = "error"
		}
		resp := CLIResponse{Status: status, Data: results}
		if err := writeJSON(formatter.Writer, resp); err != nil {
			return err
		}
	}

	if failed > 0 {
		return &ExitError{
			Code:    exitCodeFor(firstErr),
			ErrCode: ErrorCodeFor(firstErr),
			Message: fmt.Sprintf("%d of %d manifest(s) failed", failed, len(manifests)),
			Err:     firstErr,
		}
	}
	return nil
}

func writeApplyText(formatter *OutputFormatter, ar ApplyResult) {
	w := formatter.Writer
	if ar.Error != nil {
		fmt.Fprintf(w, "✗ %s\n  %s: %s\n", ar.Manifest, ar.Error.Code, ar.Error.Message)
		return
	}
	if ar.Result.DryRun {
		for _, c := range ar.Result.Changes {
			writeDiff(w, fmt.Sprintf("%s (%s)", c.FormName, c.FormID), c.Before, c.After)
		}
	}
	fmt.Fprintf(w, "✓ %s\n  %s\n", ar.Manifest, editSummary(ar.Result))
}
