package cli

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/roach88/formscript/internal/formxml"
)

// PatchOptions holds flags for the patch command.
type PatchOptions struct {
	*RootOptions
	Library              string
	Function             string
	Event                string
	Parameters           string
	PassExecutionContext bool
	Disabled             bool
	Remove               bool
	DryRun               bool
}

// PatchResult lists the files a patch run touched.
type PatchResult struct {
	Files   int      `json:"files"`
	Changed []string `json:"changed"`
	DryRun  bool     `json:"dry_run,omitempty"`
}

// NewPatchCommand creates the patch command.
func NewPatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "patch <glob>",
		Short: "Edit script bindings in form XML files on disk",
		Long: `Apply one binding edit to every form XML file matching a glob. The
glob supports ** for any number of directories. Files are rewritten only
when their content changes.

Without --function the library alone is registered (or, with --remove,
removed with all its handlers).

Examples:
  formscript patch "forms/**/*.xml" --library new_/scripts/account.js --function Account.onLoad
  formscript patch "forms/**/*.xml" --library new_/scripts/legacy.js --remove --dry-run`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Library, "library", "", "library name (required)")
	cmd.Flags().StringVar(&opts.Function, "function", "", "handler function name")
	cmd.Flags().StringVar(&opts.Event, "event", "", "form event (onload|onsave; default from config)")
	cmd.Flags().StringVar(&opts.Parameters, "parameters", "", "handler parameters")
	cmd.Flags().BoolVar(&opts.PassExecutionContext, "pass-context", true, "pass the execution context to the handler")
	cmd.Flags().BoolVar(&opts.Disabled, "disabled", false, "register the handler disabled")
	cmd.Flags().BoolVar(&opts.Remove, "remove", false, "remove instead of register")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "show the changes without writing files")
	_ = cmd.MarkFlagRequired("library")

	return cmd
}

func runPatch(opts *PatchOptions, pattern string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if !doublestar.ValidatePathPattern(pattern) {
		return formatter.Reject(ExitCommandError, ErrCodeInvalidInput, fmt.Sprintf("invalid glob %q", pattern))
	}
	files, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeScanError, Message: "glob failed", Err: err}
	}
	if len(files) == 0 {
		return formatter.Reject(ExitCommandError, ErrCodeNoFiles, fmt.Sprintf("no files match %s", pattern))
	}

	edit, err := opts.edit()
	if err != nil {
		return err
	}

	result := PatchResult{Files: len(files), Changed: []string{}, DryRun: opts.DryRun}
	for _, path := range files {
		changed, err := patchFile(path, edit, opts, formatter)
		if err != nil {
			return formatter.Fail(exitCodeFor(err), path, err)
		}
		if changed {
			result.Changed = append(result.Changed, path)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	verb := "Patched"
	if opts.DryRun {
		verb = "Would patch"
	}
	fmt.Fprintf(formatter.Writer, "%s %d of %d file(s).\n", verb, len(result.Changed), result.Files)
	return nil
}

// edit returns the editor call selected by the flags.
func (o *PatchOptions) edit() (func(string) (string, error), error) {
	editor := formxml.NewEditor(formxml.WithLogger(o.logger()))

	if o.Function == "" && o.Event == "" {
		if o.Remove {
			return func(xml string) (string, error) { return editor.DeleteLibrary(xml, o.Library) }, nil
		}
		return func(xml string) (string, error) { return editor.UpsertLibrary(xml, o.Library) }, nil
	}

	event, err := o.event(o.Event)
	if err != nil {
		return nil, err
	}
	if o.Remove {
		return func(xml string) (string, error) {
			return editor.DeleteEventHandler(xml, event, o.Library, o.Function)
		}, nil
	}
	h := formxml.Handler{
		Event:                event,
		Library:              o.Library,
		Function:             o.Function,
		Parameters:           o.Parameters,
		PassExecutionContext: o.PassExecutionContext,
		Enabled:              !o.Disabled,
	}
	return func(xml string) (string, error) { return editor.UpsertEventHandler(xml, h) }, nil
}

func patchFile(path string, edit func(string) (string, error), opts *PatchOptions, formatter *OutputFormatter) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	before := string(data)
	after, err := edit(before)
	if err != nil {
		return false, err
	}
	if after == before {
		formatter.VerboseLog("Unchanged: %s", path)
		return false, nil
	}

	if opts.DryRun {
		if formatter.Format != "json" {
			writeDiff(formatter.Writer, path, before, after)
		}
		return true, nil
	}
	if err := os.WriteFile(path, []byte(after), info.Mode().Perm()); err != nil {
		return false, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeWriteFailed, Message: "failed to write " + path, Err: err}
	}
	opts.logger().Info("form file patched", "path", path)
	return true, nil
}
