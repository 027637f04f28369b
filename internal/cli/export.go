package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "export <form-id>",
		Short:         "Write the stored XML of a form",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func runExport(opts *ExportOptions, formID string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	f, err := st.GetForm(cmd.Context(), formID)
	if err != nil {
		return formatter.Fail(ExitCommandError, "export failed", err)
	}

	if opts.Output == "" {
		if formatter.Format == "json" {
			return formatter.Success(f)
		}
		fmt.Fprintln(formatter.Writer, f.FormXML)
		return nil
	}

	if err := os.WriteFile(opts.Output, []byte(f.FormXML), 0o644); err != nil {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeWriteFailed, Message: "failed to write output", Err: err}
	}
	formatter.VerboseLog("Wrote %s (%d bytes)", opts.Output, len(f.FormXML))
	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"form_id": f.ID, "output": opts.Output})
	}
	fmt.Fprintf(formatter.Writer, "Exported %s to %s\n", f.ID, opts.Output)
	return nil
}
