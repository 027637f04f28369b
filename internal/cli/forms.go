package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/formscript/internal/forms"
)

// FormsOptions holds flags for the forms command.
type FormsOptions struct {
	*RootOptions
	Forms string
}

// NewFormsCommand creates the forms command.
func NewFormsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FormsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "forms <entity>",
		Short: "List the editable forms of an entity",
		Long: `List the active, customizable forms of an entity that edits would
touch, filtered by --forms.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForms(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Forms, "forms", "", "form types (main,quickcreate,all; default from config)")

	return cmd
}

func runForms(opts *FormsOptions, entity string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	types, err := opts.formTypes(opts.Forms)
	if err != nil {
		return err
	}
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	list, err := st.GetForms(cmd.Context(), forms.Query{Entity: entity, Types: types})
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to list forms", err)
	}
	for i := range list {
		list[i].FormXML = ""
	}

	if formatter.Format == "json" {
		return formatter.Success(list)
	}
	if len(list) == 0 {
		fmt.Fprintf(formatter.Writer, "No %s forms for %s.\n", types, entity)
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tNAME\tVERSION")
	for _, f := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", f.ID, f.Type, f.Name, f.Version)
	}
	return tw.Flush()
}
