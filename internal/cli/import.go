package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/formscript/internal/forms"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Name         string
	Type         string
	ID           string
	Active       bool
	Customizable bool
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <entity> <file>",
		Short: "Load a form XML file into the database",
		Long: `Import a form definition for an entity. Importing again with the same
--id replaces the stored XML. Forms imported with --active=false or
--customizable=false are skipped by add, remove, apply and patch.

Examples:
  formscript import account account-main.xml --name "Account" --id 8448b78f-8f42-454e-8e2a-f8196b0419af
  formscript import contact quick.xml --type quickcreate
  formscript import lead managed.xml --customizable=false`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "form name (default: the entity name)")
	cmd.Flags().StringVar(&opts.Type, "type", "main", "form type (main|quickcreate)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "form id (default: a new GUID)")
	cmd.Flags().BoolVar(&opts.Active, "active", true, "mark the form active")
	cmd.Flags().BoolVar(&opts.Customizable, "customizable", true, "mark the form customizable")

	return cmd
}

func runImport(opts *ImportOptions, entity, file string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	ft, err := forms.ParseFormTypes(opts.Type)
	if err != nil || (ft != forms.Main && ft != forms.QuickCreate) {
		return formatter.Reject(ExitCommandError, ErrCodeInvalidInput, fmt.Sprintf("invalid --type %q: must be main or quickcreate", opts.Type))
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeNotFound, Message: "failed to read form file", Err: err}
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	f, err := st.ImportForm(cmd.Context(), forms.EntityForm{
		ID:      opts.ID,
		Entity:  entity,
		Name:    opts.Name,
		Type:    ft,
		FormXML: string(data),
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, "import failed", err)
	}
	if !opts.Active || !opts.Customizable {
		if err := st.SetFormState(cmd.Context(), f.ID, opts.Customizable, opts.Active); err != nil {
			return formatter.Fail(ExitCommandError, "import failed", err)
		}
	}
	opts.logger().Info("form imported", "entity", f.Entity, "form", f.Name, "id", f.ID, "version", f.Version,
		"active", opts.Active, "customizable", opts.Customizable)

	f.FormXML = ""
	if formatter.Format == "json" {
		return formatter.Success(f)
	}
	fmt.Fprintf(formatter.Writer, "Imported %s form %q (%s) for %s, version %d\n", f.Type, f.Name, f.ID, f.Entity, f.Version)
	return nil
}
