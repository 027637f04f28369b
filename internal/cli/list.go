package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/formscript/internal/forms"
	"github.com/roach88/formscript/internal/formxml"
)

// FormBindings is the script bindings of one form.
type FormBindings struct {
	Form     forms.EntityForm  `json:"form"`
	Bindings *formxml.Bindings `json:"bindings"`
}

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Forms string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list <entity>",
		Short:         "Show the libraries and event handlers of an entity's forms",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Forms, "forms", "", "form types (main,quickcreate,all; default from config)")

	return cmd
}

func runList(opts *ListOptions, entity string, cmd *cobra.Command) error {
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

	out := make([]FormBindings, 0, len(list))
	for _, f := range list {
		b, err := formxml.Inspect(f.FormXML)
		if err != nil {
			return formatter.Fail(exitCodeFor(err), fmt.Sprintf("form %s (%s)", f.Name, f.ID), err)
		}
		f.FormXML = ""
		out = append(out, FormBindings{Form: f, Bindings: b})
	}

	if formatter.Format == "json" {
		return formatter.Success(out)
	}
	if len(out) == 0 {
		fmt.Fprintf(formatter.Writer, "No %s forms for %s.\n", types, entity)
		return nil
	}
	w := formatter.Writer
	for i, fb := range out {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%s, %s)\n", fb.Form.Name, fb.Form.Type, fb.Form.ID)
		if len(fb.Bindings.Libraries) == 0 && len(fb.Bindings.Handlers) == 0 {
			fmt.Fprintln(w, "  no script bindings")
			continue
		}
		for _, l := range fb.Bindings.Libraries {
			fmt.Fprintf(w, "  library %s\n", l.Name)
		}
		for _, h := range fb.Bindings.Handlers {
			state := "enabled"
			if !h.Enabled {
				state = "disabled"
			}
			target := h.EventName
			if h.Attribute != "" {
				target = h.Attribute + "." + h.EventName
			}
			fmt.Fprintf(w, "  %s -> %s:%s (%s)\n", target, h.Library, h.Function, state)
		}
	}
	return nil
}
