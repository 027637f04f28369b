package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/formscript/internal/forms"
	"github.com/roach88/formscript/internal/formxml"
)

// EditOptions holds flags shared by add and remove.
type EditOptions struct {
	*RootOptions
	Event  string
	Forms  string
	DryRun bool
}

func (o *EditOptions) bindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Event, "event", "", "form event (onload|onsave; default from config)")
	cmd.Flags().StringVar(&o.Forms, "forms", "", "form types (main,quickcreate,all; default from config)")
	cmd.Flags().BoolVar(&o.DryRun, "dry-run", false, "show the changes without saving or publishing")
}

func (o *EditOptions) processor(repo forms.Repository) *forms.Processor {
	logger := o.logger()
	return forms.NewProcessor(repo,
		forms.WithEditor(formxml.NewEditor(formxml.WithLogger(logger))),
		forms.WithProcessorLogger(logger),
		forms.WithDryRun(o.DryRun),
	)
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <entity> <library> <function>",
		Short: "Register a library function as a form event handler",
		Long: `Register function from library on an event of every selected form of
the entity. The library is registered too. Forms that already have the
handler are left untouched, and the entity is published only when a form
changed.

Examples:
  formscript add account new_/scripts/account.js Account.onLoad
  formscript add account new_/scripts/account.js Account.onSave --event onsave --forms all --dry-run`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, args[0], args[1], args[2], cmd)
		},
	}
	opts.bindFlags(cmd)

	return cmd
}

func runAdd(opts *EditOptions, entity, library, function string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	types, err := opts.formTypes(opts.Forms)
	if err != nil {
		return err
	}
	event, err := opts.event(opts.Event)
	if err != nil {
		return err
	}
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := opts.processor(st).AddFormScript(cmd.Context(), entity, types, library, function, event)
	if err != nil {
		return formatter.Fail(exitCodeFor(err), "add failed", err)
	}
	return outputEditResult(formatter, res)
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "remove <entity> <library> [function]",
		Short: "Remove event handlers or a whole library from forms",
		Long: `Remove script bindings from every selected form of the entity.

With a function, the handler calling it on --event is removed. With only
--event, every handler of the library on that event is removed. With
neither, the library and all handlers bound to it are removed. Removing
something that is not there is not an error.`,
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			function := ""
			if len(args) == 3 {
				function = args[2]
			}
			return runRemove(opts, args[0], args[1], function, cmd)
		},
	}
	opts.bindFlags(cmd)

	return cmd
}

func runRemove(opts *EditOptions, entity, library, function string, cmd *cobra.Command) error {
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

	p := opts.processor(st)
	var res *forms.Result
	if function == "" && opts.Event == "" {
		res, err = p.RemoveLibrary(cmd.Context(), entity, types, library)
	} else {
		var event formxml.EventType
		if event, err = opts.event(opts.Event); err != nil {
			return err
		}
		res, err = p.RemoveFormScript(cmd.Context(), entity, types, library, function, event)
	}
	if err != nil {
		return formatter.Fail(exitCodeFor(err), "remove failed", err)
	}
	return outputEditResult(formatter, res)
}

// outputEditResult reports a Processor result. Dry runs print a diff per
// changed form in text mode.
func outputEditResult(formatter *OutputFormatter, res *forms.Result) error {
	if formatter.Format == "json" {
		return formatter.Success(res)
	}

	w := formatter.Writer
	if res.DryRun {
		for _, c := range res.Changes {
			writeDiff(w, fmt.Sprintf("%s (%s)", c.FormName, c.FormID), c.Before, c.After)
		}
	}
	fmt.Fprintln(w, editSummary(res))
	return nil
}

func editSummary(res *forms.Result) string {
	switch {
	case res.Forms == 0:
		return fmt.Sprintf("No matching forms for %s.", res.Entity)
	case !res.Changed():
		return fmt.Sprintf("No changes: %d form(s) of %s already up to date.", res.Forms, res.Entity)
	case res.DryRun:
		return fmt.Sprintf("Dry run: %d of %d form(s) of %s would change.", len(res.Changes), res.Forms, res.Entity)
	case res.Published:
		return fmt.Sprintf("Updated %d of %d form(s) of %s and published.", len(res.Changes), res.Forms, res.Entity)
	default:
		return fmt.Sprintf("Updated %d of %d form(s) of %s.", len(res.Changes), res.Forms, res.Entity)
	}
}
