package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewPublishCommand creates the publish command.
func NewPublishCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <entity>",
		Short: "Publish stored form changes of an entity",
		Long: `Publish makes stored form XML take effect. add, remove and apply
publish on their own. Use publish after importing forms or when an
earlier publish failed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(rootOpts, args[0], cmd)
		},
	}
}

func runPublish(opts *RootOptions, entity string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	pending, err := st.Pending(cmd.Context(), entity)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to read pending forms", err)
	}
	for _, f := range pending {
		formatter.VerboseLog("Pending: %s (%s)", f.Name, f.ID)
	}
	if err := st.Publish(cmd.Context(), entity); err != nil {
		return formatter.Fail(ExitCommandError, "publish failed", err)
	}
	opts.logger().Info("entity published", "entity", entity, "forms", len(pending))

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"entity": entity, "forms": len(pending)})
	}
	fmt.Fprintf(formatter.Writer, "Published %s: %d pending form(s).\n", entity, len(pending))
	return nil
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "history <entity>",
		Short:         "List the publications of an entity",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, args[0], cmd)
		},
	}
}

func runHistory(opts *RootOptions, entity string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	pubs, err := st.Publications(cmd.Context(), entity)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to read publications", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(pubs)
	}
	if len(pubs) == 0 {
		fmt.Fprintf(formatter.Writer, "%s has never been published.\n", entity)
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tFORMS")
	for _, p := range pubs {
		fmt.Fprintf(tw, "%d\t%d\n", p.Seq, p.FormCount)
	}
	return tw.Flush()
}
