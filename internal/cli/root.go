package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/formscript/internal/config"
	"github.com/roach88/formscript/internal/forms"
	"github.com/roach88/formscript/internal/formxml"
	"github.com/roach88/formscript/internal/store"
)

// RootOptions holds global flags and the settings resolved from them.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string
	ConfigPath string

	// Set by the root command before any subcommand runs.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the formscript CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "formscript",
		Short: "Manage script bindings of entity forms",
		Long: `formscript registers script libraries and event handlers in entity
form XML. Every edit is idempotent: running the same command twice leaves
the forms exactly as after the first run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to the form database (default from config)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", config.DefaultPath, "path to the config file")

	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewFormsCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewPublishCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewPatchCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Execute runs the formscript command line and returns the process exit
// code. Errors not already written by a command are printed to stderr.
func Execute() int {
	cmd := NewRootCommand()
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// Flag and argument errors from cobra.
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return ExitCommandError
	}
	if !exitErr.reported {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return exitErr.Code
}

// resolve validates global flags, loads the config file and sets up
// logging. Flags win over config values.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	o.Config = cfg
	if o.Database == "" {
		o.Database = cfg.Database
	}

	level, err := cfg.Level()
	if err != nil {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeInvalidInput, Message: "invalid log level", Err: err}
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = newLogger(cmd.ErrOrStderr(), level)
	return nil
}

// logger returns the resolved logger, or a discarding one for commands
// executed without the root command (tests).
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// openStore opens the configured database.
func (o *RootOptions) openStore() (*store.Store, error) {
	if o.Database == "" {
		return nil, NewExitError(ExitCommandError, "no database configured: use --db or set database in the config file")
	}
	st, err := store.Open(o.Database)
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeStoreFailed, Message: "failed to open database", Err: err}
	}
	o.logger().Debug("database opened", "path", o.Database)
	return st, nil
}

// formTypes returns the --forms value, or the configured default when the
// flag is empty.
func (o *RootOptions) formTypes(flag string) (forms.FormType, error) {
	var (
		ft  forms.FormType
		err error
	)
	switch {
	case flag != "":
		ft, err = forms.ParseFormTypes(flag)
	case o.Config != nil:
		ft, err = o.Config.FormTypes()
	default:
		ft = forms.Main
	}
	if err != nil {
		return 0, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeInvalidInput, Message: "invalid --forms", Err: err}
	}
	return ft, nil
}

// event returns the --event value, or the configured default when the flag
// is empty.
func (o *RootOptions) event(flag string) (formxml.EventType, error) {
	var (
		ev  formxml.EventType
		err error
	)
	switch {
	case flag != "":
		ev, err = formxml.ParseEventType(flag)
	case o.Config != nil:
		ev, err = o.Config.Event()
	default:
		ev = formxml.OnLoad
	}
	if err != nil {
		return 0, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeInvalidInput, Message: "invalid --event", Err: err}
	}
	return ev, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
