package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/storepilot/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Driver   string
	DSN      string
	Merchant string
	EnvFile  string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the storepilot CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "storepilot",
		Short: "storepilot - conversational storefront editing",
		Long: `Edit a merchant's storefront by describing the change.

Instructions are turned into typed actions, validated against the action
registry and applied to the store one at a time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			configureLogging(cmd.ErrOrStderr(), opts)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (sqlite3|pgx), overrides "+config.EnvDriver)
	cmd.PersistentFlags().StringVar(&opts.DSN, "db", "", "database DSN, overrides "+config.EnvDSN)
	cmd.PersistentFlags().StringVarP(&opts.Merchant, "merchant", "m", "", "merchant id, overrides "+config.EnvMerchant)
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "read settings from this file instead of .env")

	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewStateCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewChatCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Settings resolves the environment config with flag overrides applied.
func (o *RootOptions) Settings() (config.Config, error) {
	var files []string
	if o.EnvFile != "" {
		files = append(files, o.EnvFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if o.Driver != "" {
		if err := cfg.SetDriver(o.Driver); err != nil {
			return config.Config{}, WrapExitError(ExitCommandError, "invalid --driver", err)
		}
	}
	if o.DSN != "" {
		cfg.DSN = o.DSN
	}
	if o.Merchant != "" {
		cfg.MerchantID = o.Merchant
	}
	return cfg, nil
}

// configureLogging installs the default slog handler on w. Diagnostics
// never go to stdout so JSON output stays parseable.
func configureLogging(w io.Writer, opts *RootOptions) {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(w, handlerOpts)
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
