package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/storepilot/internal/catalog"
	"github.com/roach88/storepilot/internal/state"
)

// StateOptions holds flags for the state command.
type StateOptions struct {
	*RootOptions
	Summary bool
}

// NewStateCommand creates the state command.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Print the merchant's store state",
		Long: `Load the merchant's store state the way the agent sees it.

Examples:
  storepilot state -m acme
  storepilot state -m acme --summary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runState(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Summary, "summary", false, "print the short prompt digest instead of JSON")
	return cmd
}

func runState(opts *StateOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	cfg, err := opts.Settings()
	if err != nil {
		return err
	}
	merchantID, err := requireMerchant(cfg)
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(db)

	st, err := state.NewLoader(db, catalog.Default()).Load(commandContext(cmd), merchantID)
	if err != nil {
		var dae *state.DataAccessError
		if errors.As(err, &dae) {
			return f.Fail(ExitFailure, ErrCodeStore, "failed to load state", err.Error())
		}
		return f.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}

	if opts.Summary {
		if f.JSON() {
			return f.Success(map[string]string{"summary": state.Summarize(st)})
		}
		fmt.Fprint(f.Writer, state.Summarize(st))
		return nil
	}
	if f.JSON() {
		return f.Success(st)
	}
	data, err := st.JSON()
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	fmt.Fprintln(f.Writer, string(data))
	return nil
}
