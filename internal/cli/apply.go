package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/storepilot/internal/catalog"
	"github.com/roach88/storepilot/internal/engine"
	"github.com/roach88/storepilot/internal/ir"
	"github.com/roach88/storepilot/internal/state"
	"github.com/roach88/storepilot/internal/validate"
)

// ApplyResult is the JSON output of the apply command.
type ApplyResult struct {
	Success          bool          `json:"success"`
	Mutations        []ir.Mutation `json:"mutations"`
	ValidationErrors []string      `json:"validation_errors,omitempty"`
	Revision         int64         `json:"revision"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <actions-file>",
		Short: "Validate and execute actions against the store",
		Long: `Apply a file of actions to the merchant's store without calling a model.

Invalid actions are reported and skipped. The valid ones run in order and
execution stops at the first action that fails.

Exit codes:
  0 - Every action was applied
  1 - An action was invalid or failed
  2 - Command error (missing file, database unavailable)

Examples:
  storepilot apply -m acme actions.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runApply(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)
	cfg, err := opts.Settings()
	if err != nil {
		return err
	}
	merchantID, err := requireMerchant(cfg)
	if err != nil {
		return err
	}
	raws, err := readActions(path)
	if err != nil {
		return failInput(f, err)
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(db)

	ctx := commandContext(cmd)
	release, err := newLocker(cfg).Acquire(ctx, merchantID)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeTurn, "failed to acquire turn lock", err.Error())
	}
	defer release()

	cat := catalog.Default()
	st, err := state.NewLoader(db, cat).Load(ctx, merchantID)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeStore, "failed to load state", err.Error())
	}

	outcome := validate.Default().ParseAndValidateActions(raws)
	result := ApplyResult{Mutations: []ir.Mutation{}, ValidationErrors: outcome.Errors, Revision: st.Meta.Revision}
	if len(outcome.Actions) > 0 {
		next, mutations := engine.New(db, cat).ExecuteActions(ctx, st, outcome.Actions)
		result.Mutations = mutations
		result.Revision = next.Meta.Revision
	}
	result.Success = len(outcome.Errors) == 0 && ir.AllSucceeded(result.Mutations)

	if f.JSON() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		printMutations(f, result.Mutations)
		for _, e := range outcome.Errors {
			fmt.Fprintf(f.Writer, "✗ invalid: %s\n", e)
		}
	}

	switch {
	case len(outcome.Errors) > 0:
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", ErrCodeInvalidAction, strings.Join(outcome.Errors, "; ")))
	case !result.Success:
		last := result.Mutations[len(result.Mutations)-1]
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s failed: %s", ErrCodeMutation, last.Type, last.Error))
	}
	return nil
}

func printMutations(f *OutputFormatter, mutations []ir.Mutation) {
	for _, m := range mutations {
		if m.Success {
			fmt.Fprintf(f.Writer, "✓ %s%s\n", m.Type, resultSuffix(m.Result))
			continue
		}
		fmt.Fprintf(f.Writer, "✗ %s: %s\n", m.Type, m.Error)
	}
}

func resultSuffix(result map[string]any) string {
	for _, key := range []string{"section_id", "product_id"} {
		if id, ok := result[key].(string); ok && id != "" {
			return " " + id
		}
	}
	return ""
}
