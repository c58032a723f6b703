package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/storepilot/internal/validate"
)

// ActionCheck is the per-action outcome reported by validate.
type ActionCheck struct {
	Index  int      `json:"index"`
	Type   string   `json:"type"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateResult is the JSON output of the validate command.
type ValidateResult struct {
	Valid   bool          `json:"valid"`
	Results []ActionCheck `json:"results"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <actions-file>",
		Short: "Check actions against the action registry",
		Long: `Validate a file of actions without touching the store.

The file holds a JSON array of actions, an {"actions": [...]} object or a
single action, optionally inside a fenced code block.

Exit codes:
  0 - Every action is valid
  1 - One or more actions are invalid
  2 - Command error (missing or unreadable file)

Examples:
  storepilot validate actions.json
  storepilot validate reply.md --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)
	raws, err := readActions(path)
	if err != nil {
		return failInput(f, err)
	}
	f.VerboseLog("validating %d action(s) from %s", len(raws), path)

	batch := validate.Default().ValidateActions(raws)
	result := ValidateResult{Valid: batch.Valid, Results: make([]ActionCheck, len(raws))}
	for i, res := range batch.Results {
		check := ActionCheck{Index: i, Type: actionType(raws[i], res), Valid: res.Valid}
		if !res.Valid {
			check.Errors = res.Errors()
		}
		result.Results[i] = check
	}

	if f.JSON() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		for _, c := range result.Results {
			if c.Valid {
				fmt.Fprintf(f.Writer, "✓ [%d] %s\n", c.Index, c.Type)
				continue
			}
			fmt.Fprintf(f.Writer, "✗ [%d] %s\n", c.Index, c.Type)
			for _, e := range c.Errors {
				fmt.Fprintf(f.Writer, "  %s\n", e)
			}
		}
	}
	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: invalid actions in %s", ErrCodeInvalidAction, path))
	}
	return nil
}

// actionType names an action for display, falling back to the raw "type"
// field when validation could not resolve a kind.
func actionType(raw any, res validate.Result) string {
	if res.Valid {
		return string(res.Action.Kind)
	}
	if obj, ok := raw.(map[string]any); ok {
		if s, ok := obj["type"].(string); ok && s != "" {
			return s
		}
	}
	return "?"
}
