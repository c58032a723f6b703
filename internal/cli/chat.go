package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/storepilot/internal/agent"
	"github.com/roach88/storepilot/internal/catalog"
	"github.com/roach88/storepilot/internal/config"
	"github.com/roach88/storepilot/internal/engine"
	"github.com/roach88/storepilot/internal/llm"
	"github.com/roach88/storepilot/internal/prompt"
	"github.com/roach88/storepilot/internal/state"
	"github.com/roach88/storepilot/internal/validate"
)

// newCompleter builds the model transport for chat. Tests replace it.
var newCompleter = func(ctx context.Context, cfg config.Config) (llm.Completer, error) {
	gemini, err := llm.NewGemini(ctx, llm.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.Model,
		Timeout: 60 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return llm.Wrap(gemini,
		llm.WithLogging(slog.Default()),
		llm.WithRetry(3, 500*time.Millisecond),
	), nil
}

// ChatOptions holds flags for the chat command.
type ChatOptions struct {
	*RootOptions
	SelectKind  string
	SelectID    string
	SelectLabel string
}

// NewChatCommand creates the chat command.
func NewChatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ChatOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "chat [instruction...]",
		Short: "Edit the store by describing the change",
		Long: `Run agent turns against the merchant's store.

Each argument is one turn of the same session. With no arguments,
instructions are read from stdin one per line.

Exit codes:
  0 - Every turn succeeded
  1 - A turn failed (model error, invalid actions, failed mutation)
  2 - Command error (missing merchant, API key or database)

Examples:
  storepilot chat -m acme "make the hero headline friendlier"
  storepilot chat -m acme --select-kind section --select-id s-faq "add a shipping question"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SelectKind, "select-kind", "", "kind of the selected element (section|product|hero)")
	cmd.Flags().StringVar(&opts.SelectID, "select-id", "", "id of the selected element")
	cmd.Flags().StringVar(&opts.SelectLabel, "select-label", "", "label of the selected element")
	return cmd
}

func runChat(opts *ChatOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	cfg, err := opts.Settings()
	if err != nil {
		return err
	}
	merchantID, err := requireMerchant(cfg)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, "model unavailable", err.Error())
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(db)

	cat := catalog.Default()
	loader, err := state.NewCachedLoader(state.NewLoader(db, cat), db, cfg.StateCacheSize)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, "invalid state cache size", err.Error())
	}
	session, err := agent.NewSession(merchantID, agent.Deps{
		Loader:    loader,
		Revisions: db,
		Executor:  engine.New(db, cat),
		Validator: validate.Default(),
		Prompt:    prompt.NewDefault(),
		LLM:       completer,
		Locker:    newLocker(cfg),
	}, agent.WithHistoryLimit(cfg.HistoryLimit), agent.WithLogger(slog.Default()))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start session", err)
	}

	sel := prompt.Selection{Kind: opts.SelectKind, ID: opts.SelectID, Label: opts.SelectLabel}
	instructions := args
	if len(instructions) == 0 {
		instructions, err = readInstructions(cmd)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read instructions", err)
		}
	}

	reports := make([]agent.Report, 0, len(instructions))
	failed := 0
	for _, instruction := range instructions {
		f.VerboseLog("turn: %s", instruction)
		report := session.Process(ctx, instruction, sel)
		reports = append(reports, report)
		if !report.Success {
			failed++
		}
		if !f.JSON() {
			printReport(f, report)
		}
	}

	if f.JSON() {
		if err := f.Success(reports); err != nil {
			return err
		}
	}
	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d of %d turn(s) failed", ErrCodeTurn, failed, len(reports)))
	}
	return nil
}

func readInstructions(cmd *cobra.Command) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, scanner.Err()
}

func printReport(f *OutputFormatter, r agent.Report) {
	if r.Explanation != "" {
		fmt.Fprintln(f.Writer, r.Explanation)
	}
	printMutations(f, r.Mutations)
	for _, e := range r.ValidationErrors {
		fmt.Fprintf(f.Writer, "✗ invalid: %s\n", e)
	}
	if !r.Success && r.Error != "" && r.Error != strings.Join(r.ValidationErrors, "; ") {
		fmt.Fprintf(f.Writer, "Error: %s\n", r.Error)
	}
	f.VerboseLog("turn took %dms", r.ExecutionTimeMs)
}
