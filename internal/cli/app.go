package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/storepilot/internal/agent"
	"github.com/roach88/storepilot/internal/config"
	"github.com/roach88/storepilot/internal/store"
	"github.com/roach88/storepilot/internal/turnlock"
)

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// openStore opens the configured database, creating the schema if needed.
func openStore(cfg config.Config) (*store.Store, error) {
	slog.Debug("opening database", "driver", cfg.Driver, "dsn", cfg.DSN)
	st, err := store.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

func requireMerchant(cfg config.Config) (string, error) {
	if cfg.MerchantID == "" {
		return "", NewExitError(ExitCommandError,
			fmt.Sprintf("merchant id is required (--merchant or %s)", config.EnvMerchant))
	}
	return cfg.MerchantID, nil
}

// newLocker picks the Redis lease lock when an address is configured.
func newLocker(cfg config.Config) turnlock.Locker {
	if cfg.RedisAddr == "" {
		return turnlock.NewLocal()
	}
	slog.Debug("using redis turn lock", "addr", cfg.RedisAddr, "ttl", cfg.LockTTL)
	return turnlock.NewRedisFromAddr(cfg.RedisAddr, "", 0, turnlock.RedisOptions{TTL: cfg.LockTTL})
}

// readActions reads candidate actions from path: a JSON array, an
// {"actions": [...]} object, a single action object, or any of these in a
// fenced block.
func readActions(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &inputError{code: ErrCodeNotFound, msg: fmt.Sprintf("actions file not found: %s", path)}
		}
		return nil, &inputError{code: ErrCodeGeneric, msg: err.Error()}
	}
	parsed := agent.Parse(string(data), []agent.Strategy{agent.WholeJSON{}, agent.FencedJSON{}})
	if parsed.Err != nil {
		return nil, &inputError{code: ErrCodeInvalidInput, msg: fmt.Sprintf("%s: no actions found", path)}
	}
	return parsed.Actions, nil
}

type inputError struct {
	code string
	msg  string
}

func (e *inputError) Error() string { return e.msg }

func failInput(f *OutputFormatter, err error) error {
	if ie, ok := err.(*inputError); ok {
		return f.Fail(ExitCommandError, ie.code, ie.msg, nil)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}
