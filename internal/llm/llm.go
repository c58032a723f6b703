// Package llm is the language-model transport: a one-call Completer
// interface, a Gemini implementation, a scripted fake for tests, and
// middleware for logging and retries.
package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Completer turns a system prompt and a user message into raw model text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Middleware decorates a Completer.
type Middleware func(Completer) Completer

// Wrap applies middlewares in left-to-right order.
// Wrap(inner, A, B) => A(B(inner)).
func Wrap(inner Completer, mws ...Middleware) Completer {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, system, user string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

// WithLogging logs request sizes, latency and errors. A nil logger uses
// slog.Default().
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Completer) Completer {
		return CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
			start := time.Now()
			out, err := next.Complete(ctx, system, user)
			attrs := []any{
				"request_bytes", len(system) + len(user),
				"response_bytes", len(out),
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if err != nil {
				logger.Warn("llm completion failed", append(attrs, "error", err)...)
				return out, err
			}
			logger.Debug("llm completion", attrs...)
			return out, nil
		})
	}
}

// WithRetry retries failed completions up to attempts times in total with
// exponential backoff starting at base. Context errors are not retried.
func WithRetry(attempts int, base time.Duration) Middleware {
	if attempts < 1 {
		attempts = 1
	}
	return func(next Completer) Completer {
		return CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
			var last error
			for i := 0; i < attempts; i++ {
				out, err := next.Complete(ctx, system, user)
				if err == nil {
					return out, nil
				}
				last = err
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || i == attempts-1 {
					break
				}
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(base * time.Duration(1<<i)):
				}
			}
			return "", last
		})
	}
}
