// Package resilience shields the pipeline from a degraded model host.
// The generative model is the only remote collaborator, so the package
// guards exactly that concern: one circuit breaker over model
// invocations. Chunk-level retry belongs to the summarization
// orchestrator, not here.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Verdict judges one failed model call. Transient failures may be
// reattempted by the caller with adjusted input; only failures that
// count against the host move the guard toward open.
type Verdict struct {
	Transient         bool
	CountsAgainstHost bool
}

type Classifier func(err error) Verdict

type Config struct {
	Enabled          bool
	MinRequests      uint32
	FailureRatio     float64
	OpenTimeout      time.Duration
	HalfOpenMaxCalls uint32
}

func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		MinRequests:      10,
		FailureRatio:     0.5,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxCalls: 2,
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.MinRequests == 0 {
		out.MinRequests = def.MinRequests
	}
	if out.FailureRatio <= 0 || out.FailureRatio > 1 {
		out.FailureRatio = def.FailureRatio
	}
	if out.OpenTimeout <= 0 {
		out.OpenTimeout = def.OpenTimeout
	}
	if out.HalfOpenMaxCalls == 0 {
		out.HalfOpenMaxCalls = def.HalfOpenMaxCalls
	}
	return out
}

// ModelGuard wraps every generative model invocation. While the host
// looks healthy calls pass straight through; once enough calls count
// against it, further calls are shed until OpenTimeout elapses and a
// half-open probe succeeds.
type ModelGuard struct {
	classify Classifier
	breaker  *gobreaker.CircuitBreaker[any]
}

func NewModelGuard(cfg Config, classify Classifier) *ModelGuard {
	cfg = cfg.normalize()
	if classify == nil {
		classify = func(error) Verdict {
			return Verdict{CountsAgainstHost: true}
		}
	}

	g := &ModelGuard{classify: classify}
	if !cfg.Enabled {
		return g
	}

	g.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "model",
		MaxRequests: cfg.HalfOpenMaxCalls,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !g.classify(err).CountsAgainstHost
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			slog.Warn("model_guard_state_change",
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return g
}

// Do runs one model invocation through the guard.
func (g *ModelGuard) Do(ctx context.Context, operation string, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("resilience: model call is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.breaker == nil {
		return fn(ctx)
	}

	_, err := g.breaker.Execute(func() (any, error) {
		return nil, fn(ctx)
	})
	if IsOpen(err) {
		slog.Warn("model_call_shed", "operation", operation)
	}
	return err
}

// IsOpen reports whether err is the guard refusing the call rather
// than the model host failing it.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
