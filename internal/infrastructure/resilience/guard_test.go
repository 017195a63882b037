package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func hostFailureClassifier(error) Verdict {
	return Verdict{Transient: true, CountsAgainstHost: true}
}

func TestDisabledGuardPassesFailuresThrough(t *testing.T) {
	guard := NewModelGuard(Config{Enabled: false}, hostFailureClassifier)

	errHost := errors.New("host down")
	calls := 0
	for i := 0; i < 5; i++ {
		err := guard.Do(context.Background(), "generate", func(context.Context) error {
			calls++
			return errHost
		})
		if !errors.Is(err, errHost) {
			t.Fatalf("call %d expected host error, got %v", i, err)
		}
	}
	if calls != 5 {
		t.Fatalf("disabled guard must invoke every call, got %d of 5", calls)
	}
}

func TestGuardShedsCallsAfterRepeatedHostFailures(t *testing.T) {
	guard := NewModelGuard(Config{
		Enabled:          true,
		MinRequests:      2,
		FailureRatio:     0.5,
		OpenTimeout:      time.Minute,
		HalfOpenMaxCalls: 1,
	}, hostFailureClassifier)

	errHost := errors.New("host down")
	for i := 0; i < 2; i++ {
		err := guard.Do(context.Background(), "generate", func(context.Context) error {
			return errHost
		})
		if !errors.Is(err, errHost) {
			t.Fatalf("call %d expected host error, got %v", i, err)
		}
	}

	err := guard.Do(context.Background(), "generate", func(context.Context) error {
		t.Fatalf("open guard must not invoke the model")
		return nil
	})
	if !IsOpen(err) {
		t.Fatalf("expected shed call after repeated failures, got %v", err)
	}
}

func TestBenignFailuresDoNotOpenGuard(t *testing.T) {
	guard := NewModelGuard(Config{
		Enabled:          true,
		MinRequests:      2,
		FailureRatio:     0.5,
		OpenTimeout:      time.Minute,
		HalfOpenMaxCalls: 1,
	}, func(error) Verdict {
		return Verdict{}
	})

	errReject := errors.New("prompt rejected")
	calls := 0
	for i := 0; i < 6; i++ {
		err := guard.Do(context.Background(), "generate", func(context.Context) error {
			calls++
			return errReject
		})
		if !errors.Is(err, errReject) {
			t.Fatalf("call %d expected rejection error, got %v", i, err)
		}
	}
	if calls != 6 {
		t.Fatalf("benign failures must keep the guard closed, got %d of 6 calls", calls)
	}
}

func TestGuardRecoversAfterOpenTimeout(t *testing.T) {
	guard := NewModelGuard(Config{
		Enabled:          true,
		MinRequests:      2,
		FailureRatio:     0.5,
		OpenTimeout:      20 * time.Millisecond,
		HalfOpenMaxCalls: 1,
	}, hostFailureClassifier)

	errHost := errors.New("host down")
	for i := 0; i < 2; i++ {
		_ = guard.Do(context.Background(), "generate", func(context.Context) error {
			return errHost
		})
	}
	if err := guard.Do(context.Background(), "generate", func(context.Context) error {
		return nil
	}); !IsOpen(err) {
		t.Fatalf("expected open guard before timeout, got %v", err)
	}

	time.Sleep(40 * time.Millisecond)

	if err := guard.Do(context.Background(), "generate", func(context.Context) error {
		return nil
	}); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if err := guard.Do(context.Background(), "generate", func(context.Context) error {
		return nil
	}); err != nil {
		t.Fatalf("expected guard closed after successful probe, got %v", err)
	}
}

func TestGuardRejectsCancelledContext(t *testing.T) {
	guard := NewModelGuard(Config{Enabled: false}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := guard.Do(ctx, "generate", func(context.Context) error {
		t.Fatalf("cancelled context must not reach the model")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestConfigNormalizeFillsZeroValues(t *testing.T) {
	got := Config{Enabled: true}.normalize()
	if got.MinRequests != 10 {
		t.Fatalf("expected default min requests 10, got %d", got.MinRequests)
	}
	if got.FailureRatio != 0.5 {
		t.Fatalf("expected default failure ratio 0.5, got %v", got.FailureRatio)
	}
	if got.OpenTimeout != 30*time.Second {
		t.Fatalf("expected default open timeout 30s, got %v", got.OpenTimeout)
	}
	if got.HalfOpenMaxCalls != 2 {
		t.Fatalf("expected default half-open max calls 2, got %d", got.HalfOpenMaxCalls)
	}
}
