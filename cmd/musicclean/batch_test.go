package main

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"musicclean/internal/history"
	"musicclean/internal/logging"
	"musicclean/internal/mute"
	"musicclean/internal/pipeline"
	"musicclean/internal/services"
)

func TestRunBatchKeepsOrderAndLimit(t *testing.T) {
	inputs := []string{"a.mp3", "b.mp3", "c.mp3", "d.mp3"}
	var inFlight, peak atomic.Int32

	outcomes := runBatch(context.Background(), logging.NewNop(), inputs, 2, func(_ context.Context, input string) (*pipeline.Result, error) {
		n := inFlight.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		if input == "c.mp3" {
			return &pipeline.Result{Input: input, Status: history.StatusFailed}, services.Wrap(services.ErrExternalTool, "separate", "demucs", "failed", errors.New("exit 1"))
		}
		return &pipeline.Result{Input: input, Status: history.StatusCompleted}, nil
	})

	if len(outcomes) != len(inputs) {
		t.Fatalf("expected %d outcomes, got %d", len(inputs), len(outcomes))
	}
	for i, o := range outcomes {
		if o.Input != inputs[i] {
			t.Fatalf("outcome %d is %q, want %q", i, o.Input, inputs[i])
		}
	}
	if peak.Load() > 2 {
		t.Fatalf("expected at most 2 concurrent jobs, saw %d", peak.Load())
	}
	err := batchError(context.Background(), outcomes)
	if err == nil || err.Error() != "1 of 4 files failed" {
		t.Fatalf("unexpected batch error %v", err)
	}
}

func TestRunBatchSingleFailureReturnsCause(t *testing.T) {
	cause := services.Wrap(services.ErrNotFound, "pipeline", "stat input", "input file not found", nil)
	outcomes := runBatch(context.Background(), logging.NewNop(), []string{"x.mp3"}, 0, func(context.Context, string) (*pipeline.Result, error) {
		return nil, cause
	})
	if err := batchError(context.Background(), outcomes); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected underlying error, got %v", err)
	}
	if got := outcomeStatus(outcomes[0]); got != history.StatusFailed {
		t.Fatalf("expected failed status, got %s", got)
	}
}

func TestRunBatchCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	outcomes := runBatch(ctx, logging.NewNop(), []string{"a.mp3"}, 1, func(context.Context, string) (*pipeline.Result, error) {
		called = true
		return nil, nil
	})
	if called {
		t.Fatal("cancelled batch must not start work")
	}
	if outcomeStatus(outcomes[0]) != history.StatusCancelled {
		t.Fatalf("expected cancelled status, got %s", outcomeStatus(outcomes[0]))
	}
	if err := batchError(ctx, outcomes); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestRenderBatchSummary(t *testing.T) {
	outcomes := []batchOutcome{
		{
			Input: "/music/Song.mp3",
			Result: &pipeline.Result{
				Status:    history.StatusCompleted,
				Output:    "/music/Song (clean).mp3",
				Intervals: []mute.Interval{{Start: 1, End: 1.5}},
			},
		},
		{Input: "/music/Other.mp3", Err: errors.New("boom")},
	}
	got := renderBatchSummary(outcomes)
	for _, want := range []string{"Song.mp3", "completed", "0.50s", "Song (clean).mp3", "Other.mp3", "failed", "boom"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in summary:\n%s", want, got)
		}
	}
}
