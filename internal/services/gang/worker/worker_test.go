package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingCollector struct {
	calls atomic.Int64
	err   error
}

func (c *countingCollector) CollectTerritoryIncome(ctx context.Context) (int64, error) {
	c.calls.Add(1)
	if c.err != nil {
		return 0, c.err
	}
	return 100, nil
}

func TestRunRequiresCollector(t *testing.T) {
	if err := New(nil, Config{}).Run(context.Background()); err == nil {
		t.Fatal("expected error without a collector")
	}
}

func TestRunCollectsImmediatelyAndOnTicks(t *testing.T) {
	collector := &countingCollector{}
	worker := New(collector, Config{
		Interval: 10 * time.Millisecond,
		Logf:     func(string, ...any) {},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- worker.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for collector.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("collector called %d times, want at least 3", collector.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("run returned %v, want context.Canceled", err)
	}
}

func TestRunSurvivesCollectorErrors(t *testing.T) {
	collector := &countingCollector{err: errors.New("storage offline")}
	var logged atomic.Int64
	worker := New(collector, Config{
		Interval: 10 * time.Millisecond,
		Logf: func(string, ...any) {
			logged.Add(1)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- worker.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for collector.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("collector called %d times, want at least 2", collector.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
	if logged.Load() == 0 {
		t.Fatal("collector errors were not logged")
	}
}
