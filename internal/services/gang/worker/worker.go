// Package worker runs the background territory income loop.
package worker

import (
	"context"
	"fmt"
	"log"
	"time"
)

const defaultInterval = time.Hour

// IncomeCollector credits controlling gangs for elapsed income days and
// returns the total credited.
type IncomeCollector interface {
	CollectTerritoryIncome(ctx context.Context) (int64, error)
}

// Config controls loop behavior.
type Config struct {
	// Interval between income collection passes.
	Interval time.Duration
	// Logf receives loop progress. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

func (c Config) normalized() Config {
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	if c.Logf == nil {
		c.Logf = log.Printf
	}
	return c
}

// Worker periodically collects territory income through the service.
type Worker struct {
	collector IncomeCollector
	config    Config
}

// New creates an income worker.
func New(collector IncomeCollector, config Config) *Worker {
	return &Worker{collector: collector, config: config.normalized()}
}

// Run collects once immediately, then on every interval tick until the
// context is canceled. Collection errors are logged, not fatal.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.collector == nil {
		return fmt.Errorf("income collector is required")
	}

	w.collect(ctx)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.collect(ctx)
		}
	}
}

func (w *Worker) collect(ctx context.Context) {
	total, err := w.collector.CollectTerritoryIncome(ctx)
	if err != nil {
		w.config.Logf("territory income pass failed: %v", err)
		return
	}
	if total > 0 {
		w.config.Logf("territory income pass credited %d", total)
	}
}
