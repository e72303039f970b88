// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source fetches raw procurement listings from the configured data
// sources and merges them under a wall-clock budget.
package source

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/pdiddy/bidradar/pkg/types"
)

// Adapter fetches raw listings from one data source. Fetch returns an
// error only on transport or parse failure; zero results is a normal
// outcome. Pagination delays, and retry on transient failure, are the
// adapter's own responsibility.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]types.RawListing, error)
}

// Output holds the merged collection result. Raw listings appear in
// adapter-configuration order regardless of completion order, and each
// failed adapter contributes zero listings plus one failure record.
type Output struct {
	Raw       []types.RawListing
	PerSource map[string]int
	Failures  []types.AdapterFailure
	Skipped   int
}

// Collect runs the adapters on a bounded worker pool and merges their
// results. The wall-clock budget is cooperative: it is checked before each
// adapter is handed to the pool, adapters already running drain normally,
// and nothing is merged until every launched adapter has returned.
func Collect(ctx context.Context, adapters []Adapter, cfg types.CollectConfig, w io.Writer) (Output, error) {
	if len(adapters) == 0 {
		return Output{}, fmt.Errorf("no adapters to collect from")
	}

	poolSize := cfg.MaxConcurrentSources
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return Output{}, fmt.Errorf("creating adapter pool: %w", err)
	}
	defer pool.Release()

	deadline := time.Now().Add(cfg.Budget)
	hasBudget := cfg.Budget > 0
	runCtx := ctx
	if hasBudget {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	type slot struct {
		launched bool
		skipped  bool
		raw      []types.RawListing
		err      error
	}
	results := make([]slot, len(adapters))

	var wg sync.WaitGroup
	out := Output{PerSource: make(map[string]int)}
	for i, a := range adapters {
		if hasBudget && !time.Now().Before(deadline) {
			fmt.Fprintf(w, "warning: wall-clock budget exhausted, skipping source %s\n", a.Name())
			out.Skipped++
			continue
		}

		i, a := i, a
		results[i].launched = true
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			// Submit blocks while the pool is full, so the budget can
			// run out between the check above and the task starting.
			if hasBudget && !time.Now().Before(deadline) {
				results[i].skipped = true
				return
			}
			raw, err := a.Fetch(runCtx)
			results[i].raw, results[i].err = raw, err
		}); err != nil {
			wg.Done()
			results[i].err = fmt.Errorf("submitting to pool: %w", err)
		}
	}
	wg.Wait()

	// Serialized merge, in adapter-configuration order.
	for i, a := range adapters {
		r := results[i]
		if !r.launched {
			continue
		}
		if r.skipped {
			fmt.Fprintf(w, "warning: wall-clock budget exhausted, skipping source %s\n", a.Name())
			out.Skipped++
			continue
		}
		if r.err != nil {
			fmt.Fprintf(w, "warning: source %s failed: %v\n", a.Name(), r.err)
			out.Failures = append(out.Failures, types.AdapterFailure{
				Source: a.Name(),
				Reason: r.err.Error(),
			})
			continue
		}
		out.Raw = append(out.Raw, r.raw...)
		out.PerSource[a.Name()] += len(r.raw)
	}

	return out, nil
}
