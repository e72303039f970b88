// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/pdiddy/bidradar/pkg/types"
)

type stubAdapter struct {
	name  string
	raw   []types.RawListing
	err   error
	delay time.Duration
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Fetch(ctx context.Context) ([]types.RawListing, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.raw, s.err
}

func rawFrom(source string, n int) []types.RawListing {
	out := make([]types.RawListing, n)
	for i := range out {
		out[i] = types.RawListing{Title: source, SourceType: source}
	}
	return out
}

func TestCollectMergesInConfigOrder(t *testing.T) {
	// The first adapter finishes last; merged output still follows
	// configuration order.
	adapters := []Adapter{
		&stubAdapter{name: "slow", raw: rawFrom("slow", 2), delay: 30 * time.Millisecond},
		&stubAdapter{name: "fast", raw: rawFrom("fast", 3)},
	}
	cfg := types.CollectConfig{MaxConcurrentSources: 2}

	out, err := Collect(context.Background(), adapters, cfg, io.Discard)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(out.Raw) != 5 {
		t.Fatalf("raw = %d, want 5", len(out.Raw))
	}
	for i, want := range []string{"slow", "slow", "fast", "fast", "fast"} {
		if out.Raw[i].SourceType != want {
			t.Errorf("raw[%d].SourceType = %s, want %s", i, out.Raw[i].SourceType, want)
		}
	}
	if out.PerSource["slow"] != 2 || out.PerSource["fast"] != 3 {
		t.Errorf("per-source counts = %v", out.PerSource)
	}
}

func TestCollectIsolatesAdapterFailure(t *testing.T) {
	adapters := []Adapter{
		&stubAdapter{name: "broken", err: errors.New("connection refused")},
		&stubAdapter{name: "ok", raw: rawFrom("ok", 4)},
	}
	cfg := types.CollectConfig{MaxConcurrentSources: 2}

	out, err := Collect(context.Background(), adapters, cfg, io.Discard)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(out.Raw) != 4 {
		t.Errorf("raw = %d, want 4", len(out.Raw))
	}
	if len(out.Failures) != 1 {
		t.Fatalf("failures = %v, want one", out.Failures)
	}
	if out.Failures[0].Source != "broken" || out.Failures[0].Reason == "" {
		t.Errorf("failure = %+v", out.Failures[0])
	}
	if _, ok := out.PerSource["broken"]; ok {
		t.Error("failed adapter must not appear in per-source counts")
	}
}

func TestCollectBudgetSkipsAdapters(t *testing.T) {
	// A budget of one nanosecond is spent before the first adapter can
	// be handed to the pool, so every source is skipped.
	adapters := []Adapter{
		&stubAdapter{name: "a", raw: rawFrom("a", 1)},
		&stubAdapter{name: "b", raw: rawFrom("b", 1)},
	}
	cfg := types.CollectConfig{Budget: time.Nanosecond, MaxConcurrentSources: 2}

	out, err := Collect(context.Background(), adapters, cfg, io.Discard)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if out.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", out.Skipped)
	}
	if len(out.Raw) != 0 {
		t.Errorf("raw = %d, want 0", len(out.Raw))
	}
	if len(out.Failures) != 0 {
		t.Errorf("skipped sources must not count as failures, got %v", out.Failures)
	}
}

func TestCollectBudgetSkipsQueuedAdapter(t *testing.T) {
	// With one worker, the second adapter queues behind the first. The
	// budget runs out while it waits, so it must not fetch; the adapter
	// already in flight drains normally.
	adapters := []Adapter{
		&stubAdapter{name: "inflight", raw: rawFrom("inflight", 2), delay: 50 * time.Millisecond},
		&stubAdapter{name: "queued", raw: rawFrom("queued", 1)},
	}
	cfg := types.CollectConfig{Budget: 10 * time.Millisecond, MaxConcurrentSources: 1}

	out, err := Collect(context.Background(), adapters, cfg, io.Discard)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if out.Skipped != 1 {
		t.Errorf("skipped = %d, want the queued adapter skipped", out.Skipped)
	}
	for _, r := range out.Raw {
		if r.SourceType == "queued" {
			t.Fatal("queued adapter fetched after the budget expired")
		}
	}
	if out.PerSource["queued"] != 0 {
		t.Errorf("per-source counts = %v, queued adapter must contribute nothing", out.PerSource)
	}
}

func TestCollectWithoutAdapters(t *testing.T) {
	_, err := Collect(context.Background(), nil, types.CollectConfig{}, io.Discard)
	if err == nil {
		t.Fatal("Collect() with no adapters must fail")
	}
}
