// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pdiddy/bidradar/internal/source"
	"github.com/pdiddy/bidradar/pkg/types"
)

// Storage is the persistence collaborator. Listings handed to Insert are
// owned by the store thereafter.
type Storage interface {
	Ping(ctx context.Context) error
	ExistsByTitleAndOrg(ctx context.Context, title, organization string) (bool, error)
	Insert(ctx context.Context, l types.Listing) (int64, error)
}

// Notifier is the delivery collaborator. Failures are reported back but
// never abort a run.
type Notifier interface {
	SendImmediate(ctx context.Context, high []types.Classified) error
	SendSummary(ctx context.Context, all []types.Classified, report types.RunReport) error
}

// Runner executes one bounded batch run: collect, process, route. All
// configuration is carried by value; a Runner holds no global state.
type Runner struct {
	adapters []source.Adapter
	storage  Storage
	notifier Notifier
	cfg      types.PipelineConfig
	now      func() time.Time
}

// NewRunner wires a Runner from its collaborators.
func NewRunner(adapters []source.Adapter, storage Storage, notifier Notifier, cfg types.PipelineConfig) *Runner {
	return &Runner{
		adapters: adapters,
		storage:  storage,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithClock replaces the runner's clock (and that of the scorer and
// retention filter it builds) and returns the runner.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Run executes one pipeline run and returns its report. Per-record and
// per-adapter failures are counted in the report and never abort the run;
// only setup failures (no adapters, storage unreachable) do, leaving the
// report in the aborted state.
func (r *Runner) Run(ctx context.Context, w io.Writer) (report types.RunReport, err error) {
	report = types.RunReport{
		StartedAt:  r.now(),
		State:      types.StateIdle,
		TierCounts: make(map[types.Tier]int),
	}
	defer func() {
		report.Duration = time.Since(report.StartedAt)
	}()

	// Setup checks. Either failure means the run cannot serve its
	// purpose, so it aborts before any collection work.
	if len(r.adapters) == 0 {
		report.State = types.StateAborted
		return report, ErrNoAdapters
	}
	if err := r.storage.Ping(ctx); err != nil {
		report.State = types.StateAborted
		return report, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	// Collecting.
	report.State = types.StateCollecting
	collected, err := source.Collect(ctx, r.adapters, r.cfg.Collect, w)
	if err != nil {
		report.State = types.StateAborted
		return report, fmt.Errorf("collecting: %w", err)
	}
	report.Collected = len(collected.Raw)
	report.PerSource = collected.PerSource
	report.AdapterFailures = collected.Failures
	report.SourcesSkipped = collected.Skipped

	raw := collected.Raw
	if max := r.cfg.Collect.MaxEntries; max > 0 && len(raw) > max {
		report.Truncated = len(raw) - max
		raw = raw[:max]
		fmt.Fprintf(w, "processing cap reached: keeping first %d of %d raw listings\n", max, report.Collected)
	}

	// Processing: normalize, dedup, exclude screen, score, classify,
	// retention. Dedup needs fully normalized records, and retention runs
	// before routing so aged-out listings never reach a collaborator.
	report.State = types.StateProcessing
	classified := r.process(raw, &report, w)
	report.Processed = len(classified)

	// Routing.
	report.State = types.StateRouting
	r.route(ctx, classified, &report, w)

	report.State = types.StateDone
	return report, nil
}

func (r *Runner) process(raw []types.RawListing, report *types.RunReport, w io.Writer) []types.Classified {
	var listings []types.Listing
	for _, entry := range raw {
		l, err := Normalize(entry)
		if err != nil {
			report.Invalid++
			fmt.Fprintf(w, "skipping record: %v\n", err)
			continue
		}
		listings = append(listings, l)
	}

	deduper := NewDeduplicator(r.cfg.Dedup)
	listings, removed := deduper.Filter(listings)
	report.DuplicatesInRun = removed

	scorer := NewScorer(r.cfg.Scoring).WithClock(r.now)
	retention := NewRetentionFilter(r.cfg.Retention).WithClock(r.now)

	var classified []types.Classified
	for _, l := range listings {
		if kw, excluded := scorer.Excluded(l); excluded {
			report.Excluded++
			fmt.Fprintf(w, "excluded by keyword %q: %s\n", kw, l.Title)
			continue
		}

		score, matched := scorer.Score(l)
		l.RelevanceScore = score
		l.KeywordsMatched = matched

		tier := Classify(score, r.cfg.Classify)

		if !retention.Keep(l) {
			report.AgedOut++
			continue
		}

		report.TierCounts[tier]++
		classified = append(classified, types.Classified{Listing: l, Tier: tier})
	}
	return classified
}

// route partitions the classified set, notifies the collaborators, and
// hands fresh listings to storage. The storage duplicate check runs as a
// batched pre-pass in collection order, so when two listings in one run
// would both duplicate a stored record, the first collected wins.
func (r *Runner) route(ctx context.Context, classified []types.Classified, report *types.RunReport, w io.Writer) {
	var fresh []types.Classified
	for _, c := range classified {
		if c.Listing.RelevanceScore < r.cfg.Routing.MinScore {
			report.BelowFloor++
			continue
		}

		exists, err := r.storage.ExistsByTitleAndOrg(ctx, c.Listing.Title, c.Listing.Organization)
		if err != nil {
			report.StoreErrors++
			fmt.Fprintf(w, "warning: duplicate check failed for %q: %v\n", c.Listing.Title, err)
			continue
		}
		if exists {
			report.AlreadyStored++
			continue
		}
		fresh = append(fresh, c)
	}

	var high []types.Classified
	for _, c := range fresh {
		if c.Tier == types.TierHigh {
			high = append(high, c)
		}
	}
	if len(high) > 0 {
		if err := r.notifier.SendImmediate(ctx, high); err != nil {
			report.NotifyErrors = append(report.NotifyErrors, fmt.Sprintf("immediate: %v", err))
			fmt.Fprintf(w, "warning: immediate alert failed: %v\n", err)
		}
	}
	if err := r.notifier.SendSummary(ctx, classified, *report); err != nil {
		report.NotifyErrors = append(report.NotifyErrors, fmt.Sprintf("summary: %v", err))
		fmt.Fprintf(w, "warning: summary delivery failed: %v\n", err)
	}

	for _, c := range fresh {
		if _, err := r.storage.Insert(ctx, c.Listing); err != nil {
			report.StoreErrors++
			fmt.Fprintf(w, "warning: insert failed for %q: %v\n", c.Listing.Title, err)
			continue
		}
		report.Stored++
	}
}

// FormatReport writes a human-readable run summary to w.
func FormatReport(report types.RunReport, w io.Writer) {
	fmt.Fprintf(w, "run %s in %s\n", report.State, report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  collected: %d", report.Collected)
	sources := make([]string, 0, len(report.PerSource))
	for name := range report.PerSource {
		sources = append(sources, name)
	}
	sort.Strings(sources)
	for _, name := range sources {
		fmt.Fprintf(w, "  %s=%d", name, report.PerSource[name])
	}
	fmt.Fprintln(w)
	if len(report.AdapterFailures) > 0 {
		for _, f := range report.AdapterFailures {
			fmt.Fprintf(w, "  failed source: %s (%s)\n", f.Source, f.Reason)
		}
	}
	fmt.Fprintf(w, "  processed: %d (invalid=%d duplicates=%d excluded=%d aged=%d)\n",
		report.Processed, report.Invalid, report.DuplicatesInRun, report.Excluded, report.AgedOut)
	fmt.Fprintf(w, "  tiers: high=%d medium=%d low=%d\n",
		report.TierCounts[types.TierHigh], report.TierCounts[types.TierMedium], report.TierCounts[types.TierLow])
	fmt.Fprintf(w, "  stored: %d (already_stored=%d below_floor=%d errors=%d)\n",
		report.Stored, report.AlreadyStored, report.BelowFloor, report.StoreErrors)
	for _, e := range report.NotifyErrors {
		fmt.Fprintf(w, "  notify error: %s\n", e)
	}
}

// IsAbort reports whether err is one of the setup-time fatal conditions.
func IsAbort(err error) bool {
	return errors.Is(err, ErrNoAdapters) || errors.Is(err, ErrStorageUnavailable)
}
