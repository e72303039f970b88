// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunState labels the orchestrator's position in one run.
type RunState string

const (
	StateIdle       RunState = "idle"
	StateCollecting RunState = "collecting"
	StateProcessing RunState = "processing"
	StateRouting    RunState = "routing"
	StateDone       RunState = "done"
	StateAborted    RunState = "aborted"
)

// AdapterFailure records one source adapter that contributed nothing.
type AdapterFailure struct {
	Source string `json:"source" yaml:"source"`
	Reason string `json:"reason" yaml:"reason"`
}

// RunReport is the structured outcome of one pipeline run. A partially
// failed run still carries full counts and the list of failed adapters.
type RunReport struct {
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	State     RunState      `json:"state" yaml:"state"`

	// Collection.
	Collected       int              `json:"collected" yaml:"collected"`
	PerSource       map[string]int   `json:"per_source,omitempty" yaml:"per_source,omitempty"`
	AdapterFailures []AdapterFailure `json:"adapter_failures,omitempty" yaml:"adapter_failures,omitempty"`
	SourcesSkipped  int              `json:"sources_skipped" yaml:"sources_skipped"`
	Truncated       int              `json:"truncated" yaml:"truncated"`

	// Processing.
	Invalid         int `json:"invalid" yaml:"invalid"`
	DuplicatesInRun int `json:"duplicates_in_run" yaml:"duplicates_in_run"`
	Excluded        int `json:"excluded" yaml:"excluded"`
	AgedOut         int `json:"aged_out" yaml:"aged_out"`
	Processed       int `json:"processed" yaml:"processed"`

	TierCounts map[Tier]int `json:"tier_counts,omitempty" yaml:"tier_counts,omitempty"`

	// Routing.
	BelowFloor    int `json:"below_floor" yaml:"below_floor"`
	AlreadyStored int `json:"already_stored" yaml:"already_stored"`
	Stored        int `json:"stored" yaml:"stored"`
	StoreErrors   int `json:"store_errors" yaml:"store_errors"`

	NotifyErrors []string `json:"notify_errors,omitempty" yaml:"notify_errors,omitempty"`
}

// HasFailures reports whether any adapter failed during collection.
func (r RunReport) HasFailures() bool {
	return len(r.AdapterFailures) > 0
}

// Dropped returns the total number of raw listings that did not survive
// processing and routing.
func (r RunReport) Dropped() int {
	return r.Invalid + r.DuplicatesInRun + r.Excluded + r.AgedOut + r.BelowFloor
}
