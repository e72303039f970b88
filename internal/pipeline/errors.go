// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "errors"

var (
	// ErrInvalidListing indicates a raw listing is missing a required
	// field. The record is dropped; the run continues.
	ErrInvalidListing = errors.New("invalid listing")

	// ErrNoAdapters indicates a run was started with no source adapters
	// configured. This aborts the run before collection.
	ErrNoAdapters = errors.New("no source adapters configured")

	// ErrStorageUnavailable indicates the storage collaborator could not
	// be reached at setup. Persistence is the run's purpose, so this
	// aborts the run before collection.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
