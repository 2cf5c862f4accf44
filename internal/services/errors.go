package services

import (
	"errors"
)

var (
	// ErrSyncInProgress rejects a sync request while another sync runs.
	// Concurrent callers are refused, not queued.
	ErrSyncInProgress = errors.New("a sync operation is already in progress")

	// ErrNotAuthenticated fails fast when an operation needs a GitHub token
	ErrNotAuthenticated = errors.New("not authenticated with GitHub")

	// ErrNotImplemented marks known-incomplete paths loudly instead of
	// letting them pass as empty successes.
	ErrNotImplemented = errors.New("not implemented")

	// ErrAIDisabled is returned when AI features are used while the
	// provider is disabled in configuration.
	ErrAIDisabled = errors.New("AI provider is disabled")
)
