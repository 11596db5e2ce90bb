package stream

import "errors"

// Sentinel errors returned by the public client surface. Mirrors the
// teacher's fmt.Errorf-string pattern plus the sentinel style used for
// subscription lifecycle errors in comparable streaming clients.
var (
	// ErrAlreadySubscribed is returned by Subscribe/SubscribeWithContext
	// when the client is already running.
	ErrAlreadySubscribed = errors.New("finlight: client is already subscribed")

	// ErrNotRunning is returned by operations that require an active
	// subscription.
	ErrNotRunning = errors.New("finlight: client is not connected")

	// ErrMissingAPIKey is returned when Config.APIKey is empty.
	ErrMissingAPIKey = errors.New("finlight: api key is required")
)
