// File: declconf/timing.go
package declconf

import "time"

// Timing constants for the polling watcher.
const (
	// MinPollInterval is the hard floor for source polling.
	MinPollInterval = 100 * time.Millisecond

	// DefaultPollInterval is the standard source monitoring frequency.
	DefaultPollInterval = time.Second

	// DefaultRespawnDelay is how long an eternal watcher waits before
	// respawning after its loop terminates on a source failure.
	DefaultRespawnDelay = 2 * time.Second
)
