package primary

import (
	"context"
	"time"
)

// RetryWorker defines the primary port for the background upload worker.
//
// The worker retries pending uploads forever at its schedule cadence.
// There is no backoff and no dead-lettering: safety evidence prefers
// "keep trying" over "give up after N attempts".
//
// Only the file upload is retried. When the backend rejects the evidence
// record, the file is uploaded anyway and the row is closed without a
// server ID; that record is never created later.
type RetryWorker interface {
	// Start schedules a drain every interval, drains whenever
	// connectivity becomes upload-allowed, and drains once immediately.
	// Calling Start on a running worker is a no-op.
	Start(ctx context.Context, interval time.Duration) error

	// Stop cancels the schedule and the connectivity subscription. An
	// upload in flight completes; no new item begins. Idempotent.
	Stop()

	// TriggerRetry runs exactly one drain cycle and waits for it.
	TriggerRetry(ctx context.Context) DrainReport

	// IsRunning reports whether the schedule is active.
	IsRunning() bool
}

// DrainReport summarizes one drain cycle.
type DrainReport struct {
	// Skipped is set when the cycle did not run: another drain was in
	// progress or connectivity did not allow uploads.
	Skipped    bool
	SkipReason string

	Attempted int
	Uploaded  int
	// GaveUp counts rows whose local file had vanished.
	GaveUp int
	Failed int
}
