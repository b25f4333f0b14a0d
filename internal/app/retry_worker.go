package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/watchful/internal/clock"
	"github.com/example/watchful/internal/core/upload"
	"github.com/example/watchful/internal/ports/primary"
	"github.com/example/watchful/internal/ports/secondary"
)

// DefaultItemDelay spaces consecutive uploads within one drain.
const DefaultItemDelay = 2 * time.Second

// Skip reasons reported by DrainReport.
const (
	SkipDrainInProgress = "drain already in progress"
	SkipNotAllowed      = "connectivity does not allow uploads"
	SkipQueueUnreadable = "pending queue unreadable"
)

// RetryWorkerOptions holds the tunables of the retry worker. Nil fields
// select the real clock, the Wi-Fi-only policy and a discarding logger.
type RetryWorkerOptions struct {
	Clock   clock.Clock
	Allowed upload.Predicate

	// ItemDelay pauses between items of one drain. Zero uploads
	// back to back; daemons use DefaultItemDelay.
	ItemDelay time.Duration

	Logger *slog.Logger
}

// RetryWorkerImpl implements the RetryWorker interface.
type RetryWorkerImpl struct {
	repo         secondary.EvidenceRepository
	blobs        secondary.BlobStore
	backend      secondary.EvidenceBackend
	connectivity secondary.ConnectivityMonitor

	clock     clock.Clock
	allowed   upload.Predicate
	itemDelay time.Duration
	logger    *slog.Logger

	// draining is the reentrancy guard: at most one drain at a time.
	draining atomic.Bool

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRetryWorker creates a new RetryWorker with injected dependencies.
func NewRetryWorker(repo secondary.EvidenceRepository, blobs secondary.BlobStore, backend secondary.EvidenceBackend, connectivity secondary.ConnectivityMonitor, opts RetryWorkerOptions) *RetryWorkerImpl {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Allowed == nil {
		opts.Allowed = upload.WifiOnly
	}
	if opts.ItemDelay < 0 {
		opts.ItemDelay = 0
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &RetryWorkerImpl{
		repo:         repo,
		blobs:        blobs,
		backend:      backend,
		connectivity: connectivity,
		clock:        opts.Clock,
		allowed:      opts.Allowed,
		itemDelay:    opts.ItemDelay,
		logger:       opts.Logger.With("component", "retry_worker"),
	}
}

// Start schedules a drain every interval and on every connectivity change
// that allows uploads, then drains once immediately.
func (w *RetryWorkerImpl) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("retry interval must be positive, got %s", interval)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		w.logger.Info("retry worker already running")
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	ticker := w.clock.NewTicker(interval)
	changes, unsubscribe := w.connectivity.Subscribe()
	done := make(chan struct{})

	w.running = true
	w.cancel = cancel
	w.done = done

	go w.loop(loopCtx, ticker, changes, unsubscribe, done)

	w.logger.Info("retry worker started", "interval", interval)
	return nil
}

// Stop cancels the schedule and waits for the loop to exit. An item already
// uploading completes first.
func (w *RetryWorkerImpl) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel, done := w.cancel, w.done
	w.running = false
	w.cancel = nil
	w.done = nil
	w.mu.Unlock()

	cancel()
	<-done
	w.logger.Info("retry worker stopped")
}

// IsRunning reports whether the schedule is active.
func (w *RetryWorkerImpl) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// exited clears the running state when the loop ends because the Start
// context was cancelled. A loop ended by Stop, or replaced by a later Start,
// leaves the current state alone.
func (w *RetryWorkerImpl) exited(done chan struct{}) {
	w.mu.Lock()
	if w.done == done {
		w.cancel()
		w.running = false
		w.cancel = nil
		w.done = nil
		w.logger.Info("retry worker stopped", "reason", "context done")
	}
	w.mu.Unlock()
	close(done)
}

// TriggerRetry runs one drain cycle synchronously. Cancelling ctx stops the
// cycle before its next item.
func (w *RetryWorkerImpl) TriggerRetry(ctx context.Context) primary.DrainReport {
	return w.drain(ctx, "manual")
}

func (w *RetryWorkerImpl) loop(ctx context.Context, ticker *clock.Ticker, changes <-chan secondary.Connectivity, unsubscribe func(), done chan struct{}) {
	defer w.exited(done)
	defer unsubscribe()
	defer ticker.Stop()

	w.drain(ctx, "start")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx, "schedule")
		case state, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if !w.allowed(upload.NetworkKind(state.Kind)) {
				w.logger.Debug("connectivity changed, uploads not allowed", "network", state.Kind)
				continue
			}
			w.drain(ctx, "connectivity")
		}
	}
}

// drain uploads every pending item, oldest first. ctx only gates the start
// of each item; an item in progress runs to completion.
func (w *RetryWorkerImpl) drain(ctx context.Context, trigger string) primary.DrainReport {
	if !w.draining.CompareAndSwap(false, true) {
		w.logger.Debug("drain skipped", "trigger", trigger, "reason", SkipDrainInProgress)
		return primary.DrainReport{Skipped: true, SkipReason: SkipDrainInProgress}
	}
	defer w.draining.Store(false)

	state := w.connectivity.Current()
	if !w.allowed(upload.NetworkKind(state.Kind)) {
		w.logger.Debug("drain skipped", "trigger", trigger, "reason", SkipNotAllowed, "network", state.Kind)
		return primary.DrainReport{Skipped: true, SkipReason: SkipNotAllowed}
	}

	itemCtx := context.WithoutCancel(ctx)

	pending, err := w.repo.GetPending(itemCtx)
	if err != nil {
		w.logger.Error("failed to read pending evidence", "trigger", trigger, "error", err)
		return primary.DrainReport{Skipped: true, SkipReason: SkipQueueUnreadable}
	}

	var report primary.DrainReport
	for i, record := range pending {
		if ctx.Err() != nil {
			break
		}
		if i > 0 && !w.wait(ctx) {
			break
		}

		report.Attempted++
		switch w.processItem(itemCtx, record) {
		case outcomeUploaded:
			report.Uploaded++
		case outcomeGaveUp:
			report.GaveUp++
		default:
			report.Failed++
		}
	}

	if report.Attempted > 0 {
		w.logger.Info("drain finished",
			"trigger", trigger,
			"attempted", report.Attempted,
			"uploaded", report.Uploaded,
			"gave_up", report.GaveUp,
			"failed", report.Failed)
	}
	return report
}

// wait sleeps the inter-item delay. Returns false if ctx ended first.
func (w *RetryWorkerImpl) wait(ctx context.Context) bool {
	if w.itemDelay == 0 {
		return true
	}
	select {
	case <-w.clock.After(w.itemDelay):
		return true
	case <-ctx.Done():
		return false
	}
}

type itemOutcome int

const (
	outcomeFailed itemOutcome = iota
	outcomeUploaded
	outcomeGaveUp
)

// processItem runs one pending item through create, upload, notify and
// close. Any failure before close leaves the row pending for the next cycle.
func (w *RetryWorkerImpl) processItem(ctx context.Context, record *secondary.EvidenceRecord) itemOutcome {
	logger := w.logger.With("local_id", record.LocalID)

	plan := upload.PlanItem(upload.Item{
		HasServer:  record.ServerID != nil,
		HasRemote:  record.RemoteFileID != "",
		FileExists: fileExists(record.LocalPath),
	})

	if plan.GiveUp {
		now := w.clock.Now().UTC()
		status := secondary.UploadStatusUploaded
		if err := w.repo.Update(ctx, record.LocalID, secondary.EvidenceUpdate{UploadStatus: &status, UploadedAt: &now}); err != nil {
			logger.Error("failed to close evidence with missing file", "error", err)
			return outcomeFailed
		}
		logger.Warn("evidence closed without upload",
			"path", record.LocalPath,
			"error", fmt.Errorf("%w: %s", secondary.ErrLocalFileMissing, record.LocalPath))
		return outcomeGaveUp
	}

	serverID := record.ServerID
	if plan.CreateRecord {
		id, err := w.backend.CreateRecord(ctx, secondary.CreateRecordRequest{
			EvidenceType:    record.EvidenceType,
			LocalPath:       record.LocalPath,
			FileSizeBytes:   record.FileSizeBytes,
			DurationSeconds: record.DurationSeconds,
		})
		if err != nil {
			logger.Warn("failed to create backend record, uploading anyway", "error", err)
		} else {
			serverID = &id
			if err := w.repo.Update(ctx, record.LocalID, secondary.EvidenceUpdate{ServerID: &id}); err != nil {
				logger.Warn("failed to store server id", "server_id", id, "error", err)
			}
		}
	}

	remoteFileID := record.RemoteFileID
	if plan.Upload {
		id, err := w.blobs.Upload(ctx, record.LocalPath)
		if err != nil {
			logger.Warn("upload failed, will retry", "error", err)
			return outcomeFailed
		}
		remoteFileID = id
		if err := w.repo.Update(ctx, record.LocalID, secondary.EvidenceUpdate{RemoteFileID: &remoteFileID}); err != nil {
			logger.Warn("failed to store remote file id", "remote_file_id", remoteFileID, "error", err)
		}
	}

	if serverID != nil {
		if err := w.backend.MarkUploaded(ctx, *serverID, remoteFileID); err != nil {
			logger.Warn("failed to inform backend, will retry", "server_id", *serverID, "error", err)
			return outcomeFailed
		}
	}

	now := w.clock.Now().UTC()
	status := secondary.UploadStatusUploaded
	if err := w.repo.Update(ctx, record.LocalID, secondary.EvidenceUpdate{
		UploadStatus: &status,
		UploadedAt:   &now,
		RemoteFileID: &remoteFileID,
	}); err != nil {
		logger.Error("failed to mark evidence uploaded", "error", err)
		return outcomeFailed
	}

	if upload.CanDeleteLocal(true, remoteFileID) {
		if err := os.Remove(record.LocalPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to delete uploaded file", "path", record.LocalPath, "error", err)
		}
	}

	logger.Info("evidence uploaded", "remote_file_id", remoteFileID)
	return outcomeUploaded
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Ensure RetryWorkerImpl implements the interface
var _ primary.RetryWorker = (*RetryWorkerImpl)(nil)
