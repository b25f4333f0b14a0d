package primary

import (
	"context"
	"errors"
	"time"
)

// ErrEvidenceNotFound is returned when a local ID names no queued item.
var ErrEvidenceNotFound = errors.New("evidence not found")

// EvidenceService defines the primary port for the capture path and for
// inspecting the local upload queue. It is the only creator of rows.
type EvidenceService interface {
	// RecordCapture queues a newly captured file as pending.
	RecordCapture(ctx context.Context, req RecordCaptureRequest) (*Evidence, error)

	// ListEvidence returns every queued item, newest first.
	ListEvidence(ctx context.Context) ([]*Evidence, error)

	// ListPending returns items awaiting upload, oldest first.
	ListPending(ctx context.Context) ([]*Evidence, error)

	// CountPending returns the number of items awaiting upload.
	CountPending(ctx context.Context) (int, error)

	// GetEvidence retrieves one item. An unknown ID matches ErrEvidenceNotFound.
	GetEvidence(ctx context.Context, localID int64) (*Evidence, error)

	// DeleteEvidence removes one item from the queue (not the file).
	DeleteEvidence(ctx context.Context, localID int64) error

	// ClearEvidence removes every item from the queue.
	ClearEvidence(ctx context.Context) error
}

// RecordCaptureRequest describes a freshly captured file.
type RecordCaptureRequest struct {
	EvidenceType    string // "video" or "audio"
	LocalPath       string
	FileSizeBytes   int64 // 0 means stat the file
	DurationSeconds int64
}

// Evidence represents a queued item at the port boundary.
//
// An item whose local file disappeared before upload is marked uploaded
// with an empty RemoteFileID: there is nothing left to retry. This is a
// clean give-up, not data loss in the queue.
type Evidence struct {
	LocalID         int64
	ServerID        *int64
	EvidenceType    string
	LocalPath       string
	FileSizeBytes   int64
	DurationSeconds int64
	UploadStatus    string
	CreatedAt       time.Time
	UploadedAt      *time.Time
	RemoteFileID    string
}

// GaveUp reports whether the item was closed without reaching the blob store.
func (e *Evidence) GaveUp() bool {
	return e.UploadStatus == EvidenceStatusUploaded && e.RemoteFileID == ""
}

// Evidence status constants.
const (
	EvidenceStatusPending  = "pending"
	EvidenceStatusUploaded = "uploaded"
)
