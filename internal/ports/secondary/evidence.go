package secondary

import (
	"context"
	"time"
)

// EvidenceRepository defines the secondary port for the local upload queue.
// It is the only writer of evidence rows.
type EvidenceRepository interface {
	// Insert persists a new row and returns its local ID.
	Insert(ctx context.Context, record *EvidenceRecord) (int64, error)

	// Update applies the non-nil fields of update to a row.
	// A row that is already uploaded cannot be moved back to pending.
	Update(ctx context.Context, localID int64, update EvidenceUpdate) error

	// GetAll returns every row, newest first.
	GetAll(ctx context.Context) ([]*EvidenceRecord, error)

	// GetPending returns rows awaiting upload, oldest first.
	GetPending(ctx context.Context) ([]*EvidenceRecord, error)

	// GetByID returns the row, or nil if it does not exist.
	GetByID(ctx context.Context, localID int64) (*EvidenceRecord, error)

	// Delete removes a row.
	Delete(ctx context.Context, localID int64) error

	// ClearAll removes every row.
	ClearAll(ctx context.Context) error

	// CountPending returns the number of rows awaiting upload.
	CountPending(ctx context.Context) (int, error)
}

// EvidenceRecord is one locally captured artifact as stored in the queue.
type EvidenceRecord struct {
	LocalID         int64
	ServerID        *int64 // nil until the backend record exists
	EvidenceType    string
	LocalPath       string
	FileSizeBytes   int64
	DurationSeconds int64
	UploadStatus    string
	CreatedAt       time.Time
	UploadedAt      *time.Time
	RemoteFileID    string // empty until uploaded; stays empty for give-up rows
}

// EvidenceUpdate carries a partial update. Nil fields are left untouched.
type EvidenceUpdate struct {
	ServerID     *int64
	UploadStatus *string
	UploadedAt   *time.Time
	RemoteFileID *string
}

// Upload status values.
const (
	UploadStatusPending  = "pending"
	UploadStatusUploaded = "uploaded"
)

// Evidence type values.
const (
	EvidenceTypeVideo = "video"
	EvidenceTypeAudio = "audio"
)
