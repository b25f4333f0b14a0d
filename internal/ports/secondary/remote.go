package secondary

import "context"

// RemoteSettingsReader fetches the authoritative safety settings of the
// monitored actor this device belongs to.
type RemoteSettingsReader interface {
	// FetchMotionDetectionSetting returns the remote motion toggle.
	// Every failure matches ErrRemoteUnavailable.
	FetchMotionDetectionSetting(ctx context.Context) (bool, error)
}

// BlobStore stores evidence files remotely.
type BlobStore interface {
	// Upload stores the file at localPath and returns an opaque remote
	// file identifier.
	Upload(ctx context.Context, localPath string) (string, error)
}

// EvidenceBackend is the backend evidence-record API. Both calls are best
// effort from the worker's point of view; failures match ErrBackendSync.
//
// A failed CreateRecord does not hold back the upload. The worker still
// stores the file and closes the local row with no server ID, so the
// backend never learns about that item and nothing retries the record.
type EvidenceBackend interface {
	// CreateRecord registers captured evidence and returns its server ID.
	CreateRecord(ctx context.Context, req CreateRecordRequest) (int64, error)

	// MarkUploaded tells the backend where the file now lives.
	MarkUploaded(ctx context.Context, serverID int64, remoteFileID string) error
}

// CreateRecordRequest is the metadata sent when registering evidence.
type CreateRecordRequest struct {
	EvidenceType    string
	LocalPath       string
	FileSizeBytes   int64
	DurationSeconds int64
}
