package backend

import (
	"context"
	"fmt"

	"github.com/example/watchful/internal/ports/secondary"
)

// Offline stands in for the backend when no base URL is configured. Every
// call fails with the error kind callers already tolerate.
type Offline struct{}

// FetchMotionDetectionSetting always fails with ErrRemoteUnavailable.
func (Offline) FetchMotionDetectionSetting(ctx context.Context) (bool, error) {
	return false, fmt.Errorf("%w: no backend configured", secondary.ErrRemoteUnavailable)
}

// CreateRecord always fails with ErrBackendSync.
func (Offline) CreateRecord(ctx context.Context, req secondary.CreateRecordRequest) (int64, error) {
	return 0, fmt.Errorf("%w: no backend configured", secondary.ErrBackendSync)
}

// MarkUploaded always fails with ErrBackendSync.
func (Offline) MarkUploaded(ctx context.Context, serverID int64, remoteFileID string) error {
	return fmt.Errorf("%w: no backend configured", secondary.ErrBackendSync)
}

var (
	_ secondary.RemoteSettingsReader = Offline{}
	_ secondary.EvidenceBackend      = Offline{}
)
