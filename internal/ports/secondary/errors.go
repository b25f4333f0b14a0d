package secondary

import "errors"

// Error kinds shared by adapters and the application layer. None of them is
// fatal: callers fall back to cached state or leave work pending.
var (
	// ErrRemoteUnavailable covers transport and parse failures talking to
	// the settings service or the blob store.
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrLocalFileMissing means a queued evidence file is gone from disk.
	ErrLocalFileMissing = errors.New("local file missing")

	// ErrBackendSync covers failures of the backend evidence-record API.
	ErrBackendSync = errors.New("backend sync failed")
)
