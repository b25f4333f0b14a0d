package secondary

import "context"

// PreferenceStore defines the secondary port for scalar device preferences.
type PreferenceStore interface {
	// GetBool returns the stored value and whether the key was present.
	GetBool(ctx context.Context, key string) (value bool, found bool, err error)

	// SetBool stores a value, replacing any previous one.
	SetBool(ctx context.Context, key string, value bool) error
}

// Preference keys.
const (
	// PrefMotionDetectionEnabled is the local toggle of a monitoring actor.
	PrefMotionDetectionEnabled = "motion_detection_enabled"

	// PrefRemoteMotionDetectionEnabled caches the last successfully
	// fetched remote setting of a monitored actor.
	PrefRemoteMotionDetectionEnabled = "remote_motion_detection_enabled"
)
