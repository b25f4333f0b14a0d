package primary

import "context"

// GateService defines the primary port for the motion-detection
// authorization gate. It is the single coordinator of the sensor
// pipeline's lifecycle.
type GateService interface {
	// Evaluate re-checks everything and starts or stops the pipeline.
	// A nil actor means no authenticated session and always stops it.
	// Evaluate never fails; remote failures fall back to the cached value.
	Evaluate(ctx context.Context, actor *Actor)

	// SetLocalToggle persists the local toggle and re-evaluates.
	// Accepted for every role; only monitoring actors are affected.
	SetLocalToggle(ctx context.Context, enabled bool, actor *Actor) error

	// RefreshRemoteSetting forces a fetch of the remote setting for a
	// monitored actor, then re-evaluates.
	RefreshRemoteSetting(ctx context.Context, actor *Actor)

	// Status returns the gate's current view of its inputs and output.
	Status(ctx context.Context) (*GateStatus, error)
}

// ActorRole classifies the current session into one of two modes.
type ActorRole string

const (
	// RoleMonitoring configures safety settings for someone else and
	// controls motion detection with a local toggle.
	RoleMonitoring ActorRole = "monitoring"
	// RoleMonitored has its settings configured remotely.
	RoleMonitored ActorRole = "monitored"
)

// Actor is the authenticated session as seen by the gate.
type Actor struct {
	Role ActorRole
}

// GateStatus is a passive snapshot for status surfaces.
type GateStatus struct {
	Running      bool
	LocalToggle  bool
	CachedRemote bool
}
