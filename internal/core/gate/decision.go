// Package gate contains the pure decision logic of the motion-detection
// authorization gate. No I/O: the application layer gathers the inputs
// and applies the resulting transition.
package gate

// Role is the behavioral mode of the authenticated actor.
type Role string

const (
	RoleMonitoring Role = "monitoring"
	RoleMonitored  Role = "monitored"
)

// Actor is the authenticated session. A nil *Actor means no session.
type Actor struct {
	Role Role
}

// Decision reasons, logged verbatim.
const (
	ReasonNoActor        = "no authenticated actor"
	ReasonRemoteDisabled = "remote setting disabled"
	ReasonLocalDisabled  = "local toggle disabled"
	ReasonRemoteEnabled  = "remote setting enabled"
	ReasonLocalEnabled   = "local toggle enabled"
	ReasonUnknownRole    = "unknown actor role"
	ReasonAlreadyRunning = "already running"
	ReasonAlreadyStopped = "already stopped"
)

// DecisionContext holds every input of one evaluation.
type DecisionContext struct {
	Actor *Actor
	// LocalToggle is only consulted for monitoring actors.
	LocalToggle bool
	// RemoteSetting is the fetched-or-cached value, only consulted for
	// monitored actors.
	RemoteSetting bool
}

// Decision says whether the pipeline should run, and why.
type Decision struct {
	Run    bool
	Reason string
}

// Decide evaluates whether the sensor pipeline should run.
// Rules:
// - No actor: stop
// - Monitored: follow the remote setting
// - Monitoring: follow the local toggle
func Decide(ctx DecisionContext) Decision {
	if ctx.Actor == nil {
		return Decision{Run: false, Reason: ReasonNoActor}
	}

	switch ctx.Actor.Role {
	case RoleMonitored:
		if ctx.RemoteSetting {
			return Decision{Run: true, Reason: ReasonRemoteEnabled}
		}
		return Decision{Run: false, Reason: ReasonRemoteDisabled}
	case RoleMonitoring:
		if ctx.LocalToggle {
			return Decision{Run: true, Reason: ReasonLocalEnabled}
		}
		return Decision{Run: false, Reason: ReasonLocalDisabled}
	default:
		return Decision{Run: false, Reason: ReasonUnknownRole}
	}
}

// Action is what the application layer must do to the pipeline.
type Action string

const (
	ActionStart Action = "start"
	ActionStop  Action = "stop"
	ActionNone  Action = "none"
)

// Transition pairs an action with the human-readable reason for it.
type Transition struct {
	Action Action
	// Reason is the decision's reason.
	Reason string
	// Detail explains a no-op.
	Detail string
}

// PlanTransition turns a decision into an idempotent action given the
// pipeline's current state: start only if stopped, stop only if running.
func PlanTransition(decision Decision, isRunning bool) Transition {
	switch {
	case decision.Run && !isRunning:
		return Transition{Action: ActionStart, Reason: decision.Reason}
	case decision.Run && isRunning:
		return Transition{Action: ActionNone, Reason: decision.Reason, Detail: ReasonAlreadyRunning}
	case !decision.Run && isRunning:
		return Transition{Action: ActionStop, Reason: decision.Reason}
	default:
		return Transition{Action: ActionNone, Reason: decision.Reason, Detail: ReasonAlreadyStopped}
	}
}
