package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/example/watchful/internal/core/gate"
	"github.com/example/watchful/internal/ports/primary"
	"github.com/example/watchful/internal/ports/secondary"
)

// remoteFetchKey groups concurrent evaluations onto one remote fetch.
const remoteFetchKey = "motion_detection"

// GateServiceImpl implements the GateService interface.
type GateServiceImpl struct {
	prefs    secondary.PreferenceStore
	remote   secondary.RemoteSettingsReader
	pipeline secondary.SensorPipeline
	logger   *slog.Logger

	fetches singleflight.Group
}

// NewGateService creates a new GateService with injected dependencies.
// A nil logger discards output.
func NewGateService(prefs secondary.PreferenceStore, remote secondary.RemoteSettingsReader, pipeline secondary.SensorPipeline, logger *slog.Logger) *GateServiceImpl {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GateServiceImpl{
		prefs:    prefs,
		remote:   remote,
		pipeline: pipeline,
		logger:   logger.With("component", "gate"),
	}
}

// Evaluate re-checks the actor, the local toggle and the remote setting and
// starts or stops the pipeline accordingly.
func (s *GateServiceImpl) Evaluate(ctx context.Context, actor *primary.Actor) {
	s.evaluate(ctx, actor, nil)
}

// SetLocalToggle persists the local toggle and re-evaluates.
func (s *GateServiceImpl) SetLocalToggle(ctx context.Context, enabled bool, actor *primary.Actor) error {
	if err := s.prefs.SetBool(ctx, secondary.PrefMotionDetectionEnabled, enabled); err != nil {
		return fmt.Errorf("failed to save local toggle: %w", err)
	}
	s.logger.Info("local toggle changed", "enabled", enabled)

	s.Evaluate(ctx, actor)
	return nil
}

// RefreshRemoteSetting forces a fetch for monitored actors, then
// re-evaluates with the fresh (or cached) value.
func (s *GateServiceImpl) RefreshRemoteSetting(ctx context.Context, actor *primary.Actor) {
	if actor == nil || actor.Role != primary.RoleMonitored {
		s.Evaluate(ctx, actor)
		return
	}

	// Not joined with an in-flight evaluation: a refresh must observe a
	// fetch that started after it was requested.
	remote := s.fetchAndCache(ctx)
	s.evaluate(ctx, actor, &remote)
}

// Status returns the pipeline state and the stored gate inputs.
func (s *GateServiceImpl) Status(ctx context.Context) (*primary.GateStatus, error) {
	local, _, err := s.prefs.GetBool(ctx, secondary.PrefMotionDetectionEnabled)
	if err != nil {
		return nil, fmt.Errorf("failed to read local toggle: %w", err)
	}
	remote, _, err := s.prefs.GetBool(ctx, secondary.PrefRemoteMotionDetectionEnabled)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached remote setting: %w", err)
	}

	return &primary.GateStatus{
		Running:      s.pipeline.IsRunning(),
		LocalToggle:  local,
		CachedRemote: remote,
	}, nil
}

// evaluate gathers the inputs the actor's role needs, decides, and applies
// the transition. A non-nil remote skips the remote fetch.
func (s *GateServiceImpl) evaluate(ctx context.Context, actor *primary.Actor, remote *bool) {
	decisionCtx := gate.DecisionContext{Actor: toCoreActor(actor)}

	if actor != nil {
		switch actor.Role {
		case primary.RoleMonitored:
			if remote != nil {
				decisionCtx.RemoteSetting = *remote
			} else {
				decisionCtx.RemoteSetting = s.sharedFetchAndCache(ctx)
			}
		case primary.RoleMonitoring:
			decisionCtx.LocalToggle = s.readBool(ctx, secondary.PrefMotionDetectionEnabled)
		}
	}

	decision := gate.Decide(decisionCtx)
	s.apply(ctx, gate.PlanTransition(decision, s.pipeline.IsRunning()), actor)
}

// apply performs a planned transition. Pipeline errors are logged only:
// the next evaluation retries.
func (s *GateServiceImpl) apply(ctx context.Context, transition gate.Transition, actor *primary.Actor) {
	role := "none"
	if actor != nil {
		role = string(actor.Role)
	}

	switch transition.Action {
	case gate.ActionStart:
		if err := s.pipeline.Start(ctx); err != nil {
			s.logger.Error("failed to start motion detection", "role", role, "reason", transition.Reason, "error", err)
			return
		}
		s.logger.Info("motion detection started", "role", role, "reason", transition.Reason)
	case gate.ActionStop:
		if err := s.pipeline.Stop(ctx); err != nil {
			s.logger.Error("failed to stop motion detection", "role", role, "reason", transition.Reason, "error", err)
			return
		}
		s.logger.Info("motion detection stopped", "role", role, "reason", transition.Reason)
	default:
		s.logger.Info("motion detection unchanged", "role", role, "reason", transition.Reason, "state", transition.Detail)
	}
}

// sharedFetchAndCache joins any fetch already in flight. The shared fetch
// outlives the caller that started it, so one caller giving up does not
// hand the others a stale value; the backend client's timeout bounds it.
func (s *GateServiceImpl) sharedFetchAndCache(ctx context.Context) bool {
	fetchCtx := context.WithoutCancel(ctx)
	value, _, _ := s.fetches.Do(remoteFetchKey, func() (any, error) {
		return s.fetchAndCache(fetchCtx), nil
	})
	return value.(bool)
}

// fetchAndCache fetches the remote setting and caches it. On failure the
// cached value is used, or false when nothing was ever cached.
func (s *GateServiceImpl) fetchAndCache(ctx context.Context) bool {
	value, err := s.remote.FetchMotionDetectionSetting(ctx)
	if err != nil {
		cached := s.readBool(ctx, secondary.PrefRemoteMotionDetectionEnabled)
		s.logger.Warn("remote setting unavailable, using cached value", "cached", cached, "error", err)
		return cached
	}

	if err := s.prefs.SetBool(ctx, secondary.PrefRemoteMotionDetectionEnabled, value); err != nil {
		s.logger.Warn("failed to cache remote setting", "error", err)
	}
	return value
}

// readBool reads a preference, treating a missing key or a read failure as false.
func (s *GateServiceImpl) readBool(ctx context.Context, key string) bool {
	value, _, err := s.prefs.GetBool(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read preference", "key", key, "error", err)
		return false
	}
	return value
}

// ResolveActor classifies the session's raw role names. It returns nil when
// no name is recognized, which the gate treats as no session.
func ResolveActor(roleNames []string) *primary.Actor {
	resolved := gate.ResolveActor(roleNames)
	if resolved == nil {
		return nil
	}
	return &primary.Actor{Role: primary.ActorRole(resolved.Role)}
}

func toCoreActor(actor *primary.Actor) *gate.Actor {
	if actor == nil {
		return nil
	}
	switch actor.Role {
	case primary.RoleMonitored:
		return &gate.Actor{Role: gate.RoleMonitored}
	case primary.RoleMonitoring:
		return &gate.Actor{Role: gate.RoleMonitoring}
	default:
		return &gate.Actor{Role: gate.Role(actor.Role)}
	}
}

// Ensure GateServiceImpl implements the interface
var _ primary.GateService = (*GateServiceImpl)(nil)
