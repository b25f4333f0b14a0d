package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/watchful/internal/ports/primary"
)

// GateAdapter is a thin adapter that translates CLI operations to
// GateService and RetryWorker calls.
type GateAdapter struct {
	gate   primary.GateService
	worker primary.RetryWorker
	out    io.Writer
}

// NewGateAdapter creates a new GateAdapter with the given services.
func NewGateAdapter(gate primary.GateService, worker primary.RetryWorker, out io.Writer) *GateAdapter {
	return &GateAdapter{
		gate:   gate,
		worker: worker,
		out:    out,
	}
}

// Evaluate re-runs the gate for actor and prints the outcome.
func (a *GateAdapter) Evaluate(ctx context.Context, actor *primary.Actor) error {
	a.gate.Evaluate(ctx, actor)
	return a.printPipeline(ctx)
}

// Toggle sets the local motion-detection toggle.
func (a *GateAdapter) Toggle(ctx context.Context, enabled bool, actor *primary.Actor) error {
	if err := a.gate.SetLocalToggle(ctx, enabled, actor); err != nil {
		return fmt.Errorf("failed to set motion detection: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Local motion detection %s\n", onOff(enabled))
	if actor == nil || actor.Role != primary.RoleMonitoring {
		fmt.Fprintln(a.out, "  (saved; the local toggle has no effect for this session)")
	}
	return a.printPipeline(ctx)
}

// Refresh forces a read of the remote setting.
func (a *GateAdapter) Refresh(ctx context.Context, actor *primary.Actor) error {
	a.gate.RefreshRemoteSetting(ctx, actor)
	return a.printPipeline(ctx)
}

// Retry runs one drain cycle and prints its report.
func (a *GateAdapter) Retry(ctx context.Context) primary.DrainReport {
	report := a.worker.TriggerRetry(ctx)

	if report.Skipped {
		fmt.Fprintf(a.out, "%s drain skipped: %s\n", color.New(color.FgYellow).Sprint("!"), report.SkipReason)
		return report
	}

	fmt.Fprintf(a.out, "✓ Drain finished: %d attempted, %d uploaded, %d gave up, %d failed\n",
		report.Attempted, report.Uploaded, report.GaveUp, report.Failed)
	return report
}

// Status prints the gate's inputs and output.
func (a *GateAdapter) Status(ctx context.Context, actor *primary.Actor, pending int) error {
	status, err := a.gate.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read gate status: %w", err)
	}

	fmt.Fprintln(a.out, "Watchful Status")
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "Session:       %s\n", roleLabel(actor))
	fmt.Fprintf(a.out, "Local toggle:  %s\n", onOff(status.LocalToggle))
	fmt.Fprintf(a.out, "Remote toggle: %s (cached)\n", onOff(status.CachedRemote))
	fmt.Fprintf(a.out, "Pipeline:      %s\n", runningLabel(status.Running))
	if a.worker != nil {
		fmt.Fprintf(a.out, "Retry worker:  %s\n", runningLabel(a.worker.IsRunning()))
	}
	if pending > 0 {
		fmt.Fprintf(a.out, "Pending:       %s\n", color.New(color.FgYellow).Sprintf("%d", pending))
	} else {
		fmt.Fprintln(a.out, "Pending:       0")
	}
	return nil
}

func (a *GateAdapter) printPipeline(ctx context.Context) error {
	status, err := a.gate.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read gate status: %w", err)
	}
	fmt.Fprintf(a.out, "Pipeline: %s\n", runningLabel(status.Running))
	return nil
}

func roleLabel(actor *primary.Actor) string {
	if actor == nil {
		return color.New(color.FgRed).Sprint("none")
	}
	return string(actor.Role)
}

func runningLabel(running bool) string {
	if running {
		return color.New(color.FgGreen).Sprint("running")
	}
	return color.New(color.FgYellow).Sprint("stopped")
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
