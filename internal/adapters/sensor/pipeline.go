// Package sensor controls the on-device motion sensing pipeline.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/example/watchful/internal/ports/secondary"
)

// DefaultStopGrace is how long Stop waits after SIGTERM before killing.
const DefaultStopGrace = 5 * time.Second

// Config holds configuration for an ExecPipeline.
type Config struct {
	// Command launches the sensing process. Empty selects dry mode: the
	// pipeline only tracks its state.
	Command string
	Args    []string

	StopGrace time.Duration
	Logger    *slog.Logger
}

// ExecPipeline runs the motion sensing process as a child process.
// Start and Stop are idempotent.
type ExecPipeline struct {
	command   string
	args      []string
	stopGrace time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
	cmd     *exec.Cmd
	exited  chan struct{}
}

// NewExecPipeline creates a pipeline from config.
func NewExecPipeline(config Config) *ExecPipeline {
	if config.StopGrace <= 0 {
		config.StopGrace = DefaultStopGrace
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &ExecPipeline{
		command:   config.Command,
		args:      config.Args,
		stopGrace: config.StopGrace,
		logger:    config.Logger.With("component", "sensor"),
	}
}

// Start launches the sensing process unless it is already running.
func (p *ExecPipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}
	if p.command == "" {
		p.running = true
		p.logger.Info("sensor pipeline started", "mode", "dry")
		return nil
	}

	// Not bound to ctx: the process outlives the evaluation that started it.
	cmd := exec.Command(p.command, p.args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start sensor pipeline: %w", err)
	}

	exited := make(chan struct{})
	p.cmd = cmd
	p.exited = exited
	p.running = true
	go p.wait(cmd, exited)

	p.logger.Info("sensor pipeline started", "pid", cmd.Process.Pid)
	return nil
}

// wait reaps the process and clears the running state if it exits on its own.
func (p *ExecPipeline) wait(cmd *exec.Cmd, exited chan struct{}) {
	err := cmd.Wait()
	close(exited)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != cmd {
		return
	}
	p.running = false
	p.cmd = nil
	p.exited = nil
	if err != nil {
		p.logger.Warn("sensor pipeline exited", "error", err)
	} else {
		p.logger.Info("sensor pipeline exited")
	}
}

// Stop terminates the sensing process and waits for it to exit.
func (p *ExecPipeline) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	cmd, exited := p.cmd, p.exited
	p.running = false
	p.cmd = nil
	p.exited = nil
	p.mu.Unlock()

	if cmd == nil {
		p.logger.Info("sensor pipeline stopped", "mode", "dry")
		return nil
	}

	if err := cmd.Process.Signal(terminateSignal); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Debug("terminate signal failed, killing", "error", err)
		_ = cmd.Process.Kill()
	}

	timer := time.NewTimer(p.stopGrace)
	defer timer.Stop()
	select {
	case <-exited:
	case <-timer.C:
		p.logger.Warn("sensor pipeline ignored terminate, killing")
		_ = cmd.Process.Kill()
		<-exited
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-exited
	}

	p.logger.Info("sensor pipeline stopped")
	return nil
}

// IsRunning reports whether the pipeline is running.
func (p *ExecPipeline) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Ensure ExecPipeline implements the interface
var _ secondary.SensorPipeline = (*ExecPipeline)(nil)
