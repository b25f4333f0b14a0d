package sensor

import (
	"context"
	"runtime"
	"testing"
	"time"
)

func TestExecPipeline_DryMode(t *testing.T) {
	ctx := context.Background()
	pipeline := NewExecPipeline(Config{})

	if pipeline.IsRunning() {
		t.Fatal("expected stopped initially")
	}
	if err := pipeline.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := pipeline.Start(ctx); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if !pipeline.IsRunning() {
		t.Fatal("expected running")
	}
	if err := pipeline.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := pipeline.Stop(ctx); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if pipeline.IsRunning() {
		t.Error("expected stopped")
	}
}

func TestExecPipeline_StartStopProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sleep")
	}
	ctx := context.Background()
	pipeline := NewExecPipeline(Config{Command: "sleep", Args: []string{"60"}, StopGrace: 2 * time.Second})

	if err := pipeline.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !pipeline.IsRunning() {
		t.Fatal("expected running")
	}

	if err := pipeline.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if pipeline.IsRunning() {
		t.Error("expected stopped")
	}
}

func TestExecPipeline_ProcessExitClearsState(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses true")
	}
	pipeline := NewExecPipeline(Config{Command: "true"})

	if err := pipeline.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for pipeline.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("expected state cleared after the process exited")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// A later start launches a fresh process.
	if err := pipeline.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
}

func TestExecPipeline_StartFailure(t *testing.T) {
	pipeline := NewExecPipeline(Config{Command: "/nonexistent/motion-sensor"})

	if err := pipeline.Start(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if pipeline.IsRunning() {
		t.Error("expected stopped after a failed start")
	}
}
