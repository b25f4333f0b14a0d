package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/watchful/internal/ports/primary"
	"github.com/example/watchful/internal/wire"
)

// defaultReevaluateInterval paces the periodic gate check that picks up
// remote setting changes while the daemon runs.
const defaultReevaluateInterval = 5 * time.Minute

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var reevaluate time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the watchful daemon",
		Long: `Run the daemon until interrupted:
- Evaluate the gate now and every --reevaluate interval
- Run the retry worker on its schedule and on connectivity changes
- Probe connectivity when a probe URL is configured
- Serve the local status API when status.listen is set`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reevaluate <= 0 {
				return fmt.Errorf("--reevaluate must be positive, got %s", reevaluate)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			defer wire.Close()

			return serve(ctx, reevaluate)
		},
	}

	cmd.Flags().DurationVar(&reevaluate, "reevaluate", defaultReevaluateInterval, "How often to re-evaluate the gate")

	return cmd
}

func serve(ctx context.Context, reevaluate time.Duration) error {
	cfg := wire.Config()
	logger := wire.Logger().With("component", "serve")
	gate := wire.GateService()
	worker := wire.RetryWorker()
	actor := wire.Actor()

	group, ctx := errgroup.WithContext(ctx)

	if prober := wire.ProbeMonitor(); prober != nil {
		group.Go(func() error {
			return prober.Run(ctx)
		})
	}

	group.Go(func() error {
		gate.Evaluate(ctx, actor)

		ticker := time.NewTicker(reevaluate)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				// Leave the pipeline stopped when the daemon exits.
				gate.Evaluate(context.WithoutCancel(ctx), nil)
				return nil
			case <-ticker.C:
				gate.Evaluate(ctx, actor)
			}
		}
	})

	group.Go(func() error {
		if err := worker.Start(ctx, cfg.RetryInterval()); err != nil {
			return fmt.Errorf("failed to start retry worker: %w", err)
		}
		<-ctx.Done()
		worker.Stop()
		return nil
	})

	if cfg.Status.Listen != "" {
		group.Go(func() error {
			if err := wire.StatusServer().ListenAndServe(ctx, cfg.Status.Listen); err != nil {
				return fmt.Errorf("status API: %w", err)
			}
			return nil
		})
	}

	logger.Info("watchful started", "role", roleName(actor), "retry_interval", cfg.RetryInterval(), "upload_when", cfg.Worker.UploadWhen)
	err := group.Wait()
	logger.Info("watchful stopped")
	return err
}

func roleName(actor *primary.Actor) string {
	if actor == nil {
		return "none"
	}
	return string(actor.Role)
}
