package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/watchful/internal/wire"
)

// WorkerCmd returns the worker command
func WorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Drive the evidence retry worker",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "retry",
		Short: "Run one upload drain now and wait for it",
		Long: `Upload every pending item, oldest first, if connectivity allows it.
A drain already running elsewhere in this process is not joined.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			// A one-shot run has no prober loop; take one reading first.
			if prober := wire.ProbeMonitor(); prober != nil {
				prober.Probe(ctx)
			}
			wire.GateAdapter().Retry(ctx)
			return nil
		},
	})

	return cmd
}
