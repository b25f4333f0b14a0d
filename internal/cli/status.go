package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/watchful/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session, the gate and the upload queue",
		Long: `Display what this device is doing right now:
- The session role the gate evaluates for
- The local and cached remote motion-detection toggles
- Whether the sensing pipeline runs
- How many evidence items wait for upload`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus(context.Background())
		},
	}
}

func showStatus(ctx context.Context) error {
	pending, err := wire.EvidenceService().CountPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending evidence: %w", err)
	}
	return wire.GateAdapter().Status(ctx, wire.Actor(), pending)
}
