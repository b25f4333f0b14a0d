package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/watchful/internal/wire"
)

// GateCmd returns the gate command
func GateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Control the motion-detection gate",
		Long: `The gate decides whether the motion sensing pipeline may run.

A monitoring session (guardian, admin) follows the local toggle.
A monitored session (child, elderly) follows the remote setting its
guardian configured, falling back to the last value seen when the
backend cannot be reached. Without a session the pipeline never runs.`,
	}

	cmd.AddCommand(gateEvaluateCmd())
	cmd.AddCommand(gateToggleCmd())
	cmd.AddCommand(gateRefreshCmd())
	cmd.AddCommand(gateStatusCmd())

	return cmd
}

func gateEvaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Re-check the session and settings, then start or stop the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.GateAdapter().Evaluate(context.Background(), wire.Actor())
		},
	}
}

func gateToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "toggle [on|off]",
		Short:     "Set the local motion-detection toggle",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			return wire.GateAdapter().Toggle(context.Background(), enabled, wire.Actor())
		},
	}
}

func gateRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the remote motion-detection setting now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.GateAdapter().Refresh(context.Background(), wire.Actor())
		},
	}
}

func gateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the gate's inputs and whether the pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus(context.Background())
		},
	}
}

func parseOnOff(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "true", "enable", "enabled":
		return true, nil
	case "off", "false", "disable", "disabled":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", arg)
	}
}
