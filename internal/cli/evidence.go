package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/watchful/internal/ports/primary"
	"github.com/example/watchful/internal/wire"
)

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Inspect and manage the local evidence upload queue",
	Long:  "Queue captured files, list what is waiting for upload, and remove entries from the queue",
}

var evidenceAddCmd = &cobra.Command{
	Use:   "add [path]",
	Short: "Queue a captured file for upload",
	Long: `Queue a captured video or audio file. The retry worker uploads it on its
next drain. The file size is read from disk unless --size is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		evidenceType, _ := cmd.Flags().GetString("type")
		size, _ := cmd.Flags().GetInt64("size")
		duration, _ := cmd.Flags().GetInt64("duration")

		_, err := wire.EvidenceAdapter().Add(context.Background(), primary.RecordCaptureRequest{
			EvidenceType:    evidenceType,
			LocalPath:       args[0],
			FileSizeBytes:   size,
			DurationSeconds: duration,
		})
		return err
	},
}

var evidenceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every queued item, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.EvidenceAdapter().List(context.Background(), false)
		return err
	},
}

var evidencePendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List items awaiting upload, in upload order",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.EvidenceAdapter().List(context.Background(), true)
		return err
	},
}

var evidenceShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one queued item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		localID, err := parseLocalID(args[0])
		if err != nil {
			return err
		}
		_, err = wire.EvidenceAdapter().Show(context.Background(), localID)
		return err
	},
}

var evidenceRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Remove one item from the queue (the file is kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		localID, err := parseLocalID(args[0])
		if err != nil {
			return err
		}
		return wire.EvidenceAdapter().Remove(context.Background(), localID)
	},
}

var evidenceClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every item from the queue",
	Long: `Remove every item from the queue. Pending items will never be uploaded.
Files on disk are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm("Clear the evidence queue? Pending items will not be uploaded. [y/N] ") {
			fmt.Println("Aborted")
			return nil
		}
		return wire.EvidenceAdapter().Clear(context.Background())
	},
}

func init() {
	// evidence add flags
	evidenceAddCmd.Flags().StringP("type", "t", "video", "Evidence type (video or audio)")
	evidenceAddCmd.Flags().Int64("size", 0, "File size in bytes (default: read from disk)")
	evidenceAddCmd.Flags().Int64P("duration", "d", 0, "Recording duration in seconds")

	// evidence clear flags
	evidenceClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	// Register subcommands
	evidenceCmd.AddCommand(evidenceAddCmd)
	evidenceCmd.AddCommand(evidenceListCmd)
	evidenceCmd.AddCommand(evidencePendingCmd)
	evidenceCmd.AddCommand(evidenceShowCmd)
	evidenceCmd.AddCommand(evidenceRmCmd)
	evidenceCmd.AddCommand(evidenceClearCmd)
}

// EvidenceCmd returns the evidence command
func EvidenceCmd() *cobra.Command {
	return evidenceCmd
}

func parseLocalID(arg string) (int64, error) {
	localID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || localID <= 0 {
		return 0, fmt.Errorf("invalid evidence id %q", arg)
	}
	return localID, nil
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
