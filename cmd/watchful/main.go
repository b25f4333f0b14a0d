package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/watchful/internal/cli"
	"github.com/example/watchful/internal/config"
	"github.com/example/watchful/internal/version"
	"github.com/example/watchful/internal/wire"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "watchful",
		Short:   "watchful - on-device motion detection and evidence upload",
		Version: version.String(),
		Long: `watchful decides whether the motion sensing pipeline may run on this
device and uploads captured evidence to the safety backend, retrying
until every file is delivered.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			wire.SetConfigPath(configPath)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		fmt.Sprintf("Config file (default: $%s or ~/.watchful/config.yaml)", config.EnvConfig))

	// Add subcommands
	rootCmd.AddCommand(cli.GateCmd())
	rootCmd.AddCommand(cli.EvidenceCmd())
	rootCmd.AddCommand(cli.WorkerCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.ServeCmd())

	// Developer tools
	rootCmd.AddCommand(cli.ConfigCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
