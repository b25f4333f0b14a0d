package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/watchful/internal/config"
)

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create and inspect the watchful configuration",
	}

	cmd.AddCommand(configInitCmd())
	cmd.AddCommand(configShowCmd())

	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(cmd)
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			if err := config.SaveConfig(path, config.Default()); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote default config to %s\n", path)
			fmt.Println("  Set session.roles and backend.base_url before running `watchful serve`.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")

	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			explicit, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(explicit)
			if err != nil {
				return err
			}

			if cfg.Session.Token != "" {
				cfg.Session.Token = "(redacted)"
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

// resolveConfigPath returns the file `config init` writes: the --config
// flag, then $WATCHFUL_CONFIG, then the default location.
func resolveConfigPath(cmd *cobra.Command) (string, error) {
	if explicit, _ := cmd.Flags().GetString("config"); explicit != "" {
		return explicit, nil
	}
	if path := os.Getenv(config.EnvConfig); path != "" {
		return path, nil
	}
	return config.DefaultPath()
}
