package cmd

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/samhoang/copm/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage copm settings",
	Long:  `Inspect and create ~/.copm/config.toml, the user-level copm settings.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate default config.toml",
	Long: `Generate a default config.toml.

Example config.toml:

  default_tools = ["copilot"]
  log_level = "warn"

  [github]
  api_base_url = "https://api.github.com"
  clone_base_url = "https://github.com"
  timeout_seconds = 60

GITHUB_TOKEN is used when github.token is not set.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	paths, err := config.ResolvePaths()
	if err != nil {
		return err
	}

	settings, err := config.LoadSettings(paths.CopmDir)
	if err != nil {
		return err
	}
	if settings.GitHub.Token != "" {
		settings.GitHub.Token = "********"
	}

	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	paths, err := config.ResolvePaths()
	if err != nil {
		return err
	}
	fmt.Println(paths.SettingsPath())
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	paths, err := config.ResolvePaths()
	if err != nil {
		return err
	}

	configPath := paths.SettingsPath()
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config already exists: %s\n", configPath)
		fmt.Println("Edit it directly or delete to regenerate.")
		return nil
	}

	if err := config.DefaultSettings().Save(paths.CopmDir); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Created: %s\n", configPath)
	return nil
}
