package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/samhoang/copm/internal/config"
	"github.com/samhoang/copm/internal/logger"
	"github.com/samhoang/copm/internal/project"
)

var Version = "dev"

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "copm",
	Short: "Package manager for Copilot and Claude artifacts",
	Long: `copm installs skills, agents, prompts and instructions published in GitHub
repositories into the locations GitHub Copilot and Claude Code read them from.

Dependencies are declared in copm.json and pinned in copm.lock.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// setupLogging applies --log-level, falling back to config.toml
func setupLogging(cmd *cobra.Command, args []string) error {
	level := logLevel
	if !cmd.Flags().Changed("log-level") {
		if paths, err := config.ResolvePaths(); err == nil {
			if settings, err := config.LoadSettings(paths.CopmDir); err == nil && settings.LogLevel != "" {
				level = settings.LogLevel
			}
		}
	}

	if err := logger.SetLogLevel(level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLogFormat(logFormat)
	return nil
}

// newManager resolves paths and settings for the current directory
func newManager() (*project.Manager, error) {
	paths, err := config.ResolvePaths()
	if err != nil {
		return nil, err
	}

	settings, err := config.LoadSettings(paths.CopmDir)
	if err != nil {
		return nil, err
	}

	return project.NewManager(paths, settings), nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
}
