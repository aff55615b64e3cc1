package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/samhoang/copm/internal/config"
	copmerrors "github.com/samhoang/copm/internal/errors"
	"github.com/samhoang/copm/internal/picker"
)

var initTools []string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create copm.json in the current directory",
	Long: `Create copm.json, the project dependency file.

On a terminal you are asked which tools the project uses. Otherwise the
tools come from --tools or default_tools in config.toml.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringSliceVar(&initTools, "tools", nil, "Tools to target (copilot, claude)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	paths, err := config.ResolvePaths()
	if err != nil {
		return err
	}
	if paths.ProjectConfigExists() {
		return copmerrors.ErrConfigExists
	}

	settings, err := config.LoadSettings(paths.CopmDir)
	if err != nil {
		return err
	}

	tools := initTools
	if len(tools) == 0 {
		tools = settings.DefaultTools
		if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
			tools, err = picker.SelectTools(tools)
			if errors.Is(err, picker.ErrCancelled) {
				fmt.Println("Cancelled")
				return nil
			}
			if err != nil {
				return err
			}
		}
	}

	for _, tool := range tools {
		if !isKnownTool(tool) {
			return fmt.Errorf("unknown tool %q (valid: %s)", tool, strings.Join(config.AllTools(), ", "))
		}
	}

	mgr, err := newManager()
	if err != nil {
		return err
	}
	return mgr.Init(tools)
}

func isKnownTool(tool string) bool {
	for _, t := range config.AllTools() {
		if t == tool {
			return true
		}
	}
	return false
}
