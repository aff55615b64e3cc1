package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/samhoang/copm/internal/installer"
)

var (
	listGlobal bool
	listFormat string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List installed artifacts",
	Long: `List skills, instructions, agents, prompts, commands and plugins found in
the install locations, grouped by type.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listGlobal, "global", "g", false, "List user-level locations")
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "Output format (table, json, yaml)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	mgr, err := newManager()
	if err != nil {
		return err
	}

	groups, err := mgr.List(listGlobal)
	if err != nil {
		return fmt.Errorf("failed to scan installed artifacts: %w", err)
	}
	if groups == nil {
		groups = []installer.Group{}
	}

	switch listFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(groups)
	case "table":
		return printGroups(os.Stdout, groups)
	default:
		return fmt.Errorf("invalid format: %s (valid: table, json, yaml)", listFormat)
	}
}

var groupStyle = lipgloss.NewStyle().Bold(true)

func printGroups(out io.Writer, groups []installer.Group) error {
	if len(groups) == 0 {
		fmt.Fprintln(out, "Nothing installed")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", groupStyle.Render(fmt.Sprintf("%s (%d)", g.Label, len(g.Items))))
		for _, item := range g.Items {
			fmt.Fprintf(w, "  %s\t%s\n", item.Name, item.Description)
		}
	}
	return w.Flush()
}
