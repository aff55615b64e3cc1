package cmd

import (
	"github.com/spf13/cobra"
)

var uninstallGlobal bool

var uninstallCmd = &cobra.Command{
	Use:     "uninstall <name>",
	Aliases: []string{"rm", "remove"},
	Short:   "Remove an installed package",
	Long: `Remove the files recorded for a package in copm.lock and drop it from
copm.json. Uninstalling a package that is not installed does nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVarP(&uninstallGlobal, "global", "g", false, "Remove from user-level locations")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	mgr, err := newManager()
	if err != nil {
		return err
	}

	_, err = mgr.Uninstall(cmd.Context(), args[0], uninstallGlobal)
	return err
}
