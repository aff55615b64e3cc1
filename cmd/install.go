package cmd

import (
	"github.com/spf13/cobra"
)

var installGlobal bool

var installCmd = &cobra.Command{
	Use:     "install [owner/repo[:subpath]]",
	Aliases: []string{"i", "add"},
	Short:   "Install a package, or every dependency in copm.json",
	Long: `Install a package from GitHub.

The repository is downloaded and its content classified as a skill, skill
collection, agents, prompts or instructions. A sub-path selects one
directory or file when the repository holds several.

Without an argument every dependency in copm.json is installed.

Examples:
  copm install blader/humanizer
  copm install github/awesome-copilot:prompts/update-llms.prompt.md
  copm install -g anthropics/skills:skills
  copm install`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVarP(&installGlobal, "global", "g", false, "Install into user-level locations under the home directory")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	mgr, err := newManager()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return mgr.InstallAll(cmd.Context(), installGlobal)
	}

	_, err = mgr.Install(cmd.Context(), args[0], installGlobal)
	return err
}
