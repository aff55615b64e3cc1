package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/samhoang/copm/internal/config"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for copm.

To load completions:

Bash:
  $ source <(copm completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ copm completion bash > /etc/bash_completion.d/copm
  # macOS:
  $ copm completion bash > $(brew --prefix)/etc/bash_completion.d/copm

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ copm completion zsh > "${fpath[1]}/_copm"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ copm completion fish | source
  # To load completions for each session, execute once:
  $ copm completion fish > ~/.config/fish/completions/copm.fish

PowerShell:
  PS> copm completion powershell | Out-String | Invoke-Expression
  # To load completions for every new session, run:
  PS> copm completion powershell > copm.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(out, true)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		default:
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		}
	},
}

// completeInstalledPackages offers package names from the ledger selected by --global
func completeInstalledPackages(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	paths, err := config.ResolvePaths()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	global, _ := cmd.Flags().GetBool("global")
	lock, err := config.LoadLockfile(paths.LockPath(config.ScopeFor(global)))
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var names []string
	for _, pkg := range lock.Packages {
		if strings.HasPrefix(pkg.Name, toComplete) {
			names = append(names, pkg.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(completionCmd)
	uninstallCmd.ValidArgsFunction = completeInstalledPackages
}
