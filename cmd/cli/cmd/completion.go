package cmd

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate completion script",
	Long: `To load completions:

Bash:
  $ source <(manu-pro completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ manu-pro completion bash > /etc/bash_completion.d/manu-pro
  # macOS:
  $ manu-pro completion bash > /usr/local/etc/bash_completion.d/manu-pro

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ manu-pro completion zsh > "${fpath[1]}/_manu-pro"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ manu-pro completion fish | source

  # To load completions for each session, execute once:
  $ manu-pro completion fish > ~/.config/fish/completions/manu-pro.fish

PowerShell:
  PS> manu-pro completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> manu-pro completion powershell > manu-pro.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:                  runCompletion,
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletion(out)
	case "zsh":
		return rootCmd.GenZshCompletion(out)
	case "fish":
		return rootCmd.GenFishCompletion(out, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletion(out)
	}
	return nil
}
