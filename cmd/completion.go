package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// detectShell auto-detects the current shell from environment
func detectShell() string {
	shell := strings.ToLower(os.Getenv("SHELL"))
	switch {
	case strings.Contains(shell, "fish"):
		return "fish"
	case strings.Contains(shell, "zsh"):
		return "zsh"
	case strings.Contains(shell, "pwsh"), strings.Contains(shell, "powershell"):
		return "powershell"
	}
	return "bash"
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for slurmjobs.

If no shell is specified, the shell is auto-detected from $SHELL.

To load completions:

Bash:
  $ source <(slurmjobs completion bash)

Zsh:
  $ slurmjobs completion zsh > "${fpath[1]}/_slurmjobs"

Fish:
  $ slurmjobs completion fish | source
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		shell := detectShell()
		if len(args) > 0 {
			shell = args[0]
		}

		// Strip short shorthands (-x) so completion proposes only the long
		// options; restored after generation.
		saved := stripShortFlagShorthands(cmd.Root())
		defer restoreShortFlagShorthands(cmd.Root(), saved)

		switch shell {
		case "bash":
			cmd.Root().GenBashCompletionV2(os.Stdout, true)
		case "zsh":
			cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// stripShortFlagShorthands walks the command tree and clears the Shorthand
// field for any flag that has one, returning a map of saved values so they
// can be restored later.
func stripShortFlagShorthands(root *cobra.Command) map[string]string {
	saved := make(map[string]string)
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		visit := func(f *pflag.Flag) {
			if f.Shorthand != "" {
				saved[c.CommandPath()+"|"+f.Name] = f.Shorthand
				f.Shorthand = ""
			}
		}
		c.Flags().VisitAll(visit)
		c.PersistentFlags().VisitAll(visit)
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(root)
	return saved
}

// restoreShortFlagShorthands puts back the shorthand values removed by
// stripShortFlagShorthands.
func restoreShortFlagShorthands(root *cobra.Command, saved map[string]string) {
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		visit := func(f *pflag.Flag) {
			if s, ok := saved[c.CommandPath()+"|"+f.Name]; ok {
				f.Shorthand = s
			}
		}
		c.Flags().VisitAll(visit)
		c.PersistentFlags().VisitAll(visit)
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(root)
}
