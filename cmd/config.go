package cmd

import (
	"fmt"
	"os"

	"github.com/LieberInstitute/slurmjobs/internal/config"
	"github.com/LieberInstitute/slurmjobs/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var showConfigPath bool

// configKeys is the list of known configuration keys for shell completion
var configKeys = []string{
	"sbatch_bin",
	"submit_job",
	"job.partition",
	"job.memory",
	"job.cores",
	"job.time",
	"job.email",
	"job.log_dir",
}

func configKeysCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return configKeys, cobra.ShellCompDirectiveNoFileComp
	}
	if len(args) == 1 && args[0] == "job.email" {
		return []string{"BEGIN", "END", "FAIL", "ALL"}, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage slurmjobs configuration",
	Long: `Manage slurmjobs configuration settings.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (SLURMJOBS_*)
  3. User config file (~/.config/slurmjobs/config.yaml)
  4. System config file (/etc/slurmjobs/config.yaml)
  5. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		if showConfigPath {
			configPath, err := config.GetUserConfigPath()
			if err != nil {
				utils.PrintError("Failed to get config path: %v", err)
				os.Exit(1)
			}
			fmt.Println(configPath)
			return
		}

		fmt.Println(utils.StyleTitle("Current Configuration:"))
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Printf("  Config file: %s\n", utils.StylePath(used))
		} else {
			fmt.Printf("  Config file: %s\n", utils.StyleWarning("none (using defaults)"))
		}
		fmt.Println()
		fmt.Printf("  sbatch_bin:    %s\n", config.Global.SbatchBin)
		fmt.Printf("  submit_job:    %v\n", config.Global.SubmitJob)
		fmt.Printf("  job.partition: %s\n", config.Global.DefaultPartition)
		fmt.Printf("  job.memory:    %s\n", config.Global.DefaultMemory)
		fmt.Printf("  job.cores:     %d\n", config.Global.DefaultCores)
		fmt.Printf("  job.time:      %s\n", config.Global.DefaultTime)
		fmt.Printf("  job.email:     %s\n", config.Global.DefaultEmail)
		fmt.Printf("  job.log_dir:   %s\n", config.Global.LogDir)
	},
}

var configSetCmd = &cobra.Command{
	Use:               "set <key> <value>",
	Short:             "Set a configuration value and save it",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: configKeysCompletion,
	Run: func(cmd *cobra.Command, args []string) {
		key, value := args[0], args[1]
		known := false
		for _, k := range configKeys {
			if k == key {
				known = true
				break
			}
		}
		if !known {
			utils.PrintError("Unknown configuration key %q", key)
			utils.PrintHint("Known keys: %v", configKeys)
			os.Exit(1)
		}
		if key == "sbatch_bin" && !config.ValidateBinary(value) {
			utils.PrintWarning("%s does not resolve to an executable", utils.StylePath(value))
		}

		viper.Set(key, value)
		if err := config.SaveConfig(); err != nil {
			utils.PrintError("Failed to save config: %v", err)
			os.Exit(1)
		}
		configPath, _ := config.GetUserConfigPath()
		utils.PrintSuccess("Set %s = %s in %s", key, value, utils.StylePath(configPath))
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configShowCmd.Flags().BoolVar(&showConfigPath, "path", false, "Print only the user config file path")
}
