package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/LieberInstitute/slurmjobs/internal/config"
	"github.com/LieberInstitute/slurmjobs/internal/report"
	"github.com/LieberInstitute/slurmjobs/internal/scheduler"
	"github.com/LieberInstitute/slurmjobs/internal/utils"
	"github.com/spf13/cobra"
)

var (
	debugMode bool
	quietMode bool
)

var rootCmd = &cobra.Command{
	Use:           "slurmjobs",
	Short:         "slurmjobs: generate, resubmit and monitor SLURM array jobs.",
	Version:       config.VERSION,
	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Step 1: Load compiled-in defaults
		config.LoadDefaults()

		// Step 2: Initialize Viper (config file, env vars)
		if err := config.InitViper(); err != nil {
			utils.PrintDebug("Error reading config file: %v", err)
		}

		// Step 3: Load configured values into the Global config
		config.LoadFromViper()

		// Step 4: Apply command-line flags (highest priority)
		if debugMode {
			utils.DebugMode = true
			config.Global.Debug = true
			utils.PrintDebug("Debug mode enabled")
			utils.PrintDebug("slurmjobs Version: %s", utils.StyleInfo(config.VERSION))
			utils.PrintDebug("Default Partition: %s", config.Global.DefaultPartition)
			utils.PrintDebug("Sbatch Binary: %s", config.Global.SbatchBin)
		}
		if quietMode {
			utils.QuietMode = true
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra's automatic error printing is silenced. For external tool
		// failures print only the captured output (trimmed) and exit with
		// non-zero status. For other errors, print the default error string.
		var output string
		var ste *scheduler.ExternalToolError
		var rte *report.ExternalToolError
		switch {
		case errors.As(err, &ste):
			output = ste.Output
		case errors.As(err, &rte):
			output = rte.Output
		}
		if out := strings.TrimSpace(output); out != "" {
			fmt.Fprintln(os.Stderr, out)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Subcommands are attached to rootCmd in their respective init() functions
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress informational output")
}
