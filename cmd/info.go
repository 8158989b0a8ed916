package cmd

import (
	"fmt"

	"github.com/LieberInstitute/slurmjobs/internal/config"
	"github.com/LieberInstitute/slurmjobs/internal/scheduler"
	"github.com/LieberInstitute/slurmjobs/internal/utils"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display SLURM installation information",
	Long: `Display information about the SLURM installation this tool would submit
to: sbatch path, version, and whether submission is currently possible.`,
	Example: `  slurmjobs info`,
	Args:    cobra.NoArgs,
	Run:     runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	sched, err := scheduler.NewSlurmSchedulerWithBinary(config.Global.SbatchBin)
	if err != nil {
		utils.PrintMessage("SLURM Status: %s", utils.StyleError("Not Found"))
		utils.PrintMessage("")
		utils.PrintMessage("No sbatch binary detected on this system.")
		utils.PrintMessage("Script generation still works; submission does not.")
		return
	}

	info := sched.GetInfo()

	// Structured output, no [SJ] prefix.
	fmt.Println("SLURM Information:")
	fmt.Printf("  Binary:    %s\n", utils.StylePath(info.Binary))
	if info.Version != "" {
		fmt.Printf("  Version:   %s\n", utils.StyleNumber(info.Version))
		if !scheduler.VersionSupported(info.Version) {
			fmt.Printf("  Warning:   %s\n", utils.StyleWarning("version is older than the tested minimum"))
		}
	}

	if info.InJob {
		fmt.Printf("  Status:    %s (inside job)\n", utils.StyleError("Unavailable"))
		fmt.Println()
		fmt.Println("You are currently inside a SLURM job (detected via environment).")
		fmt.Println("Submission is disabled to prevent nested job submissions.")
		return
	}
	if info.Available {
		fmt.Printf("  Status:    %s\n", utils.StyleSuccess("Available"))
	} else {
		fmt.Printf("  Status:    %s\n", utils.StyleError("Unavailable"))
	}

	if configPath, err := config.GetUserConfigPath(); err == nil {
		fmt.Printf("  Config:    %s\n", utils.StylePath(configPath))
	}
}
