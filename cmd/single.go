package cmd

import (
	"os"
	"path/filepath"

	"github.com/LieberInstitute/slurmjobs/internal/scheduler"
	"github.com/LieberInstitute/slurmjobs/internal/utils"
	"github.com/spf13/cobra"
)

var singleCmd = &cobra.Command{
	Use:     "single <script-name>",
	Aliases: []string{"job_single"},
	Short:   "Generate a shell script for a single SLURM job",
	Long: `Generate a bash script with #SBATCH directives for one SLURM job.

With --tasks N the script becomes an array job of N tasks, each logging to
its own file. The script is written next to the given name (a .sh suffix is
appended if missing) and is never overwritten.`,
	Example: `  slurmjobs single my_analysis
  slurmjobs single my_array --tasks 10 -m 20G -c 4
  slurmjobs single dge_model -t 2-00:00:00 --submit`,
	Args: cobra.ExactArgs(1),
	Run:  runSingle,
}

func init() {
	rootCmd.AddCommand(singleCmd)
	registerJobFlags(singleCmd)
	f := singleCmd.Flags()
	f.IntVar(&jobTaskNum, "tasks", 0, "Number of array tasks (0 for a plain job)")
	f.IntVar(&jobThrottle, "throttle", 0, "Maximum concurrently running tasks")
}

func runSingle(cmd *cobra.Command, args []string) {
	cwd, err := os.Getwd()
	if err != nil {
		utils.PrintError("Cannot determine working directory: %v", err)
		os.Exit(1)
	}

	path, err := scheduler.RequireNewScript(cwd, args[0])
	if err != nil {
		utils.PrintError("%v", err)
		os.Exit(1)
	}

	name := scriptBaseName(path)
	cfg := jobConfigFromFlags(name, filepath.Dir(path))
	text, err := scheduler.BuildSingleJob(cfg)
	if err != nil {
		utils.PrintError("%v", err)
		os.Exit(1)
	}

	persistScript(text, path, cfg.LogDir)
	if jobSubmit {
		submitScript(path)
	}
}

func scriptBaseName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
