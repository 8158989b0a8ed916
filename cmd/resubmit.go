package cmd

import (
	"os"
	"strings"

	"github.com/LieberInstitute/slurmjobs/internal/config"
	"github.com/LieberInstitute/slurmjobs/internal/report"
	"github.com/LieberInstitute/slurmjobs/internal/scheduler"
	"github.com/LieberInstitute/slurmjobs/internal/utils"
	"github.com/spf13/cobra"
)

var (
	resubmitTasks   []int
	resubmitSubmit  bool
	resubmitRestore bool
)

var resubmitCmd = &cobra.Command{
	Use:     "resubmit <script>",
	Aliases: []string{"array_submit"},
	Short:   "Rerun selected tasks of a previously generated array job",
	Long: `Patch the --array directive of a generated array-job script so it names
only the given tasks, submit it, and restore the original script afterwards.

Without --task the failed tasks are discovered automatically: the script's
log from the previous run names the job ID, and the accounting records name
every task that did not complete. If any link in that chain is missing, name
the tasks explicitly.`,
	Example: `  slurmjobs resubmit my_array.sh --task 2 --task 5
  slurmjobs resubmit my_array.sh --task 2,5,9 --no-submit
  slurmjobs resubmit my_array.sh            # rerun whatever failed`,
	Args: cobra.ExactArgs(1),
	Run:  runResubmit,
}

func init() {
	rootCmd.AddCommand(resubmitCmd)
	f := resubmitCmd.Flags()
	f.IntSliceVar(&resubmitTasks, "task", nil, "Array task ID to rerun (repeatable)")
	f.BoolVar(&resubmitSubmit, "submit", true, "Submit the patched script with sbatch")
	f.BoolVar(&resubmitRestore, "restore", true, "Restore the original script after submission")
}

func runResubmit(cmd *cobra.Command, args []string) {
	cwd, err := os.Getwd()
	if err != nil {
		utils.PrintError("Cannot determine working directory: %v", err)
		os.Exit(1)
	}
	path, err := scheduler.RequireExistingScript(cwd, args[0])
	if err != nil {
		utils.PrintError("%v", err)
		os.Exit(1)
	}

	if data, err := os.ReadFile(path); err == nil {
		if version, ok := scheduler.GeneratorVersion(string(data)); ok {
			utils.PrintDebug("Script was generated with slurmjobs %s", version)
		} else {
			utils.PrintWarning("Script %s does not carry a slurmjobs version stamp", utils.StylePath(path))
		}
	}

	opts := scheduler.ResubmitOptions{
		TaskIDs:  resubmitTasks,
		Submit:   resubmitSubmit,
		Restore:  resubmitRestore,
		Reporter: report.NewClient(),
	}
	if opts.Submit {
		sched, err := scheduler.NewSlurmSchedulerWithBinary(config.Global.SbatchBin)
		if err != nil {
			utils.PrintError("Cannot submit: %v", err)
			os.Exit(1)
		}
		opts.Scheduler = sched
	}

	result, err := scheduler.Resubmit(path, opts)
	if err != nil {
		utils.PrintError("%v", err)
		os.Exit(1)
	}

	taskList := make([]string, len(result.TaskIDs))
	for i, t := range result.TaskIDs {
		taskList[i] = utils.StyleNumber(t)
	}
	utils.PrintMessage("Resubmitting tasks: %s", strings.Join(taskList, ", "))
	if result.SubmittedID != "" {
		utils.PrintSuccess("Submitted batch job %s", utils.StyleNumber(result.SubmittedID))
	}
	if result.Restored {
		utils.PrintDebug("Restored original script %s", path)
	}
}
