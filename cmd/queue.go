package cmd

import (
	"os"

	"github.com/LieberInstitute/slurmjobs/internal/report"
	"github.com/LieberInstitute/slurmjobs/internal/utils"
	"github.com/spf13/cobra"
)

var (
	queueUser      string
	queuePartition string
)

var queueCmd = &cobra.Command{
	Use:     "queue",
	Aliases: []string{"job_info"},
	Short:   "Show currently running jobs with live memory usage",
	Long: `Query squeue for RUNNING jobs and, for jobs owned by the invoking user,
ask sstat for the current peak memory. Other users' jobs show NA because
sstat only answers for your own jobs.`,
	Example: `  slurmjobs queue
  slurmjobs queue -u lcollado -p shared`,
	Args: cobra.NoArgs,
	Run:  runQueue,
}

func init() {
	rootCmd.AddCommand(queueCmd)
	f := queueCmd.Flags()
	f.StringVarP(&queueUser, "user", "u", "", "Only show jobs of this user")
	f.StringVarP(&queuePartition, "partition", "p", "", "Only show jobs in this partition")
}

func runQueue(cmd *cobra.Command, args []string) {
	records, err := report.NewClient().QueueReport(queueUser, queuePartition)
	if err != nil {
		utils.PrintError("%v", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		utils.PrintMessage("No running jobs found")
		return
	}
	printJobRecords(records)
}
