package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/LieberInstitute/slurmjobs/internal/report"
	"github.com/LieberInstitute/slurmjobs/internal/utils"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:     "report <job-id>",
	Aliases: []string{"job_report"},
	Short:   "Summarize a finished job from the accounting records",
	Long: `Query sacct for one job and print one row per array task: requested and
peak memory in GB, final state and elapsed time.

Pending array tasks that sacct reports as a single collapsed range are
expanded into individual rows.`,
	Example: `  slurmjobs report 2434691`,
	Args:    cobra.ExactArgs(1),
	Run:     runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) {
	jobID, err := strconv.Atoi(args[0])
	if err != nil {
		utils.PrintError("Invalid job ID %q: expected a number", args[0])
		os.Exit(1)
	}

	records, err := report.NewClient().JobReport(jobID)
	if err != nil {
		utils.PrintError("%v", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		utils.PrintMessage("No accounting records for job %s", utils.StyleNumber(jobID))
		return
	}
	printJobRecords(records)
}

func printJobRecords(records []report.JobRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "JOB\tTASK\tUSER\tNAME\tPARTITION\tCPUS\tREQ_GB\tRSS_GB\tVMEM_GB\tSTATE\tELAPSED")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.JobID,
			formatTask(r.ArrayTaskID),
			r.User, r.Name, r.Partition, r.CPUs,
			formatGB(&r.ReqMemGB),
			formatGB(r.RSSGB),
			formatGB(r.VMemGB),
			r.Status,
			formatElapsed(r.Elapsed))
	}
	w.Flush()
}

func formatTask(task *int) string {
	if task == nil {
		return "-"
	}
	return strconv.Itoa(*task)
}

func formatGB(v *float64) string {
	if v == nil {
		return "NA"
	}
	return strconv.FormatFloat(*v, 'g', 6, 64)
}

func formatElapsed(d time.Duration) string {
	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	mins := (total % 3600) / 60
	secs := total % 60
	if days > 0 {
		return fmt.Sprintf("%d-%02d:%02d:%02d", days, hours, mins, secs)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, mins, secs)
}
