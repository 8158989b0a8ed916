package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/LieberInstitute/slurmjobs/internal/report"
	"github.com/LieberInstitute/slurmjobs/internal/utils"
	"github.com/spf13/cobra"
)

var (
	partitionsName     string
	partitionsAllNodes bool
)

var partitionsCmd = &cobra.Command{
	Use:     "partitions",
	Aliases: []string{"partition_info"},
	Short:   "Show free and total CPUs and memory per partition",
	Long: `Query sinfo per node and aggregate per partition. Free figures only count
nodes in the mixed or idle states; nodes that are down, drained or fully
allocated contribute to the totals but offer nothing schedulable.`,
	Example: `  slurmjobs partitions
  slurmjobs partitions -p shared --all-nodes`,
	Args: cobra.NoArgs,
	Run:  runPartitions,
}

func init() {
	rootCmd.AddCommand(partitionsCmd)
	f := partitionsCmd.Flags()
	f.StringVarP(&partitionsName, "partition", "p", "", "Only show this partition")
	f.BoolVar(&partitionsAllNodes, "all-nodes", false, "One row per node instead of per partition")
}

func runPartitions(cmd *cobra.Command, args []string) {
	records, err := report.NewClient().PartitionReport(partitionsName, partitionsAllNodes)
	if err != nil {
		utils.PrintError("%v", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		utils.PrintMessage("No partitions found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if partitionsAllNodes {
		fmt.Fprintln(w, "PARTITION\tNODE\tFREE_CPUS\tTOTAL_CPUS\tFREE_GB\tTOTAL_GB\tPROP_CPUS\tPROP_MEM")
	} else {
		fmt.Fprintln(w, "PARTITION\tFREE_CPUS\tTOTAL_CPUS\tFREE_GB\tTOTAL_GB\tPROP_CPUS\tPROP_MEM")
	}
	for _, r := range records {
		if partitionsAllNodes {
			fmt.Fprintf(w, "%s\t%s\t", r.Partition, r.Node)
		} else {
			fmt.Fprintf(w, "%s\t", r.Partition)
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%.2f\t%.2f\n",
			r.FreeCPUs, r.TotalCPUs,
			strconv.FormatFloat(r.FreeMemGB, 'f', 1, 64),
			strconv.FormatFloat(r.TotalMemGB, 'f', 1, 64),
			r.PropFreeCPUs, r.PropFreeMem)
	}
	w.Flush()
}
