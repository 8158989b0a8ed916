package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/LieberInstitute/slurmjobs/internal/scheduler"
	"github.com/LieberInstitute/slurmjobs/internal/utils"
	"github.com/spf13/cobra"
)

var loopVarFlags []string

var loopCmd = &cobra.Command{
	Use:     "loop <script-name>",
	Aliases: []string{"job_loop"},
	Short:   "Generate an array job looping over variable combinations",
	Long: `Generate a SLURM array job that runs once per combination of loop
variable values, plus a companion script invoked with one resolved value per
variable.

Each --var flag declares one variable as name=value,value,... The array has
one task per element of the cross product, in row-major order: the last
declared variable varies fastest.`,
	Example: `  slurmjobs loop align --var sample=s1,s2,s3
  slurmjobs loop dge --var region=DLPFC,HIPPO --var feature=gene,exon,tx`,
	Args: cobra.ExactArgs(1),
	Run:  runLoop,
}

func init() {
	rootCmd.AddCommand(loopCmd)
	registerJobFlags(loopCmd)
	f := loopCmd.Flags()
	f.StringArrayVar(&loopVarFlags, "var", nil, "Loop variable as name=v1,v2,... (repeatable)")
	f.IntVar(&jobThrottle, "throttle", 0, "Maximum concurrently running tasks")
	loopCmd.MarkFlagRequired("var")
}

func runLoop(cmd *cobra.Command, args []string) {
	loop, err := parseLoopVars(loopVarFlags)
	if err != nil {
		utils.PrintError("%v", err)
		os.Exit(1)
	}

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
	companionPath := scheduler.CompanionPath(path)
	if utils.FileExists(companionPath) {
		utils.PrintError("%v: %s", scheduler.ErrScriptExists, companionPath)
		os.Exit(1)
	}

	cfg := jobConfigFromFlags(scriptBaseName(path), filepath.Dir(path))
	script, companion, err := scheduler.BuildLoopJob(loop, cfg)
	if err != nil {
		utils.PrintError("%v", err)
		os.Exit(1)
	}

	persistScript(script, path, cfg.LogDir)
	if err := scheduler.Persist(companion, companionPath); err != nil {
		utils.PrintError("%v", err)
		os.Exit(1)
	}
	utils.PrintSuccess("Created %s", utils.StylePath(companionPath))
	utils.PrintMessage("Array tasks: %s", utils.StyleNumber(loop.TotalTasks()))

	if jobSubmit {
		submitScript(path)
	}
}

// parseLoopVars converts repeated name=v1,v2 flags into a LoopSpec, keeping
// declaration order since it defines task numbering.
func parseLoopVars(flags []string) (scheduler.LoopSpec, error) {
	loop := make(scheduler.LoopSpec, 0, len(flags))
	for _, raw := range flags {
		name, values, found := strings.Cut(raw, "=")
		if !found || name == "" {
			return nil, scheduler.NewValidationError("var", raw, "expected name=value,value,...")
		}
		split := strings.Split(values, ",")
		cleaned := make([]string, 0, len(split))
		for _, v := range split {
			if v = strings.TrimSpace(v); v != "" {
				cleaned = append(cleaned, v)
			}
		}
		loop = append(loop, scheduler.LoopVar{Name: name, Values: cleaned})
	}
	if err := loop.Validate(); err != nil {
		return nil, err
	}
	return loop, nil
}
