package cmd

import (
	"os"
	"path/filepath"

	"github.com/LieberInstitute/slurmjobs/internal/config"
	"github.com/LieberInstitute/slurmjobs/internal/scheduler"
	"github.com/LieberInstitute/slurmjobs/internal/utils"
	"github.com/spf13/cobra"
)

// Flag values shared by the single and loop generators.
var (
	jobPartition string
	jobMemory    string
	jobCores     int
	jobTime      string
	jobEmail     string
	jobLogDir    string
	jobCommand   string
	jobTaskNum   int
	jobThrottle  int
	jobSubmit    bool
)

func registerJobFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&jobPartition, "partition", "p", "", "Partition to submit the job to")
	f.StringVarP(&jobMemory, "memory", "m", "", "Memory request, e.g. 10G or 500M")
	f.IntVarP(&jobCores, "cores", "c", 0, "Number of CPU cores per task")
	f.StringVarP(&jobTime, "time", "t", "", "Time limit, e.g. 1-00:00:00")
	f.StringVar(&jobEmail, "email", "", "Mail events: BEGIN, END, FAIL or ALL")
	f.StringVar(&jobLogDir, "log-dir", "", "Directory for job log files")
	f.StringVar(&jobCommand, "command", "", "Command to run inside the job")
	f.BoolVar(&jobSubmit, "submit", false, "Submit the generated script with sbatch")
}

// jobConfigFromFlags merges flag values over the configured defaults.
func jobConfigFromFlags(name, scriptDir string) *scheduler.JobScriptConfig {
	cfg := &scheduler.JobScriptConfig{
		Name:            name,
		Partition:       config.Global.DefaultPartition,
		Memory:          config.Global.DefaultMemory,
		Cores:           config.Global.DefaultCores,
		TimeLimit:       config.Global.DefaultTime,
		Email:           config.Global.DefaultEmail,
		LogDir:          config.Global.LogDir,
		ScriptDir:       scriptDir,
		Command:         jobCommand,
		TaskNum:         jobTaskNum,
		TaskConcurrency: jobThrottle,
	}
	if jobPartition != "" {
		cfg.Partition = jobPartition
	}
	if jobMemory != "" {
		cfg.Memory = jobMemory
	}
	if jobCores > 0 {
		cfg.Cores = jobCores
	}
	if jobTime != "" {
		cfg.TimeLimit = jobTime
	}
	if jobEmail != "" {
		cfg.Email = jobEmail
	}
	if jobLogDir != "" {
		cfg.LogDir = jobLogDir
	}
	return cfg
}

// persistScript writes a generated script and makes sure its log directory
// exists next to it, so the job does not die on a missing -o path.
func persistScript(text, path, logDir string) {
	if err := scheduler.Persist(text, path); err != nil {
		utils.PrintError("%v", err)
		os.Exit(1)
	}
	logPath := logDir
	if !filepath.IsAbs(logPath) {
		logPath = filepath.Join(filepath.Dir(path), logPath)
	}
	if err := utils.EnsureDir(logPath); err != nil {
		utils.PrintWarning("Could not create log directory %s: %v", utils.StylePath(logPath), err)
	}
	utils.PrintSuccess("Created %s", utils.StylePath(path))
	if !jobSubmit && utils.IsInteractiveShell() {
		utils.PrintHint("Submit with: sbatch %s", path)
	}
}

// submitScript hands a persisted script to sbatch.
func submitScript(path string) {
	sched, err := scheduler.NewSlurmSchedulerWithBinary(config.Global.SbatchBin)
	if err != nil {
		utils.PrintError("Cannot submit: %v", err)
		os.Exit(1)
	}
	jobID, err := sched.Submit(path)
	if err != nil {
		utils.PrintError("Submission failed: %v", err)
		os.Exit(1)
	}
	utils.PrintSuccess("Submitted batch job %s", utils.StyleNumber(jobID))
}
