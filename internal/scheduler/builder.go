package scheduler

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/LieberInstitute/slurmjobs/internal/config"
)

// JobScriptConfig describes one batch job script to generate.
type JobScriptConfig struct {
	Name      string // Job name; also the script base name
	Partition string // Partition/queue to submit to
	Memory    string // Total memory request, e.g. "10G", "500M"
	Cores     int    // CPU cores (>= 1)
	TimeLimit string // Wall clock limit in SLURM time syntax
	Email     string // Mail trigger: BEGIN, END, FAIL or ALL
	LogDir    string // Directory for job logs (absolute path)
	ScriptDir string // Directory the scripts will live in; required for loop jobs
	Command   string // Job body; for loop jobs appended after the worker call

	TaskNum         int // Array cardinality; 0 means not an array job
	TaskConcurrency int // Array throttle (%N); defaults to 20 when 0
}

// defaultTaskConcurrency limits how many array tasks run at once unless the
// caller overrides it.
const defaultTaskConcurrency = 20

var (
	emailModes = map[string]bool{"BEGIN": true, "END": true, "FAIL": true, "ALL": true}

	// Digit-only memory amounts without a unit are rejected on purpose: SLURM
	// interprets them as MB, which is almost never what the caller meant.
	memoryRe = regexp.MustCompile(`^[1-9][0-9]*[KMGT]$`)

	// Accepted time forms: minutes, MM:SS, HH:MM:SS, D-HH, D-HH:MM, D-HH:MM:SS
	timeLimitRe = regexp.MustCompile(`^([0-9]+|[0-9]{1,2}(:[0-9]{1,2}){1,2}|[0-9]+-[0-9]{1,2}(:[0-9]{1,2}){0,2})$`)
)

// Validate checks every field constraint. It runs before any filesystem or
// subprocess side effect so a failed build leaves nothing behind.
func (cfg *JobScriptConfig) Validate() error {
	if cfg.Name == "" {
		return NewValidationError("name", "", "job name is required")
	}
	if !emailModes[cfg.Email] {
		return NewValidationError("email", cfg.Email, "invalid email option, use BEGIN, END, FAIL or ALL")
	}
	if cfg.Cores < 1 {
		return NewValidationError("cores", fmt.Sprintf("%d", cfg.Cores), "at least one core is required")
	}
	if !memoryRe.MatchString(cfg.Memory) {
		return NewValidationError("memory", cfg.Memory, "cannot parse memory request, use e.g. 10G or 500M")
	}
	if !timeLimitRe.MatchString(cfg.TimeLimit) {
		return NewValidationError("time_limit", cfg.TimeLimit, "invalid time limit")
	}
	if cfg.LogDir == "" {
		return NewValidationError("log_dir", "", "log directory is required")
	}
	if cfg.TaskNum < 0 {
		return NewValidationError("task_num", fmt.Sprintf("%d", cfg.TaskNum), "task count must not be negative")
	}
	return nil
}

func (cfg *JobScriptConfig) throttle() int {
	if cfg.TaskConcurrency > 0 {
		return cfg.TaskConcurrency
	}
	return defaultTaskConcurrency
}

// jobIDVar returns the shell expression carrying the scheduler job ID for this
// job. Array tasks report the shared base ID so that log files can be mapped
// back to a single sacct query.
func (cfg *JobScriptConfig) jobIDVar() string {
	if cfg.TaskNum > 0 {
		return "${SLURM_ARRAY_JOB_ID}"
	}
	return "${SLURM_JOB_ID}"
}

// BuildSingleJob renders the batch script for cfg and returns it as text.
// Nothing is written to disk; compose with Persist for that.
func BuildSingleJob(cfg *JobScriptConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	writeShebang(&b)
	writeDirectives(&b, cfg, logPath(cfg))
	b.WriteString("\nset -e\n\n")
	writeJobHeader(&b, cfg)
	b.WriteString("\n")
	if cfg.Command != "" {
		b.WriteString(cfg.Command)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	writeJobFooter(&b, cfg)
	b.WriteString("\n")
	writeVersionTrailer(&b)

	return b.String(), nil
}

// BuildLoopJob renders a loop array job: the batch script plus a companion
// worker script that receives one resolved value per loop variable. The array
// cardinality is the product of the value counts.
func BuildLoopJob(loop LoopSpec, cfg *JobScriptConfig) (script, companion string, err error) {
	if err := loop.Validate(); err != nil {
		return "", "", err
	}

	loopCfg := *cfg
	loopCfg.TaskNum = loop.TotalTasks()
	if err := loopCfg.Validate(); err != nil {
		return "", "", err
	}
	if loopCfg.ScriptDir == "" {
		return "", "", NewValidationError("script_dir", "", "script directory is required for loop jobs")
	}

	var b strings.Builder
	writeShebang(&b)
	// The real log path depends on the resolved loop values, which only exist
	// at runtime. The static directives point at a discard sink and the body
	// redirects itself once the values are known.
	writeDirectives(&b, &loopCfg, "/dev/null")
	b.WriteString("\nset -e\n\n")

	b.WriteString("# Resolve loop variable values for this task\n")
	for i, v := range loop {
		plan := ComputeIndexPlan(loop, i)
		fmt.Fprintf(&b, "all_%s=(%s)\n", v.Name, quoteValues(v.Values))
		fmt.Fprintf(&b, "%s=${all_%s[$(( SLURM_ARRAY_TASK_ID / %d %% %d ))]}\n",
			v.Name, v.Name, plan.Divisor, plan.Modulus)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "_LOG_FILE=%s\n", loopLogPath(&loopCfg, loop))
	b.WriteString("{\n\n")
	writeJobHeader(&b, &loopCfg)
	b.WriteString("\n")

	// Companion lives next to the batch script; the caller persists both.
	companionPath := CompanionPath(filepath.Join(loopCfg.ScriptDir, loopCfg.Name+".sh"))
	fmt.Fprintf(&b, "bash %q%s\n", companionPath, companionArgs(loop))
	if loopCfg.Command != "" {
		loopCfg.Command = strings.TrimRight(loopCfg.Command, "\n")
		b.WriteString(loopCfg.Command)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	writeJobFooter(&b, &loopCfg)
	b.WriteString("\n")
	fmt.Fprintf(&b, "} &> \"${_LOG_FILE}\"\n\n")
	writeVersionTrailer(&b)

	return b.String(), buildCompanion(loop, &loopCfg), nil
}

// CompanionPath returns the worker script path paired with a loop job's batch
// script path.
func CompanionPath(scriptPath string) string {
	base := strings.TrimSuffix(scriptPath, filepath.Ext(scriptPath))
	return base + ".main.sh"
}

// buildCompanion renders the per-task worker script: it declares one long
// option per loop variable and echoes the resolved values.
func buildCompanion(loop LoopSpec, cfg *JobScriptConfig) string {
	var b strings.Builder
	writeShebang(&b)
	fmt.Fprintf(&b, "# Per-task worker for %s. Receives one value per loop variable.\n\n", cfg.Name)

	for _, v := range loop {
		fmt.Fprintf(&b, "%s=\"\"\n", v.Name)
	}
	b.WriteString("\nwhile [[ $# -gt 0 ]]; do\n")
	b.WriteString("    case \"$1\" in\n")
	for _, v := range loop {
		fmt.Fprintf(&b, "        --%s) %s=\"$2\"; shift 2 ;;\n", v.Name, v.Name)
	}
	b.WriteString("        *) echo \"Unknown option: $1\" >&2; exit 1 ;;\n")
	b.WriteString("    esac\ndone\n\n")
	for _, v := range loop {
		fmt.Fprintf(&b, "echo \"%s: ${%s}\"\n", v.Name, v.Name)
	}
	b.WriteString("\n")
	writeVersionTrailer(&b)
	return b.String()
}

func writeShebang(b *strings.Builder) {
	b.WriteString("#!/bin/bash\n")
}

// writeDirectives emits the #SBATCH block. Order is fixed for reproducibility
// even though SLURM itself does not care.
func writeDirectives(b *strings.Builder, cfg *JobScriptConfig, log string) {
	fmt.Fprintf(b, "#SBATCH -p %s\n", cfg.Partition)
	fmt.Fprintf(b, "#SBATCH --mem=%s\n", cfg.Memory)
	fmt.Fprintf(b, "#SBATCH --job-name=%s\n", cfg.Name)
	fmt.Fprintf(b, "#SBATCH -c %d\n", cfg.Cores)
	fmt.Fprintf(b, "#SBATCH -t %s\n", cfg.TimeLimit)
	fmt.Fprintf(b, "#SBATCH -o %s\n", log)
	fmt.Fprintf(b, "#SBATCH -e %s\n", log)
	fmt.Fprintf(b, "#SBATCH --mail-type=%s\n", cfg.Email)
	if cfg.TaskNum > 0 {
		fmt.Fprintf(b, "#SBATCH --array=1-%d%%%d\n", cfg.TaskNum, cfg.throttle())
	}
}

// logPath is the static log path for a non-loop job. Plain array jobs embed
// the %a task-index placeholder so each task logs separately.
func logPath(cfg *JobScriptConfig) string {
	if cfg.TaskNum > 0 {
		return filepath.Join(cfg.LogDir, cfg.Name+".%a.txt")
	}
	return filepath.Join(cfg.LogDir, cfg.Name+".txt")
}

// loopLogPath is the runtime-computed log path for a loop job: every resolved
// loop value plus the task index ends up in the file name.
func loopLogPath(cfg *JobScriptConfig, loop LoopSpec) string {
	parts := []string{cfg.Name}
	for _, v := range loop {
		parts = append(parts, fmt.Sprintf("%s_${%s}", v.Name, v.Name))
	}
	name := strings.Join(parts, "_") + "_task${SLURM_ARRAY_TASK_ID}.txt"
	return filepath.Join(cfg.LogDir, name)
}

func companionArgs(loop LoopSpec) string {
	var b strings.Builder
	for _, v := range loop {
		fmt.Fprintf(&b, " --%s \"${%s}\"", v.Name, v.Name)
	}
	return b.String()
}

func quoteValues(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, " ")
}

// writeJobHeader writes the job info echo block. The "Job ID:" line doubles as
// the anchor the resubmit auto-discovery reads back out of the log file.
func writeJobHeader(b *strings.Builder, cfg *JobScriptConfig) {
	b.WriteString("# Print job information\n")
	b.WriteString("echo \"========================================\"\n")
	fmt.Fprintf(b, "echo \"Job ID:    %s\"\n", cfg.jobIDVar())
	b.WriteString("echo \"Job Name:  ${SLURM_JOB_NAME}\"\n")
	b.WriteString("echo \"User:      ${USER}\"\n")
	b.WriteString("echo \"Node:      ${SLURMD_NODENAME}\"\n")
	if cfg.TaskNum > 0 {
		b.WriteString("echo \"Task ID:   ${SLURM_ARRAY_TASK_ID}\"\n")
	}
	b.WriteString("echo \"Started:   $(date '+%Y-%m-%d %T')\"\n")
	b.WriteString("echo \"========================================\"\n")
}

func writeJobFooter(b *strings.Builder, cfg *JobScriptConfig) {
	b.WriteString("echo \"========================================\"\n")
	fmt.Fprintf(b, "echo \"Job ID:    %s\"\n", cfg.jobIDVar())
	b.WriteString("echo \"Completed: $(date '+%Y-%m-%d %T')\"\n")
	b.WriteString("echo \"========================================\"\n")
}

// writeVersionTrailer appends the two-line generator stamp. GeneratorVersion
// relies on this exact shape, keep them in sync.
func writeVersionTrailer(b *strings.Builder) {
	fmt.Fprintf(b, "# This script was generated with slurmjobs %s\n", config.VERSION)
	fmt.Fprintf(b, "# available at %s\n", config.DocURL)
}
