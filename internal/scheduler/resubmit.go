package scheduler

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/LieberInstitute/slurmjobs/internal/report"
	"github.com/LieberInstitute/slurmjobs/internal/utils"
)

// JobReporter answers accounting queries for finished jobs. Satisfied by
// report.Client; tests substitute a canned implementation.
type JobReporter interface {
	JobReport(jobID int) ([]report.JobRecord, error)
}

// ResubmitOptions controls the resubmission pipeline.
type ResubmitOptions struct {
	// TaskIDs are the array tasks to rerun. When empty the failed tasks are
	// discovered from the previous run's log and accounting records.
	TaskIDs []int
	// Submit hands the patched script to sbatch.
	Submit bool
	// Restore writes the original script back after the run is submitted, so
	// the file on disk keeps describing the full array.
	Restore bool

	Reporter  JobReporter
	Scheduler *SlurmScheduler
}

// ResubmitResult reports what the pipeline did.
type ResubmitResult struct {
	TaskIDs     []int
	SubmittedID string
	Restored    bool
}

var jobIDAnchorRe = regexp.MustCompile(`Job ID:\s+([0-9]+)`)

// Resubmit patches a previously generated array-job script so its --array
// directive names only the given tasks, optionally submits it, and optionally
// restores the original file afterwards. The patch preserves every other line
// byte for byte, so patch-then-restore round-trips exactly.
func Resubmit(scriptPath string, opts ResubmitOptions) (*ResubmitResult, error) {
	original, err := os.ReadFile(scriptPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, scriptPath)
		}
		return nil, err
	}
	script := ParseScript(string(original))

	tasks := opts.TaskIDs
	if len(tasks) == 0 {
		tasks, err = discoverFailedTasks(scriptPath, script, opts.Reporter)
		if err != nil {
			return nil, err
		}
	}
	tasks = normalizeTaskIDs(tasks)
	if len(tasks) == 0 {
		return nil, NewValidationError("task", "", "no task IDs to resubmit")
	}
	for _, t := range tasks {
		if t < 1 {
			return nil, NewValidationError("task", strconv.Itoa(t), "task IDs must be positive")
		}
	}

	if err := script.PatchArrayTasks(tasks); err != nil {
		return nil, err
	}
	if err := os.WriteFile(scriptPath, []byte(script.String()), utils.PermExec); err != nil {
		return nil, err
	}

	result := &ResubmitResult{TaskIDs: tasks}
	if opts.Submit {
		if opts.Scheduler == nil {
			return nil, ErrSchedulerNotFound
		}
		jobID, err := opts.Scheduler.Submit(scriptPath)
		if err != nil {
			return nil, err
		}
		result.SubmittedID = jobID
	}

	if opts.Restore {
		if err := os.WriteFile(scriptPath, original, utils.PermExec); err != nil {
			return nil, err
		}
		result.Restored = true
	}
	return result, nil
}

// discoverFailedTasks works out which tasks of the previous run did not
// complete. The chain is brittle on purpose: it reads artifacts the generator
// itself wrote, and any broken link aborts with an error asking the user to
// name the tasks explicitly instead of guessing.
func discoverFailedTasks(scriptPath string, script *Script, reporter JobReporter) ([]int, error) {
	if reporter == nil {
		return nil, &TaskDiscoveryError{Stage: "accounting", Err: fmt.Errorf("no accounting client available")}
	}

	arr, err := script.ArrayDirective()
	if err != nil {
		return nil, &TaskDiscoveryError{Stage: "array directive", Err: err}
	}

	logFile, err := lastTaskLogFile(scriptPath, script, arr)
	if err != nil {
		return nil, &TaskDiscoveryError{Stage: "log file", Err: err}
	}

	jobID, err := jobIDFromLog(logFile)
	if err != nil {
		return nil, &TaskDiscoveryError{Stage: "job id", Err: err}
	}

	records, err := reporter.JobReport(jobID)
	if err != nil {
		return nil, &TaskDiscoveryError{Stage: "accounting", Err: err}
	}

	var failed []int
	for _, rec := range records {
		if rec.Status == report.StatusCompleted {
			continue
		}
		if rec.ArrayTaskID == nil {
			return nil, &TaskDiscoveryError{
				Stage: "accounting",
				Err:   fmt.Errorf("job %d is not an array job", rec.JobID),
			}
		}
		failed = append(failed, *rec.ArrayTaskID)
	}
	if len(failed) == 0 {
		return nil, &TaskDiscoveryError{
			Stage: "accounting",
			Err:   fmt.Errorf("all %d tasks of job %d completed", len(records), jobID),
		}
	}
	utils.PrintDebug("Discovered %d failed task(s) for job %d", len(failed), jobID)
	return failed, nil
}

// lastTaskLogFile locates the log written by the highest-numbered array task.
// Non-loop jobs log to the -o path with %a substituted; loop jobs discard
// stdout and redirect to a runtime _LOG_FILE, so the file name has to be
// globbed from the static directory and the job name.
func lastTaskLogFile(scriptPath string, script *Script, arr ArrayRange) (string, error) {
	out, ok := script.DirectiveValue("-o")
	if !ok {
		return "", NewStructuralParseError(scriptPath, "#SBATCH -o", "no output directive")
	}

	if out != "/dev/null" {
		path := strings.ReplaceAll(out, "%a", strconv.Itoa(arr.End))
		path = resolveAgainstScript(scriptPath, path)
		if !utils.FileExists(path) {
			return "", fmt.Errorf("log file %s does not exist", path)
		}
		return path, nil
	}

	logDir, err := runtimeLogDir(scriptPath, script)
	if err != nil {
		return "", err
	}
	name, ok := script.DirectiveValue("--job-name")
	if !ok {
		return "", NewStructuralParseError(scriptPath, "#SBATCH --job-name", "no job-name directive")
	}

	pattern := filepath.Join(logDir, fmt.Sprintf("%s_*task%d.txt", name, arr.End))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	if len(matches) != 1 {
		return "", fmt.Errorf("expected exactly one log matching %s, found %d", pattern, len(matches))
	}
	return matches[0], nil
}

// runtimeLogDir extracts the static directory part of the _LOG_FILE
// assignment a loop script computes at runtime.
func runtimeLogDir(scriptPath string, script *Script) (string, error) {
	for _, line := range script.BodyLines() {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "_LOG_FILE=") {
			continue
		}
		value := strings.TrimPrefix(trimmed, "_LOG_FILE=")
		dir := filepath.Dir(value)
		if strings.Contains(dir, "$") {
			return "", fmt.Errorf("log directory %s is not static", dir)
		}
		return resolveAgainstScript(scriptPath, dir), nil
	}
	return "", NewStructuralParseError(scriptPath, "_LOG_FILE=", "no runtime log assignment")
}

// resolveAgainstScript anchors a relative path at the script's directory, the
// working directory sbatch runs the script from.
func resolveAgainstScript(scriptPath, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(scriptPath), path)
}

func jobIDFromLog(logFile string) (int, error) {
	data, err := os.ReadFile(logFile)
	if err != nil {
		return 0, err
	}
	m := jobIDAnchorRe.FindSubmatch(data)
	if m == nil {
		return 0, NewStructuralParseError(logFile, jobIDAnchorRe.String(), "no job id line")
	}
	id, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrJobIDParseFailed, string(m[1]))
	}
	return id, nil
}

func normalizeTaskIDs(tasks []int) []int {
	seen := make(map[int]bool, len(tasks))
	out := make([]int, 0, len(tasks))
	for _, t := range tasks {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}
