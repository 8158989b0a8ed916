package scheduler

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// minSlurmVersion is the oldest SLURM release this tool is tested against.
// Older releases lack the %throttle suffix on --array and the --parsable2
// accounting output this tool depends on.
const minSlurmVersion = "v17.11"

// SlurmScheduler wraps the SLURM command line tools used for submission.
type SlurmScheduler struct {
	sbatchBin string
	jobIDRe   *regexp.Regexp
}

// SchedulerInfo holds information about the detected scheduler
type SchedulerInfo struct {
	Binary    string // Path to sbatch
	Version   string // SLURM version (if available)
	InJob     bool   // Whether we're currently inside a scheduled job
	Available bool   // Whether submission is possible
}

// NewSlurmScheduler creates a scheduler instance using sbatch from PATH
func NewSlurmScheduler() (*SlurmScheduler, error) {
	return newSlurmSchedulerWithBinary("")
}

// NewSlurmSchedulerWithBinary creates a scheduler using an explicit sbatch path
func NewSlurmSchedulerWithBinary(sbatchBin string) (*SlurmScheduler, error) {
	return newSlurmSchedulerWithBinary(sbatchBin)
}

func newSlurmSchedulerWithBinary(sbatchBin string) (*SlurmScheduler, error) {
	binPath := sbatchBin
	if binPath == "" || binPath == "sbatch" {
		var err error
		binPath, err = exec.LookPath("sbatch")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchedulerNotFound, err)
		}
	} else {
		if absPath, err := filepath.Abs(binPath); err == nil {
			binPath = absPath
		}
		info, err := os.Stat(binPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchedulerNotFound, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrSchedulerNotFound, binPath)
		}
	}

	return &SlurmScheduler{
		sbatchBin: binPath,
		jobIDRe:   regexp.MustCompile(`Submitted batch job (\d+)`),
	}, nil
}

// IsAvailable checks if SLURM is usable and we're not inside a SLURM job
func (s *SlurmScheduler) IsAvailable() bool {
	if s.sbatchBin == "" {
		return false
	}

	// Check if we're already inside a SLURM job
	_, inJob := os.LookupEnv("SLURM_JOB_ID")
	return !inJob
}

// GetInfo returns information about the SLURM installation
func (s *SlurmScheduler) GetInfo() *SchedulerInfo {
	_, inJob := os.LookupEnv("SLURM_JOB_ID")

	info := &SchedulerInfo{
		Binary:    s.sbatchBin,
		InJob:     inJob,
		Available: s.IsAvailable(),
	}

	if version, err := s.getSlurmVersion(); err == nil {
		info.Version = version
	}

	return info
}

// VersionSupported reports whether a SLURM version string meets the minimum
// this tool is tested against. Unparseable versions count as supported.
func VersionSupported(version string) bool {
	v := "v" + strings.TrimPrefix(version, "v")
	if !semver.IsValid(v) {
		return true
	}
	return semver.Compare(v, minSlurmVersion) >= 0
}

// getSlurmVersion attempts to get the SLURM version
func (s *SlurmScheduler) getSlurmVersion() (string, error) {
	cmd := exec.Command(s.sbatchBin, "--version")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}

	// Parse version from output like "slurm 23.02.6"
	versionStr := strings.TrimSpace(string(output))
	parts := strings.Fields(versionStr)
	if len(parts) >= 2 {
		return parts[1], nil
	}

	return versionStr, nil
}

// Submit hands a script to sbatch and returns the assigned job ID. The sbatch
// call blocks until the scheduler accepts or rejects the submission; no
// timeout is applied here.
func (s *SlurmScheduler) Submit(scriptPath string) (string, error) {
	cmd := exec.Command(s.sbatchBin, scriptPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", NewExternalToolError("sbatch "+filepath.Base(scriptPath), string(output), err)
	}

	matches := s.jobIDRe.FindStringSubmatch(string(output))
	if len(matches) < 2 {
		return "", fmt.Errorf("%w: %s", ErrJobIDParseFailed, string(output))
	}

	return matches[1], nil
}
