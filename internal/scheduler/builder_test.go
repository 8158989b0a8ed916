package scheduler

import (
	"strings"
	"testing"

	"github.com/LieberInstitute/slurmjobs/internal/config"
)

func validConfig() *JobScriptConfig {
	return &JobScriptConfig{
		Name:      "my_job",
		Partition: "shared",
		Memory:    "10G",
		Cores:     2,
		TimeLimit: "1-00:00:00",
		Email:     "ALL",
		LogDir:    "logs",
		ScriptDir: "/tmp/scripts",
	}
}

func TestValidateMemory(t *testing.T) {
	cases := []struct {
		memory string
		ok     bool
	}{
		{"10G", true},
		{"500M", true},
		{"1K", true},
		{"2T", true},
		{"", false},
		{"10", false},   // unit required
		{"0G", false},   // zero request
		{"10g", false},  // lowercase unit
		{"10GB", false}, // two-letter unit
		{"G10", false},
	}
	for _, c := range cases {
		cfg := validConfig()
		cfg.Memory = c.memory
		err := cfg.Validate()
		if (err == nil) != c.ok {
			t.Errorf("Validate() with memory %q = %v; want ok=%v", c.memory, err, c.ok)
		}
		if err != nil && !strings.Contains(err.Error(), "cannot parse memory request") {
			t.Errorf("memory %q: unexpected message %q", c.memory, err.Error())
		}
	}
}

func TestValidateTimeLimit(t *testing.T) {
	cases := []struct {
		limit string
		ok    bool
	}{
		{"55", true},
		{"04:30", true},
		{"1-12", true},
		{"2-03:30:40", true},
		{"1-00:00:00", true},
		{"2-9000:30", false},
		{"30:00-2", false},
		{"7:7:7:7:7", false},
		{"nonsense", false},
		{"", false},
	}
	for _, c := range cases {
		cfg := validConfig()
		cfg.TimeLimit = c.limit
		err := cfg.Validate()
		if (err == nil) != c.ok {
			t.Errorf("Validate() with time limit %q = %v; want ok=%v", c.limit, err, c.ok)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	for _, mode := range []string{"BEGIN", "END", "FAIL", "ALL"} {
		cfg := validConfig()
		cfg.Email = mode
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() with email %q = %v; want nil", mode, err)
		}
	}
	cfg := validConfig()
	cfg.Email = "NEVER"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "invalid email option, use BEGIN, END, FAIL or ALL") {
		t.Errorf("Validate() with email NEVER = %v; want invalid email option error", err)
	}
}

func TestBuildSingleJob(t *testing.T) {
	cfg := validConfig()
	cfg.Command = "Rscript my_analysis.R"
	text, err := BuildSingleJob(cfg)
	if err != nil {
		t.Fatalf("BuildSingleJob() error: %v", err)
	}

	for _, want := range []string{
		"#!/bin/bash\n",
		"#SBATCH -p shared\n",
		"#SBATCH --mem=10G\n",
		"#SBATCH --job-name=my_job\n",
		"#SBATCH -c 2\n",
		"#SBATCH -t 1-00:00:00\n",
		"#SBATCH -o logs/my_job.txt\n",
		"#SBATCH -e logs/my_job.txt\n",
		"#SBATCH --mail-type=ALL\n",
		"Job ID:    ${SLURM_JOB_ID}",
		"Rscript my_analysis.R\n",
		"# This script was generated with slurmjobs " + config.VERSION + "\n",
		"# available at " + config.DocURL + "\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("script missing %q", want)
		}
	}
	if strings.Contains(text, "--array") {
		t.Error("non-array script contains an --array directive")
	}
}

func TestBuildSingleArrayJob(t *testing.T) {
	cfg := validConfig()
	cfg.TaskNum = 10
	text, err := BuildSingleJob(cfg)
	if err != nil {
		t.Fatalf("BuildSingleJob() error: %v", err)
	}

	for _, want := range []string{
		"#SBATCH --array=1-10%20\n",
		"#SBATCH -o logs/my_job.%a.txt\n",
		"Job ID:    ${SLURM_ARRAY_JOB_ID}",
		"Task ID:   ${SLURM_ARRAY_TASK_ID}",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("array script missing %q", want)
		}
	}
}

func TestBuildSingleArrayJobThrottle(t *testing.T) {
	cfg := validConfig()
	cfg.TaskNum = 100
	cfg.TaskConcurrency = 5
	text, err := BuildSingleJob(cfg)
	if err != nil {
		t.Fatalf("BuildSingleJob() error: %v", err)
	}
	if !strings.Contains(text, "#SBATCH --array=1-100%5\n") {
		t.Error("custom throttle not applied to the array directive")
	}
}

func TestBuildLoopJob(t *testing.T) {
	loop := LoopSpec{
		{Name: "region", Values: []string{"DLPFC", "HIPPO"}},
		{Name: "feature", Values: []string{"gene", "exon", "tx"}},
	}
	cfg := validConfig()
	script, companion, err := BuildLoopJob(loop, cfg)
	if err != nil {
		t.Fatalf("BuildLoopJob() error: %v", err)
	}

	for _, want := range []string{
		"#SBATCH --array=1-6%20\n",
		"#SBATCH -o /dev/null\n",
		`all_region=("DLPFC" "HIPPO")` + "\n",
		"region=${all_region[$(( SLURM_ARRAY_TASK_ID / 3 % 2 ))]}\n",
		`all_feature=("gene" "exon" "tx")` + "\n",
		"feature=${all_feature[$(( SLURM_ARRAY_TASK_ID / 1 % 3 ))]}\n",
		"_LOG_FILE=logs/my_job_region_${region}_feature_${feature}_task${SLURM_ARRAY_TASK_ID}.txt\n",
		`} &> "${_LOG_FILE}"` + "\n",
		`bash "/tmp/scripts/my_job.main.sh" --region "${region}" --feature "${feature}"` + "\n",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("loop script missing %q", want)
		}
	}

	for _, want := range []string{
		"--region", "--feature",
	} {
		if !strings.Contains(companion, want) {
			t.Errorf("companion script missing %q", want)
		}
	}
}

func TestBuildLoopJobRequiresScriptDir(t *testing.T) {
	loop := LoopSpec{{Name: "a", Values: []string{"1"}}}
	cfg := validConfig()
	cfg.ScriptDir = ""
	if _, _, err := BuildLoopJob(loop, cfg); !IsValidationError(err) {
		t.Errorf("BuildLoopJob() without script dir = %v; want ValidationError", err)
	}
}

func TestCompanionPath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/a/b/my_job.sh", "/a/b/my_job.main.sh"},
		{"job.sh", "job.main.sh"},
	}
	for _, c := range cases {
		if got := CompanionPath(c.in); got != c.want {
			t.Errorf("CompanionPath(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}
