// Package report turns the text output of SLURM's monitoring commands
// (sacct, squeue, sstat, sinfo) into structured records.
package report

import (
	"strings"
	"time"
)

// Status is a normalized SLURM job state.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusRunning     Status = "RUNNING"
	StatusCompleted   Status = "COMPLETED"
	StatusFailed      Status = "FAILED"
	StatusCancelled   Status = "CANCELLED"
	StatusTimeout     Status = "TIMEOUT"
	StatusOutOfMemory Status = "OUT_OF_MEMORY"
	StatusRequeued    Status = "REQUEUED"
	StatusSuspended   Status = "SUSPENDED"
	StatusCompleting  Status = "COMPLETING"
	StatusNodeFail    Status = "NODE_FAIL"
	StatusUnknown     Status = "UNKNOWN"
)

// NormalizeStatus maps a raw state string to a Status. SLURM decorates some
// states ("CANCELLED by 301", "FAILED+"); only the leading word counts.
func NormalizeStatus(raw string) Status {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimSuffix(s, "+")
	if fields := strings.Fields(s); len(fields) > 0 {
		s = fields[0]
	}
	switch Status(s) {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed,
		StatusCancelled, StatusTimeout, StatusOutOfMemory, StatusRequeued,
		StatusSuspended, StatusCompleting, StatusNodeFail:
		return Status(s)
	}
	return StatusUnknown
}

// JobRecord is one (job, array task) row of a monitoring query. Memory fields
// are nil when the scheduler reports no usage data for the job's state.
type JobRecord struct {
	JobID       int
	ArrayTaskID *int // nil for non-array jobs
	User        string
	Name        string
	Partition   string
	CPUs        int
	ReqMemGB    float64
	RSSGB       *float64 // peak resident set size
	VMemGB      *float64 // peak virtual memory
	Status      Status
	Elapsed     time.Duration
}

// PartitionRecord is one row of a partition/node availability query. Node is
// empty for partition-level aggregates. The free figures only count nodes in
// "mixed" or "idle" state; the totals count every node including drained and
// down ones.
type PartitionRecord struct {
	Partition    string
	Node         string
	FreeCPUs     int
	TotalCPUs    int
	FreeMemGB    float64
	TotalMemGB   float64
	PropFreeCPUs float64
	PropFreeMem  float64
}
