package report

import (
	"errors"
	"fmt"
	"os/exec"
	"os/user"
	"strconv"
	"strings"

	"github.com/LieberInstitute/slurmjobs/internal/utils"
)

// ErrToolNotFound indicates a required monitoring command is not installed.
var ErrToolNotFound = errors.New("monitoring command not found in PATH")

// Client shells out to the SLURM monitoring commands and parses their output.
// Calls are blocking and strictly sequential; a hung command blocks the caller.
type Client struct {
	sacctBin  string
	squeueBin string
	sstatBin  string
	sinfoBin  string

	currentUser string
}

// NewClient locates the monitoring binaries on PATH. Missing binaries are
// tolerated here and reported when the corresponding query is attempted.
func NewClient() *Client {
	c := &Client{}
	c.sacctBin, _ = exec.LookPath("sacct")
	c.squeueBin, _ = exec.LookPath("squeue")
	c.sstatBin, _ = exec.LookPath("sstat")
	c.sinfoBin, _ = exec.LookPath("sinfo")
	if u, err := user.Current(); err == nil {
		c.currentUser = u.Username
	}
	return c
}

func (c *Client) run(bin string, args ...string) (string, error) {
	if bin == "" {
		return "", ErrToolNotFound
	}
	utils.PrintDebug("Running: %s %s", bin, strings.Join(args, " "))
	output, err := exec.Command(bin, args...).CombinedOutput()
	if err != nil {
		return "", &ExternalToolError{
			Command: fmt.Sprintf("%s %s", bin, strings.Join(args, " ")),
			Output:  string(output),
			Err:     err,
		}
	}
	return string(output), nil
}

// JobReport queries sacct for one job (or array job) and returns one record
// per (job, array task) pair.
func (c *Client) JobReport(jobID int) ([]JobRecord, error) {
	raw, err := c.run(c.sacctBin,
		"-j", strconv.Itoa(jobID),
		"--format="+sacctFormat,
		"--parsable2", "--noheader")
	if err != nil {
		return nil, err
	}
	return ParseJobReport(raw)
}

// QueueReport queries squeue for currently RUNNING jobs, optionally filtered
// by user and partition. Jobs owned by the invoking user are enriched with
// live peak-memory figures from sstat, one blocking query per job; other
// users' jobs keep nil memory fields because sstat denies access to them.
func (c *Client) QueueReport(userFilter, partitionFilter string) ([]JobRecord, error) {
	args := []string{"--noheader", "-o", squeueFormat}
	if userFilter != "" {
		args = append(args, "-u", userFilter)
	}
	if partitionFilter != "" {
		args = append(args, "-p", partitionFilter)
	}
	raw, err := c.run(c.squeueBin, args...)
	if err != nil {
		return nil, err
	}

	records, err := ParseQueueReport(raw)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if c.currentUser == "" || records[i].User != c.currentUser {
			continue
		}
		rss, vmem, err := c.statMemory(records[i])
		if err != nil {
			// Live jobs come and go between the two queries; keep the row.
			utils.PrintDebug("sstat enrichment failed for job %d: %v", records[i].JobID, err)
			continue
		}
		records[i].RSSGB = rss
		records[i].VMemGB = vmem
	}
	return records, nil
}

func (c *Client) statMemory(rec JobRecord) (*float64, *float64, error) {
	id := strconv.Itoa(rec.JobID)
	if rec.ArrayTaskID != nil {
		id = fmt.Sprintf("%d_%d", rec.JobID, *rec.ArrayTaskID)
	}
	raw, err := c.run(c.sstatBin, "-j", id, "--format="+sstatFormat, "-P", "-n")
	if err != nil {
		return nil, nil, err
	}
	return ParseStatMemory(raw)
}

// PartitionReport queries sinfo per node, optionally filtered to one
// partition, and aggregates per partition unless allNodes is set.
func (c *Client) PartitionReport(partitionFilter string, allNodes bool) ([]PartitionRecord, error) {
	args := []string{"-N", "--noheader", "-o", sinfoFormat}
	if partitionFilter != "" {
		args = append(args, "-p", partitionFilter)
	}
	raw, err := c.run(c.sinfoBin, args...)
	if err != nil {
		return nil, err
	}
	return ParsePartitionReport(raw, allNodes)
}
