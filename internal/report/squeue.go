package report

import (
	"strconv"
	"strings"
)

// squeueFormat is the column contract for the queue query.
const squeueFormat = "%i|%u|%j|%P|%C|%m|%T|%M"

const squeueFieldCount = 8

// ParseQueueReport converts raw squeue output into JobRecords, keeping only
// jobs that are currently RUNNING. Memory usage fields are left nil; the
// client enriches records owned by the invoking user via sstat.
func ParseQueueReport(raw string) ([]JobRecord, error) {
	var out []JobRecord
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) != squeueFieldCount {
			return nil, NewParseError("squeue", line,
				"expected "+strconv.Itoa(squeueFieldCount)+" pipe-delimited fields")
		}

		state := NormalizeStatus(fields[6])
		if state != StatusRunning {
			continue
		}

		id, err := parseSacctID(fields[0])
		if err != nil {
			return nil, err
		}
		cpus, _ := strconv.Atoi(strings.TrimSpace(fields[4]))
		reqMem, err := normalizeReqMemGB(fields[5])
		if err != nil {
			return nil, err
		}
		elapsed, err := parseElapsed(fields[7])
		if err != nil {
			return nil, err
		}

		out = append(out, JobRecord{
			JobID:       id.jobID,
			ArrayTaskID: id.taskID,
			User:        fields[1],
			Name:        fields[2],
			Partition:   fields[3],
			CPUs:        cpus,
			ReqMemGB:    reqMem,
			Status:      state,
			Elapsed:     elapsed,
		})
	}
	return out, nil
}

// sstatFormat is the column contract for the live memory query.
const sstatFormat = "MaxRSS,MaxVMSize"

// ParseStatMemory extracts peak RSS and peak virtual memory from raw sstat
// output. sstat reports one line per step; the first line carrying any value
// wins.
func ParseStatMemory(raw string) (rssGB, vmemGB *float64, err error) {
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) < 2 {
			return nil, nil, NewParseError("sstat", line, "expected 2 pipe-delimited fields")
		}
		rss, err := normalizeMemGB(fields[0])
		if err != nil {
			return nil, nil, err
		}
		vmem, err := normalizeMemGB(fields[1])
		if err != nil {
			return nil, nil, err
		}
		if rss != nil || vmem != nil {
			return rss, vmem, nil
		}
	}
	return nil, nil, nil
}
