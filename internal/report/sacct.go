package report

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// sacctFormat is the column contract for the accounting query. Parsing breaks
// if the order changes, so it lives next to the parser.
const sacctFormat = "JobID,User,JobName,Partition,AllocCPUS,ReqMem,State,MaxRSS,MaxVMSize,Elapsed"

const sacctFieldCount = 10

var (
	sacctIDRe      = regexp.MustCompile(`^([0-9]+)(?:_([0-9]+|\[[^\]]*\]))?(?:\.([A-Za-z0-9_]+))?$`)
	pendingRangeRe = regexp.MustCompile(`^\[([0-9]+)-([0-9]+)(?:%[0-9]+)?\]$`)
)

// sacctID is the decomposed combined identifier field: base job ID, optional
// array task, optional pending task range, optional step name.
type sacctID struct {
	jobID   int
	taskID  *int
	pending *taskRange
	step    string
}

type taskRange struct {
	start, end int
}

func parseSacctID(field string) (sacctID, error) {
	m := sacctIDRe.FindStringSubmatch(field)
	if m == nil {
		return sacctID{}, NewParseError("sacct", field, "unrecognized job identifier")
	}

	id := sacctID{step: m[3]}
	id.jobID, _ = strconv.Atoi(m[1])

	if m[2] != "" {
		if strings.HasPrefix(m[2], "[") {
			r := pendingRangeRe.FindStringSubmatch(m[2])
			if r == nil {
				return sacctID{}, NewParseError("sacct", field, "unrecognized array task range")
			}
			start, _ := strconv.Atoi(r[1])
			end, _ := strconv.Atoi(r[2])
			id.pending = &taskRange{start: start, end: end}
		} else {
			task, _ := strconv.Atoi(m[2])
			id.taskID = &task
		}
	}
	return id, nil
}

// jobKey identifies one (job, array task) pair.
type jobKey struct {
	jobID   int
	taskID  int
	hasTask bool
}

func keyOf(id sacctID) jobKey {
	k := jobKey{jobID: id.jobID}
	if id.taskID != nil {
		k.taskID = *id.taskID
		k.hasTask = true
	}
	return k
}

// stepMemory holds the raw memory fields of a secondary step row before
// normalization.
type stepMemory struct {
	rss, vmem string
	fromBatch bool
}

// ParseJobReport converts raw pipe-delimited sacct output into one JobRecord
// per (job, array task) pair.
//
// Three shapes of row are handled:
//   - primary rows (no step suffix) carry the canonical state and metadata;
//   - step rows (".batch", or ".0" for interactive jobs) carry the peak
//     memory figures, which are backfilled onto the matching primary row;
//     other steps (".extern", later numeric steps) are discarded;
//   - at most one pending-range row ("job_[start-end%throttle]", state
//     PENDING) stands in for every array task not yet reported individually
//     and is expanded into one synthetic PENDING row per missing task.
func ParseJobReport(raw string) ([]JobRecord, error) {
	records := make(map[jobKey]*JobRecord)
	rawMem := make(map[jobKey][2]string) // primary row's own memory fields
	stepMem := make(map[jobKey]stepMemory)
	order := make([]jobKey, 0)

	var pending *taskRange
	var pendingMeta *JobRecord

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) != sacctFieldCount {
			return nil, NewParseError("sacct", line,
				"expected "+strconv.Itoa(sacctFieldCount)+" pipe-delimited fields")
		}

		id, err := parseSacctID(fields[0])
		if err != nil {
			return nil, err
		}

		// Step rows only contribute memory. Prefer the batch step; fall back
		// to step 0 for interactive-style jobs.
		if id.step != "" {
			if id.step != "batch" && id.step != "0" {
				continue
			}
			key := keyOf(id)
			if existing, ok := stepMem[key]; ok && existing.fromBatch {
				continue
			}
			stepMem[key] = stepMemory{rss: fields[7], vmem: fields[8], fromBatch: id.step == "batch"}
			continue
		}

		state := NormalizeStatus(fields[6])
		cpus, _ := strconv.Atoi(strings.TrimSpace(fields[4]))
		reqMem, err := normalizeReqMemGB(fields[5])
		if err != nil {
			return nil, err
		}
		elapsed, err := parseElapsed(fields[9])
		if err != nil {
			return nil, err
		}

		rec := &JobRecord{
			JobID:     id.jobID,
			User:      fields[1],
			Name:      fields[2],
			Partition: fields[3],
			CPUs:      cpus,
			ReqMemGB:  reqMem,
			Status:    state,
			Elapsed:   elapsed,
		}

		if id.pending != nil {
			if pending != nil {
				return nil, NewInternalConsistencyError(
					"sacct reports at most one pending array range row", fields[0])
			}
			if state != StatusPending {
				return nil, NewInternalConsistencyError(
					"an array range row is always in PENDING state", string(state))
			}
			pending = id.pending
			pendingMeta = rec
			continue
		}

		if id.taskID != nil {
			task := *id.taskID
			rec.ArrayTaskID = &task
		}
		key := keyOf(id)
		if _, dup := records[key]; dup {
			return nil, NewInternalConsistencyError(
				"sacct reports one primary row per job and array task", fields[0])
		}
		records[key] = rec
		rawMem[key] = [2]string{fields[7], fields[8]}
		order = append(order, key)
	}

	// Backfill memory from the secondary step, falling back to whatever the
	// primary row itself carried.
	for _, key := range order {
		rec := records[key]
		rss, vmem := rawMem[key][0], rawMem[key][1]
		if sm, ok := stepMem[key]; ok {
			rss, vmem = sm.rss, sm.vmem
		}
		rssGB, err := normalizeMemGB(rss)
		if err != nil {
			return nil, err
		}
		vmemGB, err := normalizeMemGB(vmem)
		if err != nil {
			return nil, err
		}
		if (rssGB == nil) != (vmemGB == nil) {
			return nil, NewInternalConsistencyError(
				"peak RSS and peak virtual memory are reported together",
				"MaxRSS="+rss+" MaxVMSize="+vmem)
		}
		rec.RSSGB = rssGB
		rec.VMemGB = vmemGB
	}

	// Expand the pending range into the tasks not yet listed individually.
	if pending != nil {
		for task := pending.start; task <= pending.end; task++ {
			key := jobKey{jobID: pendingMeta.JobID, taskID: task, hasTask: true}
			if _, ok := records[key]; ok {
				continue
			}
			t := task
			rec := *pendingMeta
			rec.ArrayTaskID = &t
			records[key] = &rec
			order = append(order, key)
		}
	}

	out := make([]JobRecord, 0, len(order))
	for _, key := range order {
		out = append(out, *records[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].JobID != out[j].JobID {
			return out[i].JobID < out[j].JobID
		}
		ti, tj := out[i].ArrayTaskID, out[j].ArrayTaskID
		if (ti == nil) != (tj == nil) {
			return ti == nil
		}
		if ti == nil {
			return false
		}
		return *ti < *tj
	})
	return out, nil
}
