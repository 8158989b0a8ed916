package report

import (
	"strconv"
	"strings"
)

// sinfoFormat is the column contract for the partition/node query:
// partition, node, long state, allocated/idle/other/total CPUs,
// total memory (MB), free memory (MB).
const sinfoFormat = "%R|%n|%T|%C|%m|%e"

const sinfoFieldCount = 6

// nodeCountsAsFree reports whether a node's capacity belongs in the "free"
// subtotal. Only mixed and idle nodes can accept work; drained, down and
// allocated nodes still count toward the nominal totals.
func nodeCountsAsFree(state string) bool {
	s := strings.TrimRight(strings.ToLower(strings.TrimSpace(state)), "*~#!%$@+")
	return s == "mixed" || s == "idle"
}

// ParsePartitionReport converts raw sinfo node-oriented output into
// PartitionRecords. With allNodes true one record per node is returned;
// otherwise nodes are aggregated per partition, summing free capacity over
// mixed/idle nodes only but total capacity over every node.
func ParsePartitionReport(raw string, allNodes bool) ([]PartitionRecord, error) {
	var nodes []PartitionRecord
	free := make(map[string]bool)

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) != sinfoFieldCount {
			return nil, NewParseError("sinfo", line,
				"expected "+strconv.Itoa(sinfoFieldCount)+" pipe-delimited fields")
		}

		partition := strings.TrimSuffix(strings.TrimSpace(fields[0]), "*")
		node := strings.TrimSpace(fields[1])
		state := fields[2]

		// %C is allocated/idle/other/total
		cpuParts := strings.Split(strings.TrimSpace(fields[3]), "/")
		if len(cpuParts) != 4 {
			return nil, NewParseError("sinfo", line, "expected A/I/O/T CPU counts")
		}
		idleCPUs, _ := strconv.Atoi(cpuParts[1])
		totalCPUs, _ := strconv.Atoi(cpuParts[3])

		totalMemMB, err := parseSinfoMB(fields[4])
		if err != nil {
			return nil, NewParseError("sinfo", line, "invalid total memory")
		}
		freeMemMB, err := parseSinfoMB(fields[5])
		if err != nil {
			return nil, NewParseError("sinfo", line, "invalid free memory")
		}

		rec := PartitionRecord{
			Partition:  partition,
			Node:       node,
			FreeCPUs:   idleCPUs,
			TotalCPUs:  totalCPUs,
			FreeMemGB:  freeMemMB / 1024,
			TotalMemGB: totalMemMB / 1024,
		}
		setProportions(&rec)
		nodes = append(nodes, rec)
		free[node+"|"+partition] = nodeCountsAsFree(state)
	}

	if allNodes {
		return nodes, nil
	}

	// Aggregate per partition, preserving first-appearance order.
	byPartition := make(map[string]*PartitionRecord)
	var order []string
	for _, n := range nodes {
		agg, ok := byPartition[n.Partition]
		if !ok {
			agg = &PartitionRecord{Partition: n.Partition}
			byPartition[n.Partition] = agg
			order = append(order, n.Partition)
		}
		agg.TotalCPUs += n.TotalCPUs
		agg.TotalMemGB += n.TotalMemGB
		if free[n.Node+"|"+n.Partition] {
			agg.FreeCPUs += n.FreeCPUs
			agg.FreeMemGB += n.FreeMemGB
		}
	}

	out := make([]PartitionRecord, 0, len(order))
	for _, p := range order {
		rec := byPartition[p]
		setProportions(rec)
		out = append(out, *rec)
	}
	return out, nil
}

// parseSinfoMB parses a sinfo memory field in MB. "N/A" and empty fields count
// as zero; a trailing "+" (per-partition minimum marker) is ignored.
func parseSinfoMB(raw string) (float64, error) {
	s := strings.TrimSuffix(strings.TrimSpace(raw), "+")
	if s == "" || s == "N/A" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func setProportions(rec *PartitionRecord) {
	if rec.TotalCPUs > 0 {
		rec.PropFreeCPUs = float64(rec.FreeCPUs) / float64(rec.TotalCPUs)
	}
	if rec.TotalMemGB > 0 {
		rec.PropFreeMem = rec.FreeMemGB / rec.TotalMemGB
	}
}
