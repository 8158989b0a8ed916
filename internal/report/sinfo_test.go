package report

import (
	"strings"
	"testing"
)

func TestParsePartitionReportAggregates(t *testing.T) {
	// One idle node, one mixed node, one drained node. Free capacity only
	// comes from the first two; the drained node still counts in the totals.
	raw := strings.Join([]string{
		"shared|compute-01|idle|0/32/0/32|102400|10240",
		"shared|compute-02|mixed|16/16/0/32|102400|20480",
		"shared|compute-03|drained|0/16/0/16|16384|0",
		"bluejay|gpu-01|allocated|64/0/0/64|512000|0",
	}, "\n")

	records, err := ParsePartitionReport(raw, false)
	if err != nil {
		t.Fatalf("ParsePartitionReport() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d partitions; want 2", len(records))
	}

	shared := records[0]
	if shared.Partition != "shared" {
		t.Fatalf("first partition = %q; want shared (input order)", shared.Partition)
	}
	if shared.FreeCPUs != 48 {
		t.Errorf("FreeCPUs = %d; want 48 (idle CPUs of idle+mixed nodes only)", shared.FreeCPUs)
	}
	if shared.TotalCPUs != 80 {
		t.Errorf("TotalCPUs = %d; want 80 (all nodes)", shared.TotalCPUs)
	}
	if !almostEqual(shared.FreeMemGB, 30.0) {
		t.Errorf("FreeMemGB = %v; want 30 (10+20, drained excluded)", shared.FreeMemGB)
	}
	if !almostEqual(shared.TotalMemGB, 216.0) {
		t.Errorf("TotalMemGB = %v; want 216 (100+100+16)", shared.TotalMemGB)
	}
	if !almostEqual(shared.PropFreeCPUs, 48.0/80.0) {
		t.Errorf("PropFreeCPUs = %v; want 0.6", shared.PropFreeCPUs)
	}

	bluejay := records[1]
	if bluejay.FreeCPUs != 0 || !almostEqual(bluejay.FreeMemGB, 0) {
		t.Errorf("allocated-only partition reports free capacity: %+v", bluejay)
	}
	if bluejay.TotalCPUs != 64 {
		t.Errorf("bluejay TotalCPUs = %d; want 64", bluejay.TotalCPUs)
	}
}

func TestParsePartitionReportAllNodes(t *testing.T) {
	raw := strings.Join([]string{
		"shared*|compute-01|idle~|0/32/0/32|102400|10240",
		"shared*|compute-02|drained*|0/16/0/16|16384|N/A",
	}, "\n")

	records, err := ParsePartitionReport(raw, true)
	if err != nil {
		t.Fatalf("ParsePartitionReport() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d nodes; want 2", len(records))
	}
	if records[0].Partition != "shared" {
		t.Errorf("default-partition marker not stripped: %q", records[0].Partition)
	}
	if records[0].Node != "compute-01" {
		t.Errorf("Node = %q; want compute-01", records[0].Node)
	}
	if !almostEqual(records[1].FreeMemGB, 0) {
		t.Errorf("N/A free memory = %v; want 0", records[1].FreeMemGB)
	}
}

func TestNodeCountsAsFree(t *testing.T) {
	cases := []struct {
		state string
		want  bool
	}{
		{"idle", true},
		{"mixed", true},
		{"idle~", true},   // powered down
		{"mixed*", true},  // not responding marker
		{"IDLE", true},
		{"allocated", false},
		{"drained", false},
		{"down", false},
		{"draining", false},
	}
	for _, c := range cases {
		if got := nodeCountsAsFree(c.state); got != c.want {
			t.Errorf("nodeCountsAsFree(%q) = %v; want %v", c.state, got, c.want)
		}
	}
}

func TestParsePartitionReportBadRows(t *testing.T) {
	cases := []string{
		"shared|n1|idle|0/32/0/32|102400", // missing field
		"shared|n1|idle|0/32/32|102400|0", // malformed A/I/O/T
		"shared|n1|idle|0/32/0/32|abc|0",  // non-numeric memory
	}
	for _, raw := range cases {
		if _, err := ParsePartitionReport(raw, false); err == nil {
			t.Errorf("ParsePartitionReport(%q) accepted a malformed row", raw)
		}
	}
}
