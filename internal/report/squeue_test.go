package report

import (
	"strings"
	"testing"
	"time"
)

func TestParseQueueReportKeepsOnlyRunning(t *testing.T) {
	raw := strings.Join([]string{
		"301|lcollado|dge_model|shared|4|40G|RUNNING|2:15:00",
		"302|lcollado|dge_model|shared|4|40G|PENDING|0:00",
		"303_7|amandam|bsp2_align|bluejay|1|10G|RUNNING|15:42",
		"304|other|idle_job|shared|1|5G|COMPLETING|1:00",
	}, "\n")

	records, err := ParseQueueReport(raw)
	if err != nil {
		t.Fatalf("ParseQueueReport() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records; want 2 (only RUNNING)", len(records))
	}

	r := records[0]
	if r.JobID != 301 || r.User != "lcollado" || r.CPUs != 4 || r.ReqMemGB != 40.0 {
		t.Errorf("unexpected first record: %+v", r)
	}
	if r.Elapsed != 2*time.Hour+15*time.Minute {
		t.Errorf("Elapsed = %v; want 2h15m", r.Elapsed)
	}
	if r.RSSGB != nil || r.VMemGB != nil {
		t.Error("squeue rows must not carry memory usage before sstat enrichment")
	}

	arr := records[1]
	if arr.JobID != 303 || arr.ArrayTaskID == nil || *arr.ArrayTaskID != 7 {
		t.Errorf("array record = %+v; want job 303 task 7", arr)
	}
}

func TestParseQueueReportBadRow(t *testing.T) {
	if _, err := ParseQueueReport("301|lcollado|short"); err == nil {
		t.Error("ParseQueueReport accepted a row with missing fields")
	}
}

func TestParseStatMemory(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		rss  float64
		vmem float64
		none bool
	}{
		{"plain", "104857K|209714K", 0.104857, 0.209714, false},
		{"first line empty", "|\n2G|4G", 2.0, 4.0, false},
		{"no data", "|\n|", 0, 0, true},
		{"empty output", "", 0, 0, true},
	}
	for _, c := range cases {
		rss, vmem, err := ParseStatMemory(c.raw)
		if err != nil {
			t.Errorf("%s: ParseStatMemory() error: %v", c.name, err)
			continue
		}
		if c.none {
			if rss != nil || vmem != nil {
				t.Errorf("%s: got (%v, %v); want nil memory", c.name, rss, vmem)
			}
			continue
		}
		if rss == nil || vmem == nil {
			t.Errorf("%s: got nil memory; want values", c.name)
			continue
		}
		if !almostEqual(*rss, c.rss) || !almostEqual(*vmem, c.vmem) {
			t.Errorf("%s: got (%v, %v); want (%v, %v)", c.name, *rss, *vmem, c.rss, c.vmem)
		}
	}
}
