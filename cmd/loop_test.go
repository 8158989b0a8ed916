package cmd

import "testing"

func TestParseLoopVars(t *testing.T) {
	loop, err := parseLoopVars([]string{
		"region=DLPFC,HIPPO",
		"feature=gene, exon ,tx",
	})
	if err != nil {
		t.Fatalf("parseLoopVars() error: %v", err)
	}
	if len(loop) != 2 {
		t.Fatalf("got %d variables; want 2", len(loop))
	}
	if loop[0].Name != "region" || len(loop[0].Values) != 2 {
		t.Errorf("first variable = %+v; want region with 2 values", loop[0])
	}
	if loop[1].Values[1] != "exon" {
		t.Errorf("values not trimmed: %q", loop[1].Values[1])
	}
	if loop.TotalTasks() != 6 {
		t.Errorf("TotalTasks() = %d; want 6", loop.TotalTasks())
	}
}

func TestParseLoopVarsErrors(t *testing.T) {
	cases := []struct {
		name  string
		flags []string
	}{
		{"no equals", []string{"region"}},
		{"empty name", []string{"=a,b"}},
		{"empty values", []string{"region=,,"}},
		{"duplicate", []string{"a=1", "a=2"}},
		{"none", nil},
	}
	for _, c := range cases {
		if _, err := parseLoopVars(c.flags); err == nil {
			t.Errorf("%s: parseLoopVars(%v) accepted invalid input", c.name, c.flags)
		}
	}
}

func TestScriptBaseName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/a/b/my_job.sh", "my_job"},
		{"job.sh", "job"},
	}
	for _, c := range cases {
		if got := scriptBaseName(c.in); got != c.want {
			t.Errorf("scriptBaseName(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}
