package scheduler

import (
	"fmt"
	"testing"
)

func TestTotalTasks(t *testing.T) {
	cases := []struct {
		counts []int
		want   int
	}{
		{[]int{3}, 3},
		{[]int{2, 3}, 6},
		{[]int{2, 3, 4}, 24},
		{[]int{1, 1, 1}, 1},
	}
	for _, c := range cases {
		ls := make(LoopSpec, len(c.counts))
		for i, n := range c.counts {
			ls[i] = LoopVar{Name: fmt.Sprintf("v%d", i), Values: make([]string, n)}
		}
		if got := ls.TotalTasks(); got != c.want {
			t.Errorf("TotalTasks(%v) = %d; want %d", c.counts, got, c.want)
		}
	}
}

func TestLoopValidate(t *testing.T) {
	cases := []struct {
		name    string
		spec    LoopSpec
		wantErr bool
	}{
		{"valid", LoopSpec{{Name: "a", Values: []string{"1"}}}, false},
		{"empty spec", LoopSpec{}, true},
		{"empty name", LoopSpec{{Name: "", Values: []string{"1"}}}, true},
		{"duplicate name", LoopSpec{
			{Name: "a", Values: []string{"1"}},
			{Name: "a", Values: []string{"2"}},
		}, true},
		{"no values", LoopSpec{{Name: "a", Values: nil}}, true},
	}
	for _, c := range cases {
		err := c.spec.Validate()
		if (err != nil) != c.wantErr {
			t.Errorf("%s: Validate() = %v; wantErr %v", c.name, err, c.wantErr)
		}
		if err != nil && !IsValidationError(err) {
			t.Errorf("%s: error %v is not a ValidationError", c.name, err)
		}
	}
}

// Every task ID in 1..TotalTasks must select a distinct combination of value
// indices, and every combination must be selected by some task.
func TestComputeIndexPlanCoversAllCombinations(t *testing.T) {
	ls := LoopSpec{
		{Name: "region", Values: []string{"DLPFC", "HIPPO"}},
		{Name: "feature", Values: []string{"gene", "exon", "tx"}},
		{Name: "chunk", Values: []string{"1", "2", "3", "4"}},
	}
	total := ls.TotalTasks()

	seen := make(map[string]int, total)
	counts := make([]map[int]int, len(ls))
	for i := range counts {
		counts[i] = make(map[int]int)
	}
	for task := 1; task <= total; task++ {
		key := ""
		for pos := range ls {
			plan := ComputeIndexPlan(ls, pos)
			idx := (task / plan.Divisor) % plan.Modulus
			if idx < 0 || idx >= len(ls[pos].Values) {
				t.Fatalf("task %d: index %d out of range for %s", task, idx, ls[pos].Name)
			}
			counts[pos][idx]++
			key += fmt.Sprintf("%d,", idx)
		}
		if prev, dup := seen[key]; dup {
			t.Fatalf("tasks %d and %d select the same combination %s", prev, task, key)
		}
		seen[key] = task
	}
	if len(seen) != total {
		t.Errorf("got %d distinct combinations; want %d", len(seen), total)
	}

	// Each value of each variable is selected the same number of times.
	for pos, c := range counts {
		want := total / len(ls[pos].Values)
		for idx, n := range c {
			if n != want {
				t.Errorf("%s value %d selected %d times; want %d", ls[pos].Name, idx, n, want)
			}
		}
	}
}

func TestComputeIndexPlanLastVariesFastest(t *testing.T) {
	ls := LoopSpec{
		{Name: "a", Values: []string{"x", "y"}},
		{Name: "b", Values: []string{"1", "2", "3"}},
	}
	last := ComputeIndexPlan(ls, 1)
	if last.Divisor != 1 || last.Modulus != 3 {
		t.Errorf("last plan = %+v; want {Divisor:1 Modulus:3}", last)
	}
	first := ComputeIndexPlan(ls, 0)
	if first.Divisor != 3 || first.Modulus != 2 {
		t.Errorf("first plan = %+v; want {Divisor:3 Modulus:2}", first)
	}

	// Consecutive tasks flip the last variable before the first one moves.
	idxAt := func(task int, plan IndexPlan) int { return (task / plan.Divisor) % plan.Modulus }
	if idxAt(1, last) == idxAt(2, last) {
		t.Error("last variable did not change between consecutive tasks")
	}
	if idxAt(1, first) != idxAt(2, first) {
		t.Error("first variable changed between consecutive tasks")
	}
}
