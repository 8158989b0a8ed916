package scheduler

// LoopVar is one loop variable: a name and its ordered, non-empty value list.
type LoopVar struct {
	Name   string
	Values []string
}

// LoopSpec is an ordered list of loop variables. A loop array job runs one
// task per combination of values across all variables.
type LoopSpec []LoopVar

// TotalTasks returns the array cardinality: the product of all value counts.
func (ls LoopSpec) TotalTasks() int {
	total := 1
	for _, v := range ls {
		total *= len(v.Values)
	}
	return total
}

// Validate checks that the variable list is non-empty, names are unique and
// non-empty,
// and every value list is non-empty.
func (ls LoopSpec) Validate() error {
	if len(ls) == 0 {
		return NewValidationError("loop", "", "at least one loop variable is required")
	}
	seen := make(map[string]bool, len(ls))
	for _, v := range ls {
		if v.Name == "" {
			return NewValidationError("loop", "", "loop variable name must not be empty")
		}
		if seen[v.Name] {
			return NewValidationError("loop", v.Name, "duplicate loop variable name")
		}
		seen[v.Name] = true
		if len(v.Values) == 0 {
			return NewValidationError("loop", v.Name, "loop variable has no values")
		}
	}
	return nil
}

// IndexPlan maps the flat array task ID onto one variable's value list.
// For task ID t (1-based, spanning 1..TotalTasks), the selected 0-based index
// into the variable's values is (t / Divisor) % Modulus.
type IndexPlan struct {
	Divisor int
	Modulus int
}

// ComputeIndexPlan returns the divisor/modulus pair for the variable at
// position in the variable list. The divisor is the product of the value
// counts of all
// variables after position (1 for the last variable); the modulus is the
// variable's own value count. Iterating the task ID over the full range yields
// every combination of values exactly once (right-to-left mixed radix).
func ComputeIndexPlan(ls LoopSpec, position int) IndexPlan {
	divisor := 1
	for i := position + 1; i < len(ls); i++ {
		divisor *= len(ls[i].Values)
	}
	return IndexPlan{Divisor: divisor, Modulus: len(ls[position].Values)}
}
