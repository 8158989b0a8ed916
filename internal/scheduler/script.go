package scheduler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LineKind tags the role of one script line.
type LineKind int

const (
	LineBody LineKind = iota
	LineShebang
	LineDirective
)

// Line is one line of a batch script. Directive lines additionally carry the
// parsed flag and value so callers never need to re-split the text.
type Line struct {
	Text  string
	Kind  LineKind
	Flag  string // e.g. "-o", "--array" (directives only)
	Value string // directive value, "=" and space forms normalized
}

// Script is a batch script as an ordered list of tagged lines. Patching a
// directive rewrites exactly one line; serialization reproduces every other
// line byte for byte.
type Script struct {
	lines []Line
}

var (
	directiveRe = regexp.MustCompile(`^#SBATCH\s+(\S+)\s*(.*)$`)
	arrayValRe  = regexp.MustCompile(`^([0-9]+)-([0-9]+)%([0-9]+)$`)
	versionRe   = regexp.MustCompile(`^# This script was generated with slurmjobs (\S+)$`)
)

// ParseScript splits text into tagged lines. It never fails: unrecognized
// content is carried through as body lines.
func ParseScript(text string) *Script {
	raw := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	lines := make([]Line, 0, len(raw))
	for i, t := range raw {
		line := Line{Text: t, Kind: LineBody}
		if i == 0 && strings.HasPrefix(t, "#!") {
			line.Kind = LineShebang
		} else if m := directiveRe.FindStringSubmatch(t); m != nil {
			line.Kind = LineDirective
			flag, value := m[1], strings.TrimSpace(m[2])
			if eq := strings.Index(flag, "="); eq >= 0 {
				flag, value = flag[:eq], flag[eq+1:]
			}
			line.Flag = flag
			line.Value = value
		}
		lines = append(lines, line)
	}
	return &Script{lines: lines}
}

// String serializes the script back to text, with a trailing newline.
func (s *Script) String() string {
	var b strings.Builder
	for _, l := range s.lines {
		b.WriteString(l.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// DirectiveValue returns the value of the single directive with the given
// flag, or false if it is absent or appears more than once.
func (s *Script) DirectiveValue(flag string) (string, bool) {
	idxs := s.directiveIndices(flag)
	if len(idxs) != 1 {
		return "", false
	}
	return s.lines[idxs[0]].Value, true
}

// BodyLines returns the text of every non-directive, non-shebang line.
func (s *Script) BodyLines() []string {
	var out []string
	for _, l := range s.lines {
		if l.Kind == LineBody {
			out = append(out, l.Text)
		}
	}
	return out
}

func (s *Script) directiveIndices(flag string) []int {
	var idxs []int
	for i, l := range s.lines {
		if l.Kind == LineDirective && l.Flag == flag {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// ArrayRange is the parsed value of an --array directive in the
// start-end%throttle form produced by the builder.
type ArrayRange struct {
	Start    int
	End      int
	Throttle int
}

// ArrayDirective locates the single --array directive and parses its range.
// Zero or multiple matching lines, or a value outside the expected
// start-end%throttle grammar, yield a StructuralParseError.
func (s *Script) ArrayDirective() (ArrayRange, error) {
	idxs := s.directiveIndices("--array")
	switch len(idxs) {
	case 0:
		return ArrayRange{}, NewStructuralParseError("script", "the array directive line (#SBATCH --array=...)", "")
	case 1:
		// fall through to parse
	default:
		return ArrayRange{}, NewStructuralParseError("script", "a unique array directive line",
			fmt.Sprintf("%d matching lines", len(idxs)))
	}

	value := s.lines[idxs[0]].Value
	m := arrayValRe.FindStringSubmatch(value)
	if m == nil {
		return ArrayRange{}, NewStructuralParseError("script", "an array range of the form start-end%throttle", value)
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	throttle, _ := strconv.Atoi(m[3])
	return ArrayRange{Start: start, End: end, Throttle: throttle}, nil
}

// PatchArrayTasks rewrites the single --array directive to the explicit
// comma-joined task list, preserving the original throttle suffix. Every other
// line is left untouched.
func (s *Script) PatchArrayTasks(taskIDs []int) error {
	rng, err := s.ArrayDirective()
	if err != nil {
		return err
	}
	if len(taskIDs) == 0 {
		return NewValidationError("task_ids", "", "at least one task ID is required")
	}

	ids := make([]string, len(taskIDs))
	for i, id := range taskIDs {
		ids[i] = strconv.Itoa(id)
	}
	idx := s.directiveIndices("--array")[0]
	s.lines[idx].Value = fmt.Sprintf("%s%%%d", strings.Join(ids, ","), rng.Throttle)
	s.lines[idx].Text = fmt.Sprintf("#SBATCH --array=%s", s.lines[idx].Value)
	return nil
}

// GeneratorVersion reads the slurmjobs version recorded in the trailing
// comment of a generated script. Returns false if the stamp is absent.
func GeneratorVersion(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if m := versionRe.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}
