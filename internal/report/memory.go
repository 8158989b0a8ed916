package report

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var memValueRe = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)([KMGT])$`)

// normalizeMemGB converts a suffixed memory magnitude ("3012K", "10M", "2G")
// to gigabytes. An empty field means the scheduler reported nothing and yields
// nil. A bare "0" is accepted: sacct emits it for steps with no usage. Any
// other unsuffixed or unknown-suffixed value means our picture of the sacct
// output format is stale.
func normalizeMemGB(raw string) (*float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if s == "0" {
		zero := 0.0
		return &zero, nil
	}

	m := memValueRe.FindStringSubmatch(s)
	if m == nil {
		return nil, NewInternalConsistencyError(
			"memory values from the scheduler carry a K, M or G suffix", s)
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, NewInternalConsistencyError("memory magnitude is numeric", s)
	}

	switch m[2] {
	case "K":
		value *= 1e-6
	case "M":
		value *= 1e-3
	case "G":
		// already GB
	case "T":
		value *= 1e3
	}
	return &value, nil
}

// normalizeReqMemGB parses a requested-memory field. sacct historically tags
// ReqMem with a per-node ("n") or per-CPU ("c") marker; both are stripped.
func normalizeReqMemGB(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "n")
	s = strings.TrimSuffix(s, "c")
	gb, err := normalizeMemGB(s)
	if err != nil {
		return 0, err
	}
	if gb == nil {
		return 0, nil
	}
	return *gb, nil
}

// parseElapsed parses a SLURM elapsed-time field: [D-]HH:MM:SS, MM:SS or a
// bare seconds count.
func parseElapsed(raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}

	var days int64
	if idx := strings.Index(s, "-"); idx >= 0 {
		parsed, err := strconv.ParseInt(s[:idx], 10, 64)
		if err != nil {
			return 0, NewParseError("elapsed time", raw, "invalid day count")
		}
		days = parsed
		s = s[idx+1:]
	}

	parts := strings.Split(s, ":")
	var hours, minutes, seconds int64
	var err error
	switch len(parts) {
	case 3:
		if hours, err = strconv.ParseInt(parts[0], 10, 64); err != nil {
			return 0, NewParseError("elapsed time", raw, "invalid hours")
		}
		if minutes, err = strconv.ParseInt(parts[1], 10, 64); err != nil {
			return 0, NewParseError("elapsed time", raw, "invalid minutes")
		}
		if seconds, err = strconv.ParseInt(parts[2], 10, 64); err != nil {
			return 0, NewParseError("elapsed time", raw, "invalid seconds")
		}
	case 2:
		if minutes, err = strconv.ParseInt(parts[0], 10, 64); err != nil {
			return 0, NewParseError("elapsed time", raw, "invalid minutes")
		}
		if seconds, err = strconv.ParseInt(parts[1], 10, 64); err != nil {
			return 0, NewParseError("elapsed time", raw, "invalid seconds")
		}
	case 1:
		if seconds, err = strconv.ParseInt(parts[0], 10, 64); err != nil {
			return 0, NewParseError("elapsed time", raw, "invalid seconds")
		}
	default:
		return 0, NewParseError("elapsed time", raw, "too many fields")
	}

	total := days*24*3600 + hours*3600 + minutes*60 + seconds
	return time.Duration(total) * time.Second, nil
}
