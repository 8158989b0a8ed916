package report

import (
	"errors"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	diff := a - b
	return diff < 1e-12 && diff > -1e-12
}

func TestNormalizeMemGB(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
		isNil bool
		err  bool
	}{
		{"1024K", 0.001024, false, false},
		{"10M", 0.01, false, false},
		{"2G", 2.0, false, false},
		{"1T", 1000.0, false, false},
		{"3012.5K", 0.0030125, false, false},
		{"0", 0.0, false, false}, // steps with no usage
		{"", 0, true, false},
		{"  ", 0, true, false},
		{"1024", 0, false, true}, // suffix required
		{"10X", 0, false, true},
		{"abc", 0, false, true},
	}
	for _, c := range cases {
		got, err := normalizeMemGB(c.raw)
		if c.err {
			var ice *InternalConsistencyError
			if !errors.As(err, &ice) {
				t.Errorf("normalizeMemGB(%q) = %v; want InternalConsistencyError", c.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("normalizeMemGB(%q) error: %v", c.raw, err)
			continue
		}
		if c.isNil {
			if got != nil {
				t.Errorf("normalizeMemGB(%q) = %v; want nil", c.raw, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("normalizeMemGB(%q) = nil; want %v", c.raw, c.want)
			continue
		}
		if !almostEqual(*got, c.want) {
			t.Errorf("normalizeMemGB(%q) = %v; want %v", c.raw, *got, c.want)
		}
	}
}

func TestNormalizeReqMemGB(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"10Gn", 10.0},
		{"5Gc", 5.0},
		{"500M", 0.5},
		{"", 0.0},
	}
	for _, c := range cases {
		got, err := normalizeReqMemGB(c.raw)
		if err != nil {
			t.Errorf("normalizeReqMemGB(%q) error: %v", c.raw, err)
			continue
		}
		if got != c.want {
			t.Errorf("normalizeReqMemGB(%q) = %v; want %v", c.raw, got, c.want)
		}
	}
}

func TestParseElapsed(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
		err  bool
	}{
		{"00:05:12", 5*time.Minute + 12*time.Second, false},
		{"12:34", 12*time.Minute + 34*time.Second, false},
		{"42", 42 * time.Second, false},
		{"1-02:00:00", 26 * time.Hour, false},
		{"", 0, false},
		{"x-00:00:00", 0, true},
		{"1:2:3:4", 0, true},
	}
	for _, c := range cases {
		got, err := parseElapsed(c.raw)
		if (err != nil) != c.err {
			t.Errorf("parseElapsed(%q) error = %v; wantErr %v", c.raw, err, c.err)
			continue
		}
		if !c.err && got != c.want {
			t.Errorf("parseElapsed(%q) = %v; want %v", c.raw, got, c.want)
		}
	}
}
