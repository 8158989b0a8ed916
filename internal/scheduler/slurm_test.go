package scheduler

import "testing"

func TestVersionSupported(t *testing.T) {
	cases := []struct {
		version string
		want    bool
	}{
		{"23.02.6", true},
		{"17.11", true},
		{"17.11.9", true},
		{"17.2", false},
		{"16.5.1", false},
		{"v20.11", true},
		{"garbage", true}, // unparseable counts as supported
		{"", true},
	}
	for _, c := range cases {
		if got := VersionSupported(c.version); got != c.want {
			t.Errorf("VersionSupported(%q) = %v; want %v", c.version, got, c.want)
		}
	}
}
