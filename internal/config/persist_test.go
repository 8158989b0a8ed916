package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetUserConfigPath(t *testing.T) {
	path, err := GetUserConfigPath()
	if err != nil {
		t.Fatalf("GetUserConfigPath() error: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join("slurmjobs", "config.yaml")) &&
		!strings.HasSuffix(path, filepath.Join(".slurmjobs", "config.yaml")) {
		t.Errorf("unexpected config path: %s", path)
	}
}

func TestValidateBinary(t *testing.T) {
	dir := t.TempDir()

	exe := filepath.Join(dir, "tool")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(dir, "data")
	if err := os.WriteFile(plain, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		path string
		want bool
	}{
		{exe, true},
		{plain, false},
		{filepath.Join(dir, "missing"), false},
		{"", false},
		{"sh", true}, // found in PATH
	}
	for _, c := range cases {
		if got := ValidateBinary(c.path); got != c.want {
			t.Errorf("ValidateBinary(%q) = %v; want %v", c.path, got, c.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	LoadDefaults()
	if Global.DefaultPartition != "shared" || Global.DefaultMemory != "10G" {
		t.Errorf("unexpected defaults: %+v", Global)
	}
	if Global.Version != VERSION {
		t.Errorf("Version = %q; want %q", Global.Version, VERSION)
	}
}
