package scheduler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/LieberInstitute/slurmjobs/internal/utils"
)

// ResolveScriptPath turns a bare job name, a relative path or an absolute path
// into a canonical absolute script path ending in ".sh". Relative inputs are
// resolved against baseDir, never against the process working directory.
func ResolveScriptPath(baseDir, nameOrPath string) (string, error) {
	if nameOrPath == "" {
		return "", NewValidationError("script", "", "script name or path is required")
	}

	path := nameOrPath
	if filepath.Ext(path) != ".sh" {
		path += ".sh"
	}
	if !filepath.IsAbs(path) {
		if baseDir == "" {
			return "", NewValidationError("script", nameOrPath, "relative script path given without a base directory")
		}
		path = filepath.Join(baseDir, path)
	}
	path = filepath.Clean(path)

	if !utils.DirExists(filepath.Dir(path)) {
		return "", fmt.Errorf("%w: %s", ErrDirNotFound, filepath.Dir(path))
	}
	return path, nil
}

// RequireNewScript resolves nameOrPath and fails with ErrScriptExists if the
// target file is already present.
func RequireNewScript(baseDir, nameOrPath string) (string, error) {
	path, err := ResolveScriptPath(baseDir, nameOrPath)
	if err != nil {
		return "", err
	}
	if utils.FileExists(path) {
		return "", fmt.Errorf("%w: %s", ErrScriptExists, path)
	}
	return path, nil
}

// RequireExistingScript resolves nameOrPath and fails with ErrScriptNotFound
// if the target file is absent.
func RequireExistingScript(baseDir, nameOrPath string) (string, error) {
	path, err := ResolveScriptPath(baseDir, nameOrPath)
	if err != nil {
		return "", err
	}
	if !utils.FileExists(path) {
		return "", fmt.Errorf("%w: %s", ErrScriptNotFound, path)
	}
	return path, nil
}

// Persist writes script text to path, refusing to overwrite an existing file.
// The existence check and the write are not atomic; concurrent writers racing
// on the same path are the caller's problem.
func Persist(text, path string) error {
	if utils.FileExists(path) {
		return fmt.Errorf("%w: %s", ErrScriptExists, path)
	}
	if err := os.WriteFile(path, []byte(text), utils.PermExec); err != nil {
		return fmt.Errorf("failed to write script %s: %w", path, err)
	}
	return nil
}
