package scheduler

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrSchedulerNotFound indicates a required SLURM binary was not found
	ErrSchedulerNotFound = errors.New("scheduler binary not found in PATH")

	// ErrScriptNotFound indicates the script file was not found
	ErrScriptNotFound = errors.New("script file not found")

	// ErrScriptExists indicates the target script file already exists
	ErrScriptExists = errors.New("script file already exists")

	// ErrDirNotFound indicates the parent directory of a script path does not exist
	ErrDirNotFound = errors.New("parent directory does not exist")

	// ErrJobIDParseFailed indicates parsing job ID from sbatch output failed
	ErrJobIDParseFailed = errors.New("failed to parse job ID from scheduler output")
)

// ValidationError reports a caller-supplied configuration value that violates
// a documented constraint. It is always raised before any filesystem or
// subprocess side effect.
type ValidationError struct {
	Field  string // Field that failed validation
	Value  string // Offending value as given by the caller
	Reason string // Why the value is invalid
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Reason, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is allows errors.Is to match ValidationError
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, value, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// StructuralParseError reports that an expected textual structure (a directive
// line, a log line, an identifier) was not found or was ambiguous. Pattern
// names the structural assumption that failed so the caller can diagnose it.
type StructuralParseError struct {
	Source  string // What was being parsed (script path, "sacct output", ...)
	Pattern string // The structural assumption that failed to hold
	Detail  string // Optional extra context (matched count, offending line, ...)
}

func (e *StructuralParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("could not find %s in %s: %s", e.Pattern, e.Source, e.Detail)
	}
	return fmt.Sprintf("could not find %s in %s", e.Pattern, e.Source)
}

// Is allows errors.Is to match StructuralParseError
func (e *StructuralParseError) Is(target error) bool {
	_, ok := target.(*StructuralParseError)
	return ok
}

// NewStructuralParseError creates a new StructuralParseError
func NewStructuralParseError(source, pattern, detail string) *StructuralParseError {
	return &StructuralParseError{Source: source, Pattern: pattern, Detail: detail}
}

// ExternalToolError reports a subprocess that failed or produced unusable
// output. It carries the command and a snippet of its raw output for diagnosis.
type ExternalToolError struct {
	Command string // The command that was invoked
	Output  string // Raw combined output (may be empty)
	Err     error  // Underlying error
}

func (e *ExternalToolError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s failed: %v\nOutput: %s", e.Command, e.Err, e.Output)
	}
	return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

// NewExternalToolError creates a new ExternalToolError
func NewExternalToolError(command, output string, err error) *ExternalToolError {
	return &ExternalToolError{Command: command, Output: output, Err: err}
}

// TaskDiscoveryError wraps any failure in the resubmit auto-discovery pipeline
// with a uniform, actionable message.
type TaskDiscoveryError struct {
	Stage string // Pipeline stage that failed
	Err   error  // Underlying cause
}

func (e *TaskDiscoveryError) Error() string {
	return fmt.Sprintf("could not discover failed tasks (%s): %v; please specify task IDs explicitly",
		e.Stage, e.Err)
}

func (e *TaskDiscoveryError) Unwrap() error {
	return e.Err
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStructuralParseError checks if an error is a StructuralParseError
func IsStructuralParseError(err error) bool {
	var spe *StructuralParseError
	return errors.As(err, &spe)
}
