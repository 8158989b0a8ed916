package report

import (
	"errors"
	"fmt"
)

// ParseError reports external command output that does not match the column
// layout this package expects.
type ParseError struct {
	Source string // which command's output was being parsed
	Line   string // offending line (may be empty)
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line != "" {
		return fmt.Sprintf("cannot parse %s output: %s (line: %q)", e.Source, e.Reason, e.Line)
	}
	return fmt.Sprintf("cannot parse %s output: %s", e.Source, e.Reason)
}

// Is allows errors.Is to match ParseError
func (e *ParseError) Is(target error) bool {
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(source, line, reason string) *ParseError {
	return &ParseError{Source: source, Line: line, Reason: reason}
}

// InternalConsistencyError reports scheduler output that violates an
// assumption this package relies on. Unlike ParseError this points at a stale
// assumption in slurmjobs itself rather than at the caller.
type InternalConsistencyError struct {
	Assumption string
	Detail     string
}

func (e *InternalConsistencyError) Error() string {
	msg := fmt.Sprintf("internal inconsistency: %s", e.Assumption)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg + "; this is a bug in slurmjobs, please report it"
}

// Is allows errors.Is to match InternalConsistencyError
func (e *InternalConsistencyError) Is(target error) bool {
	_, ok := target.(*InternalConsistencyError)
	return ok
}

// NewInternalConsistencyError creates a new InternalConsistencyError
func NewInternalConsistencyError(assumption, detail string) *InternalConsistencyError {
	return &InternalConsistencyError{Assumption: assumption, Detail: detail}
}

// ExternalToolError reports a monitoring command that failed to run or exited
// non-zero. The raw output is kept for diagnosis.
type ExternalToolError struct {
	Command string
	Output  string
	Err     error
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

// IsInternalConsistencyError checks if an error is an InternalConsistencyError
func IsInternalConsistencyError(err error) bool {
	var ice *InternalConsistencyError
	return errors.As(err, &ice)
}
