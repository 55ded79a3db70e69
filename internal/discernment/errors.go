package discernment

import (
	"fmt"
	"strings"
)

// InvalidInputError reports a declared value outside its range or an
// unrecognized categorical value. Callers should fix the call site; retrying
// the same input fails the same way.
type InvalidInputError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid input: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// ThresholdConfigError reports a classifier threshold set that violates its
// ordering or range constraints. Raised before any evaluation runs.
type ThresholdConfigError struct {
	Violations []string
}

func (e *ThresholdConfigError) Error() string {
	return "invalid thresholds: " + strings.Join(e.Violations, "; ")
}

// ConfigError reports invalid engine configuration other than thresholds:
// weights, interview parameters, theme rules.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// InterviewExhaustedError describes an interview that hit max_turns before
// full completeness. It is informational: the session still folds.
type InterviewExhaustedError struct {
	Turns        int
	Completeness float64
}

func (e *InterviewExhaustedError) Error() string {
	return fmt.Sprintf("interview exhausted after %d turns at completeness %.3f", e.Turns, e.Completeness)
}
