// Package errors defines the typed error taxonomy shared across the
// pipeline engine: configuration errors raised while building the phase
// graph, execution errors raised by modules, the synthetic dependency-skip
// error, and the handful of engine-lifecycle errors (reentrancy, disposal,
// failure-log arming).
package errors

import (
	"errors"
	"fmt"
)

// Code identifies a well-known category of engine error.
type Code string

const (
	CodeConfig      Code = "CONFIG_ERROR"
	CodeCycle       Code = "CYCLIC_DEPENDENCY"
	CodeDependency  Code = "DEPENDENCY_ERROR"
	CodeExecution   Code = "EXECUTION_ERROR"
	CodeSkipped     Code = "DEPENDENCY_SKIPPED"
	CodeCancelled   Code = "CANCELLED"
	CodeFailureLog  Code = "FAILURE_LOG_THRESHOLD"
	CodeReentrancy  Code = "REENTRANT_EXECUTION"
	CodeDisposed    Code = "ALREADY_DISPOSED"
	CodeValidation  Code = "VALIDATION_ERROR"
	CodeInternal    Code = "INTERNAL_ERROR"
)

// Error is a structured engine error enriched with breadcrumb context
// (pipeline/phase/module) so failures can be logged once at the point of
// propagation, as required by the error-handling design.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Context map[string]interface{}
}

// New constructs an Error with the supplied code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap constructs an Error carrying cause as its underlying error.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is allows errors.Is comparisons keyed on error code.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithContext returns a copy of the error with additional context merged in.
func (e *Error) WithContext(ctx map[string]interface{}) *Error {
	if e == nil {
		return nil
	}
	merged := make(map[string]interface{}, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}
	return &Error{Code: e.Code, Message: e.Message, Cause: e.Cause, Context: merged}
}

// WithBreadcrumb annotates the error with the pipeline/phase/module that
// raised it, so the taxonomy's "logged once with breadcrumbs" contract has a
// single place to hang the data.
func (e *Error) WithBreadcrumb(pipelineName, phaseKind, moduleName string) *Error {
	ctx := map[string]interface{}{}
	if pipelineName != "" {
		ctx["pipeline"] = pipelineName
	}
	if phaseKind != "" {
		ctx["phase"] = phaseKind
	}
	if moduleName != "" {
		ctx["module"] = moduleName
	}
	return e.WithContext(ctx)
}

// ConfigError builds a CodeConfig error, the category used for the
// phase-graph build-time failures other than cycles (missing dependency,
// isolated-with-deps, dependency on an isolated pipeline,
// deployment/non-deployment mismatch); cycles are reported as CodeCycle.
func ConfigError(message string, ctx map[string]interface{}) *Error {
	return &Error{Code: CodeConfig, Message: message, Context: ctx}
}

// SkippedError builds the synthetic dependency-skip error raised by a phase
// whose dependencies did not all complete successfully.
func SkippedError(phaseID string, cause error) *Error {
	return &Error{
		Code:    CodeSkipped,
		Message: fmt.Sprintf("phase %s skipped: dependency did not complete successfully", phaseID),
		Cause:   cause,
		Context: map[string]interface{}{"phase_id": phaseID},
	}
}
