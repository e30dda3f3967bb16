package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for codreamer errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// Knowledge graph error codes
const (
	GRAPH_LOAD_FAILED  ErrorCode = "GRAPH_LOAD_FAILED"
	GRAPH_PARSE_FAILED ErrorCode = "GRAPH_PARSE_FAILED"
	SCORES_LOAD_FAILED ErrorCode = "SCORES_LOAD_FAILED"
	SCORES_SAVE_FAILED ErrorCode = "SCORES_SAVE_FAILED"
)

// Feedback error codes
const (
	FEEDBACK_APPEND_FAILED ErrorCode = "FEEDBACK_APPEND_FAILED"
	FEEDBACK_ENCODE_FAILED ErrorCode = "FEEDBACK_ENCODE_FAILED"
)

// Rollout and pipeline error codes
const (
	ROLLOUT_MODEL_FAILED      ErrorCode = "ROLLOUT_MODEL_FAILED"
	TRAJECTORY_ENCODE_FAILED  ErrorCode = "TRAJECTORY_ENCODE_FAILED"
	TRAJECTORY_DECODE_FAILED  ErrorCode = "TRAJECTORY_DECODE_FAILED"
	PIPELINE_INVALID_CONFIG   ErrorCode = "PIPELINE_INVALID_CONFIG"
	PIPELINE_BUDGET_EXCEEDED  ErrorCode = "PIPELINE_BUDGET_EXCEEDED"
	PIPELINE_CHECKPOINT_ERROR ErrorCode = "PIPELINE_CHECKPOINT_ERROR"
	TRAINER_STEP_FAILED       ErrorCode = "TRAINER_STEP_FAILED"
	JUDGE_SCORE_FAILED        ErrorCode = "JUDGE_SCORE_FAILED"
)

// DreamerError represents a structured error with error code, message, and
// optional cause. It supports error wrapping and retryability hints.
type DreamerError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *DreamerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
// This enables using errors.Is() and errors.As() with wrapped errors.
func (e *DreamerError) Unwrap() error {
	return e.Cause
}

// NewError creates a new DreamerError with the given code and message.
func NewError(code ErrorCode, message string) *DreamerError {
	return &DreamerError{
		Code:    code,
		Message: message,
	}
}

// WrapError creates a new DreamerError wrapping an underlying cause.
func WrapError(code ErrorCode, message string, cause error) *DreamerError {
	return &DreamerError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithRetryable marks the error as retryable and returns it for chaining.
func (e *DreamerError) WithRetryable(retryable bool) *DreamerError {
	e.Retryable = retryable
	return e
}

// IsCode reports whether err (or any error in its chain) is a DreamerError
// carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var de *DreamerError
	if !errors.As(err, &de) {
		return false
	}
	return de.Code == code
}
