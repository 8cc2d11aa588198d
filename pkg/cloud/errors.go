package cloud

import (
	"errors"
	"fmt"
	"time"
)

// TerminalStateError reports that a waited-on resource reached a state from
// which the target state set can never be reached. It is not retried; the
// wait that observed it has failed permanently.
type TerminalStateError struct {
	// ResourceID is the identity of the resource that was being waited on.
	ResourceID string

	// State is the terminal state that was observed.
	State State
}

// Error implements the error interface.
func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("resource %s is in terminal state %q and cannot be waited on",
		e.ResourceID, e.State)
}

// WaitTimeoutError reports that a wait exhausted its time budget. State is
// the last state observed before the deadline passed; the caller may retry
// with a fresh WaitFor call.
type WaitTimeoutError struct {
	// ResourceID is the identity of the resource that was being waited on.
	ResourceID string

	// State is the last observed state before the deadline.
	State State

	// Timeout is the budget that was exhausted.
	Timeout time.Duration
}

// Error implements the error interface.
func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("waited %s for resource %s which is still in state %q",
		e.Timeout, e.ResourceID, e.State)
}

// InvalidConfigError reports a launch-configuration validation failure. It
// is raised at build time so an invalid configuration is never handed to a
// provisioning call.
type InvalidConfigError struct {
	// Message describes the violated constraint.
	Message string
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return "invalid launch configuration: " + e.Message
}

// NotFoundError reports that a resource lookup matched nothing.
type NotFoundError struct {
	// Kind is the resource kind (e.g. "instance").
	Kind string

	// ID is the identity that was looked up.
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// IsTerminalState returns true if the error is a TerminalStateError.
func IsTerminalState(err error) bool {
	var e *TerminalStateError
	return errors.As(err, &e)
}

// IsWaitTimeout returns true if the error is a WaitTimeoutError.
func IsWaitTimeout(err error) bool {
	var e *WaitTimeoutError
	return errors.As(err, &e)
}

// IsInvalidConfig returns true if the error is an InvalidConfigError.
func IsInvalidConfig(err error) bool {
	var e *InvalidConfigError
	return errors.As(err, &e)
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}
