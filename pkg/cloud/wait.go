package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Default poll budget for the per-kind WaitTill*Ready helpers.
const (
	// DefaultWaitTimeout is the default total time budget for a wait.
	DefaultWaitTimeout = 600 * time.Second

	// DefaultWaitInterval is the default sleep between polls.
	DefaultWaitInterval = 5 * time.Second
)

// Hooks for deterministic tests.
var (
	timeNow = time.Now
	sleepFn = time.Sleep
)

// WaitOptions parameterizes a WaitFor call.
type WaitOptions struct {
	// TargetStates are the states that complete the wait successfully.
	TargetStates []State

	// TerminalStates are the dead-end states: observing one fails the wait
	// with a TerminalStateError.
	TerminalStates []State

	// Timeout is the total time budget. Must be >= 0 and >= Interval.
	Timeout time.Duration

	// Interval is the constant sleep between polls. Must be >= 0. No
	// backoff or jitter is applied.
	Interval time.Duration
}

// WaitFor polls the resource until its state enters TargetStates, fails
// with a TerminalStateError when a state in TerminalStates is observed, and
// fails with a WaitTimeoutError when the time budget runs out. Refresh
// errors abort the wait and are returned verbatim.
//
// The poll cycle is: check target, check terminal, sleep, check deadline,
// refresh. Consequently a resource already in a target state never triggers
// a Refresh, and a transition to a terminal state is detected on the next
// poll cycle rather than instantaneously. The ctx is forwarded to Refresh
// only; the timeout is the sole early-exit mechanism of the wait itself.
//
// Invalid options (negative durations, or a timeout smaller than the
// interval) are a programming error and panic.
func WaitFor(ctx context.Context, res StatefulResource, opts WaitOptions) error {
	if opts.Timeout < 0 || opts.Interval < 0 || opts.Timeout < opts.Interval {
		panic(fmt.Sprintf("cloud: invalid wait options: timeout=%s interval=%s",
			opts.Timeout, opts.Interval))
	}

	deadline := timeNow().Add(opts.Timeout)
	for {
		state := res.State()
		if state.In(opts.TargetStates) {
			log.Debug().
				Str("resource_id", res.ID()).
				Str("state", string(state)).
				Msg("resource reached target state")
			return nil
		}
		if state.In(opts.TerminalStates) {
			return &TerminalStateError{ResourceID: res.ID(), State: state}
		}
		log.Debug().
			Str("resource_id", res.ID()).
			Str("state", string(state)).
			Dur("remaining", deadline.Sub(timeNow())).
			Msg("resource not ready, waiting")
		sleepFn(opts.Interval)
		if timeNow().After(deadline) {
			return &WaitTimeoutError{
				ResourceID: res.ID(),
				State:      state,
				Timeout:    opts.Timeout,
			}
		}
		if err := res.Refresh(ctx); err != nil {
			return err
		}
	}
}

// WaitTillInstanceReady waits for the instance to reach the running state
// using the declared instance state sets and the default poll budget.
func WaitTillInstanceReady(ctx context.Context, i Instance) error {
	return WaitFor(ctx, i, WaitOptions{
		TargetStates:   InstanceReadyStates,
		TerminalStates: InstanceTerminalStates,
		Timeout:        DefaultWaitTimeout,
		Interval:       DefaultWaitInterval,
	})
}

// WaitTillVolumeReady waits for the volume to become available.
func WaitTillVolumeReady(ctx context.Context, v Volume) error {
	return WaitFor(ctx, v, WaitOptions{
		TargetStates:   VolumeReadyStates,
		TerminalStates: VolumeTerminalStates,
		Timeout:        DefaultWaitTimeout,
		Interval:       DefaultWaitInterval,
	})
}

// WaitTillSnapshotReady waits for the snapshot to become available.
func WaitTillSnapshotReady(ctx context.Context, s Snapshot) error {
	return WaitFor(ctx, s, WaitOptions{
		TargetStates:   SnapshotReadyStates,
		TerminalStates: SnapshotTerminalStates,
		Timeout:        DefaultWaitTimeout,
		Interval:       DefaultWaitInterval,
	})
}

// WaitTillImageReady waits for the machine image to become available.
func WaitTillImageReady(ctx context.Context, m MachineImage) error {
	return WaitFor(ctx, m, WaitOptions{
		TargetStates:   MachineImageReadyStates,
		TerminalStates: MachineImageTerminalStates,
		Timeout:        DefaultWaitTimeout,
		Interval:       DefaultWaitInterval,
	})
}
