package cloud

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock replaces the package time hooks so waits are deterministic.
// Sleep advances the clock by the slept duration.
type fakeClock struct {
	now    time.Time
	sleeps int
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps++
	c.now = c.now.Add(d)
}

func installFakeClock(t *testing.T) *fakeClock {
	t.Helper()
	fc := &fakeClock{now: time.Unix(1000, 0)}
	timeNow = fc.Now
	sleepFn = fc.Sleep
	t.Cleanup(func() {
		timeNow = time.Now
		sleepFn = time.Sleep
	})
	return fc
}

// fakeResource yields one state from sequence per Refresh call and keeps
// the last one once the sequence is exhausted.
type fakeResource struct {
	id        string
	state     State
	sequence  []State
	refreshes int
	err       error
}

func (r *fakeResource) ID() string   { return r.id }
func (r *fakeResource) State() State { return r.state }

func (r *fakeResource) Refresh(_ context.Context) error {
	r.refreshes++
	if r.err != nil {
		return r.err
	}
	if len(r.sequence) > 0 {
		r.state = r.sequence[0]
		r.sequence = r.sequence[1:]
	}
	return nil
}

func TestWaitFor_AlreadyInTargetState(t *testing.T) {
	installFakeClock(t)
	res := &fakeResource{id: "i-1", state: InstanceStateRunning}

	err := WaitFor(context.Background(), res, WaitOptions{
		TargetStates:   InstanceReadyStates,
		TerminalStates: InstanceTerminalStates,
		Timeout:        10 * time.Second,
		Interval:       2 * time.Second,
	})

	if err != nil {
		t.Fatalf("Expected success, got: %v", err)
	}
	if res.refreshes != 0 {
		t.Errorf("Expected no refresh for a resource already in target state, got %d", res.refreshes)
	}
}

func TestWaitFor_ReachesTargetAfterRefreshes(t *testing.T) {
	installFakeClock(t)
	res := &fakeResource{
		id:       "i-1",
		state:    InstanceStatePending,
		sequence: []State{InstanceStatePending, InstanceStateRunning},
	}

	err := WaitFor(context.Background(), res, WaitOptions{
		TargetStates:   []State{InstanceStateRunning},
		TerminalStates: []State{InstanceStateError, InstanceStateTerminated},
		Timeout:        10 * time.Second,
		Interval:       2 * time.Second,
	})

	if err != nil {
		t.Fatalf("Expected success, got: %v", err)
	}
	if res.refreshes != 2 {
		t.Errorf("Expected exactly 2 refresh calls, got %d", res.refreshes)
	}
}

func TestWaitFor_TimesOut(t *testing.T) {
	fc := installFakeClock(t)
	res := &fakeResource{id: "vol-1", state: VolumeStateCreating}

	err := WaitFor(context.Background(), res, WaitOptions{
		TargetStates:   VolumeReadyStates,
		TerminalStates: VolumeTerminalStates,
		Timeout:        10 * time.Second,
		Interval:       2 * time.Second,
	})

	var timeoutErr *WaitTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Expected WaitTimeoutError, got: %v", err)
	}
	if timeoutErr.ResourceID != "vol-1" {
		t.Errorf("Expected resource id vol-1, got %s", timeoutErr.ResourceID)
	}
	if timeoutErr.State != VolumeStateCreating {
		t.Errorf("Expected last observed state %q, got %q", VolumeStateCreating, timeoutErr.State)
	}
	// floor(timeout/interval) refreshes: the deadline check runs after the
	// sleep, so the refresh at exactly the deadline still happens.
	if res.refreshes != 5 {
		t.Errorf("Expected 5 refresh calls, got %d", res.refreshes)
	}
	if fc.sleeps != 6 {
		t.Errorf("Expected 6 sleeps, got %d", fc.sleeps)
	}
}

func TestWaitFor_TerminalStateDetectedNextCycle(t *testing.T) {
	fc := installFakeClock(t)
	res := &fakeResource{
		id:       "i-9",
		state:    InstanceStatePending,
		sequence: []State{InstanceStateError},
	}

	err := WaitFor(context.Background(), res, WaitOptions{
		TargetStates:   InstanceReadyStates,
		TerminalStates: InstanceTerminalStates,
		Timeout:        10 * time.Second,
		Interval:       2 * time.Second,
	})

	var termErr *TerminalStateError
	if !errors.As(err, &termErr) {
		t.Fatalf("Expected TerminalStateError, got: %v", err)
	}
	if termErr.ResourceID != "i-9" {
		t.Errorf("Expected resource id i-9, got %s", termErr.ResourceID)
	}
	if termErr.State != InstanceStateError {
		t.Errorf("Expected state %q, got %q", InstanceStateError, termErr.State)
	}
	// The terminal state is observed on the cycle after the refresh that
	// produced it: one sleep, one refresh, no more.
	if res.refreshes != 1 {
		t.Errorf("Expected 1 refresh call, got %d", res.refreshes)
	}
	if fc.sleeps != 1 {
		t.Errorf("Expected 1 sleep, got %d", fc.sleeps)
	}
}

func TestWaitFor_TargetWinsOverTerminal(t *testing.T) {
	installFakeClock(t)
	res := &fakeResource{id: "i-2", state: InstanceStateRunning}

	err := WaitFor(context.Background(), res, WaitOptions{
		TargetStates:   []State{InstanceStateRunning},
		TerminalStates: []State{InstanceStateRunning, InstanceStateError},
		Timeout:        10 * time.Second,
		Interval:       2 * time.Second,
	})

	if err != nil {
		t.Fatalf("Expected target check to run before terminal check, got: %v", err)
	}
}

func TestWaitFor_RefreshErrorPropagatesVerbatim(t *testing.T) {
	installFakeClock(t)
	backendErr := errors.New("backend unavailable")
	res := &fakeResource{id: "i-3", state: InstanceStatePending, err: backendErr}

	err := WaitFor(context.Background(), res, WaitOptions{
		TargetStates:   InstanceReadyStates,
		TerminalStates: InstanceTerminalStates,
		Timeout:        10 * time.Second,
		Interval:       2 * time.Second,
	})

	if !errors.Is(err, backendErr) {
		t.Fatalf("Expected backend error to propagate unmodified, got: %v", err)
	}
}

func TestWaitFor_InvalidOptionsPanic(t *testing.T) {
	tests := []struct {
		name string
		opts WaitOptions
	}{
		{"negative timeout", WaitOptions{Timeout: -time.Second, Interval: 0}},
		{"negative interval", WaitOptions{Timeout: time.Second, Interval: -time.Second}},
		{"timeout below interval", WaitOptions{Timeout: time.Second, Interval: 2 * time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("Expected panic for %s", tt.name)
				}
			}()
			res := &fakeResource{id: "i-4", state: InstanceStatePending}
			_ = WaitFor(context.Background(), res, tt.opts)
		})
	}
}

func TestWaitFor_ZeroTimeoutZeroInterval(t *testing.T) {
	installFakeClock(t)
	res := &fakeResource{id: "i-5", state: InstanceStateRunning}

	// timeout == interval == 0 is legal; a resource already in target state
	// still succeeds without polling.
	err := WaitFor(context.Background(), res, WaitOptions{
		TargetStates: InstanceReadyStates,
	})
	if err != nil {
		t.Fatalf("Expected success, got: %v", err)
	}
}

func TestWaitTillInstanceReady_TerminalShortCircuit(t *testing.T) {
	fc := installFakeClock(t)
	res := &fakeInstance{fakeResource: fakeResource{id: "i-6", state: InstanceStateTerminated}}

	err := WaitTillInstanceReady(context.Background(), res)

	if !IsTerminalState(err) {
		t.Fatalf("Expected TerminalStateError, got: %v", err)
	}
	if fc.sleeps != 0 {
		t.Errorf("Expected no sleep for an initially terminal resource, got %d", fc.sleeps)
	}
}

// fakeInstance adds the Instance surface on top of fakeResource so the
// per-kind helpers can be exercised.
type fakeInstance struct {
	fakeResource
}

func (i *fakeInstance) Name() string                        { return "test" }
func (i *fakeInstance) ImageID() string                     { return "img-1" }
func (i *fakeInstance) PublicIPs() []string                 { return nil }
func (i *fakeInstance) PrivateIPs() []string                { return nil }
func (i *fakeInstance) Terminate(_ context.Context) error   { return nil }
