// Package cloud defines the provider-agnostic core of Skybridge: the
// capability interfaces that every cloud backend exposes (identity, state,
// refresh, marker pagination) and the three algorithms shared by all
// resource kinds.
//
// The package deliberately contains no provider logic. Backends live under
// pkg/providers and plug into this core by implementing the interfaces
// declared here:
//
//   - StatefulResource feeds the state waiter (WaitFor and the per-kind
//     WaitTill*Ready helpers), which polls Refresh until a target state set
//     is reached, a terminal state is observed, or the timeout expires.
//
//   - PageSource feeds the pagination Iterator, which flattens
//     marker-paginated list results into a single lazy sequence.
//
//   - LaunchConfig accumulates block-device and network-interface
//     specifications for an instance launch, validating cross-device
//     invariants on every insertion.
//
// The three are independent of each other; none holds state beyond a single
// call or iteration, and none is safe for concurrent use on the same value.
//
// Wire protocols, authentication, transport, and retry policy are provider
// concerns and are intentionally absent: errors returned by Refresh or
// ListPage pass through this package unmodified.
package cloud
