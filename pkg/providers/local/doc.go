// Package local implements a SQLite-backed provider. It keeps a real
// inventory of instances, volumes, snapshots, images, and key pairs, and
// simulates the asynchronous behavior of a cloud backend: freshly created
// resources start in a transitional state and are promoted to their settled
// state once a configurable boot delay has passed. Promotion happens lazily
// on the next read, so a Refresh observes state changes the same way a
// polling waiter would against a remote API.
//
// The provider registers itself under the name "local".
package local
