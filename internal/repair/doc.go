// Package repair implements the stabilization protocol (§4.5): re-pushing
// a node's owned keys to their current replica set whenever the ring
// topology changes, so replicas gained after a join or lost after a
// removal converge without an explicit repair RPC. Per-key conflict
// resolution beyond last-writer-by-reply-order is out of scope, so this
// package carries no vector clocks or version reconciliation.
package repair
