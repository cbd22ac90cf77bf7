// Package node implements the KV coordinator and server (C5): client-side
// quorum transactions, server-side CRUD execution, and triggering
// stabilization on ring change. A Node is driven exclusively by Tick,
// called once per discrete logical time step; there are no goroutines, no
// blocking waits, and no internal timers beyond comparisons against the
// node's own logical clock (§5).
package node
