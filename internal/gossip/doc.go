// Package gossip implements the membership service (C3): heartbeat
// propagation via periodic gossip pings, per-member liveness with
// suspect/removal timers, bootstrap via a known introducer, and a stable
// sorted view of the cluster (§4.3).
//
// The service is single-threaded and cooperative: every state transition
// happens inside OnMessage or Tick, called synchronously by the owning
// node once per dispatched message or once per logical time unit (§5).
// There are no goroutines, timers, or blocking waits here.
package gossip
