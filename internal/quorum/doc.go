// Package quorum tracks coordinator-side transactions and decides their
// outcome from accumulated replica replies (C5, §4.5). It is a pure
// bookkeeping structure: no network I/O, no goroutines, no timers. The
// owning node drives it once per dispatched reply and once per tick.
package quorum

