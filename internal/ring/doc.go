// Package ring computes the sorted consistent-hash ring (C4) from the
// current membership view and resolves keys to their three replicas. The
// ring is derived state only: it is rebuilt from scratch whenever
// membership changes and is never itself authoritative.
package ring
