// Package network implements the network shim (§6 "Network shim"): best-
// effort, receipt-free delivery of wire frames between nodes in the same
// simulated cluster. It is the one place outside internal/wire that
// actually encodes and decodes frames, exercising the C1 codec at the
// simulated transport boundary the way a real socket would. Every send is
// tagged with a short-lived xid trace id for log correlation.
package network
