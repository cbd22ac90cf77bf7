// Package logging implements the Logger operations a node calls on every
// membership and KV outcome (§6 "Logger"). It wraps a zap.Logger, the
// structured logger used elsewhere in the retrieval corpus, with the
// domain-specific fields spec.md requires: the acting node's address,
// whether it acted as coordinator or replica, the transaction id, and the
// key/value context.
package logging
