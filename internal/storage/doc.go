// Package storage provides the local key-value storage interface and
// in-memory implementation (C2). It is intentionally unversioned: spec.md's
// Non-goals exclude conflict resolution beyond last-writer-by-heartbeat-
// order, so values carry no vector clock and no TTL, only a plain
// create/read/update/delete contract over a single-owner map.
package storage
