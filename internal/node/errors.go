package node

import "errors"

// ErrQuorumImpossible is returned by a client-side call when the ring has
// fewer than three nodes, so findReplicas cannot name a replica set at all
// (§4.4).
var ErrQuorumImpossible = errors.New("node: fewer than three ring nodes, quorum impossible")
