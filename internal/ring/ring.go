package ring

import (
	"hash/fnv"
	"sort"

	"kvstore/internal/address"
)

// Size is RING_SIZE (§6): every hash, node or key, is reduced mod Size.
const Size = 512

// ReplicationFactor is the fixed number of replicas per key (§1, §6): not
// configurable, per spec.md's Non-goals ("dynamic replication factor").
const ReplicationFactor = 3

// Node is a RingNode: an address placed on the ring together with its
// hash position (§3 "Ring").
type Node struct {
	Addr address.Address
	Hash uint32
}

// HashAddress computes an address's ring position, H(address) mod Size.
func HashAddress(a address.Address) uint32 {
	b := a.Bytes()
	h := fnv.New32a()
	h.Write(b[:])
	return h.Sum32() % Size
}

// HashKey computes a key's ring position, H(key) mod Size.
func HashKey(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32() % Size
}

// Ring is the derived, never-authoritative sorted sequence of Nodes (§3,
// §4.4). It holds no lock: it is rebuilt wholesale by its owning node on
// every membership change and is never mutated in place.
type Ring struct {
	nodes []Node
}

// Build computes the sorted ring for members ∪ {self}, strictly ordered by
// Hash with address byte order breaking ties (§3 invariant, §4.4).
func Build(self address.Address, members []address.Address) *Ring {
	all := make([]address.Address, 0, len(members)+1)
	all = append(all, self)
	all = append(all, members...)

	nodes := make([]Node, len(all))
	for i, a := range all {
		nodes[i] = Node{Addr: a, Hash: HashAddress(a)}
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Hash != nodes[j].Hash {
			return nodes[i].Hash < nodes[j].Hash
		}
		return nodes[i].Addr.Less(nodes[j].Addr)
	})
	return &Ring{nodes: nodes}
}

// Len returns the number of nodes on the ring.
func (r *Ring) Len() int {
	if r == nil {
		return 0
	}
	return len(r.nodes)
}

// Nodes returns the sorted ring nodes. Callers must not mutate the result.
func (r *Ring) Nodes() []Node {
	if r == nil {
		return nil
	}
	return r.nodes
}

// FindReplicas returns the three consecutive ring nodes responsible for
// key, starting at the first node whose Hash >= H(key), wrapping modulo
// ring length. If the ring has fewer than three nodes it returns an empty
// slice: quorum is impossible (§4.4, I4).
func (r *Ring) FindReplicas(key string) []Node {
	n := r.Len()
	if n < ReplicationFactor {
		return nil
	}

	keyHash := HashKey(key)
	idx := sort.Search(n, func(i int) bool {
		return r.nodes[i].Hash >= keyHash
	})
	if idx >= n {
		idx = 0
	}

	replicas := make([]Node, ReplicationFactor)
	for i := 0; i < ReplicationFactor; i++ {
		replicas[i] = r.nodes[(idx+i)%n]
	}
	return replicas
}

// Changed reports whether the ring topology differs from prev: a
// different length, or any positional Hash differing, triggers
// stabilization (§4.4).
func Changed(prev, next *Ring) bool {
	if prev.Len() != next.Len() {
		return true
	}
	for i, n := range next.Nodes() {
		if prev.Nodes()[i].Hash != n.Hash {
			return true
		}
	}
	return false
}
