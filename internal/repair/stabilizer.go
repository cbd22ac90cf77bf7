package repair

import (
	"kvstore/internal/address"
	"kvstore/internal/ring"
	"kvstore/internal/storage"
	"kvstore/internal/wire"
)

// Stabilizer re-pushes a node's owned keys to their current replica set
// whenever the ring topology changes (§4.5 "Stabilization protocol"). The
// owning node already gates calls to Run on ring.Changed; Run itself never
// skips a push once called, matching the original's unconditional
// stabilizationProtocol() sweep over every locally held key.
type Stabilizer struct {
	self address.Address
}

// NewStabilizer creates a Stabilizer for self.
func NewStabilizer(self address.Address) *Stabilizer {
	return &Stabilizer{self: self}
}

// Run re-pushes every key the local store holds to that key's current
// replica set as a silent STABLE CREATE (§4.5).
func (s *Stabilizer) Run(r *ring.Ring, store storage.Store) []wire.Envelope {
	var envelopes []wire.Envelope
	for _, key := range store.Keys() {
		replicas := r.FindReplicas(key)
		if replicas == nil {
			continue
		}
		value := store.Read(key)
		for _, n := range replicas {
			envelopes = append(envelopes, wire.Envelope{
				To: n.Addr,
				Body: wire.Message{
					Type:    wire.Create,
					From:    s.self,
					TransID: wire.STABLE,
					Key:     key,
					Value:   value,
				},
			})
		}
	}
	return envelopes
}
