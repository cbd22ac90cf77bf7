package gossip

import (
	"sort"

	"kvstore/internal/address"
	"kvstore/internal/wire"
)

// Failure-detection constants (§6).
const (
	TFail   = 5  // suspicion threshold: age >= TFail enters Suspect
	TRemove = 20 // removal threshold: age >= TRemove evicts the entry
)

// Status is a peer entry's derived liveness state (§4.3 state machine).
// Removed is never observed directly: a Removed entry is deleted from the
// view on the Tick that crosses TRemove, so Status only ever classifies a
// currently-present entry as Live or Suspect.
type Status int

const (
	Live Status = iota
	Suspect
)

// MemberEntry is one peer's gossip state (§3). Timestamp is the local
// logical time at which Heartbeat was last refreshed.
type MemberEntry struct {
	Addr      address.Address
	Heartbeat int64
	Timestamp int64
}

// Logger receives membership events (§6 Logger).
type Logger interface {
	NodeAdd(self, peer address.Address)
	NodeRemove(self, peer address.Address)
}

// Membership is the owning node's view of the cluster (C3). It is
// single-threaded: OnMessage and Tick are called synchronously from the
// node's own dispatch loop, never concurrently (§5).
type Membership struct {
	self       address.Address
	introducer address.Address
	logger     Logger

	inGroup   bool
	heartbeat int64

	// view never contains self (I1); keyed by address for O(1) lookup.
	view map[address.Address]*MemberEntry
}

// New creates a Membership for self, bootstrapping against introducer.
func New(self, introducer address.Address, logger Logger) *Membership {
	m := &Membership{
		self:       self,
		introducer: introducer,
		logger:     logger,
		view:       make(map[address.Address]*MemberEntry),
	}
	if self == introducer {
		m.inGroup = true
	}
	return m
}

// InGroup reports whether this node has completed bootstrap.
func (m *Membership) InGroup() bool {
	return m.inGroup
}

// Heartbeat returns this node's own current heartbeat counter.
func (m *Membership) Heartbeat() int64 {
	return m.heartbeat
}

// Start begins bootstrap (§4.3): the introducer is already inGroup, every
// other node sends a JOINREQ and waits for a JOINREP.
func (m *Membership) Start() []wire.Envelope {
	if m.inGroup {
		return nil
	}
	return []wire.Envelope{{
		To: m.introducer,
		Body: wire.Message{
			Type:      wire.JoinReq,
			From:      m.self,
			Heartbeat: m.heartbeat,
		},
	}}
}

// Snapshot returns the current view as a stable, address-sorted slice
// (C3's "stable sorted view of the cluster").
func (m *Membership) Snapshot() []MemberEntry {
	entries := make([]MemberEntry, 0, len(m.view))
	for _, e := range m.view {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Addr.Less(entries[j].Addr)
	})
	return entries
}

// Addresses returns just the peer addresses of Snapshot, the form C4 needs
// to rebuild the ring.
func (m *Membership) Addresses() []address.Address {
	snap := m.Snapshot()
	out := make([]address.Address, len(snap))
	for i, e := range snap {
		out[i] = e.Addr
	}
	return out
}

// StatusOf classifies a peer entry's liveness at the given logical time.
func StatusOf(e MemberEntry, now int64) Status {
	if now-e.Timestamp >= TFail {
		return Suspect
	}
	return Live
}

// carriedView builds the (id,port,heartbeat,timestamp) tuples exchanged on
// the wire for the current view, excluding self (I1).
func (m *Membership) carriedView() []wire.MemberTuple {
	tuples := make([]wire.MemberTuple, 0, len(m.view))
	for _, e := range m.view {
		tuples = append(tuples, wire.MemberTuple{Addr: e.Addr, Heartbeat: e.Heartbeat, Timestamp: e.Timestamp})
	}
	return tuples
}

// addOrTouch inserts a new entry, logging the join; it leaves an existing
// entry untouched.
func (m *Membership) addOrTouch(peer address.Address, heartbeat, now int64) {
	if peer == m.self {
		return
	}
	if _, exists := m.view[peer]; exists {
		return
	}
	m.view[peer] = &MemberEntry{Addr: peer, Heartbeat: heartbeat, Timestamp: now}
	if m.logger != nil {
		m.logger.NodeAdd(m.self, peer)
	}
}

// mergeEntry applies one carried (id,port,heartbeat,timestamp) tuple from a
// PING or JOINREP payload, per the merge rule in §4.3.
func (m *Membership) mergeEntry(tuple wire.MemberTuple, now int64) {
	if tuple.Addr == m.self {
		return
	}
	if existing, known := m.view[tuple.Addr]; known {
		if tuple.Heartbeat > existing.Heartbeat {
			existing.Heartbeat = tuple.Heartbeat
			existing.Timestamp = now
		}
		return
	}
	if now-tuple.Timestamp < TRemove {
		m.view[tuple.Addr] = &MemberEntry{Addr: tuple.Addr, Heartbeat: tuple.Heartbeat, Timestamp: now}
		if m.logger != nil {
			m.logger.NodeAdd(m.self, tuple.Addr)
		}
	}
}

// OnMessage dispatches one inbound membership frame and returns any
// envelopes that must be sent in direct response (§4.3).
func (m *Membership) OnMessage(msg wire.Message, now int64) []wire.Envelope {
	switch msg.Type {
	case wire.JoinReq:
		m.addOrTouch(msg.From, msg.Heartbeat, now)
		return []wire.Envelope{{
			To: msg.From,
			Body: wire.Message{
				Type:      wire.JoinRep,
				From:      m.self,
				Heartbeat: m.heartbeat,
				Members:   m.carriedView(),
			},
		}}

	case wire.JoinRep:
		m.addOrTouch(msg.From, msg.Heartbeat, now)
		for _, tuple := range msg.Members {
			m.mergeEntry(tuple, now)
		}
		m.inGroup = true
		return nil

	case wire.Ping:
		if existing, known := m.view[msg.From]; known {
			if msg.Heartbeat > existing.Heartbeat {
				existing.Heartbeat = msg.Heartbeat
			}
			existing.Timestamp = now
		} else if msg.From != m.self {
			m.view[msg.From] = &MemberEntry{Addr: msg.From, Heartbeat: msg.Heartbeat, Timestamp: now}
		}
		for _, tuple := range msg.Members {
			m.mergeEntry(tuple, now)
		}
		return nil

	default:
		return nil
	}
}

// Tick advances the local heartbeat, evicts members silent for TRemove
// units (scanning in reverse address order so eviction never disturbs the
// scan), and returns one gossip PING envelope per remaining peer, carrying
// the full view (§4.3 "Tick").
func (m *Membership) Tick(now int64) []wire.Envelope {
	m.heartbeat++

	addrs := make([]address.Address, 0, len(m.view))
	for a := range m.view {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })

	for i := len(addrs) - 1; i >= 0; i-- {
		a := addrs[i]
		e := m.view[a]
		if now-e.Timestamp >= TRemove {
			delete(m.view, a)
			if m.logger != nil {
				m.logger.NodeRemove(m.self, a)
			}
		}
	}

	envelopes := make([]wire.Envelope, 0, len(m.view))
	for _, a := range addrs {
		if _, stillPresent := m.view[a]; !stillPresent {
			continue
		}
		envelopes = append(envelopes, wire.Envelope{
			To: a,
			Body: wire.Message{
				Type:      wire.Ping,
				From:      m.self,
				Heartbeat: m.heartbeat,
				Members:   m.carriedView(),
			},
		})
	}
	return envelopes
}
