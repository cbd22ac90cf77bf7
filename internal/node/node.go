package node

import (
	"kvstore/internal/address"
	"kvstore/internal/clock"
	"kvstore/internal/gossip"
	"kvstore/internal/quorum"
	"kvstore/internal/repair"
	"kvstore/internal/ring"
	"kvstore/internal/storage"
	"kvstore/internal/wire"
)

// Logger receives every membership and KV outcome a Node produces (§6
// "Logger"). logging.Logger satisfies this structurally.
type Logger interface {
	NodeAdd(self, peer address.Address)
	NodeRemove(self, peer address.Address)
	CreateSuccess(self address.Address, isCoordinator bool, transID int, key, value string)
	CreateFail(self address.Address, isCoordinator bool, transID int, key, value string)
	ReadSuccess(self address.Address, isCoordinator bool, transID int, key, value string)
	ReadFail(self address.Address, isCoordinator bool, transID int, key string)
	UpdateSuccess(self address.Address, isCoordinator bool, transID int, key, value string)
	UpdateFail(self address.Address, isCoordinator bool, transID int, key, value string)
	DeleteSuccess(self address.Address, isCoordinator bool, transID int, key string)
	DeleteFail(self address.Address, isCoordinator bool, transID int, key string)
}

// Node is a single cluster member running both the membership service (C3)
// and the KV coordinator/server (C5) on top of one ring view (C4). It owns
// its store, ring, transaction map, and inbound queue exclusively; nothing
// about a Node is safe for concurrent use, by design (§5 "Shared resources").
type Node struct {
	self address.Address

	clock        *clock.Logical
	membership   *gossip.Membership
	store        storage.Store
	stabilizer   *repair.Stabilizer
	transactions *quorum.Map
	ids          *IDAllocator
	logger       Logger

	currentRing *ring.Ring
	inbox       []wire.Message
}

// New creates a Node for self, bootstrapping its membership against
// introducer. ids must be shared with every other Node in the same
// simulation run (see IDAllocator).
func New(self, introducer address.Address, logger Logger, ids *IDAllocator) *Node {
	return &Node{
		self:         self,
		clock:        clock.New(),
		membership:   gossip.New(self, introducer, logger),
		store:        storage.NewInMemoryStore(),
		stabilizer:   repair.NewStabilizer(self),
		transactions: quorum.NewMap(),
		ids:          ids,
		logger:       logger,
	}
}

// Self returns the node's own address.
func (n *Node) Self() address.Address {
	return n.self
}

// Now returns the node's current logical time.
func (n *Node) Now() int64 {
	return n.clock.Now()
}

// Store exposes the local store for inspection (tests, CLI status output).
func (n *Node) Store() storage.Store {
	return n.store
}

// InGroup reports whether the node considers itself part of the cluster.
func (n *Node) InGroup() bool {
	return n.membership.InGroup()
}

// View returns the node's current membership snapshot, excluding itself
// (tests, CLI status output).
func (n *Node) View() []address.Address {
	return n.membership.Addresses()
}

// PendingTransactions reports how many coordinator-side transactions are
// still awaiting a decision.
func (n *Node) PendingTransactions() int {
	return n.transactions.Len()
}

// Enqueue delivers one inbound frame to the node's queue. The network shim
// is the only caller; delivery is best-effort and at-most-once (§6).
func (n *Node) Enqueue(msg wire.Message) {
	n.inbox = append(n.inbox, msg)
}

// Start begins membership bootstrap (§4.3).
func (n *Node) Start() []wire.Envelope {
	return n.membership.Start()
}

// Tick advances the node's logical clock by one unit and runs a full
// dispatch cycle: drain the inbound queue, advance membership, recompute
// the ring and stabilize on change, then resolve any transaction that
// reached a decision. It returns every envelope that must be handed to the
// network shim.
func (n *Node) Tick() []wire.Envelope {
	now := n.clock.Advance()
	var out []wire.Envelope

	inbox := n.inbox
	n.inbox = nil
	for _, msg := range inbox {
		out = append(out, n.dispatch(msg, now)...)
	}

	out = append(out, n.membership.Tick(now)...)

	next := ring.Build(n.self, n.membership.Addresses())
	if n.currentRing == nil || ring.Changed(n.currentRing, next) {
		n.currentRing = next
		out = append(out, n.stabilizer.Run(n.currentRing, n.store)...)
	}

	for _, d := range n.transactions.Check(now) {
		n.logDecision(d)
	}

	return out
}

func (n *Node) dispatch(msg wire.Message, now int64) []wire.Envelope {
	switch msg.Type {
	case wire.JoinReq, wire.JoinRep, wire.Ping:
		return n.membership.OnMessage(msg, now)
	case wire.Create:
		return n.onServerCreate(msg)
	case wire.Read:
		return n.onServerRead(msg)
	case wire.Update:
		return n.onServerUpdate(msg)
	case wire.Delete:
		return n.onServerDelete(msg)
	case wire.Reply:
		n.transactions.OnReply(msg.TransID, msg.Success)
		return nil
	case wire.ReadReply:
		n.transactions.OnReadReply(msg.TransID, msg.ReadValue)
		return nil
	default:
		return nil
	}
}

// ClientCreate issues a coordinator-side CREATE (§4.5 "Client side").
func (n *Node) ClientCreate(key, value string, now int64) ([]wire.Envelope, error) {
	return n.clientDispatch(wire.Create, key, value, now)
}

// ClientRead issues a coordinator-side READ.
func (n *Node) ClientRead(key string, now int64) ([]wire.Envelope, error) {
	return n.clientDispatch(wire.Read, key, "", now)
}

// ClientUpdate issues a coordinator-side UPDATE.
func (n *Node) ClientUpdate(key, value string, now int64) ([]wire.Envelope, error) {
	return n.clientDispatch(wire.Update, key, value, now)
}

// ClientDelete issues a coordinator-side DELETE.
func (n *Node) ClientDelete(key string, now int64) ([]wire.Envelope, error) {
	return n.clientDispatch(wire.Delete, key, "", now)
}

func (n *Node) clientDispatch(op wire.Type, key, value string, now int64) ([]wire.Envelope, error) {
	if n.currentRing == nil {
		n.currentRing = ring.Build(n.self, n.membership.Addresses())
	}
	replicas := n.currentRing.FindReplicas(key)
	if replicas == nil {
		return nil, ErrQuorumImpossible
	}

	id := n.ids.Next()
	n.transactions.Begin(id, op, key, value, now)

	envelopes := make([]wire.Envelope, 0, len(replicas))
	for i, r := range replicas {
		envelopes = append(envelopes, wire.Envelope{
			To: r.Addr,
			Body: wire.Message{
				Type:        op,
				From:        n.self,
				TransID:     id,
				Key:         key,
				Value:       value,
				ReplicaRole: wire.ReplicaRole(i),
			},
		})
	}
	return envelopes, nil
}

func (n *Node) onServerCreate(msg wire.Message) []wire.Envelope {
	ok := n.store.Create(msg.Key, msg.Value)
	if msg.TransID == wire.STABLE {
		return nil
	}
	if ok {
		n.logger.CreateSuccess(n.self, false, msg.TransID, msg.Key, msg.Value)
	} else {
		n.logger.CreateFail(n.self, false, msg.TransID, msg.Key, msg.Value)
	}
	return []wire.Envelope{{To: msg.From, Body: wire.Message{
		Type: wire.Reply, From: n.self, TransID: msg.TransID, Success: ok,
	}}}
}

func (n *Node) onServerRead(msg wire.Message) []wire.Envelope {
	value := n.store.Read(msg.Key)
	if msg.TransID == wire.STABLE {
		return nil
	}
	if value != "" {
		n.logger.ReadSuccess(n.self, false, msg.TransID, msg.Key, value)
	} else {
		n.logger.ReadFail(n.self, false, msg.TransID, msg.Key)
	}
	return []wire.Envelope{{To: msg.From, Body: wire.Message{
		Type: wire.ReadReply, From: n.self, TransID: msg.TransID, ReadValue: value,
	}}}
}

func (n *Node) onServerUpdate(msg wire.Message) []wire.Envelope {
	ok := n.store.Update(msg.Key, msg.Value)
	if msg.TransID == wire.STABLE {
		return nil
	}
	if ok {
		n.logger.UpdateSuccess(n.self, false, msg.TransID, msg.Key, msg.Value)
	} else {
		n.logger.UpdateFail(n.self, false, msg.TransID, msg.Key, msg.Value)
	}
	return []wire.Envelope{{To: msg.From, Body: wire.Message{
		Type: wire.Reply, From: n.self, TransID: msg.TransID, Success: ok,
	}}}
}

func (n *Node) onServerDelete(msg wire.Message) []wire.Envelope {
	ok := n.store.Delete(msg.Key)
	if msg.TransID == wire.STABLE {
		return nil
	}
	if ok {
		n.logger.DeleteSuccess(n.self, false, msg.TransID, msg.Key)
	} else {
		n.logger.DeleteFail(n.self, false, msg.TransID, msg.Key)
	}
	return []wire.Envelope{{To: msg.From, Body: wire.Message{
		Type: wire.Reply, From: n.self, TransID: msg.TransID, Success: ok,
	}}}
}

func (n *Node) logDecision(d quorum.Decision) {
	t := d.Transaction
	success := d.Outcome == quorum.Success
	switch t.Op {
	case wire.Create:
		if success {
			n.logger.CreateSuccess(n.self, true, t.ID, t.Key, t.Value)
		} else {
			n.logger.CreateFail(n.self, true, t.ID, t.Key, t.Value)
		}
	case wire.Update:
		if success {
			n.logger.UpdateSuccess(n.self, true, t.ID, t.Key, t.Value)
		} else {
			n.logger.UpdateFail(n.self, true, t.ID, t.Key, t.Value)
		}
	case wire.Delete:
		if success {
			n.logger.DeleteSuccess(n.self, true, t.ID, t.Key)
		} else {
			n.logger.DeleteFail(n.self, true, t.ID, t.Key)
		}
	case wire.Read:
		if success {
			n.logger.ReadSuccess(n.self, true, t.ID, t.Key, t.ReadValue)
		} else {
			n.logger.ReadFail(n.self, true, t.ID, t.Key)
		}
	}
}
