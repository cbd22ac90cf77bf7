package network

import (
	"github.com/rs/xid"
	"go.uber.org/zap"

	"kvstore/internal/address"
	"kvstore/internal/wire"
)

// Deliverable is anything that can receive a decoded inbound frame.
// node.Node satisfies this.
type Deliverable interface {
	Enqueue(msg wire.Message)
}

// Shim is an in-process stand-in for the cluster's transport: it encodes
// an outbound Message, "sends" it by decoding straight back, and delivers
// it into the recipient's queue. An envelope addressed to an unregistered
// node (never joined, or removed to simulate a crash/partition) is
// silently dropped — there are no delivery receipts (§6).
type Shim struct {
	nodes   map[address.Address]Deliverable
	dropped int
	logger  *zap.Logger
}

// NewShim returns an empty shim that logs nothing.
func NewShim() *Shim {
	return &Shim{nodes: make(map[address.Address]Deliverable), logger: zap.NewNop()}
}

// SetLogger attaches a logger used to trace individual sends. Each send is
// tagged with a fresh xid so a dropped frame and the send that produced it
// can be correlated in the log stream.
func (s *Shim) SetLogger(zl *zap.Logger) {
	if zl != nil {
		s.logger = zl
	}
}

// Register makes addr reachable, routing future sends to it into n.
func (s *Shim) Register(addr address.Address, n Deliverable) {
	s.nodes[addr] = n
}

// Unregister makes addr unreachable, simulating a crash or partition: any
// envelope still addressed to it is dropped.
func (s *Shim) Unregister(addr address.Address) {
	delete(s.nodes, addr)
}

// Send delivers one envelope, round-tripping it through the wire codec.
func (s *Shim) Send(env wire.Envelope) {
	traceID := xid.New().String()

	n, ok := s.nodes[env.To]
	if !ok {
		s.dropped++
		s.logger.Debug("dropped send: recipient not registered",
			zap.String("trace_id", traceID), zap.String("to", env.To.String()))
		return
	}
	frame := wire.Encode(env.Body)
	msg, err := wire.Decode(frame)
	if err != nil {
		s.dropped++
		s.logger.Warn("dropped send: frame failed to round-trip",
			zap.String("trace_id", traceID), zap.String("to", env.To.String()), zap.Error(err))
		return
	}
	s.logger.Debug("sent",
		zap.String("trace_id", traceID), zap.String("to", env.To.String()), zap.String("type", msg.Type.String()))
	n.Enqueue(msg)
}

// SendAll delivers every envelope in envs, in order.
func (s *Shim) SendAll(envs []wire.Envelope) {
	for _, e := range envs {
		s.Send(e)
	}
}

// Dropped reports how many send attempts found no registered recipient or
// failed to decode.
func (s *Shim) Dropped() int {
	return s.dropped
}
