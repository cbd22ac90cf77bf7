// Package wire implements the message codec (C1): a tagged Message type
// and a self-describing textual frame encoding for it. Text was chosen by
// the original design for ease of debugging in the simulator harness;
// bit-exact compatibility across heterogeneous implementations is not a
// goal (§4.1, §6).
package wire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"kvstore/internal/address"
)

// Type tags the kind of payload a Message carries.
type Type int

const (
	JoinReq Type = iota
	JoinRep
	Ping
	Create
	Read
	Update
	Delete
	Reply
	ReadReply
)

func (t Type) String() string {
	switch t {
	case JoinReq:
		return "JOINREQ"
	case JoinRep:
		return "JOINREP"
	case Ping:
		return "PING"
	case Create:
		return "CREATE"
	case Read:
		return "READ"
	case Update:
		return "UPDATE"
	case Delete:
		return "DELETE"
	case Reply:
		return "REPLY"
	case ReadReply:
		return "READREPLY"
	default:
		return "UNKNOWN"
	}
}

func typeFromString(s string) (Type, error) {
	switch s {
	case "JOINREQ":
		return JoinReq, nil
	case "JOINREP":
		return JoinRep, nil
	case "PING":
		return Ping, nil
	case "CREATE":
		return Create, nil
	case "READ":
		return Read, nil
	case "UPDATE":
		return Update, nil
	case "DELETE":
		return Delete, nil
	case "REPLY":
		return Reply, nil
	case "READREPLY":
		return ReadReply, nil
	default:
		return 0, fmt.Errorf("%w: unknown type tag %q", ErrMalformedFrame, s)
	}
}

// ErrMalformedFrame is returned by Decode for any frame that cannot be
// parsed. Per §7 class 3, the caller's only valid response is to drop the
// frame; there is no recovery path.
var ErrMalformedFrame = errors.New("wire: malformed frame")

// ReplicaRole is the ordinal position of a replica within a key's
// three-node replica set.
type ReplicaRole int

const (
	Primary ReplicaRole = iota
	Secondary
	Tertiary
)

func (r ReplicaRole) String() string {
	switch r {
	case Primary:
		return "0"
	case Secondary:
		return "1"
	case Tertiary:
		return "2"
	default:
		return "-1"
	}
}

// Envelope addresses a Message to a destination: the shape every
// component hands to the network shim (§6 "Network shim").
type Envelope struct {
	To   address.Address
	Body Message
}

// MemberTuple is the (id,port,heartbeat,timestamp) shape carried inside
// membership frames.
type MemberTuple struct {
	Addr      address.Address
	Heartbeat int64
	Timestamp int64
}

// Message is the tagged variant describing every frame exchanged between
// nodes. Only the fields relevant to Type are populated; dispatch is by
// pattern match on Type, never by embedding/inheritance (§9).
type Message struct {
	Type Type

	// Common to every message.
	From address.Address

	// Membership fields (JoinReq, JoinRep, Ping).
	Heartbeat int64
	Members   []MemberTuple

	// KV request fields (Create, Read, Update, Delete).
	TransID     int
	Key         string
	Value       string
	ReplicaRole ReplicaRole

	// KV reply fields (Reply, ReadReply).
	Success   bool
	ReadValue string
}

// STABLE is the sentinel transaction id used by the stabilization protocol
// (§4.5, §6): it marks a CRUD message as a silent re-replication push with
// no reply and no logging.
const STABLE = -1

// Encode produces the self-describing textual frame for m.
func Encode(m Message) string {
	switch m.Type {
	case JoinReq, JoinRep, Ping:
		var b strings.Builder
		b.WriteString(m.Type.String())
		b.WriteByte(' ')
		b.WriteString(m.From.String())
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(m.Heartbeat, 10))
		for _, mt := range m.Members {
			fmt.Fprintf(&b, " %s,%d,%d", mt.Addr.String(), mt.Heartbeat, mt.Timestamp)
		}
		return b.String()

	case Create, Update:
		return fmt.Sprintf("%d::%s::%s::%s::%s::%s",
			m.TransID, m.From.String(), m.Type.String(), m.Key, m.Value, m.ReplicaRole.String())

	case Read, Delete:
		return fmt.Sprintf("%d::%s::%s::%s::%s",
			m.TransID, m.From.String(), m.Type.String(), m.Key, m.ReplicaRole.String())

	case Reply:
		return fmt.Sprintf("%d::%s::REPLY::%t", m.TransID, m.From.String(), m.Success)

	case ReadReply:
		return fmt.Sprintf("%d::%s::READREPLY::%s", m.TransID, m.From.String(), m.ReadValue)

	default:
		return ""
	}
}

// Decode parses a frame produced by Encode. Malformed frames return
// ErrMalformedFrame and must be dropped by the caller with no recovery
// (§7 class 3).
func Decode(frame string) (Message, error) {
	if frame == "" {
		return Message{}, fmt.Errorf("%w: empty frame", ErrMalformedFrame)
	}

	if strings.Contains(frame, "::") {
		return decodeKV(frame)
	}
	return decodeMembership(frame)
}

func decodeMembership(frame string) (Message, error) {
	fields := strings.Fields(frame)
	if len(fields) < 3 {
		return Message{}, fmt.Errorf("%w: short membership frame %q", ErrMalformedFrame, frame)
	}

	typ, err := typeFromString(fields[0])
	if err != nil {
		return Message{}, err
	}
	if typ != JoinReq && typ != JoinRep && typ != Ping {
		return Message{}, fmt.Errorf("%w: %q is not a membership type", ErrMalformedFrame, fields[0])
	}

	from, err := address.Parse(fields[1])
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	heartbeat, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Message{}, fmt.Errorf("%w: bad heartbeat: %v", ErrMalformedFrame, err)
	}

	members := make([]MemberTuple, 0, len(fields)-3)
	for _, tuple := range fields[3:] {
		parts := strings.Split(tuple, ",")
		if len(parts) != 3 {
			return Message{}, fmt.Errorf("%w: bad member tuple %q", ErrMalformedFrame, tuple)
		}
		addr, err := address.Parse(parts[0])
		if err != nil {
			return Message{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		hb, err1 := strconv.ParseInt(parts[1], 10, 64)
		ts, err2 := strconv.ParseInt(parts[2], 10, 64)
		if err1 != nil || err2 != nil {
			return Message{}, fmt.Errorf("%w: bad member tuple counters %q", ErrMalformedFrame, tuple)
		}
		members = append(members, MemberTuple{Addr: addr, Heartbeat: hb, Timestamp: ts})
	}

	return Message{Type: typ, From: from, Heartbeat: heartbeat, Members: members}, nil
}

func decodeKV(frame string) (Message, error) {
	fields := strings.Split(frame, "::")
	if len(fields) < 4 {
		return Message{}, fmt.Errorf("%w: short KV frame %q", ErrMalformedFrame, frame)
	}

	transID, err := strconv.Atoi(fields[0])
	if err != nil {
		return Message{}, fmt.Errorf("%w: bad transID: %v", ErrMalformedFrame, err)
	}
	from, err := address.Parse(fields[1])
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	typ, err := typeFromString(fields[2])
	if err != nil {
		return Message{}, err
	}

	switch typ {
	case Create, Update:
		if len(fields) != 6 {
			return Message{}, fmt.Errorf("%w: %s frame needs 6 fields, got %d", ErrMalformedFrame, typ, len(fields))
		}
		role, err := roleFromString(fields[5])
		if err != nil {
			return Message{}, err
		}
		return Message{Type: typ, TransID: transID, From: from, Key: fields[3], Value: fields[4], ReplicaRole: role}, nil

	case Read, Delete:
		if len(fields) != 5 {
			return Message{}, fmt.Errorf("%w: %s frame needs 5 fields, got %d", ErrMalformedFrame, typ, len(fields))
		}
		role, err := roleFromString(fields[4])
		if err != nil {
			return Message{}, err
		}
		return Message{Type: typ, TransID: transID, From: from, Key: fields[3], ReplicaRole: role}, nil

	case Reply:
		if len(fields) != 4 {
			return Message{}, fmt.Errorf("%w: REPLY frame needs 4 fields, got %d", ErrMalformedFrame, len(fields))
		}
		success, err := strconv.ParseBool(fields[3])
		if err != nil {
			return Message{}, fmt.Errorf("%w: bad success flag: %v", ErrMalformedFrame, err)
		}
		return Message{Type: typ, TransID: transID, From: from, Success: success}, nil

	case ReadReply:
		if len(fields) != 4 {
			return Message{}, fmt.Errorf("%w: READREPLY frame needs 4 fields, got %d", ErrMalformedFrame, len(fields))
		}
		return Message{Type: typ, TransID: transID, From: from, ReadValue: fields[3]}, nil

	default:
		return Message{}, fmt.Errorf("%w: %q is not a KV type", ErrMalformedFrame, fields[2])
	}
}

func roleFromString(s string) (ReplicaRole, error) {
	switch s {
	case "0":
		return Primary, nil
	case "1":
		return Secondary, nil
	case "2":
		return Tertiary, nil
	default:
		return 0, fmt.Errorf("%w: bad replica role %q", ErrMalformedFrame, s)
	}
}
