// Package address implements the six-byte node identifier used throughout
// the cluster: a 4-byte id followed by a 2-byte port. Equality and hashing
// are byte-level, matching the wire representation.
package address

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Size is the wire length of an Address in bytes: 4 bytes of id, 2 of port.
const Size = 6

// Address is a 6-byte node identifier: 4-byte id + 2-byte port.
type Address struct {
	ID   uint32
	Port uint16
}

// New builds an Address from its numeric parts.
func New(id uint32, port uint16) Address {
	return Address{ID: id, Port: port}
}

// Bytes returns the 6-byte wire representation, big-endian.
func (a Address) Bytes() [Size]byte {
	var b [Size]byte
	binary.BigEndian.PutUint32(b[0:4], a.ID)
	binary.BigEndian.PutUint16(b[4:6], a.Port)
	return b
}

// FromBytes parses the 6-byte wire representation produced by Bytes.
func FromBytes(b [Size]byte) Address {
	return Address{
		ID:   binary.BigEndian.Uint32(b[0:4]),
		Port: binary.BigEndian.Uint16(b[4:6]),
	}
}

// String renders the address as "id:port", the form used on the wire and
// in log lines.
func (a Address) String() string {
	return fmt.Sprintf("%d:%d", a.ID, a.Port)
}

// Parse reads the "id:port" form produced by String.
func Parse(s string) (Address, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return Address{}, fmt.Errorf("address: invalid form %q, want id:port", s)
	}
	id, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return Address{}, fmt.Errorf("address: invalid id in %q: %w", s, err)
	}
	port, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return Address{}, fmt.Errorf("address: invalid port in %q: %w", s, err)
	}
	return Address{ID: uint32(id), Port: uint16(port)}, nil
}

// Less gives the byte-order comparison used to break hash ties on the ring
// and to sort addresses deterministically elsewhere.
func (a Address) Less(o Address) bool {
	ab, ob := a.Bytes(), o.Bytes()
	for i := range ab {
		if ab[i] != ob[i] {
			return ab[i] < ob[i]
		}
	}
	return false
}

// Introducer is the fixed bootstrap address: id=1, port=0. The node whose
// own address equals Introducer is the group founder (§4.3).
var Introducer = Address{ID: 1, Port: 0}
