// Package od models a CANopen object dictionary as seen by the code
// generator: a read-only Node exposing indexed entries, their subentry
// metadata and the node-level settings.
package od

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateIndex = errors.New("duplicate index")
	ErrUnknownType    = errors.New("unknown data type")
	ErrUnknownFormat  = errors.New("unknown file format")
)

// Struct holds the shape flags of an entry.
type Struct uint8

const (
	MultipleSubindexes  Struct = 1 << 0
	IdenticalSubindexes Struct = 1 << 1

	VAR    Struct = 0
	RECORD Struct = MultipleSubindexes
	ARRAY  Struct = MultipleSubindexes | IdenticalSubindexes
)

func (s Struct) Has(flag Struct) bool { return s&flag == flag }

func (s Struct) String() string {
	switch s {
	case VAR:
		return "var"
	case RECORD:
		return "record"
	case ARRAY:
		return "array"
	default:
		return fmt.Sprintf("struct(%d)", uint8(s))
	}
}

// ParseStruct maps "var", "record" or "array" to its flags.
func ParseStruct(s string) (Struct, error) {
	switch strings.ToLower(s) {
	case "var", "":
		return VAR, nil
	case "record":
		return RECORD, nil
	case "array":
		return ARRAY, nil
	}
	return 0, fmt.Errorf("invalid entry struct %q", s)
}

type Access uint8

const (
	RO Access = iota
	WO
	RW
)

func (a Access) String() string {
	switch a {
	case WO:
		return "wo"
	case RW:
		return "rw"
	default:
		return "ro"
	}
}

func ParseAccess(s string) (Access, error) {
	switch strings.ToLower(s) {
	case "ro", "":
		return RO, nil
	case "wo":
		return WO, nil
	case "rw":
		return RW, nil
	}
	return 0, fmt.Errorf("invalid access %q", s)
}

type NodeType string

const (
	Master NodeType = "master"
	Slave  NodeType = "slave"
)

// Location addresses a single object by index and subindex.
type Location struct {
	Index    uint16
	Subindex uint8
}

func (l Location) String() string {
	return fmt.Sprintf("0x%04X:0x%02X", l.Index, l.Subindex)
}

// Subentry carries the per-subindex metadata of an entry.
type Subentry struct {
	Name       string
	Type       uint16
	Access     Access
	Save       bool
	BufferSize string
	Comment    string
}

// Entry is one object dictionary index. Values holds one raw value per
// subindex; a scalar (List == false) has exactly one value. Raw values are
// int64, uint64, float64, bool or string. Domain payloads are raw bytes
// stored in a string.
type Entry struct {
	Index      uint16
	Name       string
	Struct     Struct
	Values     []any
	List       bool
	Subentries []Subentry
}

// Subentry returns the metadata for subindex i. Arrays may describe their
// elements once at subindex 1, in which case every i >= 1 reuses it.
func (e *Entry) Subentry(i int) Subentry {
	if i < len(e.Subentries) {
		return e.Subentries[i]
	}
	if e.Struct.Has(IdenticalSubindexes) && len(e.Subentries) > 1 {
		return e.Subentries[len(e.Subentries)-1]
	}
	return Subentry{}
}

// Node is the read-only view of a device the generator consumes.
type Node interface {
	Name() string
	ID() uint8
	Type() NodeType
	Description() string
	DefaultStringSize() int

	// Indexes lists every defined index. Order is unspecified.
	Indexes() []uint16
	Entry(index uint16) (*Entry, bool)
	// EntryName names an index, falling back to the standard
	// communication profile for objects the node does not define.
	EntryName(index uint16) string
	TypeName(ref uint16) (string, bool)
}
