// Package ctype maps CANopen data type names onto the storage types of the
// CanFestival C runtime and renders typed values as C literals.
package ctype

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedType = errors.New("unsupported type")
	ErrInvalidValue    = errors.New("invalid value")
)

// TypeError reports a type name the runtime has no storage type for.
type TypeError struct {
	Name string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("'%s' isn't a valid type for CanFestival", e.Name)
}

func (e *TypeError) Unwrap() error { return ErrUnsupportedType }

// Kind is the closed set of storage families.
type Kind uint8

const (
	Unsigned Kind = iota + 1
	Integer
	Real
	VisibleString
	Domain
	Boolean
	ValueRange
)

func (k Kind) String() string {
	switch k {
	case Unsigned:
		return "unsigned"
	case Integer:
		return "integer"
	case Real:
		return "real"
	case VisibleString:
		return "visible_string"
	case Domain:
		return "domain"
	case Boolean:
		return "boolean"
	case ValueRange:
		return "value_range"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Descriptor is the resolved storage of one type. Strings and domains are
// byte buffers of Size bytes. A ValueRange descriptor stores its values as
// Base and is checked at runtime by the range function under Tag.
type Descriptor struct {
	Kind Kind
	Bits int
	Size int
	Base *Descriptor
	Tag  string
}

// Buffer reports whether the descriptor is a sized byte buffer.
func (d Descriptor) Buffer() bool {
	return d.Kind == VisibleString || d.Kind == Domain
}

// Unsigned reports whether values compare as unsigned integers.
func (d Descriptor) Unsigned() bool {
	switch d.Kind {
	case Unsigned:
		return true
	case ValueRange:
		return d.Base != nil && d.Base.Unsigned()
	}
	return false
}

// Storage returns the descriptor values are encoded with.
func (d Descriptor) Storage() Descriptor {
	if d.Kind == ValueRange && d.Base != nil {
		return *d.Base
	}
	return d
}

// CType is the runtime type name used in declarations and sizeof.
func (d Descriptor) CType() string {
	switch d.Kind {
	case Unsigned:
		return fmt.Sprintf("UNS%d", d.Bits)
	case Integer:
		return fmt.Sprintf("INTEGER%d", d.Bits)
	case Real:
		return fmt.Sprintf("REAL%d", d.Bits)
	case ValueRange:
		if d.Base != nil {
			return d.Base.CType()
		}
	}
	return "UNS8"
}

// DataType is the runtime type tag written into subindex descriptor rows.
func (d Descriptor) DataType() string {
	switch d.Kind {
	case Unsigned:
		return fmt.Sprintf("uint%d", d.Bits)
	case Integer:
		return fmt.Sprintf("int%d", d.Bits)
	case Real:
		return fmt.Sprintf("real%d", d.Bits)
	case VisibleString:
		return "visible_string"
	case Domain:
		return "domain"
	case Boolean:
		return "boolean"
	default:
		return d.Tag
	}
}
