package od

import (
	"regexp"
)

// Standard CANopen data type indices.
var dataTypes = map[uint16]string{
	0x01: "BOOLEAN",
	0x02: "INTEGER8",
	0x03: "INTEGER16",
	0x04: "INTEGER32",
	0x05: "UNSIGNED8",
	0x06: "UNSIGNED16",
	0x07: "UNSIGNED32",
	0x08: "REAL32",
	0x09: "VISIBLE_STRING",
	0x0A: "OCTET_STRING",
	0x0B: "UNICODE_STRING",
	0x0C: "TIME_OF_DAY",
	0x0D: "TIME_DIFFERENCE",
	0x0F: "DOMAIN",
	0x10: "INTEGER24",
	0x11: "REAL64",
	0x12: "INTEGER40",
	0x13: "INTEGER48",
	0x14: "INTEGER56",
	0x15: "INTEGER64",
	0x16: "UNSIGNED24",
	0x18: "UNSIGNED40",
	0x19: "UNSIGNED48",
	0x1A: "UNSIGNED56",
	0x1B: "UNSIGNED64",
}

var dataTypeIndex = func() map[string]uint16 {
	m := make(map[string]uint16, len(dataTypes))
	for idx, name := range dataTypes {
		m[name] = idx
	}
	return m
}()

// CustomTypeMax bounds the index range holding user defined types.
const CustomTypeMax = 0x0260

var rangeTypeRe = regexp.MustCompile(`^([_A-Z]*)([0-9]*)\[([\-0-9]*)-([\-0-9]*)\]`)

// RangeType describes a custom type name such as "UNSIGNED8[0-100]".
// Bounds are kept as written; they may exceed the int64 range.
type RangeType struct {
	Base     string
	Width    string
	Min, Max string
}

// ParseRangeType reports whether name is a range-constrained type name and
// returns its parts.
func ParseRangeType(name string) (RangeType, bool) {
	m := rangeTypeRe.FindStringSubmatch(name)
	if m == nil {
		return RangeType{}, false
	}
	return RangeType{Base: m[1], Width: m[2], Min: m[3], Max: m[4]}, true
}

// StandardTypeName returns the name of a standard data type index.
func StandardTypeName(ref uint16) (string, bool) {
	name, ok := dataTypes[ref]
	return name, ok
}

// StandardTypeIndex returns the data type index of a standard type name.
func StandardTypeIndex(name string) (uint16, bool) {
	idx, ok := dataTypeIndex[name]
	return idx, ok
}

// Names of the communication objects every generated dictionary carries.
var communicationNames = map[uint16]string{
	0x1000: "Device Type",
	0x1001: "Error Register",
	0x1003: "Pre-defined Error Field",
	0x1005: "SYNC COB ID",
	0x1006: "Communication / Cycle Period",
	0x1008: "Manufacturer Device Name",
	0x100C: "Guard Time",
	0x100D: "Life Time Factor",
	0x1014: "Emergency COB ID",
	0x1016: "Consumer Heartbeat Time",
	0x1017: "Producer Heartbeat Time",
	0x1018: "Identity",
}

// StandardEntryName returns the profile name of a communication object.
func StandardEntryName(index uint16) (string, bool) {
	name, ok := communicationNames[index]
	return name, ok
}
