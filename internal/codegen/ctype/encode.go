package ctype

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Literal is an encoded value: C source text plus an optional decimal
// rendering for a trailing comment.
type Literal struct {
	Text    string
	Comment string
}

// Suffix renders the trailing comment, tab separated, or nothing.
func (l Literal) Suffix() string {
	if l.Comment == "" {
		return ""
	}
	return "\t/* " + l.Comment + " */"
}

// Encode renders v as a literal of type d.
func Encode(d Descriptor, v any) (Literal, error) {
	d = d.Storage()
	switch d.Kind {
	case VisibleString:
		s, ok := bytesOf(v)
		if !ok {
			return Literal{}, fmt.Errorf("%w: %v is not a string", ErrInvalidValue, v)
		}
		return Literal{Text: `"` + s + `"`}, nil
	case Domain:
		s, ok := bytesOf(v)
		if !ok {
			return Literal{}, fmt.Errorf("%w: %v is not a domain", ErrInvalidValue, v)
		}
		var b strings.Builder
		b.Grow(2 + 4*len(s))
		b.WriteByte('"')
		for i := 0; i < len(s); i++ {
			fmt.Fprintf(&b, "\\x%02x", s[i])
		}
		b.WriteByte('"')
		return Literal{Text: b.String()}, nil
	case Real:
		f, ok := floatOf(v)
		if !ok {
			return Literal{}, fmt.Errorf("%w: %v is not a number", ErrInvalidValue, v)
		}
		return Literal{Text: strconv.FormatFloat(f, 'f', 6, 64)}, nil
	case Unsigned, Integer, Boolean:
		neg, mag, ok := integerOf(v)
		if !ok {
			return Literal{}, fmt.Errorf("%w: %v is not an integer", ErrInvalidValue, v)
		}
		if neg {
			return Literal{
				Text:    fmt.Sprintf("-0x%X", mag),
				Comment: "-" + strconv.FormatUint(mag, 10),
			}, nil
		}
		return Literal{
			Text:    fmt.Sprintf("0x%X", mag),
			Comment: strconv.FormatUint(mag, 10),
		}, nil
	}
	return Literal{}, fmt.Errorf("%w: no encoding for %s", ErrUnsupportedType, d.Kind)
}

func bytesOf(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}

func floatOf(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	}
	neg, mag, ok := integerOf(v)
	if !ok {
		return 0, false
	}
	if neg {
		return -float64(mag), true
	}
	return float64(mag), true
}

// integerOf splits an integral value into sign and magnitude.
func integerOf(v any) (neg bool, mag uint64, ok bool) {
	signed := func(n int64) (bool, uint64, bool) {
		if n < 0 {
			return true, uint64(^n) + 1, true
		}
		return false, uint64(n), true
	}
	switch v := v.(type) {
	case bool:
		if v {
			return false, 1, true
		}
		return false, 0, true
	case int:
		return signed(int64(v))
	case int8:
		return signed(int64(v))
	case int16:
		return signed(int64(v))
	case int32:
		return signed(int64(v))
	case int64:
		return signed(v)
	case uint:
		return false, uint64(v), true
	case uint8:
		return false, uint64(v), true
	case uint16:
		return false, uint64(v), true
	case uint32:
		return false, uint64(v), true
	case uint64:
		return false, v, true
	case float64:
		if v != math.Trunc(v) || math.Abs(v) >= 1<<63 {
			return false, 0, false
		}
		return signed(int64(v))
	}
	return false, 0, false
}
