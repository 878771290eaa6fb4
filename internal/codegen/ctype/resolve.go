package ctype

import (
	"regexp"
	"strconv"
)

// EMCRange is the built-in range type of index 0x1003 subindex 0, which
// only accepts the value 0.
const EMCRange = "valueRange_EMC"

var typeNameRe = regexp.MustCompile(`^([_A-Z]*)([0-9]*)`)

// Resolver turns type names into descriptors. Fixed-width results are
// cached by name; buffers are sized per call from the sample values and
// never cached. A Resolver belongs to one generation run.
type Resolver struct {
	defaultStringSize int
	cache             map[string]Descriptor
}

func NewResolver(defaultStringSize int) *Resolver {
	r := &Resolver{
		defaultStringSize: defaultStringSize,
		cache:             make(map[string]Descriptor),
	}
	r.cache[EMCRange] = Descriptor{
		Kind: ValueRange,
		Tag:  EMCRange,
		Base: &Descriptor{Kind: Unsigned, Bits: 8},
	}
	return r
}

// DefaultStringSize is the minimum size of string buffers.
func (r *Resolver) DefaultStringSize() int { return r.defaultStringSize }

// Define records a descriptor under name, shadowing the name's own parse.
func (r *Resolver) Define(name string, d Descriptor) {
	r.cache[name] = d
}

// Resolve returns the descriptor of typeName. samples are the values that
// will be stored with it and only matter for strings and domains.
func (r *Resolver) Resolve(typeName string, samples ...any) (Descriptor, error) {
	if d, ok := r.cache[typeName]; ok {
		return d, nil
	}
	m := typeNameRe.FindStringSubmatch(typeName)
	family, suffix := m[1], m[2]

	var d Descriptor
	switch family {
	case "UNSIGNED", "INTEGER":
		bits, err := strconv.Atoi(suffix)
		if err != nil || bits < 8 || bits > 64 || bits%8 != 0 {
			return Descriptor{}, &TypeError{Name: typeName}
		}
		d = Descriptor{Kind: Unsigned, Bits: bits}
		if family == "INTEGER" {
			d.Kind = Integer
		}
	case "REAL":
		if suffix != "32" && suffix != "64" {
			return Descriptor{}, &TypeError{Name: typeName}
		}
		bits, _ := strconv.Atoi(suffix)
		d = Descriptor{Kind: Real, Bits: bits}
	case "VISIBLE_STRING", "OCTET_STRING":
		size := r.defaultStringSize
		for _, s := range samples {
			size = max(size, sampleLen(s))
		}
		if suffix != "" {
			n, err := strconv.Atoi(suffix)
			if err != nil {
				return Descriptor{}, &TypeError{Name: typeName}
			}
			size = max(size, n)
		}
		return Descriptor{Kind: VisibleString, Bits: 8, Size: size}, nil
	case "DOMAIN":
		size := 0
		for _, s := range samples {
			size = max(size, sampleLen(s))
		}
		return Descriptor{Kind: Domain, Bits: 8, Size: size}, nil
	case "BOOLEAN":
		d = Descriptor{Kind: Boolean, Bits: 8}
	default:
		return Descriptor{}, &TypeError{Name: typeName}
	}
	r.cache[typeName] = d
	return d, nil
}

func sampleLen(v any) int {
	switch v := v.(type) {
	case string:
		return len(v)
	case []byte:
		return len(v)
	}
	return 0
}
