package cgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/canfestival-tools/objdictgen/internal/codegen/ctype"
	"github.com/canfestival-tools/objdictgen/internal/od"
)

// valueRanges is the range type declarations and the runtime check
// function that goes with them.
type valueRanges struct {
	tags    []string
	content string
}

// buildValueRanges registers every range constrained custom type of the
// node with the resolver and renders valueRangeTest.
func (g *generation) buildValueRanges(indexes []uint16) (*valueRanges, error) {
	var (
		defines strings.Builder
		cases   strings.Builder
		tags    []string
	)
	defines.WriteString("\n#define valueRange_EMC 0x9F /* Type for index 0x1003 subindex 0x00 (only set of value 0 is possible) */")
	cases.WriteString("    case valueRange_EMC:\n      if (*(UNS8*)value != (UNS8)0) return OD_VALUE_RANGE_EXCEEDED;\n      break;\n")

	for _, index := range indexes {
		if index > od.CustomTypeMax {
			break
		}
		name := g.node.EntryName(index)
		if _, ok := od.ParseRangeType(name); !ok {
			continue
		}
		e, ok := g.node.Entry(index)
		if !ok {
			return nil, entryErr(index, -1, ErrNoSuchObject)
		}
		if len(e.Values) < 4 {
			return nil, entryErr(index, -1, fmt.Errorf("range type needs base type, minimum and maximum: %w", ErrUninitializedValue))
		}
		ref, err := strconv.ParseUint(decimal(e.Values[1]), 10, 16)
		if err != nil {
			return nil, entryErr(index, 1, &ctype.TypeError{Name: decimal(e.Values[1])})
		}
		baseName, err := g.typeName(uint16(ref))
		if err != nil {
			return nil, entryErr(index, 1, err)
		}
		base, err := g.types.Resolve(baseName)
		if err != nil {
			return nil, entryErr(index, 1, err)
		}

		tag := fmt.Sprintf("valueRange_%d", len(tags)+1)
		tags = append(tags, tag)
		g.types.Define(name, ctype.Descriptor{Kind: ctype.ValueRange, Base: &base, Tag: tag})
		g.logger.Debug("Defined range type", "type", name, "tag", tag)

		lo, hi := decimal(e.Values[2]), decimal(e.Values[3])
		cType := base.CType()
		fmt.Fprintf(&defines, "\n#define %s 0x%02X /* Type %s, %s < value < %s */", tag, index, cType, lo, hi)
		fmt.Fprintf(&cases, "    case %s:\n", tag)
		if base.Unsigned() && !positive(e.Values[2]) {
			cases.WriteString("      /* Negative or null low limit ignored because of unsigned type */;\n")
		} else {
			fmt.Fprintf(&cases, "      if (*(%s*)value < (%s)%s) return OD_VALUE_TOO_LOW;\n", cType, cType, lo)
		}
		fmt.Fprintf(&cases, "      if (*(%s*)value > (%s)%s) return OD_VALUE_TOO_HIGH;\n", cType, cType, hi)
		cases.WriteString("    break;\n")
	}

	var b strings.Builder
	b.WriteString(defines.String())
	fmt.Fprintf(&b, "\nUNS32 %s_valueRangeTest (UNS8 typeValue, void * value)\n{", g.nodeName)
	b.WriteString("\n  switch (typeValue) {\n")
	b.WriteString(cases.String())
	b.WriteString("  }\n  return 0;\n}\n")
	return &valueRanges{tags: tags, content: b.String()}, nil
}

func positive(v any) bool {
	s := decimal(v)
	if strings.HasPrefix(s, "-") {
		return false
	}
	n, err := strconv.ParseFloat(s, 64)
	return err == nil && n > 0
}
