package cgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/canfestival-tools/objdictgen/internal/codegen/ctype"
)

// mandatory lists the communication objects every dictionary carries,
// with the C type and access of their single value.
var mandatory = []struct {
	index  uint16
	ctype  string
	dtype  string
	access string
}{
	{0x1003, "", "", ""},
	{0x1005, "UNS32", "uint32", "RW"},
	{0x1006, "UNS32", "uint32", "RW"},
	{0x100C, "UNS16", "uint16", "RW"},
	{0x100D, "UNS8", "uint8", "RW"},
	{0x1014, "UNS32", "uint32", "RO"},
	{0x1016, "", "", ""},
	{0x1017, "UNS16", "uint16", "RW"},
}

// injectMissing synthesizes the mandatory communication objects the node
// lacks. It also returns the length of the heartbeat timer array.
func (g *generation) injectMissing() ([]*fragment, int) {
	var out []*fragment
	heartbeats := 1
	for _, m := range mandatory {
		if e, ok := g.node.Entry(m.index); ok {
			if m.index == 0x1016 && len(e.Values) > 0 {
				if n, err := strconv.Atoi(decimal(e.Values[0])); err == nil && n > heartbeats {
					heartbeats = n
				}
			}
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "\n/* index 0x%04X :   %s */\n", m.index, g.node.EntryName(m.index))
		switch m.index {
		case 0x1003:
			fmt.Fprintf(&b, "%sUNS8 %s_highestSubIndex_obj1003 = 0; /* number of subindex - 1*/\n", indent, g.nodeName)
			fmt.Fprintf(&b, "%sUNS32 %s_obj1003[] = \n%s{\n%s  0x0\t/* 0 */\n%s};\n", indent, g.nodeName, indent, indent, indent)
			g.writeTable(&b, 0x1003,
				fmt.Sprintf("{ RW, %s, sizeof (UNS8), (void*)&%s_highestSubIndex_obj1003, NULL }", ctype.EMCRange, g.nodeName),
				fmt.Sprintf("{ RO, uint32, sizeof (UNS32), (void*)&%s_obj1003[0], NULL }", g.nodeName))
		case 0x1016:
			fmt.Fprintf(&b, "%sUNS8 %s_highestSubIndex_obj1016 = 0;\n", indent, g.nodeName)
			fmt.Fprintf(&b, "%sUNS32 %s_obj1016[]={0};\n", indent, g.nodeName)
			g.writeTable(&b, 0x1016,
				fmt.Sprintf("{ RO, uint8, sizeof (UNS8), (void*)&%s_highestSubIndex_obj1016, NULL }", g.nodeName))
		case 0x1014:
			id := 0x80 + int(g.node.ID())
			fmt.Fprintf(&b, "%s%s %s_obj1014 = 0x%X;   /* 128 + NodeID */\n", indent, m.ctype, g.nodeName, id)
			g.writeScalarTable(&b, m.index, m.access, m.dtype, m.ctype)
		default:
			fmt.Fprintf(&b, "%s%s %s_obj%04X = 0x0;   /* 0 */\n", indent, m.ctype, g.nodeName, m.index)
			g.writeScalarTable(&b, m.index, m.access, m.dtype, m.ctype)
		}
		out = append(out, &fragment{index: m.index, body: b.String()})
	}
	return out, heartbeats
}

func (g *generation) writeScalarTable(b *strings.Builder, index uint16, access, dtype, cType string) {
	g.writeTable(b, index,
		fmt.Sprintf("{ %s, %s, sizeof (%s), (void*)&%s_obj%04X, NULL }", access, dtype, cType, g.nodeName, index))
}

func (g *generation) writeTable(b *strings.Builder, index uint16, rows ...string) {
	fmt.Fprintf(b, "%ssubindex %s_Index%04X[] = \n%s {\n", indent, g.nodeName, index, indent)
	for i, r := range rows {
		sep := ","
		if i == len(rows)-1 {
			sep = ""
		}
		fmt.Fprintf(b, "%s   %s%s\n", indent, r, sep)
	}
	b.WriteString(indent + " };\n")
}
