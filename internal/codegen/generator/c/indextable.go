package cgen

import (
	"fmt"
	"strings"
)

type category struct {
	name     string
	min, max uint16
}

// categories are the index ranges the runtime looks up through the quick
// index tables, in the order of the quick_index struct fields.
var categories = []category{
	{"SDO_SVR", 0x1200, 0x127F},
	{"SDO_CLT", 0x1280, 0x12FF},
	{"PDO_RCV", 0x1400, 0x15FF},
	{"PDO_RCV_MAP", 0x1600, 0x17FF},
	{"PDO_TRS", 0x1800, 0x19FF},
	{"PDO_TRS_MAP", 0x1A00, 0x1BFF},
}

// indexTable is the navigation part of the dictionary source.
type indexTable struct {
	rows           string
	cases          string
	quickIndex     string
	maxPDOTransmit int
	first, last    []int
}

// buildIndexTable lays out the master table over indexes, which must be
// strictly ascending. A quick index of 0 means either an empty category
// or one starting at row 0; the runtime cannot tell them apart.
func buildIndexTable(nodeName string, indexes []uint16) (*indexTable, error) {
	t := &indexTable{
		first: make([]int, len(categories)),
		last:  make([]int, len(categories)),
	}
	var rows, cases strings.Builder
	pdoTransmit := 0
	for i, index := range indexes {
		if i > 0 && index <= indexes[i-1] {
			return nil, entryErr(index, -1, ErrDuplicateIndex)
		}
		fmt.Fprintf(&rows, "  { (subindex*)%[1]s_Index%04[2]X,sizeof(%[1]s_Index%04[2]X)/sizeof(%[1]s_Index%04[2]X[0]), 0x%04[2]X},\n", nodeName, index)
		fmt.Fprintf(&cases, "       case 0x%04X: i = %d;break;\n", index, i)
		for c, cat := range categories {
			if index < cat.min || index > cat.max {
				continue
			}
			t.last[c] = i
			if t.first[c] == 0 {
				t.first[c] = i
			}
			if cat.name == "PDO_TRS" {
				pdoTransmit++
			}
		}
	}
	t.rows = rows.String()
	t.cases = cases.String()
	t.maxPDOTransmit = max(1, pdoTransmit)

	var q strings.Builder
	for _, block := range []struct {
		name string
		rows []int
	}{{"firstIndex", t.first}, {"lastIndex", t.last}} {
		fmt.Fprintf(&q, "\nconst quick_index %s_%s = {\n", nodeName, block.name)
		for c, cat := range categories {
			sep := ","
			if c == len(categories)-1 {
				sep = ""
			}
			fmt.Fprintf(&q, "  %d%s /* %s */\n", block.rows[c], sep, cat.name)
		}
		q.WriteString("};\n")
	}
	t.quickIndex = q.String()
	return t, nil
}

// pdoStatus declares the PDO status array, one slot per transmit PDO.
func (t *indexTable) pdoStatus(nodeName string) string {
	init := strings.TrimSuffix(strings.Repeat("s_PDO_status_Initializer,", t.maxPDOTransmit), ",")
	return fmt.Sprintf("s_PDO_status %s_PDO_status[%d] = {%s};\n", nodeName, t.maxPDOTransmit, init)
}
