package cgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/canfestival-tools/objdictgen/internal/codegen/common"
	"github.com/canfestival-tools/objdictgen/internal/codegen/ctype"
	"github.com/canfestival-tools/objdictgen/internal/od"
)

const indent = "                    "

// fragment is the generated text of one index.
type fragment struct {
	index    uint16
	body     string // object dictionary section: declarations + subindex table
	mapped   string // externally linked definitions
	externs  string // header declarations of the mapped definitions
	pointers string
	defines  string // object define header lines
}

// compileEntry emits the declarations and the subindex table of one entry.
func (g *generation) compileEntry(e *od.Entry) (*fragment, error) {
	f := &fragment{index: e.Index}
	var body strings.Builder
	if isMapped(e.Index) {
		fmt.Fprintf(&body, "\n/* index 0x%04X :   Mapped variable %s */\n", e.Index, e.Name)
	} else {
		fmt.Fprintf(&body, "\n/* index 0x%04X :   %s. */\n", e.Index, e.Name)
	}

	var err error
	switch {
	case !e.List:
		err = g.compileScalar(e, f, &body)
	case e.Struct.Has(od.IdenticalSubindexes):
		err = g.compileArray(e, f, &body)
	default:
		err = g.compileRecord(e, f, &body)
	}
	if err != nil {
		return nil, err
	}

	f.defines = fmt.Sprintf("\n#define %s_%s_Idx %s\n",
		common.DefineName(g.nodeName), common.DefineName(e.Name), hexDefine(uint64(e.Index)))
	if err := g.compileSubindexTable(e, f, &body); err != nil {
		return nil, err
	}
	f.body = body.String()
	return f, nil
}

// bufferSuffix is the array dimension of a string or domain declaration.
func bufferSuffix(d ctype.Descriptor, bufferSize string) string {
	if !d.Buffer() {
		return ""
	}
	if bufferSize != "" {
		return "[" + bufferSize + "]"
	}
	return "[" + strconv.Itoa(d.Size) + "]"
}

func (g *generation) compileScalar(e *od.Entry, f *fragment, body *strings.Builder) error {
	sub := e.Subentry(0)
	value := e.Values[0]
	typeName, err := g.typeName(sub.Type)
	if err != nil {
		return entryErr(e.Index, 0, err)
	}
	desc, err := g.types.Resolve(typeName, value)
	if err != nil {
		return entryErr(e.Index, 0, err)
	}
	if desc.Kind == ctype.Domain && isMapped(e.Index) && desc.Size == 0 {
		return entryErr(e.Index, 0, fmt.Errorf("domain variable: %w", ErrUninitializedValue))
	}
	suffix := bufferSuffix(desc, sub.BufferSize)
	lit, err := ctype.Encode(desc, value)
	if err != nil {
		return entryErr(e.Index, 0, err)
	}
	if isMapped(e.Index) {
		name := common.Identifier(sub.Name)
		f.externs += fmt.Sprintf("extern %s %s%s;\t\t/* Mapped at index 0x%04X, subindex 0x00*/\n",
			desc.CType(), name, suffix, e.Index)
		f.mapped += fmt.Sprintf("%s %s%s = %s;\t\t/* Mapped at index 0x%04X, subindex 0x00 */\n",
			desc.CType(), name, suffix, lit.Text, e.Index)
		return nil
	}
	fmt.Fprintf(body, "%s%s %s_obj%04X%s = %s;%s\n",
		indent, desc.CType(), g.nodeName, e.Index, suffix, lit.Text, lit.Suffix())
	return nil
}

// compileCount emits subindex 0 of arrays and records.
func (g *generation) compileCount(e *od.Entry, body *strings.Builder) error {
	typeName, err := g.typeName(e.Subentry(0).Type)
	if err != nil {
		return entryErr(e.Index, 0, err)
	}
	desc, err := g.types.Resolve(typeName)
	if err != nil {
		return entryErr(e.Index, 0, err)
	}
	count := decimal(e.Values[0])
	if e.Index == 0x1003 {
		count = "0"
	}
	fmt.Fprintf(body, "%s%s %s_highestSubIndex_obj%04X = %s; /* number of subindex - 1*/\n",
		indent, desc.CType(), g.nodeName, e.Index, count)
	return nil
}

func (g *generation) compileArray(e *od.Entry, f *fragment, body *strings.Builder) error {
	if err := g.compileCount(e, body); err != nil {
		return err
	}
	elements := e.Values[1:]
	typeName, err := g.typeName(e.Subentry(1).Type)
	if err != nil {
		return entryErr(e.Index, 1, err)
	}
	desc, err := g.types.Resolve(typeName, elements...)
	if err != nil {
		return entryErr(e.Index, 1, err)
	}
	suffix, typeSuffix := "", ""
	if desc.Buffer() {
		suffix = "[" + strconv.Itoa(desc.Size) + "]"
		typeSuffix = "*"
	}

	lines := make([]string, len(elements))
	for i, v := range elements {
		lit, err := ctype.Encode(desc, v)
		if err != nil {
			return entryErr(e.Index, i+1, err)
		}
		if desc.Kind == ctype.Domain && lit.Text == `""` {
			return entryErr(e.Index, i+1, fmt.Errorf("domain variable: %w", ErrUninitializedValue))
		}
		sep := ","
		if i == len(elements)-1 {
			sep = ""
		}
		lines[i] = lit.Text + sep + lit.Suffix()
	}

	if isMapped(e.Index) {
		name := common.Identifier(e.Name)
		length := hexByte(e.Values[0])
		f.externs += fmt.Sprintf("extern %s %s[%d]%s;\t\t/* Mapped at index 0x%04X, subindex 0x01 - 0x%s */\n",
			desc.CType(), name, len(elements), suffix, e.Index, length)
		var m strings.Builder
		fmt.Fprintf(&m, "%s %s[]%s =\t\t/* Mapped at index 0x%04X, subindex 0x01 - 0x%s */\n  {\n",
			desc.CType(), name, suffix, e.Index, length)
		for _, l := range lines {
			m.WriteString("    " + l + "\n")
		}
		m.WriteString("  };\n")
		f.mapped += m.String()
		return nil
	}

	fmt.Fprintf(body, "%s%s%s %s_obj%04X[] = \n%s{\n", indent, desc.CType(), typeSuffix, g.nodeName, e.Index, indent)
	for _, l := range lines {
		body.WriteString(indent + "  " + l + "\n")
	}
	body.WriteString(indent + "};\n")
	return nil
}

func (g *generation) compileRecord(e *od.Entry, f *fragment, body *strings.Builder) error {
	if err := g.compileCount(e, body); err != nil {
		return err
	}
	parent := common.Identifier(e.Name)
	for i := 1; i < len(e.Values); i++ {
		sub := e.Subentry(i)
		typeName, err := g.typeName(sub.Type)
		if err != nil {
			return entryErr(e.Index, i, err)
		}
		desc, err := g.types.Resolve(typeName, e.Values[i])
		if err != nil {
			return entryErr(e.Index, i, err)
		}
		suffix := bufferSuffix(desc, sub.BufferSize)
		lit, err := ctype.Encode(desc, e.Values[i])
		if err != nil {
			return entryErr(e.Index, i, err)
		}
		name := common.FormatName(sub.Name)
		if isMapped(e.Index) {
			f.externs += fmt.Sprintf("extern %s %s_%s%s;\t\t/* Mapped at index 0x%04X, subindex 0x%02X */\n",
				desc.CType(), parent, name, suffix, e.Index, i)
			f.mapped += fmt.Sprintf("%s %s_%s%s = %s;\t\t/* Mapped at index 0x%04X, subindex 0x%02X */\n",
				desc.CType(), parent, name, suffix, lit.Text, e.Index, i)
			continue
		}
		fmt.Fprintf(body, "%s%s %s_obj%04X_%s%s = %s;%s\n",
			indent, desc.CType(), g.nodeName, e.Index, name, suffix, lit.Text, lit.Suffix())
	}
	return nil
}

// compileSubindexTable emits the subindex descriptor rows of an entry,
// the pointer aliases pointing into it and its subindex defines.
func (g *generation) compileSubindexTable(e *od.Entry, f *fragment, body *strings.Builder) error {
	identical := e.Struct.Has(od.IdenticalSubindexes)
	defineBase := common.DefineName(g.nodeName) + "_" + common.DefineName(e.Name)
	arrayDefineDone := false

	fmt.Fprintf(body, "%ssubindex %s_Index%04X[] = \n%s {\n", indent, g.nodeName, e.Index, indent)
	for i, value := range e.Values {
		sub := e.Subentry(i)
		typeName, err := g.typeName(sub.Type)
		if err != nil {
			return entryErr(e.Index, i, err)
		}
		var desc ctype.Descriptor
		switch {
		case i == 0 && e.Index == 0x1003:
			desc, err = g.types.Resolve(ctype.EMCRange)
		case identical:
			desc, err = g.types.Resolve(typeName, e.Values[1:]...)
		default:
			desc, err = g.types.Resolve(typeName, value)
		}
		if err != nil {
			return entryErr(e.Index, i, err)
		}

		name := g.storageName(e, sub, i)
		var size string
		switch desc.Kind {
		case ctype.VisibleString:
			if sub.BufferSize != "" {
				size = sub.BufferSize
			} else {
				size = strconv.Itoa(max(len(stringOf(value)), g.types.DefaultStringSize()))
			}
		case ctype.Domain:
			size = strconv.Itoa(len(stringOf(value)))
		default:
			size = "sizeof (" + desc.CType() + ")"
		}
		save := ""
		if sub.Save {
			save = "|TO_BE_SAVE"
		}
		sep := ","
		if i == len(e.Values)-1 {
			sep = ""
		}
		fmt.Fprintf(body, "%s   { %s%s, %s, %s, (void*)&%s, NULL }%s\n",
			indent, strings.ToUpper(sub.Access.String()), save, desc.DataType(), size, name, sep)

		if alias, ok := g.pointers[od.Location{Index: e.Index, Subindex: uint8(i)}]; ok {
			f.pointers += fmt.Sprintf("%s* %s = &%s;\n", desc.CType(), alias, name)
		}

		switch {
		case !identical:
			f.defines += fmt.Sprintf("#define %s_%s_sIdx %s", defineBase, common.DefineName(sub.Name), hexDefine(uint64(i)))
			if sub.Comment != "" {
				f.defines += "    /* " + sub.Comment + " */\n"
			} else {
				f.defines += "\n"
			}
		case !arrayDefineDone:
			arrayDefineDone = true
			f.defines += fmt.Sprintf("#define %s_%s_sIdx %s\n", defineBase, common.DefineName(sub.Name), hexDefine(uint64(i)))
			f.defines += "/* subindex define not generated for array objects */\n"
		}
	}
	body.WriteString(indent + " };\n")
	return nil
}

// storageName is the C lvalue holding subindex i of e.
func (g *generation) storageName(e *od.Entry, sub od.Subentry, i int) string {
	var name string
	switch {
	case i == 0 && e.Struct.Has(od.MultipleSubindexes):
		name = fmt.Sprintf("%s_highestSubIndex_obj%04X", g.nodeName, e.Index)
	case i == 0 && isMapped(e.Index):
		name = common.FormatName(sub.Name)
	case i == 0:
		name = common.FormatName(fmt.Sprintf("%s_obj%04X", g.nodeName, e.Index))
	case e.Struct.Has(od.IdenticalSubindexes) && isMapped(e.Index):
		name = fmt.Sprintf("%s[%d]", common.FormatName(e.Name), i-1)
	case e.Struct.Has(od.IdenticalSubindexes):
		name = fmt.Sprintf("%s_obj%04X[%d]", g.nodeName, e.Index, i-1)
	case isMapped(e.Index):
		name = common.FormatName(e.Name + "_" + sub.Name)
	default:
		name = fmt.Sprintf("%s_obj%04X_%s", g.nodeName, e.Index, common.FormatName(sub.Name))
	}
	return common.SanitizeLeadingDigit(name)
}

// hexDefine formats like Python's "#04x": lower case, at least two digits.
func hexDefine(v uint64) string {
	return fmt.Sprintf("0x%02x", v)
}

func decimal(v any) string {
	switch v := v.(type) {
	case bool:
		if v {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatInt(int64(v), 10)
	}
	return fmt.Sprint(v)
}

func hexByte(v any) string {
	d, err := strconv.ParseInt(decimal(v), 10, 64)
	if err != nil {
		return decimal(v)
	}
	return fmt.Sprintf("%02X", d)
}

func stringOf(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}
