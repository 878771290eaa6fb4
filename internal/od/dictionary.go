package od

import (
	"fmt"
	"slices"
)

// Info is the node-level metadata of a Dictionary.
type Info struct {
	Name              string
	ID                uint8
	Type              NodeType
	Description       string
	DefaultStringSize int
}

// DefaultStringSize is used when a node does not configure one.
const DefaultStringSize = 10

// Dictionary is the in-memory Node implementation built by the loaders.
type Dictionary struct {
	info    Info
	entries map[uint16]*Entry
}

var _ Node = (*Dictionary)(nil)

func NewDictionary(info Info) *Dictionary {
	if info.DefaultStringSize <= 0 {
		info.DefaultStringSize = DefaultStringSize
	}
	if info.Type == "" {
		info.Type = Slave
	}
	return &Dictionary{info: info, entries: make(map[uint16]*Entry)}
}

// AddEntry defines a new index. Redefining an index fails with
// ErrDuplicateIndex.
func (d *Dictionary) AddEntry(e *Entry) error {
	if _, ok := d.entries[e.Index]; ok {
		return fmt.Errorf("index 0x%04X: %w", e.Index, ErrDuplicateIndex)
	}
	if !e.List && len(e.Values) != 1 {
		return fmt.Errorf("index 0x%04X: scalar entry needs exactly one value, got %d", e.Index, len(e.Values))
	}
	if e.List && len(e.Values) == 0 {
		return fmt.Errorf("index 0x%04X: list entry without values", e.Index)
	}
	d.entries[e.Index] = e
	return nil
}

func (d *Dictionary) Name() string           { return d.info.Name }
func (d *Dictionary) ID() uint8              { return d.info.ID }
func (d *Dictionary) Type() NodeType         { return d.info.Type }
func (d *Dictionary) Description() string    { return d.info.Description }
func (d *Dictionary) DefaultStringSize() int { return d.info.DefaultStringSize }

func (d *Dictionary) Indexes() []uint16 {
	out := make([]uint16, 0, len(d.entries))
	for idx := range d.entries {
		out = append(out, idx)
	}
	slices.Sort(out)
	return out
}

func (d *Dictionary) Entry(index uint16) (*Entry, bool) {
	e, ok := d.entries[index]
	return e, ok
}

func (d *Dictionary) EntryName(index uint16) string {
	if e, ok := d.entries[index]; ok {
		return e.Name
	}
	if name, ok := StandardEntryName(index); ok {
		return name
	}
	return fmt.Sprintf("Index 0x%04X", index)
}

// TypeName resolves a type reference: standard data types first, then
// custom types defined by the node below CustomTypeMax.
func (d *Dictionary) TypeName(ref uint16) (string, bool) {
	if name, ok := StandardTypeName(ref); ok {
		return name, true
	}
	if ref <= CustomTypeMax {
		if e, ok := d.entries[ref]; ok {
			return e.Name, true
		}
	}
	return "", false
}

// TypeIndex is the reverse of TypeName. When custom types share a name
// the lowest index wins.
func (d *Dictionary) TypeIndex(name string) (uint16, bool) {
	if idx, ok := StandardTypeIndex(name); ok {
		return idx, true
	}
	for _, idx := range d.Indexes() {
		if idx > CustomTypeMax {
			break
		}
		if d.entries[idx].Name == name {
			return idx, true
		}
	}
	return 0, false
}
