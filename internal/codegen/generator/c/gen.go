// Package cgen renders a CANopen object dictionary as CanFestival C
// sources: the dictionary source file, its header and a header of
// index/subindex defines.
package cgen

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/canfestival-tools/objdictgen/internal/codegen/ctype"
	"github.com/canfestival-tools/objdictgen/internal/od"
)

const fileHeader = "\n/* File generated by objdictgen. Should not be modified. */\n"

const (
	mappedMin = 0x2000
	mappedMax = 0xBFFF
	odMin     = 0x1000
)

// Options tune a generation run.
type Options struct {
	// HeaderName is the file name the source includes. Defaults to
	// "<node name>.h".
	HeaderName string
	// Pointers names pointer variables to emit for single objects.
	Pointers map[od.Location]string
}

// Files holds the three generated artifacts.
type Files struct {
	Source        string
	Header        string
	ObjectDefines string
}

// generation is the state of one run. Nothing in it outlives Generate.
type generation struct {
	logger   *slog.Logger
	node     od.Node
	nodeName string
	types    *ctype.Resolver
	pointers map[od.Location]string
}

func isMapped(index uint16) bool {
	return index >= mappedMin && index <= mappedMax
}

// Generate renders node. It either returns all three artifacts or an error.
func Generate(logger *slog.Logger, node od.Node, opts Options) (*Files, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g := &generation{
		logger:   logger,
		node:     node,
		nodeName: node.Name(),
		types:    ctype.NewResolver(node.DefaultStringSize()),
		pointers: opts.Pointers,
	}
	headerName := opts.HeaderName
	if headerName == "" {
		headerName = g.nodeName + ".h"
	}

	indexes := slices.Clone(node.Indexes())
	slices.Sort(indexes)
	if i := firstDuplicate(indexes); i >= 0 {
		return nil, entryErr(indexes[i], -1, ErrDuplicateIndex)
	}

	ranges, err := g.buildValueRanges(indexes)
	if err != nil {
		return nil, err
	}

	var (
		fragments []*fragment
		defined   []uint16
	)
	for _, index := range indexes {
		if index < odMin {
			continue
		}
		e, ok := node.Entry(index)
		if !ok {
			return nil, entryErr(index, -1, ErrNoSuchObject)
		}
		frag, err := g.compileEntry(e)
		if err != nil {
			return nil, err
		}
		logger.Debug("Compiled entry", "index", fmt.Sprintf("0x%04X", index), "shape", e.Struct, "mapped", isMapped(index))
		fragments = append(fragments, frag)
		defined = append(defined, index)
	}

	injected, heartbeats := g.injectMissing()
	for _, frag := range injected {
		logger.Debug("Injected default entry", "index", fmt.Sprintf("0x%04X", frag.index))
	}
	fragments = append(fragments, injected...)
	slices.SortFunc(fragments, func(a, b *fragment) int { return int(a.index) - int(b.index) })

	final := make([]uint16, 0, len(fragments))
	for _, f := range fragments {
		final = append(final, f.index)
	}
	table, err := buildIndexTable(g.nodeName, final)
	if err != nil {
		return nil, err
	}

	files, err := g.assemble(headerName, fragments, ranges, table, heartbeats)
	if err != nil {
		return nil, err
	}
	logger.Debug("Assembled object dictionary",
		"node", g.nodeName,
		"entries", len(defined),
		"injected", len(injected),
		"rangeTypes", len(ranges.tags))
	return files, nil
}

func firstDuplicate(sorted []uint16) int {
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return i
		}
	}
	return -1
}

// typeName resolves a subentry type reference to its name.
func (g *generation) typeName(ref uint16) (string, error) {
	name, ok := g.node.TypeName(ref)
	if !ok {
		return "", &ctype.TypeError{Name: fmt.Sprintf("0x%04X", ref)}
	}
	return name, nil
}

func includeGuard(headerName, sep string) string {
	return strings.ToUpper(strings.ReplaceAll(headerName, ".", sep))
}
