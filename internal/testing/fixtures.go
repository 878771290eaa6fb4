package testing

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"

	"github.com/canfestival-tools/objdictgen/internal/od"
)

// Node builds a dictionary from entries and fails the test on any error.
func Node(t *testing.T, info od.Info, entries ...*od.Entry) *od.Dictionary {
	t.Helper()
	d := od.NewDictionary(info)
	for _, e := range entries {
		require.NoError(t, d.AddEntry(e))
	}
	return d
}

// Sub describes a subentry of a standard data type.
func Sub(t *testing.T, name, typeName string, access od.Access) od.Subentry {
	t.Helper()
	ref, ok := od.StandardTypeIndex(typeName)
	require.True(t, ok, "unknown standard type %s", typeName)
	return od.Subentry{Name: name, Type: ref, Access: access}
}

// Var is a single value entry.
func Var(index uint16, name string, sub od.Subentry, value any) *od.Entry {
	return &od.Entry{Index: index, Name: name, Struct: od.VAR, Values: []any{value}, Subentries: []od.Subentry{sub}}
}

// Record is a list entry with one subentry per value.
func Record(index uint16, name string, subs []od.Subentry, values ...any) *od.Entry {
	return &od.Entry{Index: index, Name: name, Struct: od.RECORD, List: true, Values: values, Subentries: subs}
}

// Array is a list entry whose elements all share subs[1].
func Array(index uint16, name string, subs []od.Subentry, values ...any) *od.Entry {
	return &od.Entry{Index: index, Name: name, Struct: od.ARRAY, List: true, Values: values, Subentries: subs}
}

// ExpectNoDiff reports a unified diff between want and got.
func ExpectNoDiff(t *testing.T, want, got string) {
	t.Helper()
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  5,
	})
	if diff != "" {
		t.Error(diff)
	}
}
