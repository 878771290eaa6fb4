package ctype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canfestival-tools/objdictgen/internal/codegen/ctype"
)

func TestResolveFixedWidth(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		ctype    string
		dataType string
		unsigned bool
	}{
		{name: "unsigned 8", typeName: "UNSIGNED8", ctype: "UNS8", dataType: "uint8", unsigned: true},
		{name: "unsigned 24", typeName: "UNSIGNED24", ctype: "UNS24", dataType: "uint24", unsigned: true},
		{name: "unsigned 64", typeName: "UNSIGNED64", ctype: "UNS64", dataType: "uint64", unsigned: true},
		{name: "integer 16", typeName: "INTEGER16", ctype: "INTEGER16", dataType: "int16"},
		{name: "integer 40", typeName: "INTEGER40", ctype: "INTEGER40", dataType: "int40"},
		{name: "real 32", typeName: "REAL32", ctype: "REAL32", dataType: "real32"},
		{name: "real 64", typeName: "REAL64", ctype: "REAL64", dataType: "real64"},
		{name: "boolean", typeName: "BOOLEAN", ctype: "UNS8", dataType: "boolean"},
	}
	r := ctype.NewResolver(10)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := r.Resolve(tt.typeName)
			require.NoError(t, err)
			assert.False(t, d.Buffer())
			assert.Equal(t, tt.ctype, d.CType())
			assert.Equal(t, tt.dataType, d.DataType())
			assert.Equal(t, tt.unsigned, d.Unsigned())
		})
	}
}

func TestResolveUnsupported(t *testing.T) {
	r := ctype.NewResolver(10)
	for _, name := range []string{"UNSIGNED4", "UNSIGNED72", "INTEGER", "REAL16", "TIME_OF_DAY", "UNICODE_STRING", "", "unsigned8"} {
		t.Run(name, func(t *testing.T) {
			_, err := r.Resolve(name)
			require.Error(t, err)
			assert.ErrorIs(t, err, ctype.ErrUnsupportedType)

			var te *ctype.TypeError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, name, te.Name)
			assert.Contains(t, err.Error(), "isn't a valid type for CanFestival")
		})
	}
}

func TestResolveStringSizing(t *testing.T) {
	r := ctype.NewResolver(10)

	d, err := r.Resolve("VISIBLE_STRING")
	require.NoError(t, err)
	assert.Equal(t, ctype.VisibleString, d.Kind)
	assert.Equal(t, 10, d.Size, "default size without samples")
	assert.Equal(t, "UNS8", d.CType())
	assert.Equal(t, "visible_string", d.DataType())

	d, err = r.Resolve("VISIBLE_STRING", "a string of 23 chars...")
	require.NoError(t, err)
	assert.Equal(t, 23, d.Size)

	d, err = r.Resolve("VISIBLE_STRING", "short", "a little longer")
	require.NoError(t, err)
	assert.Equal(t, 15, d.Size, "longest sample wins")

	d, err = r.Resolve("VISIBLE_STRING16", "short")
	require.NoError(t, err)
	assert.Equal(t, 16, d.Size, "declared size wins over short sample")

	d, err = r.Resolve("OCTET_STRING", "abc")
	require.NoError(t, err)
	assert.Equal(t, ctype.VisibleString, d.Kind)
	assert.Equal(t, 10, d.Size)

	// Sizes depend on the samples, so nothing is cached between calls.
	d, err = r.Resolve("VISIBLE_STRING")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Size)
}

func TestResolveDomain(t *testing.T) {
	r := ctype.NewResolver(10)

	d, err := r.Resolve("DOMAIN")
	require.NoError(t, err)
	assert.Equal(t, ctype.Domain, d.Kind)
	assert.Equal(t, 0, d.Size)
	assert.Equal(t, "domain", d.DataType())

	d, err = r.Resolve("DOMAIN", "\x01\x02\x03", "\xff")
	require.NoError(t, err)
	assert.Equal(t, 3, d.Size)
}

func TestResolveDefined(t *testing.T) {
	r := ctype.NewResolver(10)

	emc, err := r.Resolve(ctype.EMCRange)
	require.NoError(t, err)
	assert.Equal(t, ctype.ValueRange, emc.Kind)
	assert.Equal(t, "UNS8", emc.CType())
	assert.Equal(t, "valueRange_EMC", emc.DataType())

	base, err := r.Resolve("INTEGER16")
	require.NoError(t, err)
	r.Define("INTEGER16[-10-10]", ctype.Descriptor{Kind: ctype.ValueRange, Base: &base, Tag: "valueRange_1"})

	d, err := r.Resolve("INTEGER16[-10-10]")
	require.NoError(t, err)
	assert.Equal(t, "INTEGER16", d.CType())
	assert.Equal(t, "valueRange_1", d.DataType())
	assert.False(t, d.Unsigned())
	assert.Equal(t, base, d.Storage())
}
