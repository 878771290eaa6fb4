package od_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canfestival-tools/objdictgen/internal/od"
)

func TestLoadFormatsAgree(t *testing.T) {
	yamlNode, err := od.Load(filepath.Join("testdata", "node.yaml"))
	require.NoError(t, err)

	for _, file := range []string{"node.toml", "node.json"} {
		t.Run(file, func(t *testing.T) {
			node, err := od.Load(filepath.Join("testdata", file))
			require.NoError(t, err)

			assert.Equal(t, yamlNode.Name(), node.Name())
			assert.Equal(t, yamlNode.ID(), node.ID())
			assert.Equal(t, yamlNode.Type(), node.Type())
			assert.Equal(t, yamlNode.Description(), node.Description())
			assert.Equal(t, yamlNode.DefaultStringSize(), node.DefaultStringSize())
			require.Equal(t, yamlNode.Indexes(), node.Indexes())
			for _, idx := range yamlNode.Indexes() {
				want, _ := yamlNode.Entry(idx)
				got, ok := node.Entry(idx)
				require.True(t, ok)
				assert.Equal(t, want, got, "index 0x%04X", idx)
			}
		})
	}
}

func TestLoadNode(t *testing.T) {
	node, err := od.Load(filepath.Join("testdata", "node.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "TestSlave", node.Name())
	assert.Equal(t, uint8(5), node.ID())
	assert.Equal(t, od.Slave, node.Type())
	assert.Equal(t, od.DefaultStringSize, node.DefaultStringSize())
	assert.Equal(t, []uint16{0x0060, 0x1000, 0x1008, 0x1200, 0x1800, 0x2000, 0x2001}, node.Indexes())

	rangeType, ok := node.Entry(0x0060)
	require.True(t, ok)
	assert.Equal(t, []any{int64(3), int64(5), int64(0), int64(100)}, rangeType.Values, "type reference resolved to its index")

	name, ok := node.TypeName(0x0060)
	require.True(t, ok)
	assert.Equal(t, "UNSIGNED8[0-100]", name)

	setpoint, ok := node.Entry(0x2001)
	require.True(t, ok)
	assert.False(t, setpoint.List)
	assert.Equal(t, od.VAR, setpoint.Struct)
	assert.Equal(t, uint16(0x0060), setpoint.Subentry(0).Type)
	assert.Equal(t, od.RW, setpoint.Subentry(0).Access)
	assert.True(t, setpoint.Subentry(0).Save)

	sdo, ok := node.Entry(0x1200)
	require.True(t, ok)
	assert.True(t, sdo.List)
	assert.Equal(t, od.RECORD, sdo.Struct)
	assert.Equal(t, []any{int64(2), int64(0x605), int64(0x585)}, sdo.Values)

	sensors, ok := node.Entry(0x2000)
	require.True(t, ok)
	assert.Equal(t, od.ARRAY, sensors.Struct)
	assert.Equal(t, "Sensor", sensors.Subentry(3).Name, "elements reuse the last subentry")

	pdo, ok := node.Entry(0x1800)
	require.True(t, ok)
	assert.Equal(t, "0x180 + NodeID", pdo.Subentry(1).Comment)

	device, ok := node.Entry(0x1008)
	require.True(t, ok)
	assert.Equal(t, []any{"Test Device Name Long"}, device.Values)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "missing name", doc: `{"id": 1, "entries": []}`},
		{name: "bad node name", doc: `{"name": "1node", "id": 1, "entries": []}`},
		{name: "bad node type", doc: `{"name": "n", "id": 1, "type": "peer", "entries": []}`},
		{name: "unknown field", doc: `{"name": "n", "id": 1, "entries": [], "extra": true}`},
		{name: "bad struct", doc: `{"name": "n", "id": 1, "entries": [{"index": 8192, "name": "x", "struct": "list", "value": 1, "subentries": [{"name": "x", "type": "UNSIGNED8"}]}]}`},
		{name: "no subentries", doc: `{"name": "n", "id": 1, "entries": [{"index": 8192, "name": "x", "value": 1, "subentries": []}]}`},
		{name: "value and values", doc: `{"name": "n", "id": 1, "entries": [{"index": 8192, "name": "x", "value": 1, "values": [1], "subentries": [{"name": "x", "type": "UNSIGNED8"}]}]}`},
		{name: "bad index string", doc: `{"name": "n", "id": 1, "entries": [{"index": "0xZZ", "name": "x", "value": 1, "subentries": [{"name": "x", "type": "UNSIGNED8"}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := od.Parse([]byte(tt.doc), ".json")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "schema validation failed")
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		is   error
	}{
		{
			name: "unknown type",
			doc:  `{"name": "n", "id": 1, "entries": [{"index": 8192, "name": "x", "value": 1, "subentries": [{"name": "x", "type": "UNSIGNED9"}]}]}`,
			is:   od.ErrUnknownType,
		},
		{
			name: "duplicate index",
			doc: `{"name": "n", "id": 1, "entries": [
				{"index": 8192, "name": "x", "value": 1, "subentries": [{"name": "x", "type": "UNSIGNED8"}]},
				{"index": "0x2000", "name": "y", "value": 2, "subentries": [{"name": "y", "type": "UNSIGNED8"}]}]}`,
			is: od.ErrDuplicateIndex,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := od.Parse([]byte(tt.doc), ".json")
			assert.ErrorIs(t, err, tt.is)
		})
	}

	_, err := od.Parse([]byte(`name: n`), ".ini")
	assert.ErrorIs(t, err, od.ErrUnknownFormat)

	_, err = od.Parse([]byte(`{"name": "n", "id": 200, "entries": []}`), ".json")
	assert.ErrorContains(t, err, "out of range")

	_, err = od.Parse([]byte(`{"name": "n", "id": 1, "entries": [{"index": 8192, "name": "a", "struct": "array", "values": [2, 1, 2], "subentries": [{"name": "Number of Entries", "type": "UNSIGNED8"}]}]}`), ".json")
	assert.ErrorContains(t, err, "index 0x2000: array needs a subentry for subindex 0 and one describing its elements, got 1")
}

func TestConvertValue(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		in       any
		want     any
	}{
		{name: "hex string", typeName: "UNSIGNED32", in: "0x80000000", want: int64(0x80000000)},
		{name: "negative", typeName: "INTEGER16", in: "-12", want: int64(-12)},
		{name: "above int64", typeName: "UNSIGNED64", in: "0xFFFFFFFFFFFFFFFF", want: uint64(1<<64 - 1)},
		{name: "boolean", typeName: "BOOLEAN", in: true, want: true},
		{name: "boolean from integer", typeName: "BOOLEAN", in: "0", want: false},
		{name: "string", typeName: "VISIBLE_STRING", in: "abc", want: "abc"},
		{name: "domain", typeName: "DOMAIN", in: "0x00ff10", want: "\x00\xff\x10"},
		{name: "domain with spaces", typeName: "DOMAIN", in: "de ad", want: "\xde\xad"},
		{name: "real", typeName: "REAL32", in: "1.5", want: 1.5},
		{name: "range type", typeName: "INTEGER16[-10-10]", in: "-10", want: int64(-10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := od.ConvertValue(tt.typeName, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := od.ConvertValue("BOOLEAN", "2")
	assert.Error(t, err)
	_, err = od.ConvertValue("DOMAIN", "xyz")
	assert.Error(t, err)
	_, err = od.ConvertValue("UNSIGNED8", "twelve")
	assert.Error(t, err)
}

func TestParseRangeType(t *testing.T) {
	rt, ok := od.ParseRangeType("INTEGER16[-10-10]")
	require.True(t, ok)
	assert.Equal(t, od.RangeType{Base: "INTEGER", Width: "16", Min: "-10", Max: "10"}, rt)

	rt, ok = od.ParseRangeType("UNSIGNED8[0-100]")
	require.True(t, ok)
	assert.Equal(t, "100", rt.Max)

	rt, ok = od.ParseRangeType("UNSIGNED64[0-18446744073709551615]")
	require.True(t, ok)
	assert.Equal(t, od.RangeType{Base: "UNSIGNED", Width: "64", Min: "0", Max: "18446744073709551615"}, rt)

	_, ok = od.ParseRangeType("UNSIGNED8")
	assert.False(t, ok)
}
