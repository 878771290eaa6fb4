package od

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

//go:embed schema/node-v1.json
var nodeSchemaJSON string

var nodeSchema = func() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("node-v1.json", strings.NewReader(nodeSchemaJSON)); err != nil {
		panic(fmt.Sprintf("add node schema: %v", err))
	}
	return compiler.MustCompile("node-v1.json")
}()

// Load reads a node description file. The format follows the extension:
// .yaml/.yml, .toml or .json.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse decodes and validates a node description in the format named by
// ext, then builds the dictionary.
func Parse(data []byte, ext string) (*Dictionary, error) {
	doc, err := decode(data, ext)
	if err != nil {
		return nil, err
	}
	if err := nodeSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	return build(doc.(map[string]any))
}

// decode returns a JSON-shaped document: maps, slices, strings, bools and
// json.Number for every numeric value.
func decode(data []byte, ext string) (any, error) {
	var raw any
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	case ".toml":
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
		raw = tree.ToMap()
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", ext, ErrUnknownFormat)
	}
	return normalize(raw)
}

func normalize(v any) (any, error) {
	switch v := v.(type) {
	case nil, string, bool, json.Number:
		return v, nil
	case int:
		return json.Number(strconv.Itoa(v)), nil
	case int64:
		return json.Number(strconv.FormatInt(v, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(v, 10)), nil
	case float64:
		return json.Number(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			n, err := normalize(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			n, err := normalize(item)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", k, err)
			}
			out[fmt.Sprint(k)] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			n, err := normalize(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			n, err := normalize(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}

func build(doc map[string]any) (*Dictionary, error) {
	id, err := ParseInteger(doc["id"])
	if err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	nodeID, ok := asUint(id)
	if !ok || nodeID > 0x7F {
		return nil, fmt.Errorf("id: node id %v out of range", id)
	}
	info := Info{
		Name:        str(doc["name"]),
		ID:          uint8(nodeID),
		Type:        NodeType(str(doc["type"])),
		Description: str(doc["description"]),
	}
	if n, ok := doc["defaultStringSize"].(json.Number); ok {
		size, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("defaultStringSize: %w", err)
		}
		info.DefaultStringSize = int(size)
	}
	d := NewDictionary(info)

	raw, _ := doc["entries"].([]any)
	entries := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, e.(map[string]any))
	}
	// Custom types are referenced by name from other entries, so they go
	// in first.
	sort.SliceStable(entries, func(i, j int) bool {
		return isTypeEntry(entries[i]) && !isTypeEntry(entries[j])
	})
	for _, e := range entries {
		entry, err := buildEntry(d, e)
		if err != nil {
			return nil, err
		}
		if err := d.AddEntry(entry); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func isTypeEntry(e map[string]any) bool {
	idx, err := ParseInteger(e["index"])
	if err != nil {
		return false
	}
	u, ok := asUint(idx)
	return ok && u <= CustomTypeMax
}

func buildEntry(d *Dictionary, e map[string]any) (*Entry, error) {
	idx, err := ParseInteger(e["index"])
	if err != nil {
		return nil, fmt.Errorf("entry %q: index: %w", str(e["name"]), err)
	}
	u, ok := asUint(idx)
	if !ok || u > 0xFFFF {
		return nil, fmt.Errorf("entry %q: index %v out of range", str(e["name"]), idx)
	}
	entry := &Entry{Index: uint16(u), Name: str(e["name"])}
	wrap := func(err error) error { return fmt.Errorf("index 0x%04X: %w", entry.Index, err) }

	var rawValues []any
	if vs, ok := e["values"].([]any); ok {
		entry.List = true
		rawValues = vs
	} else {
		rawValues = []any{e["value"]}
	}
	structName := str(e["struct"])
	if structName == "" && entry.List {
		structName = "record"
	}
	if entry.Struct, err = ParseStruct(structName); err != nil {
		return nil, wrap(err)
	}
	if entry.List && entry.Struct == VAR {
		return nil, wrap(fmt.Errorf("var entry cannot hold a value list"))
	}

	subs, _ := e["subentries"].([]any)
	for i, s := range subs {
		sub, err := buildSubentry(d, s.(map[string]any))
		if err != nil {
			return nil, wrap(fmt.Errorf("subentry %d: %w", i, err))
		}
		entry.Subentries = append(entry.Subentries, sub)
	}
	if entry.Struct.Has(IdenticalSubindexes) && len(entry.Subentries) < 2 {
		return nil, wrap(fmt.Errorf("array needs a subentry for subindex 0 and one describing its elements, got %d", len(entry.Subentries)))
	}
	if !entry.Struct.Has(IdenticalSubindexes) && len(entry.Subentries) < len(rawValues) {
		return nil, wrap(fmt.Errorf("%d values but only %d subentries", len(rawValues), len(entry.Subentries)))
	}

	for i, rv := range rawValues {
		sub := entry.Subentry(i)
		var v any
		if entry.Index <= CustomTypeMax && i == 1 {
			v, err = typeReference(d, rv)
		} else {
			typeName, _ := d.TypeName(sub.Type)
			v, err = ConvertValue(typeName, rv)
		}
		if err != nil {
			return nil, wrap(fmt.Errorf("subindex 0x%02X: %w", i, err))
		}
		entry.Values = append(entry.Values, v)
	}
	return entry, nil
}

func buildSubentry(d *Dictionary, s map[string]any) (Subentry, error) {
	typeName := str(s["type"])
	ref, ok := d.TypeIndex(typeName)
	if !ok {
		return Subentry{}, fmt.Errorf("%q: %w", typeName, ErrUnknownType)
	}
	access, err := ParseAccess(str(s["access"]))
	if err != nil {
		return Subentry{}, err
	}
	sub := Subentry{
		Name:    str(s["name"]),
		Type:    ref,
		Access:  access,
		Comment: str(s["comment"]),
	}
	sub.Save, _ = s["save"].(bool)
	if bs, ok := s["bufferSize"]; ok {
		n, err := ParseInteger(bs)
		if err != nil {
			return Subentry{}, fmt.Errorf("bufferSize: %w", err)
		}
		sub.BufferSize = fmt.Sprint(n)
	}
	return sub, nil
}

func typeReference(d *Dictionary, rv any) (any, error) {
	if name, ok := rv.(string); ok && !integerRe.MatchString(name) {
		ref, ok := d.TypeIndex(name)
		if !ok {
			return nil, fmt.Errorf("%q: %w", name, ErrUnknownType)
		}
		return int64(ref), nil
	}
	return ParseInteger(rv)
}

var (
	familyRe  = regexp.MustCompile(`^([_A-Z]*)([0-9]*)`)
	integerRe = regexp.MustCompile(`^-?(0[xX][0-9a-fA-F]+|[0-9]+)$`)
)

// ConvertValue turns a decoded document value into the raw value stored
// for a subentry of the named type.
func ConvertValue(typeName string, v any) (any, error) {
	family := familyRe.FindStringSubmatch(typeName)[1]
	switch family {
	case "VISIBLE_STRING", "OCTET_STRING", "UNICODE_STRING":
		switch v := v.(type) {
		case string:
			return v, nil
		case json.Number:
			return v.String(), nil
		}
		return nil, fmt.Errorf("expected a string, got %v", v)
	case "DOMAIN":
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected a hex string, got %v", v)
		}
		b, err := hex.DecodeString(strings.TrimPrefix(strings.ReplaceAll(s, " ", ""), "0x"))
		if err != nil {
			return nil, fmt.Errorf("domain value: %w", err)
		}
		return string(b), nil
	case "REAL":
		switch v := v.(type) {
		case json.Number:
			return v.Float64()
		case string:
			return strconv.ParseFloat(v, 64)
		}
		return nil, fmt.Errorf("expected a number, got %v", v)
	case "BOOLEAN":
		if b, ok := v.(bool); ok {
			return b, nil
		}
		n, err := ParseInteger(v)
		if err != nil {
			return nil, err
		}
		u, ok := asUint(n)
		if !ok || u > 1 {
			return nil, fmt.Errorf("boolean value %v out of range", n)
		}
		return u == 1, nil
	default:
		return ParseInteger(v)
	}
}

// ParseInteger accepts json.Number values and decimal or 0x-prefixed
// strings, optionally signed. Values above math.MaxInt64 come back as
// uint64, everything else as int64.
func ParseInteger(v any) (any, error) {
	var s string
	switch v := v.(type) {
	case json.Number:
		s = v.String()
	case string:
		s = strings.TrimSpace(v)
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case nil:
		return nil, fmt.Errorf("missing integer value")
	default:
		return nil, fmt.Errorf("expected an integer, got %v (%T)", v, v)
	}
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")
	base := 10
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		base = 16
		digits = digits[2:]
	}
	if u, err := strconv.ParseUint(digits, base, 64); err == nil {
		switch {
		case !neg && u > 1<<63-1:
			return u, nil
		case neg && u <= 1<<63:
			return -int64(u), nil
		case !neg:
			return int64(u), nil
		}
	}
	return nil, fmt.Errorf("invalid integer %q", s)
}

func asUint(v any) (uint64, bool) {
	switch v := v.(type) {
	case int64:
		return uint64(v), v >= 0
	case uint64:
		return v, true
	}
	return 0, false
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
