package od

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

var aliasKeyRe = regexp.MustCompile(`^(?:0[xX])?([0-9a-fA-F]{1,4})\s*[:/]\s*(?:0[xX])?([0-9a-fA-F]{1,2})$`)

// LoadAliases reads a pointer alias table: a flat map from "0xIIII:0xSS"
// (or "IIII/SS") to the name of the pointer variable to emit.
func LoadAliases(path string) (map[Location]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	aliases, err := ParseAliases(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return aliases, nil
}

func ParseAliases(data []byte, ext string) (map[Location]string, error) {
	doc, err := decode(data, ext)
	if err != nil {
		return nil, err
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("alias table must be a mapping")
	}
	out := make(map[Location]string, len(m))
	for key, v := range m {
		loc, err := ParseLocation(key)
		if err != nil {
			return nil, err
		}
		name, ok := v.(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("alias %s: expected a variable name", key)
		}
		out[loc] = name
	}
	return out, nil
}

// ParseLocation parses "0x2000:0x01", "2000:1" or "2000/01". Both parts
// are hexadecimal.
func ParseLocation(s string) (Location, error) {
	m := aliasKeyRe.FindStringSubmatch(s)
	if m == nil {
		return Location{}, fmt.Errorf("invalid object location %q", s)
	}
	idx, _ := strconv.ParseUint(m[1], 16, 16)
	sub, _ := strconv.ParseUint(m[2], 16, 8)
	return Location{Index: uint16(idx), Subindex: uint8(sub)}, nil
}
