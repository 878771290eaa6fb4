package common

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Version is set via ldflags at build time: -ldflags "-X github.com/canfestival-tools/objdictgen/internal/codegen/common.Version=x.y.z"
var Version = ""

// GetVersion returns the ldflags version, else the module version recorded
// by "go install", else "0.0.1-dev".
func GetVersion() (string, error) {
	if Version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			return strings.TrimPrefix(info.Main.Version, "v"), nil
		}
		return "0.0.1-dev", nil
	}

	version := strings.TrimPrefix(Version, "v")
	baseVersion := strings.SplitN(version, "-", 2)[0]
	if !strings.Contains(baseVersion, ".") {
		return "", fmt.Errorf("invalid version format: %s (expected x.y.z)", Version)
	}

	return version, nil
}
