package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/canfestival-tools/objdictgen/internal/configpaths"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit writes a configuration file listing every flag of a command
// with its default value.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Command to generate config for" enum:"generate,diff,check"`
	Format  string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output  string `help:"Destination file path (defaults to <command>.<format> in the current directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

var configTargets = map[string]func() any{
	"generate": func() any { return &Generate{} },
	"diff":     func() any { return &Diff{} },
	"check":    func() any { return &Check{} },
}

func (c *ConfigInit) Run(logger *slog.Logger) error {
	format := normalizeFormat(c.Format)
	if format == "" {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}
	target, ok := configTargets[c.Command]
	if !ok {
		return fmt.Errorf("unknown command %q; expected generate, diff or check", c.Command)
	}
	root, err := configTemplate(target())
	if err != nil {
		return err
	}

	dest := c.Output
	if dest == "" {
		dest = c.Command + "." + format
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("%s exists; use --force to overwrite", dest)
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}

	data, err := encodeConfig(format, root)
	if err != nil {
		return fmt.Errorf("encode %s template: %w", format, err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return err
	}
	logger.Info("Wrote configuration template", "command", c.Command, "file", dest, "flags", len(root))
	return nil
}

func normalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

func encodeConfig(format string, root map[string]any) ([]byte, error) {
	switch format {
	case "yaml":
		return yaml.Marshal(root)
	case "toml":
		return toml.Marshal(root)
	default:
		return json.MarshalIndent(root, "", "  ")
	}
}

// configTemplate maps every flag of cmd to its default, keyed the way the
// kong configuration resolvers look flags up: dashes become underscores and
// dotted prefixes become nested tables. Positional arguments are left out.
func configTemplate(cmd any) (map[string]any, error) {
	parser, err := kong.New(cmd)
	if err != nil {
		return nil, fmt.Errorf("inspect command: %w", err)
	}
	root := map[string]any{}
	for _, f := range parser.Model.Flags {
		if f == parser.Model.HelpFlag || f.Hidden {
			continue
		}
		v, err := flagDefault(f)
		if err != nil {
			return nil, fmt.Errorf("flag --%s: %w", f.Name, err)
		}
		path := strings.Split(strings.ReplaceAll(f.Name, "-", "_"), ".")
		table := root
		for _, key := range path[:len(path)-1] {
			sub, ok := table[key].(map[string]any)
			if !ok {
				sub = map[string]any{}
				table[key] = sub
			}
			table = sub
		}
		table[path[len(path)-1]] = v
	}
	return root, nil
}

func flagDefault(f *kong.Flag) (any, error) {
	switch f.Target.Kind() {
	case reflect.Bool:
		if f.Default == "" {
			return false, nil
		}
		return strconv.ParseBool(f.Default)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if f.Default == "" {
			return int64(0), nil
		}
		return strconv.ParseInt(f.Default, 0, 64)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if f.Default == "" {
			return uint64(0), nil
		}
		return strconv.ParseUint(f.Default, 0, 64)
	default:
		return f.Default, nil
	}
}
