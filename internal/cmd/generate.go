package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/canfestival-tools/objdictgen/internal/codegen/generator"
	cgen "github.com/canfestival-tools/objdictgen/internal/codegen/generator/c"
	"github.com/canfestival-tools/objdictgen/internal/log"
	"github.com/canfestival-tools/objdictgen/internal/od"
)

// ErrDifferences is returned by diff when generated and existing files differ.
var ErrDifferences = errors.New("generated files differ from existing files")

// Source selects the node file and the pointer aliases of a run.
type Source struct {
	Node    string `arg:"" help:"Object dictionary file (json, yaml or toml)" type:"existingfile"`
	Aliases string `help:"File naming pointer variables per index:subindex (json, yaml or toml)" type:"existingfile" env:"OBJDICTGEN_ALIASES"`
}

func (s *Source) load(logger *slog.Logger) (*od.Dictionary, map[od.Location]string, error) {
	node, err := od.Load(s.Node)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Loaded object dictionary", "file", s.Node, "node", node.Name(), "entries", len(node.Indexes()))
	var aliases map[od.Location]string
	if s.Aliases != "" {
		if aliases, err = od.LoadAliases(s.Aliases); err != nil {
			return nil, nil, err
		}
		logger.Debug("Loaded pointer aliases", "file", s.Aliases, "count", len(aliases))
	}
	return node, aliases, nil
}

type Generate struct {
	Source     `embed:""`
	Output     string `arg:"" help:"C source file to write; headers are written next to it"`
	HeaderName string `help:"Header file name included by the source (defaults to <output>.h)" env:"OBJDICTGEN_HEADER_NAME"`
}

// Run is called by Kong when the generate command is executed.
func (c *Generate) Run(logger *slog.Logger, raw log.RawLogger) error {
	node, aliases, err := c.load(logger)
	if err != nil {
		return err
	}
	gen := generator.New(filepath.Dir(c.Output), logger)
	opts := cgen.Options{HeaderName: c.HeaderName, Pointers: aliases}
	artifacts, err := gen.Render(node, filepath.Base(c.Output), opts)
	if err != nil {
		return err
	}
	for _, a := range artifacts {
		raw.Log(a.Name, []byte(a.Content))
	}
	written, err := gen.Write(artifacts)
	if err != nil {
		return err
	}
	logger.Info("Object dictionary generation complete", "node", node.Name(), "files", len(written))
	return nil
}

type Diff struct {
	Source     `embed:""`
	Output     string `arg:"" help:"Existing C source file to compare against"`
	HeaderName string `help:"Header file name included by the source (defaults to <output>.h)" env:"OBJDICTGEN_HEADER_NAME"`
}

// Run prints unified diffs and fails when anything differs.
func (c *Diff) Run(logger *slog.Logger) error {
	node, aliases, err := c.load(logger)
	if err != nil {
		return err
	}
	gen := generator.New(filepath.Dir(c.Output), logger)
	artifacts, err := gen.Render(node, filepath.Base(c.Output), cgen.Options{HeaderName: c.HeaderName, Pointers: aliases})
	if err != nil {
		return err
	}
	diff, err := generator.Diff(artifacts, filepath.Dir(c.Output))
	if err != nil {
		return err
	}
	if diff == "" {
		logger.Info("Generated files are up to date", "output", c.Output)
		return nil
	}
	fmt.Fprint(os.Stdout, diff)
	return ErrDifferences
}

type Check struct {
	Source `embed:""`
}

// Run generates in memory and discards the result.
func (c *Check) Run(logger *slog.Logger) error {
	node, aliases, err := c.load(logger)
	if err != nil {
		return err
	}
	artifacts, err := generator.New("", logger).Render(node, node.Name()+".c", cgen.Options{Pointers: aliases})
	if err != nil {
		return err
	}
	size := 0
	for _, a := range artifacts {
		size += len(a.Content)
	}
	logger.Info("Object dictionary is valid", "node", node.Name(), "bytes", size)
	return nil
}
