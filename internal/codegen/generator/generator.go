package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	cgen "github.com/canfestival-tools/objdictgen/internal/codegen/generator/c"
	"github.com/canfestival-tools/objdictgen/internal/od"
)

type Generator struct {
	outputDir string
	logger    *slog.Logger
}

// Artifact is one generated file, named relative to the output directory.
type Artifact struct {
	Name    string
	Content string
}

func New(outputDir string, logger *slog.Logger) *Generator {
	return &Generator{
		outputDir: outputDir,
		logger:    logger,
	}
}

// Base strips the extension of the C file name.
func Base(cFileName string) string {
	return strings.TrimSuffix(cFileName, filepath.Ext(cFileName))
}

// Artifacts names the generated files after base: base.c, base.h and
// base_objectdefines.h.
func Artifacts(files *cgen.Files, base string) []Artifact {
	return []Artifact{
		{Name: base + ".c", Content: files.Source},
		{Name: base + ".h", Content: files.Header},
		{Name: base + "_objectdefines.h", Content: files.ObjectDefines},
	}
}

// Render generates the artifacts of node in memory.
func (g *Generator) Render(node od.Node, cFileName string, opts cgen.Options) ([]Artifact, error) {
	base := Base(cFileName)
	if opts.HeaderName == "" {
		opts.HeaderName = filepath.Base(base) + ".h"
	}
	files, err := cgen.Generate(g.logger, node, opts)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", node.Name(), err)
	}
	return Artifacts(files, base), nil
}

// Generate renders node and writes its artifacts to the output directory.
// Existing files are only replaced once every artifact was rendered.
func (g *Generator) Generate(node od.Node, cFileName string, opts cgen.Options) ([]string, error) {
	g.logger.Info("Generating object dictionary", "node", node.Name(), "output", cFileName)

	artifacts, err := g.Render(node, cFileName, opts)
	if err != nil {
		return nil, err
	}
	written, err := g.Write(artifacts)
	if err != nil {
		return written, err
	}
	g.logger.Info("Object dictionary generation complete", "node", node.Name(), "files", len(written))
	return written, nil
}

// Write installs artifacts in the output directory through temporary
// files. Existing files are set aside first and put back if any artifact
// cannot be installed, so a failed write leaves the directory as it was.
func (g *Generator) Write(artifacts []Artifact) ([]string, error) {
	var staged []*pending
	for _, a := range artifacts {
		dst := filepath.Join(g.outputDir, a.Name)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			rollback(staged)
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		if fi, err := os.Lstat(dst); err == nil && fi.IsDir() {
			rollback(staged)
			return nil, fmt.Errorf("install %s: destination is a directory", dst)
		}
		tmp, err := writeTemp(dst, a.Content)
		if err != nil {
			rollback(staged)
			return nil, err
		}
		staged = append(staged, &pending{tmp: tmp, dst: dst})
	}

	for _, p := range staged {
		if _, err := os.Lstat(p.dst); err != nil {
			continue
		}
		backup := p.tmp + ".orig"
		if err := os.Rename(p.dst, backup); err != nil {
			rollback(staged)
			return nil, fmt.Errorf("set aside %s: %w", p.dst, err)
		}
		p.backup = backup
	}
	for _, p := range staged {
		if err := os.Rename(p.tmp, p.dst); err != nil {
			rollback(staged)
			return nil, fmt.Errorf("install %s: %w", p.dst, err)
		}
		p.installed = true
	}

	written := make([]string, 0, len(staged))
	for i, p := range staged {
		if p.backup != "" {
			if err := os.Remove(p.backup); err != nil {
				g.logger.Warn("Failed to remove backup", "file", p.backup, "error", err)
			}
		}
		written = append(written, p.dst)
		g.logger.Debug("Wrote artifact", "file", p.dst, "bytes", len(artifacts[i].Content))
	}
	return written, nil
}

// pending tracks one artifact through staging and installation.
type pending struct {
	tmp, dst  string
	backup    string
	installed bool
}

// rollback undoes a partial Write: installed files are removed, set aside
// files are restored and staged temp files deleted.
func rollback(staged []*pending) {
	for _, p := range staged {
		if p.installed {
			_ = os.Remove(p.dst)
		} else {
			_ = os.Remove(p.tmp)
		}
		if p.backup != "" {
			_ = os.Rename(p.backup, p.dst)
		}
	}
}

func writeTemp(dst, content string) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file for %s: %w", dst, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close %s: %w", dst, err)
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("chmod %s: %w", dst, err)
	}
	return f.Name(), nil
}

// Diff compares artifacts against the files in dir and returns unified
// diffs of every artifact that differs. A missing file diffs as empty.
func Diff(artifacts []Artifact, dir string) (string, error) {
	var out strings.Builder
	for _, a := range artifacts {
		path := filepath.Join(dir, a.Name)
		current, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		if string(current) == a.Content {
			continue
		}
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(current)),
			B:        difflib.SplitLines(a.Content),
			FromFile: path,
			ToFile:   a.Name + " (generated)",
			Context:  3,
		})
		if err != nil {
			return "", fmt.Errorf("diff %s: %w", path, err)
		}
		out.WriteString(diff)
	}
	return out.String(), nil
}
