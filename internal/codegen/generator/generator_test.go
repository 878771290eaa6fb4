package generator_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canfestival-tools/objdictgen/internal/codegen/generator"
	cgen "github.com/canfestival-tools/objdictgen/internal/codegen/generator/c"
	"github.com/canfestival-tools/objdictgen/internal/od"
)

func loadNode(t *testing.T, name string) *od.Dictionary {
	t.Helper()
	node, err := od.Load(filepath.Join("..", "..", "od", "testdata", name))
	require.NoError(t, err)
	return node
}

func newGenerator(dir string) *generator.Generator {
	return generator.New(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGenerateWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	g := newGenerator(dir)

	written, err := g.Generate(loadNode(t, "node.yaml"), "slave.c", cgen.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "slave.c"),
		filepath.Join(dir, "slave.h"),
		filepath.Join(dir, "slave_objectdefines.h"),
	}, written)

	src, err := os.ReadFile(filepath.Join(dir, "slave.c"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "#include \"slave.h\"\n")

	hdr, err := os.ReadFile(filepath.Join(dir, "slave.h"))
	require.NoError(t, err)
	assert.Contains(t, string(hdr), "#ifndef SLAVE_H\n")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temporary files are left behind")
}

func TestGenerateSubdirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := newGenerator(dir).Generate(loadNode(t, "node.yaml"), filepath.Join("out", "od.c"), cgen.Options{})
	require.NoError(t, err)

	src, err := os.ReadFile(filepath.Join(dir, "out", "od.c"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "#include \"od.h\"\n")
	assert.FileExists(t, filepath.Join(dir, "out", "od_objectdefines.h"))
}

func TestRenderFormatsAgree(t *testing.T) {
	g := newGenerator(t.TempDir())
	want, err := g.Render(loadNode(t, "node.yaml"), "node.c", cgen.Options{})
	require.NoError(t, err)
	for _, name := range []string{"node.json", "node.toml"} {
		t.Run(name, func(t *testing.T) {
			got, err := g.Render(loadNode(t, name), "node.c", cgen.Options{})
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDiff(t *testing.T) {
	dir := t.TempDir()
	g := newGenerator(dir)
	node := loadNode(t, "node.yaml")

	artifacts, err := g.Render(node, "node.c", cgen.Options{})
	require.NoError(t, err)

	diff, err := generator.Diff(artifacts, dir)
	require.NoError(t, err)
	assert.Contains(t, diff, "+++ node.c (generated)")
	assert.Contains(t, diff, "+++ node_objectdefines.h (generated)")

	_, err = g.Write(artifacts)
	require.NoError(t, err)
	diff, err = generator.Diff(artifacts, dir)
	require.NoError(t, err)
	assert.Empty(t, diff)

	path := filepath.Join(dir, "node.c")
	src, err := os.ReadFile(path)
	require.NoError(t, err)
	edited := strings.Replace(string(src), "UNS8 Setpoint = 0x32;", "UNS8 Setpoint = 0x33;", 1)
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))

	diff, err = generator.Diff(artifacts, dir)
	require.NoError(t, err)
	assert.Contains(t, diff, "--- "+path)
	assert.Contains(t, diff, "-UNS8 Setpoint = 0x33;")
	assert.Contains(t, diff, "+UNS8 Setpoint = 0x32;")
	assert.NotContains(t, diff, "node.h (generated)")
}

func TestGenerateFailureLeavesOutputUntouched(t *testing.T) {
	dir := t.TempDir()
	g := newGenerator(dir)
	existing := filepath.Join(dir, "node.c")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	node := loadNode(t, "node.yaml")
	require.NoError(t, node.AddEntry(&od.Entry{
		Index:  0x2005,
		Name:   "Blob",
		Values: []any{""},
		Subentries: []od.Subentry{
			{Name: "Blob", Type: 0x0F, Access: od.RW},
		},
	}))

	_, err := g.Generate(node, "node.c", cgen.Options{})
	require.ErrorIs(t, err, cgen.ErrUninitializedValue)

	src, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "old", string(src))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"node.c", "node.h"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("OLD\n"), 0o644))
	}

	written, err := newGenerator(dir).Write([]generator.Artifact{
		{Name: "node.c", Content: "NEW C\n"},
		{Name: "node.h", Content: "NEW H\n"},
		{Name: "node_objectdefines.h", Content: "NEW D\n"},
	})
	require.NoError(t, err)
	assert.Len(t, written, 3)

	for name, want := range map[string]string{"node.c": "NEW C\n", "node.h": "NEW H\n", "node_objectdefines.h": "NEW D\n"} {
		got, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, want, string(got), name)
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "backups and temp files are removed")
}

func TestWriteUnreplaceableTargetKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node.c"), []byte("OLD\n"), 0o644))
	blocker := filepath.Join(dir, "node.h")
	require.NoError(t, os.Mkdir(blocker, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(blocker, "keep"), []byte("x"), 0o644))

	written, err := newGenerator(dir).Write([]generator.Artifact{
		{Name: "node.c", Content: "NEW\n"},
		{Name: "node.h", Content: "NEW\n"},
		{Name: "node_objectdefines.h", Content: "NEW\n"},
	})
	require.Error(t, err)
	assert.Empty(t, written)

	src, err := os.ReadFile(filepath.Join(dir, "node.c"))
	require.NoError(t, err)
	assert.Equal(t, "OLD\n", string(src))
	assert.FileExists(t, filepath.Join(blocker, "keep"))
	assert.NoFileExists(t, filepath.Join(dir, "node_objectdefines.h"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"node.c", "node.h"}, names)
}

func TestWriteFailureCleansUp(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory permissions differ on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.Mkdir(blocked, 0o555))
	t.Cleanup(func() { _ = os.Chmod(blocked, 0o755) })

	g := newGenerator(dir)
	_, err := g.Write([]generator.Artifact{
		{Name: "ok.c", Content: "int x;\n"},
		{Name: filepath.Join("blocked", "fail.h"), Content: "int y;\n"},
	})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "blocked", entries[0].Name())
}

func TestArtifacts(t *testing.T) {
	files := &cgen.Files{Source: "s", Header: "h", ObjectDefines: "d"}
	assert.Equal(t, []generator.Artifact{
		{Name: "dir/od.c", Content: "s"},
		{Name: "dir/od.h", Content: "h"},
		{Name: "dir/od_objectdefines.h", Content: "d"},
	}, generator.Artifacts(files, generator.Base("dir/od.c")))
	assert.Equal(t, "od", generator.Base("od"))
}
