package formula

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfigValidate(t *testing.T) {
	assert.ErrorIs(t, (&Config{}).Validate(), ErrNoPaths)
	assert.NoError(t, (&Config{Paths: []string{"formulas"}}).Validate())
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "set: b\n")
	writeFile(t, dir, "a.yml", "set: a\n")
	writeFile(t, dir, "nested/c.yaml", "set: c\n")
	writeFile(t, dir, "notes.txt", "ignored")

	files, err := Discover([]string{dir})
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "a.yml", filepath.Base(files[0]))
	assert.Equal(t, "b.yaml", filepath.Base(files[1]))
	assert.Equal(t, "c.yaml", filepath.Base(files[2]))
}

func TestDiscoverSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "set.yaml", "set: x\n")

	files, err := Discover([]string{path})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestDiscoverMissingPath(t *testing.T) {
	_, err := Discover([]string{"/does/not/exist"})
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "core.yaml", `set: core
formulas:
  - key: alos
    english_name: Dawn
    hebrew_name: "עלות השחר"
    formula: "solar(16.1, before_sunrise)"
    tags:
      - key: shabbos
        type: event
        negated: true
`)

	set, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "core", set.Set)
	require.Len(t, set.Formulas, 1)

	f := set.Formulas[0]
	assert.Equal(t, "alos", f.Key)
	assert.Equal(t, "Dawn", f.EnglishName)
	assert.Equal(t, "solar(16.1, before_sunrise)", f.Source)
	require.Len(t, f.Tags, 1)
	assert.Equal(t, Tag{Key: "shabbos", Type: TagEvent, Negated: true}, f.Tags[0])

	refs, err := f.References()
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestLoadFileBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yaml", "formulas: [\n")

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadLaterFilesOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "10-base.yaml", `set: base
formulas:
  - key: tzais
    formula: "sunset + 40min"
  - key: alos
    formula: "sunrise - 72min"
`)
	writeFile(t, dir, "20-override.yaml", `set: override
formulas:
  - key: tzais
    formula: "sunset + 50min"
`)

	store, err := Load(&Config{Paths: []string{dir}})
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())

	f, ok := store.Get("tzais")
	require.True(t, ok)
	assert.Equal(t, "sunset + 50min", f.Source)
}

func TestLoadRejectsInvalidFormula(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", `set: bad
formulas:
  - key: ""
    formula: "sunset"
`)

	_, err := Load(&Config{Paths: []string{dir}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestStore(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Add(&Formula{Key: "b", Source: "sunset"}))
	require.NoError(t, store.Add(&Formula{Key: "a", Source: "sunrise"}))

	assert.Equal(t, []string{"a", "b"}, store.Keys())
	assert.Len(t, store.All(), 2)

	nodes, err := store.Nodes()
	require.NoError(t, err)
	assert.Len(t, nodes, 2)

	subset, err := store.NodesFor([]string{"a"})
	require.NoError(t, err)
	assert.Len(t, subset, 1)

	_, err = store.NodesFor([]string{"missing"})
	assert.Error(t, err)
}

func TestStoreRejectsIncomplete(t *testing.T) {
	store := NewStore()
	assert.ErrorIs(t, store.Add(&Formula{Source: "sunset"}), ErrMissingKey)
	assert.ErrorIs(t, store.Add(&Formula{Key: "x"}), ErrMissingFormula)
}
