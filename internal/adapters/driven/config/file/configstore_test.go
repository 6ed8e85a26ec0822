package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*ConfigStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewConfigStore_MissingFileIsEmpty(t *testing.T) {
	store, dir := newTestStore(t)

	assert.Equal(t, filepath.Join(dir, ConfigFile), store.Path())
	assert.Empty(t, store.Keys())
	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")

	_, err := NewConfigStore(dir)

	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Set("embedding.provider", "ollama"))
	require.NoError(t, store.Set("chunker.size", 500))
	require.NoError(t, store.Set("engine.requests_per_second", 2.5))
	require.NoError(t, store.Set("index.normalize", true))

	assert.Equal(t, "ollama", store.GetString("embedding.provider"))
	assert.Equal(t, 500, store.GetInt("chunker.size"))
	assert.InDelta(t, 2.5, store.GetFloat("engine.requests_per_second"), 1e-9)
	assert.True(t, store.GetBool("index.normalize"))

	// Wrong types and missing keys read as zero values.
	assert.Empty(t, store.GetString("chunker.size"))
	assert.Zero(t, store.GetInt("embedding.provider"))
	assert.False(t, store.GetBool("missing.key"))
	_, ok := store.Get("missing.key")
	assert.False(t, ok)
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	store, dir := newTestStore(t)

	require.NoError(t, store.Set("embedding.provider", "openai"))
	require.NoError(t, store.Set("embedding.api_key", "sk-test"))
	require.NoError(t, store.Set("limits.qa_upload_mb", 16))
	require.NoError(t, store.Set("engine.requests_per_second", 2))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[embedding]")
	assert.Contains(t, string(raw), "[limits]")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "openai", reloaded.GetString("embedding.provider"))
	assert.Equal(t, "sk-test", reloaded.GetString("embedding.api_key"))
	// TOML integers decode as int64.
	assert.Equal(t, 16, reloaded.GetInt("limits.qa_upload_mb"))
	assert.InDelta(t, 2.0, reloaded.GetFloat("engine.requests_per_second"), 1e-9)
	assert.Equal(t, []string{
		"embedding.api_key",
		"embedding.provider",
		"engine.requests_per_second",
		"limits.qa_upload_mb",
	}, reloaded.Keys())
}

func TestConfigStore_FileMode(t *testing.T) {
	store, dir := newTestStore(t)

	require.NoError(t, store.Set("llm.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestConfigStore_Load_PicksUpExternalEdits(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Set("server.addr", ":5000"))

	content := "[server]\naddr = \":8080\"\n\n[chunker]\nstep = 400\n"
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o600))
	require.NoError(t, store.Load())

	assert.Equal(t, ":8080", store.GetString("server.addr"))
	assert.Equal(t, 400, store.GetInt("chunker.step"))
}

func TestNewConfigStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("[embedding\nprovider = "), 0o600))

	_, err := NewConfigStore(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".docmatch", ConfigFile), store.Path())
}

func TestFlattenAndNestMap(t *testing.T) {
	flat := map[string]any{
		"embedding.provider": "ollama",
		"index.dir":          "/tmp/idx",
		"top":                true,
	}

	nested := nestMap(flat)
	assert.Equal(t, map[string]any{"provider": "ollama"}, nested["embedding"])
	assert.Equal(t, true, nested["top"])

	assert.Equal(t, flat, flattenMap(nested, ""))
}
