package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_NestedDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "deep")

	store, err := NewConfigStore(nestedPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nestedPath, "config.toml"), store.Path())

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("# only a comment\n"), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	val, ok := store.Get("recommendation.default_limit")
	assert.False(t, ok)
	assert.Nil(t, val)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("nlp.provider", "ollama"))
	require.NoError(t, store.Set("recommendation.default_limit", 5))
	require.NoError(t, store.Set("recommendation.similarity_threshold", 0.3))
	require.NoError(t, store.Set("cache.enabled", true))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("nlp.provider"), "ollama"},
		{"string wrong type", store.GetString("recommendation.default_limit"), ""},
		{"string missing", store.GetString("missing"), ""},
		{"int", store.GetInt("recommendation.default_limit"), 5},
		{"int wrong type", store.GetInt("nlp.provider"), 0},
		{"float", store.GetFloat("recommendation.similarity_threshold"), 0.3},
		{"float widened from int", store.GetFloat("recommendation.default_limit"), 5.0},
		{"float wrong type", store.GetFloat("nlp.provider"), 0.0},
		{"bool", store.GetBool("cache.enabled"), true},
		{"bool wrong type", store.GetBool("nlp.provider"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_PersistsAsTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("recommendation.cache_expiry_days", 7))
	require.NoError(t, store.Set("recommendation.min_score_improvement", 5))
	require.NoError(t, store.Set("scraper.user_agent", "verdict/1.0"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[recommendation]")
	assert.Contains(t, string(raw), "[scraper]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 7, reloaded.GetInt("recommendation.cache_expiry_days"))
	assert.Equal(t, 5, reloaded.GetInt("recommendation.min_score_improvement"))
	assert.Equal(t, "verdict/1.0", reloaded.GetString("scraper.user_agent"))
	assert.Equal(t, []string{
		"recommendation.cache_expiry_days",
		"recommendation.min_score_improvement",
		"scraper.user_agent",
	}, reloaded.Keys())
}

func TestConfigStore_HandWrittenTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[recommendation]
similarity_threshold = 1
default_limit = 8

[nlp]
provider = "ollama"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, store.GetFloat("recommendation.similarity_threshold"), 1e-9)
	assert.Equal(t, 8, store.GetInt("recommendation.default_limit"))
	assert.Equal(t, "ollama", store.GetString("nlp.provider"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("nlp.model", "llama3.2"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_SetWriteErrorRollsBack(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("nlp.provider", "ollama"))

	// A directory in place of the file makes the write fail.
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("nlp.provider", "none"))
	assert.Equal(t, "ollama", store.GetString("nlp.provider"))

	assert.Error(t, store.Set("nlp.model", "llama3.2"))
	_, ok := store.Get("nlp.model")
	assert.False(t, ok)
}

func TestConfigStore_SetUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("channel", make(chan int)))
	_, ok := store.Get("channel")
	assert.False(t, ok)
}

func TestConfigStore_LoadInvalidTOML(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("valid", "data"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml ][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "scraper.k" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetFloat(key)
			_ = store.GetString(key)
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}

func TestNestMap(t *testing.T) {
	flat := map[string]any{
		"a.b":   1,
		"a.c.d": "x",
		"top":   true,
		"e":     2,
		"e.f":   3,
	}

	nested := nestMap(flat)

	assert.Equal(t, map[string]any{"b": 1, "c": map[string]any{"d": "x"}}, nested["a"])
	assert.Equal(t, true, nested["top"])
	assert.Equal(t, 2, nested["e"])
	assert.Equal(t, 3, nested["e.f"])
	assert.Equal(t, flat, flattenMap(map[string]any{
		"a":   map[string]any{"b": 1, "c": map[string]any{"d": "x"}},
		"top": true,
		"e":   2,
		"e.f": 3,
	}, ""))
}
