package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAssets_BundledAssets(t *testing.T) {
	assets, err := LoadAssets("../../assets")
	require.NoError(t, err)

	assert.NotEmpty(t, assets.Prompts.Classification)
	assert.NotEmpty(t, assets.Prompts.WineSearch)
	assert.NotEmpty(t, assets.Prompts.SecretRecipient)
	assert.NotEmpty(t, assets.Responses.Greeting)
	assert.NotEmpty(t, assets.Responses.GenerationError)

	require.NotEmpty(t, assets.Keywords.Romance.Entries)
	for _, entry := range assets.Keywords.Romance.Entries {
		assert.GreaterOrEqual(t, entry.Confidence, 0.0)
		assert.LessOrEqual(t, entry.Confidence, 1.0)
	}
	assert.NotEmpty(t, assets.Keywords.Styles)
	assert.NotEmpty(t, assets.Keywords.Vocabulary)
}

func TestLoadAssets_MissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadAssets(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompts.yaml")
}

func TestLoadAssets_FailsValidation(t *testing.T) {
	dir := t.TempDir()
	copyAsset(t, "../../assets", dir, "prompts.yaml")
	copyAsset(t, "../../assets", dir, "responses.yaml")

	// Syntactically valid YAML that is missing required keyword sections.
	writeAsset(t, dir, "keywords.yaml", "romance:\n  entries: []\n")

	_, err := LoadAssets(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keywords.yaml")
}

// Watch runs as a background goroutine; the caller must keep going while
// edits to the asset files are folded in behind Get.
func TestAssetStore_WatchReloadsInBackground(t *testing.T) {
	dir := t.TempDir()
	copyAsset(t, "../../assets", dir, "prompts.yaml")
	copyAsset(t, "../../assets", dir, "keywords.yaml")
	copyAsset(t, "../../assets", dir, "responses.yaml")

	store, err := NewAssetStore(dir)
	require.NoError(t, err)
	original := store.Get().Responses.Greeting

	go store.Watch()

	updated := "¡Hola de nuevo! Respuesta recargada.\n"
	content := "greeting: |\n  ¡Hola de nuevo! Respuesta recargada.\n" +
		"off_topic: fuera de tema\n" +
		"generation_error: fallo de generación\n" +
		"retrieval_error: fallo de bodega\n"

	// The watcher registers asynchronously; rewrite until the reload is
	// observed or the deadline passes.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		writeAsset(t, dir, "responses.yaml", content)
		if store.Get().Responses.Greeting == updated {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	assert.Equal(t, updated, store.Get().Responses.Greeting)
	assert.NotEqual(t, original, store.Get().Responses.Greeting)
}

func TestAssetStore_GetReturnsLoadedAssets(t *testing.T) {
	store, err := NewAssetStore("../../assets")
	require.NoError(t, err)

	assets := store.Get()
	require.NotNil(t, assets)
	assert.NotEmpty(t, assets.Prompts.Classification)
}

func copyAsset(t *testing.T, srcDir, dstDir, name string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(srcDir, name))
	require.NoError(t, err)
	writeAsset(t, dstDir, name, string(data))
}

func writeAsset(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
