package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.Model)
	assert.Equal(t, "whisper-large-v3", cfg.Speech.STT.Model)
	assert.Equal(t, "te-IN-ShrutiNeural", cfg.Speech.TTS.Voices["te"])
	assert.Equal(t, "en-US-AriaNeural", cfg.Speech.TTS.Voices["en"])
	assert.Equal(t, 3, cfg.Index.TopK)
	assert.Equal(t, "data/schemes.json", cfg.Catalog.SchemesPath)
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "niva.yaml")
	content := `
llm:
  provider: gemini
  model: gemini-2.0-flash
  timeout: 30s
index:
  database_path: /tmp/custom.db
  top_k: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "/tmp/custom.db", cfg.Index.DatabasePath)
	assert.Equal(t, 5, cfg.Index.TopK)
	assert.Equal(t, 30*time.Second, cfg.GetLLMTimeout())
	// Untouched sections keep their defaults.
	assert.Equal(t, "data/schemes.json", cfg.Catalog.SchemesPath)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [not: closed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "groq-secret")
	t.Setenv("GEMINI_API_KEY", "gemini-secret")
	t.Setenv("OLLAMA_ENDPOINT", "http://ollama.local:11434")
	t.Setenv("NIVA_DB", "/tmp/niva.db")
	t.Setenv("NIVA_SCHEMES", "/tmp/schemes.json")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	// Groq key serves both generation and STT.
	assert.Equal(t, "groq-secret", cfg.LLM.APIKey)
	assert.Equal(t, "groq-secret", cfg.Speech.STT.APIKey)
	assert.Equal(t, "gemini-secret", cfg.Embedding.GenAIAPIKey)
	assert.Equal(t, "http://ollama.local:11434", cfg.Embedding.OllamaEndpoint)
	assert.Equal(t, "/tmp/niva.db", cfg.Index.DatabasePath)
	assert.Equal(t, "/tmp/schemes.json", cfg.Catalog.SchemesPath)
}

func TestGeminiProviderTakesGeminiKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gemini-secret")

	path := filepath.Join(t.TempDir(), "niva.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: gemini\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-secret", cfg.LLM.APIKey)
}

func TestTimeoutFallbacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Timeout = "not-a-duration"
	cfg.Speech.STT.Timeout = ""

	assert.Equal(t, 120*time.Second, cfg.GetLLMTimeout())
	assert.Equal(t, 60*time.Second, cfg.GetSTTTimeout())
	assert.Equal(t, 60*time.Second, cfg.GetTTSTimeout())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "niva.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Model = "llama-3.1-8b-instant"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "llama-3.1-8b-instant", loaded.LLM.Model)
}
