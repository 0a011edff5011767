// Package config holds the NIVA runtime configuration: external collaborator
// endpoints, catalog and index paths, and logging settings. Loaded from a
// YAML file with environment overrides layered on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all NIVA configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Text generation collaborator
	LLM LLMConfig `yaml:"llm"`

	// Embedding engine for the semantic index
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Semantic search index
	Index IndexConfig `yaml:"index"`

	// Scheme dataset
	Catalog CatalogConfig `yaml:"catalog"`

	// Speech collaborators (STT/TTS)
	Speech SpeechConfig `yaml:"speech"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the text generation collaborator.
type LLMConfig struct {
	Provider string `yaml:"provider"` // groq, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// EmbeddingConfig configures the embedding engine behind the semantic index.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // ollama, genai

	OllamaEndpoint string `yaml:"ollama_endpoint"`
	OllamaModel    string `yaml:"ollama_model"`

	GenAIAPIKey string `yaml:"genai_api_key"`
	GenAIModel  string `yaml:"genai_model"`
	TaskType    string `yaml:"task_type"`
}

// IndexConfig configures the persistent semantic search index.
type IndexConfig struct {
	DatabasePath string `yaml:"database_path"`
	TopK         int    `yaml:"top_k"`
}

// CatalogConfig configures the static scheme dataset.
type CatalogConfig struct {
	SchemesPath string `yaml:"schemes_path"`
}

// SpeechConfig configures the STT/TTS collaborators.
type SpeechConfig struct {
	STT STTConfig `yaml:"stt"`
	TTS TTSConfig `yaml:"tts"`
}

// STTConfig configures the speech-to-text collaborator (Whisper over the
// Groq audio API).
type STTConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// TTSConfig configures the text-to-speech collaborator.
type TTSConfig struct {
	BaseURL   string            `yaml:"base_url"`
	Voices    map[string]string `yaml:"voices"` // language code -> voice name
	OutputDir string            `yaml:"output_dir"`
	Timeout   string            `yaml:"timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	File   string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "NIVA",
		Version: "1.0.0",

		LLM: LLMConfig{
			Provider: "groq",
			Model:    "llama-3.3-70b-versatile",
			BaseURL:  "https://api.groq.com/openai/v1",
			Timeout:  "120s",
		},

		Embedding: EmbeddingConfig{
			Provider:       "ollama",
			OllamaEndpoint: "http://localhost:11434",
			OllamaModel:    "embeddinggemma",
			GenAIModel:     "gemini-embedding-001",
			TaskType:       "SEMANTIC_SIMILARITY",
		},

		Index: IndexConfig{
			DatabasePath: "data/niva_index.db",
			TopK:         3,
		},

		Catalog: CatalogConfig{
			SchemesPath: "data/schemes.json",
		},

		Speech: SpeechConfig{
			STT: STTConfig{
				BaseURL: "https://api.groq.com/openai/v1",
				Model:   "whisper-large-v3",
				Timeout: "60s",
			},
			TTS: TTSConfig{
				Voices: map[string]string{
					"te": "te-IN-ShrutiNeural",
					"en": "en-US-AriaNeural",
				},
				OutputDir: "data/audio",
				Timeout:   "60s",
			},
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "niva.log",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// Groq serves both text generation and Whisper STT
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		if c.LLM.Provider == "" || c.LLM.Provider == "groq" {
			c.LLM.APIKey = key
		}
		c.Speech.STT.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Embedding.GenAIAPIKey = key
		if c.LLM.Provider == "gemini" {
			c.LLM.APIKey = key
		}
	}

	if endpoint := os.Getenv("OLLAMA_ENDPOINT"); endpoint != "" {
		c.Embedding.OllamaEndpoint = endpoint
	}

	if path := os.Getenv("NIVA_DB"); path != "" {
		c.Index.DatabasePath = path
	}
	if path := os.Getenv("NIVA_SCHEMES"); path != "" {
		c.Catalog.SchemesPath = path
	}
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetSTTTimeout returns the STT timeout as a duration.
func (c *Config) GetSTTTimeout() time.Duration {
	d, err := time.ParseDuration(c.Speech.STT.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GetTTSTimeout returns the TTS timeout as a duration.
func (c *Config) GetTTSTimeout() time.Duration {
	d, err := time.ParseDuration(c.Speech.TTS.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}
