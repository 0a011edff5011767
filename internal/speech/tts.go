package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"niva/internal/catalog"
	"niva/internal/logging"
)

// Synthesizer converts reply text into an audio artifact and returns its
// path. Callers treat a failure as non-fatal: the text reply is still
// delivered without audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, lang catalog.Language) (string, error)
}

// defaultVoices maps a language code to its neural voice.
var defaultVoices = map[string]string{
	"te": "te-IN-ShrutiNeural",
	"en": "en-US-AriaNeural",
}

// HTTPSynthesizer posts reply text to a speech synthesis endpoint and
// writes the returned audio to the output directory.
type HTTPSynthesizer struct {
	baseURL    string
	voices     map[string]string
	outputDir  string
	httpClient *http.Client
}

// NewHTTPSynthesizer creates the synthesizer. An empty voices map falls
// back to the built-in voice table.
func NewHTTPSynthesizer(baseURL string, voices map[string]string, outputDir string, timeout time.Duration) (*HTTPSynthesizer, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("speech: synthesis endpoint not configured")
	}
	if len(voices) == 0 {
		voices = defaultVoices
	}
	if outputDir == "" {
		outputDir = "data/audio"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPSynthesizer{
		baseURL:    baseURL,
		voices:     voices,
		outputDir:  outputDir,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Voice returns the voice used for a language, defaulting to the English
// voice for unknown codes.
func (h *HTTPSynthesizer) Voice(lang catalog.Language) string {
	if v, ok := h.voices[string(lang)]; ok {
		return v
	}
	return h.voices["en"]
}

// Synthesize posts the text and voice to the endpoint and writes the audio
// bytes to a fresh file under the output directory. Not retried.
func (h *HTTPSynthesizer) Synthesize(ctx context.Context, text string, lang catalog.Language) (string, error) {
	timer := logging.StartTimer(logging.CategorySpeech, "synthesize")
	defer timer.Stop()

	payload, err := json.Marshal(map[string]string{
		"text":  text,
		"voice": h.Voice(lang),
	})
	if err != nil {
		return "", fmt.Errorf("speech: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("speech: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech: synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("speech: synthesis API returned %d: %s", resp.StatusCode, string(body))
	}

	if err := os.MkdirAll(h.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("speech: create output dir: %w", err)
	}
	path := filepath.Join(h.outputDir, fmt.Sprintf("reply_%s.mp3", uuid.NewString()))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("speech: create audio file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("speech: write audio file: %w", err)
	}

	logging.Speech("Synthesized %d chars (%s) -> %s", len(text), lang, path)
	return path, nil
}
