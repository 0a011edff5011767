// Package speech holds the speech-to-text and text-to-speech collaborators.
// Both sit outside the turn loop: STT feeds it, TTS consumes its reply, and
// a TTS failure never fails the turn.
package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"niva/internal/catalog"
	"niva/internal/logging"
)

// targetSampleRate is what the Whisper endpoint expects.
const targetSampleRate = 16000

// Transcript is the STT result. The turn loop consumes only Text.
type Transcript struct {
	Text     string
	Language catalog.Language
}

// Transcriber converts captured audio samples into text.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int, lang catalog.Language) (Transcript, error)
}

// GroqWhisper transcribes through the Groq audio API (whisper-large-v3).
type GroqWhisper struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewGroqWhisper creates the Groq Whisper transcriber.
func NewGroqWhisper(apiKey, baseURL, model string, timeout time.Duration) (*GroqWhisper, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("speech: GROQ_API_KEY not set")
	}
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	if model == "" {
		model = "whisper-large-v3"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GroqWhisper{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Transcribe resamples the audio to 16kHz, encodes it as a PCM16 WAV in
// memory, and posts it to the transcriptions endpoint. Not retried; a
// failure is terminal for the turn that needed it.
func (g *GroqWhisper) Transcribe(ctx context.Context, samples []float32, sampleRate int, lang catalog.Language) (Transcript, error) {
	timer := logging.StartTimer(logging.CategorySpeech, "transcribe")
	defer timer.Stop()

	if len(samples) == 0 {
		return Transcript{}, fmt.Errorf("speech: no audio samples")
	}
	if sampleRate != targetSampleRate {
		samples = resample(samples, sampleRate, targetSampleRate)
	}
	wav := encodeWAV(samples, targetSampleRate)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return Transcript{}, fmt.Errorf("speech: build request: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return Transcript{}, fmt.Errorf("speech: build request: %w", err)
	}
	_ = writer.WriteField("model", g.model)
	_ = writer.WriteField("language", string(lang))
	_ = writer.WriteField("response_format", "json")
	if err := writer.Close(); err != nil {
		return Transcript{}, fmt.Errorf("speech: build request: %w", err)
	}

	url := g.baseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return Transcript{}, fmt.Errorf("speech: create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Transcript{}, fmt.Errorf("speech: transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Transcript{}, fmt.Errorf("speech: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Transcript{}, fmt.Errorf("speech: transcription API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Transcript{}, fmt.Errorf("speech: parse response: %w", err)
	}

	logging.Speech("Transcribed %d samples (%s): %d chars", len(samples), lang, len(parsed.Text))
	return Transcript{Text: parsed.Text, Language: lang}, nil
}

// resample converts the sample stream between rates with linear
// interpolation. Good enough for speech input; fidelity is not the point.
func resample(samples []float32, from, to int) []float32 {
	if from == to || len(samples) == 0 {
		return samples
	}
	n := int(float64(len(samples)) * float64(to) / float64(from))
	if n == 0 {
		return nil
	}
	out := make([]float32, n)
	ratio := float64(len(samples)-1) / float64(n-1)
	if n == 1 {
		out[0] = samples[0]
		return out
	}
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = samples[j]*(1-frac) + samples[j+1]*frac
	}
	return out
}

// encodeWAV wraps float32 samples in a mono PCM16 RIFF container.
func encodeWAV(samples []float32, sampleRate int) []byte {
	dataLen := len(samples) * 2
	var buf bytes.Buffer
	buf.Grow(44 + dataLen)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(2))            // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))           // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	for _, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.Write(&buf, binary.LittleEndian, int16(s*32767))
	}
	return buf.Bytes()
}
