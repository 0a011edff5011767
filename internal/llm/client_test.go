package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{Provider: "groq"})
	assert.Error(t, err)

	_, err = New(Config{Provider: "gemini"})
	assert.Error(t, err)
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "openai", APIKey: "k"})
	assert.Error(t, err)
}

func TestNewDefaultsToGroq(t *testing.T) {
	c, err := New(Config{APIKey: "k"})
	require.NoError(t, err)
	_, ok := c.(*GroqClient)
	assert.True(t, ok, "empty provider should yield the Groq client")
}

func TestGroqCompleteWithSystem(t *testing.T) {
	var gotAuth string
	var gotReq groqRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "PM Kisan pays ₹6,000 per year."}},
			},
		})
	}))
	defer srv.Close()

	c := NewGroqClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "llama-3.3-70b-versatile"})
	got, err := c.CompleteWithSystem(context.Background(), "Reply in English only", "Tell me about PM Kisan")
	require.NoError(t, err)
	assert.Equal(t, "PM Kisan pays ₹6,000 per year.", got)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "llama-3.3-70b-versatile", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.Equal(t, 1024, gotReq.MaxTokens)
	assert.InDelta(t, 0.3, gotReq.Temperature, 1e-9)
}

func TestGroqCompleteOmitsSystemMessage(t *testing.T) {
	var gotReq groqRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	c := NewGroqClient(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestGroqErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewGroqClient(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "hello")
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "failed calls must not be retried")
}

func TestGroqEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer srv.Close()

	c := NewGroqClient(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "hello")
	assert.ErrorContains(t, err, "no completion choices")
}

func TestGroqContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewGroqClient(Config{APIKey: "k", BaseURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.Complete(ctx, "hello")
	assert.Error(t, err)
}

func TestGeminiCompleteWithSystem(t *testing.T) {
	var gotReq geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "Ayushman covers "}, {"text": "₹5 lakh."}},
				}},
			},
		})
	}))
	defer srv.Close()

	c := NewGeminiClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	got, err := c.CompleteWithSystem(context.Background(), "Reply in Telugu", "ఆయుష్మాన్ గురించి చెప్పండి")
	require.NoError(t, err)
	assert.Equal(t, "Ayushman covers ₹5 lakh.", got, "multi-part candidates are joined")

	require.NotNil(t, gotReq.SystemInstruction)
	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "user", gotReq.Contents[0].Role)
	assert.Equal(t, 1024, gotReq.GenerationConfig.MaxOutputTokens)
}

func TestGeminiNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	}))
	defer srv.Close()

	c := NewGeminiClient(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "hello")
	assert.ErrorContains(t, err, "no candidates")
}
