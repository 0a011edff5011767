package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name      string
		a, b      []float32
		want      float64
		expectErr bool
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "dimension mismatch", a: []float32{1, 2}, b: []float32{1}, expectErr: true},
		{name: "empty", a: nil, b: nil, expectErr: true},
		{name: "zero magnitude", a: []float32{0, 0}, b: []float32{1, 1}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestNewEngineRejectsUnknownProvider(t *testing.T) {
	if _, err := NewEngine(Config{Provider: "word2vec"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewGenAIEngine(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		if _, err := NewGenAIEngine("", "", ""); err == nil {
			t.Error("expected error for missing key")
		}
	})

	t.Run("defaults model and task type", func(t *testing.T) {
		e, err := NewGenAIEngine("test-key", "", "")
		if err != nil {
			t.Fatalf("NewGenAIEngine: %v", err)
		}
		if e.Name() != "genai:gemini-embedding-001" {
			t.Errorf("Name = %q, want genai:gemini-embedding-001", e.Name())
		}
		if e.taskType != "SEMANTIC_SIMILARITY" {
			t.Errorf("taskType = %q, want SEMANTIC_SIMILARITY", e.taskType)
		}
		if e.Dimensions() != 768 {
			t.Errorf("Dimensions = %d, want 768", e.Dimensions())
		}
	})

	t.Run("keeps explicit task type", func(t *testing.T) {
		e, err := NewGenAIEngine("test-key", "gemini-embedding-001", "RETRIEVAL_QUERY")
		if err != nil {
			t.Fatalf("NewGenAIEngine: %v", err)
		}
		if e.taskType != "RETRIEVAL_QUERY" {
			t.Errorf("taskType = %q, want RETRIEVAL_QUERY", e.taskType)
		}
	})
}

func TestOllamaEmbed(t *testing.T) {
	var gotReq ollamaEmbedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	eng, err := NewOllamaEngine(srv.URL, "embeddinggemma")
	if err != nil {
		t.Fatalf("NewOllamaEngine: %v", err)
	}

	vec, err := eng.Embed(context.Background(), "రైతు యోజనలు")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("embedding length = %d, want 3", len(vec))
	}
	if gotReq.Model != "embeddinggemma" || gotReq.Prompt != "రైతు యోజనలు" {
		t.Errorf("request = %+v", gotReq)
	}
}

func TestOllamaEmbedBatchSequential(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{float32(calls)}})
	}))
	defer srv.Close()

	eng, err := NewOllamaEngine(srv.URL, "")
	if err != nil {
		t.Fatalf("NewOllamaEngine: %v", err)
	}

	vecs, err := eng.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 3 || calls != 3 {
		t.Errorf("len(vecs)=%d calls=%d, want 3 each", len(vecs), calls)
	}
	// Order preserved.
	if vecs[0][0] != 1 || vecs[2][0] != 3 {
		t.Error("batch results out of order")
	}
}

func TestOllamaEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	eng, _ := NewOllamaEngine(srv.URL, "")
	if _, err := eng.Embed(context.Background(), "text"); err == nil {
		t.Error("expected error on server failure")
	}
}
