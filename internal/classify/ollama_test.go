package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

func TestOllamaClassifier_Classify_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("expected non-streaming request")
		}
		if req.Format != "json" {
			t.Errorf("expected json format, got %q", req.Format)
		}

		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:           "llama3.1:8b",
			Response:        `{"evidenceType":"fallacy","support":-0.6}`,
			Done:            true,
			PromptEvalCount: 30,
			EvalCount:       12,
		})
	}))
	defer server.Close()

	classifier, err := NewOllamaClassifier(Config{BaseURL: server.URL, Model: "llama3.1:8b"})
	if err != nil {
		t.Fatalf("Failed to create classifier: %v", err)
	}

	result, err := classifier.Classify(context.Background(), Request{EvidenceText: "everyone knows", ParentText: "x"})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if result.EvidenceType != model.EvidenceFallacy {
		t.Errorf("type = %s", result.EvidenceType)
	}
	if d := result.CorroborationScore - 0.2; d > 1e-12 || d < -1e-12 {
		t.Errorf("legacy support -0.6 should remap to 0.2, got %v", result.CorroborationScore)
	}
	if result.TokensUsed != 42 {
		t.Errorf("expected 42 tokens, got %d", result.TokensUsed)
	}
}

func TestOllamaClassifier_RequiresModel(t *testing.T) {
	classifier, _ := NewOllamaClassifier(Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := classifier.Classify(context.Background(), Request{}); err == nil {
		t.Fatal("expected error without a model")
	}
}

func TestOllamaClassifier_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'missing' not found"}`))
	}))
	defer server.Close()

	classifier, _ := NewOllamaClassifier(Config{BaseURL: server.URL, Model: "missing"})
	if _, err := classifier.Classify(context.Background(), Request{}); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOllamaClassifier_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	classifier, _ := NewOllamaClassifier(Config{BaseURL: server.URL})
	if !classifier.IsAvailable(context.Background()) {
		t.Error("expected available")
	}

	server.Close()
	if classifier.IsAvailable(context.Background()) {
		t.Error("expected unavailable after server shutdown")
	}
}
