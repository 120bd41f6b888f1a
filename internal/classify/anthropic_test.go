package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

func TestAnthropicClassifier_Classify_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("Expected anthropic-version header, got %s", r.Header.Get("anthropic-version"))
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.System != systemPrompt {
			t.Errorf("unexpected system prompt %q", req.System)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "the bridge is unsafe") {
			t.Errorf("prompt does not carry the evidence: %+v", req.Messages)
		}

		_ = json.NewEncoder(w).Encode(anthropicResponse{
			ID:      "msg_123",
			Type:    "message",
			Role:    "assistant",
			Content: []anthropicContent{{Type: "text", Text: `{"evidenceType":"testimony","corroborationScore":0.1}`}},
			Model:   "claude-3-5-haiku-20241022",
			Usage:   anthropicUsage{InputTokens: 40, OutputTokens: 10},
		})
	}))
	defer server.Close()

	classifier, err := NewAnthropicClassifier(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create classifier: %v", err)
	}

	result, err := classifier.Classify(context.Background(), Request{
		EvidenceText: "An engineer told me the bridge is unsafe",
		ParentText:   "Reopen the bridge",
	})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if result.EvidenceType != model.EvidenceTestimony || result.CorroborationScore != 0.1 {
		t.Errorf("unexpected verdict %+v", result)
	}
	if result.TokensUsed != 50 {
		t.Errorf("expected 50 tokens, got %d", result.TokensUsed)
	}
}

func TestAnthropicClassifier_Classify_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	classifier, _ := NewAnthropicClassifier(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})

	_, err := classifier.Classify(context.Background(), Request{})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "authentication_error") {
		t.Errorf("error should carry the API error type: %v", err)
	}
}

func TestAnthropicClassifier_Classify_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(anthropicResponse{ID: "msg_1"})
	}))
	defer server.Close()

	classifier, _ := NewAnthropicClassifier(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if _, err := classifier.Classify(context.Background(), Request{}); err == nil {
		t.Fatal("Expected error for empty content, got nil")
	}
}

func TestAnthropicClassifier_MissingKey(t *testing.T) {
	if _, err := NewAnthropicClassifier(Config{}); err == nil {
		t.Fatal("expected error without API key")
	}
}
