package classify

import (
	"math"
	"strings"
	"testing"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantType  model.EvidenceType
		wantScore float64
		wantErr   bool
	}{
		{"plain", `{"evidenceType":"data","corroborationScore":0.9}`, model.EvidenceData, 0.9, false},
		{"fenced", "```json\n{\"evidenceType\": \"Testimony\", \"corroborationScore\": 0.2}\n```", model.EvidenceTestimony, 0.2, false},
		{"prose around", `Sure. {"evidenceType":"anecdote","corroborationScore":0.5} Hope that helps`, model.EvidenceAnecdote, 0.5, false},
		{"legacy support", `{"evidenceType":"argument","support":0.5}`, model.EvidenceArgument, 0.75, false},
		{"legacy support negative", `{"evidenceType":"fallacy","support":-1}`, model.EvidenceFallacy, 0, false},
		{"score wins over support", `{"evidenceType":"data","corroborationScore":0.3,"support":1}`, model.EvidenceData, 0.3, false},
		{"unknown type", `{"evidenceType":"rumor","corroborationScore":0.5}`, "", 0, true},
		{"out of range", `{"evidenceType":"data","corroborationScore":1.5}`, "", 0, true},
		{"no score", `{"evidenceType":"data"}`, "", 0, true},
		{"no json", `I cannot classify this`, "", 0, true},
		{"broken json", `{"evidenceType":`, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.EvidenceType != tt.wantType {
				t.Errorf("type = %s, want %s", got.EvidenceType, tt.wantType)
			}
			if math.Abs(got.CorroborationScore-tt.wantScore) > 1e-12 {
				t.Errorf("score = %v, want %v", got.CorroborationScore, tt.wantScore)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(Request{
		ParentText:   "<p>Close the road on Sundays</p>",
		EvidenceText: `Traffic fell 30% in <a href="https://city.gov/study">the pilot</a>`,
	})

	for _, want := range []string{
		"Close the road on Sundays",
		"Traffic fell 30% in the pilot",
		"https://city.gov/study",
		"corroborationScore",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "<p>") {
		t.Error("prompt should not contain markup")
	}
}

func TestFallback(t *testing.T) {
	f := Fallback()
	if f.EvidenceType != model.EvidenceArgument || f.CorroborationScore != 0.5 || !f.Fallback {
		t.Errorf("unexpected fallback %+v", f)
	}
}

func TestNewClassifier(t *testing.T) {
	for _, name := range []string{"", "none", "NONE"} {
		c, err := NewClassifier(Config{Provider: name})
		if err != nil || c != nil {
			t.Errorf("provider %q: expected disabled, got %v, %v", name, c, err)
		}
	}

	if _, err := NewClassifier(Config{Provider: "openai"}); err == nil {
		t.Error("expected missing api key error")
	}
	if _, err := NewClassifier(Config{Provider: "bard"}); err == nil {
		t.Error("expected unknown provider error")
	}

	c, err := NewClassifier(Config{Provider: "ollama", Model: "llama3.1:8b"})
	if err != nil {
		t.Fatalf("ollama: %v", err)
	}
	if c.Name() != "ollama" {
		t.Errorf("Name = %s", c.Name())
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := ConfigFromModel(model.ClassifierConfig{Provider: "anthropic", Model: "m", APIKey: "k", Timeout: 9, MaxTokens: 50})
	if cfg.Provider != "anthropic" || cfg.Model != "m" || cfg.APIKey != "k" || cfg.Timeout != 9 || cfg.MaxTokens != 50 {
		t.Errorf("unexpected config %+v", cfg)
	}
}
