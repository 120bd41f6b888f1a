// Package classify asks a language model what kind of evidence a post is
// and how strongly it corroborates the option it targets.
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/delib-org/Freedi-app-sub004/internal/extract"
	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

// Classifier defines the interface for evidence classifiers
type Classifier interface {
	// Name returns the provider name
	Name() string

	// Classify labels one evidence post against its parent option
	Classify(ctx context.Context, req Request) (*Result, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Request is the input for one classification
type Request struct {
	// EvidenceText is the evidence post, possibly rich text
	EvidenceText string

	// ParentText is the option the evidence argues about
	ParentText string

	// Model overrides the configured model
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Result is a classifier verdict
type Result struct {
	EvidenceType       model.EvidenceType `json:"evidenceType"`
	CorroborationScore float64            `json:"corroborationScore"`
	Model              string             `json:"model,omitempty"`
	TokensUsed         int                `json:"tokensUsed,omitempty"`
	Fallback           bool               `json:"fallback,omitempty"`
}

// Fallback is the neutral verdict used whenever classification fails.
func Fallback() *Result {
	return &Result{
		EvidenceType:       model.EvidenceArgument,
		CorroborationScore: 0.5,
		Fallback:           true,
	}
}

// Config holds classifier provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int
}

// ConfigFromModel converts the runtime classifier section
func ConfigFromModel(c model.ClassifierConfig) Config {
	return Config{
		Provider:  c.Provider,
		Model:     c.Model,
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Timeout:   c.Timeout,
		MaxTokens: c.MaxTokens,
	}
}

const systemPrompt = "You classify evidence posted in a public deliberation. You judge how the evidence bears on the option, never whether the option is popular. Reply with a single JSON object and nothing else."

// BuildPrompt constructs the classification prompt
func BuildPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Option under discussion:
%s

Evidence posted under it:
%s
`, extract.PlainText(req.ParentText), extract.PlainText(req.EvidenceText))

	if links := extract.Links(req.EvidenceText); len(links) > 0 {
		b.WriteString("\nSources cited by the evidence:\n")
		for i, l := range links {
			if i >= 10 {
				fmt.Fprintf(&b, "... and %d more\n", len(links)-10)
				break
			}
			fmt.Fprintf(&b, "- %s\n", l.URL)
		}
	}

	b.WriteString(`
Classify the evidence:
1. evidenceType, one of:
   - "data": measurements, studies, statistics
   - "testimony": expert or first-hand accounts
   - "argument": reasoning without new facts
   - "anecdote": a single personal story
   - "fallacy": logically flawed or irrelevant reasoning
2. corroborationScore between 0 and 1: 0 means the evidence refutes the
   option, 0.5 means it is neutral or irrelevant, 1 means it strongly
   supports the option.

Respond as {"evidenceType": "...", "corroborationScore": 0.0}`)

	return b.String()
}

func resolveModel(req Request, cfg Config, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if cfg.Model != "" {
		return cfg.Model
	}
	return fallback
}

func resolveMaxTokens(req Request, cfg Config) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if cfg.MaxTokens > 0 {
		return cfg.MaxTokens
	}
	return 300
}
