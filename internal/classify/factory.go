package classify

import (
	"fmt"
	"strings"
)

// NewClassifier creates a provider by name. An empty or "none" provider
// disables classification and returns nil.
func NewClassifier(config Config) (Classifier, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIClassifier(config)

	case "anthropic", "claude":
		return NewAnthropicClassifier(config)

	case "ollama":
		return NewOllamaClassifier(config)

	case "", "none":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown classifier provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}
