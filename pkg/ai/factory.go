package ai

import (
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/ai"
)

// Environment variables consulted by the factory.
const (
	EnvProvider   = "GOALGENIE_AI_PROVIDER"
	EnvModel      = "GOALGENIE_AI_MODEL"
	EnvOllamaHost = "OLLAMA_HOST"
)

// DefaultProviderName is used when no provider is configured.
const DefaultProviderName = "gemini"

// NewProvider builds the named provider. API keys are read from the
// provider's conventional environment variable.
func NewProvider(providerName string, modelName string) (ai.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(providerName)) {
	case "gemini", "":
		return NewGeminiProvider(modelName, os.Getenv("GEMINI_API_KEY")), nil
	case "openai":
		return NewOpenAIProvider(modelName, os.Getenv("OPENAI_API_KEY")), nil
	case "anthropic":
		return NewAnthropicProvider(modelName, os.Getenv("ANTHROPIC_API_KEY")), nil
	case "ollama":
		return NewOllamaProviderWithClient(modelName, ollamaHost(), nil), nil
	case "mock":
		return &MockProvider{Model: modelName}, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", providerName)
	}
}

// GetDefaultProvider resolves the provider from configuration, letting
// GOALGENIE_AI_PROVIDER and GOALGENIE_AI_MODEL override it.
func GetDefaultProvider(providerName, modelName string) (ai.Provider, error) {
	if envProvider := os.Getenv(EnvProvider); envProvider != "" {
		providerName = envProvider
	}
	if envModel := os.Getenv(EnvModel); envModel != "" {
		modelName = envModel
	}
	return NewProvider(providerName, modelName)
}

func ollamaHost() string {
	host := os.Getenv(EnvOllamaHost)
	if host == "" {
		return DefaultOllamaURL
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host
}
