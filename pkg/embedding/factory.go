package embedding

import "fmt"

func NewEmbeddingProvider(providerType, apiKey, baseURL, model string) (EmbeddingProvider, error) {
	switch providerType {
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("openai embedding provider requires an api key")
		}
		return NewOpenAIProvider(apiKey, model), nil
	case "ollama":
		return NewOllamaProvider(baseURL, model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
