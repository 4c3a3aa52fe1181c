package llm

const (
	defaultOllamaBaseURL = "http://localhost:11434/v1"

	// ollamaAPIKey is sent because the SDK requires a key; Ollama ignores it.
	ollamaAPIKey = "ollama"
)

// OllamaProvider talks to a local Ollama server through its
// OpenAI-compatible endpoint. Vision models (e.g. llama3.2-vision) accept
// images as base64 data URLs on the same endpoint.
type OllamaProvider struct {
	*OpenAIProvider
}

// NewOllamaProvider creates a provider targeting an Ollama server.
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.2"
	}

	inner := newOpenAIProviderRaw(OpenAIConfig{
		APIKey:  ollamaAPIKey,
		Model:   model,
		BaseURL: baseURL,
	})
	return &OllamaProvider{OpenAIProvider: inner}
}
