package llm

import (
	"context"
)

// Provider is the core abstraction for generation backends.
// Consumers call Generate with a Request and receive the backend's raw text.
type Provider interface {
	// Generate sends a prompt (optionally with image attachments) to the
	// backend and returns its complete, unparsed text output. Providers do
	// not interpret the output; structure is recovered by the caller.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the backend.
type Request struct {
	// System is the system prompt. Optional.
	System string

	// Messages is the conversation history. Quiz generation always sends a
	// single user message.
	Messages []Message

	// Model overrides the provider's configured model for this request.
	// Used to route vision prompts to a vision-capable model.
	Model string

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string

	// Images are attached to the message in order. Only user messages
	// carry images.
	Images []Image
}

// Image is an inline binary image attachment.
type Image struct {
	// MIMEType is e.g. "image/png". When empty, providers sniff it from Data.
	MIMEType string
	Data     []byte
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response holds the backend's output.
type Response struct {
	// Content is the raw generated text.
	Content string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// HasImages reports whether any message in the request carries an image.
func (r Request) HasImages() bool {
	for _, m := range r.Messages {
		if len(m.Images) > 0 {
			return true
		}
	}
	return false
}

// requestModel returns the per-request override when set, else the default.
func requestModel(req Request, def string) string {
	if req.Model != "" {
		return req.Model
	}
	return def
}
