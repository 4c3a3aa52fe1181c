package llm

import (
	"context"
	"errors"
	"testing"
)

func TestMockProvider_ReturnsCanedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: "first reply", Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: "second reply"},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Content != "first reply" {
		t.Fatalf("expected 'first reply', got %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Content != "second reply" {
		t.Fatalf("expected 'second reply', got %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: "{}"},
	)

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 0}},
	)

	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	mock := NewMockProvider()
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, "quiz-repair")
	if p := PurposeFrom(ctx); p != "quiz-repair" {
		t.Fatalf("expected 'quiz-repair', got %q", p)
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	if id := RequestIDFrom(ctx); id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
	ctx = WithRequestID(ctx, "req-1")
	if id := RequestIDFrom(ctx); id != "req-1" {
		t.Fatalf("expected 'req-1', got %q", id)
	}
}

func TestMockProvider_ModelOverride(t *testing.T) {
	mock := NewMockText("ok")
	resp, err := mock.Generate(context.Background(), Request{Model: "llama3.2-vision"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Model != "llama3.2-vision" {
		t.Fatalf("expected override model, got %q", resp.Model)
	}
	last, ok := mock.LastCall()
	if !ok || last.Model != "llama3.2-vision" {
		t.Fatalf("expected recorded override, got %+v", last)
	}
}

func TestRequest_HasImages(t *testing.T) {
	req := Request{Messages: []Message{{Role: RoleUser, Content: "x"}}}
	if req.HasImages() {
		t.Fatal("expected no images")
	}
	req.Messages[0].Images = []Image{{Data: []byte{1}}}
	if !req.HasImages() {
		t.Fatal("expected images")
	}
}

func TestSniffImageMIME(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", []byte("\x89PNG\r\n\x1a\n0000"), "image/png"},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10}, "image/jpeg"},
		{"gif", []byte("GIF89a......"), "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP"), "image/webp"},
		{"text", []byte("hello world"), ""},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SniffImageMIME(tt.data); got != tt.want {
				t.Fatalf("SniffImageMIME() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImage_DataURL(t *testing.T) {
	img := Image{Data: []byte("abc")}
	if got := img.DataURL(); got != "data:image/jpeg;base64,YWJj" {
		t.Fatalf("unexpected data URL %q", got)
	}
	img.MIMEType = "image/webp"
	if got := img.DataURL(); got != "data:image/webp;base64,YWJj" {
		t.Fatalf("unexpected data URL %q", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: "anthropic"},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}, Retry: RetryConfig{MaxAttempts: 1}},
			wantErr: false,
		},
		{
			name:    "openai without key",
			cfg:     Config{Provider: "openai"},
			wantErr: true,
		},
		{
			name:    "openai with key",
			cfg:     Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}, Retry: RetryConfig{MaxAttempts: 1}},
			wantErr: false,
		},
		{
			name:    "ollama needs only a base URL",
			cfg:     Config{Provider: "ollama", Ollama: OllamaConfig{BaseURL: "http://localhost:11434/v1"}, Retry: RetryConfig{MaxAttempts: 1}},
			wantErr: false,
		},
		{
			name:    "zero retry attempts",
			cfg:     Config{Provider: "mock"},
			wantErr: true,
		},
		{
			name:    "mock needs no key",
			cfg:     Config{Provider: "mock", Retry: RetryConfig{MaxAttempts: 1}},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLookupCost(t *testing.T) {
	if c := LookupCost("gpt-4o-mini"); c == nil || c.InputPerMTok != 0.15 {
		t.Fatalf("expected gpt-4o-mini pricing, got %+v", c)
	}
	if c := LookupCost("llama3.2:latest"); c == nil || c.Cost(1000, 1000) != 0 {
		t.Fatalf("expected free local model, got %+v", c)
	}
	if c := LookupCost("meta-llama/llama-9"); c != nil {
		t.Fatalf("expected unknown hosted model, got %+v", c)
	}
	cost := ModelCost{InputPerMTok: 1, OutputPerMTok: 5}
	if got := cost.Cost(1_000_000, 200_000); got != 2 {
		t.Fatalf("expected $2, got %v", got)
	}
}
