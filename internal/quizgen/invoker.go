package quizgen

import (
	"context"
	"strings"
	"time"

	"github.com/eslquiz/quizgen/internal/llm"
)

// Backend is the generation service as the pipeline sees it: a blocking
// call that returns the complete raw text.
type Backend interface {
	InvokeText(ctx context.Context, prompt string) (string, error)
	InvokeVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// ModelSelector picks the model used for each modality.
type ModelSelector interface {
	ModelFor(m Modality) string
}

// StaticModels selects fixed models per modality. An empty field leaves
// the provider's configured model in place.
type StaticModels struct {
	Text   string
	Vision string
}

func (s StaticModels) ModelFor(m Modality) string {
	if m == ModalityImage {
		return s.Vision
	}
	return s.Text
}

// Invoker implements Backend on top of an llm.Provider.
type Invoker struct {
	provider    llm.Provider
	models      ModelSelector
	callTimeout time.Duration
	maxTokens   int
	temperature float64
}

// NewInvoker creates an Invoker. models may be nil.
func NewInvoker(p llm.Provider, models ModelSelector, cfg Config) *Invoker {
	if models == nil {
		models = StaticModels{}
	}
	return &Invoker{
		provider:    p,
		models:      models,
		callTimeout: cfg.CallTimeout,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// InvokeText sends a text-only prompt.
func (i *Invoker) InvokeText(ctx context.Context, prompt string) (string, error) {
	return i.invoke(ctx, ModalityText, llm.Message{Role: llm.RoleUser, Content: prompt})
}

// InvokeVision sends a prompt with one image attached. An empty mimeType
// is sniffed from the image bytes.
func (i *Invoker) InvokeVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	return i.invoke(ctx, ModalityImage, llm.Message{
		Role:    llm.RoleUser,
		Content: prompt,
		Images:  []llm.Image{{MIMEType: mimeType, Data: image}},
	})
}

func (i *Invoker) invoke(ctx context.Context, m Modality, msg llm.Message) (string, error) {
	model := i.models.ModelFor(m)
	if model == "" {
		model = i.provider.ModelID()
	}

	callCtx, cancel := i.callContext(ctx)
	defer cancel()

	resp, err := i.provider.Generate(callCtx, llm.Request{
		Messages:    []llm.Message{msg},
		Model:       model,
		MaxTokens:   i.maxTokens,
		Temperature: i.temperature,
	})
	if err != nil {
		return "", &TransportFault{Model: model, Err: err}
	}
	if err := checkEmpty(resp.Content, model); err != nil {
		return "", &TransportFault{Model: model, Err: err}
	}
	return resp.Content, nil
}

// callContext detaches the call from caller cancellation so an in-flight
// call completes, while keeping any caller deadline as an upper bound.
func (i *Invoker) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	dl, hasDeadline := ctx.Deadline()
	if i.callTimeout > 0 {
		if byTimeout := time.Now().Add(i.callTimeout); !hasDeadline || byTimeout.Before(dl) {
			dl, hasDeadline = byTimeout, true
		}
	}
	if !hasDeadline {
		return context.WithCancel(detached)
	}
	return context.WithDeadline(detached, dl)
}

func checkEmpty(content, model string) error {
	if strings.TrimSpace(content) == "" {
		return &llm.ErrEmptyResponse{Model: model}
	}
	return nil
}
