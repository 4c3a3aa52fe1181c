package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// reply is one scripted backend answer.
type reply struct {
	text string
	err  error
}

// scriptedBackend answers calls in order and records every prompt.
type scriptedBackend struct {
	mu      sync.Mutex
	replies []reply
	prompts []string
	images  [][]byte
	mimes   []string
	ctxs    []context.Context
	onCall  func(n int)
}

func newScripted(replies ...reply) *scriptedBackend {
	return &scriptedBackend{replies: replies}
}

func texts(ts ...string) []reply {
	out := make([]reply, len(ts))
	for i, t := range ts {
		out[i] = reply{text: t}
	}
	return out
}

func (b *scriptedBackend) InvokeText(ctx context.Context, prompt string) (string, error) {
	return b.next(ctx, prompt, nil)
}

func (b *scriptedBackend) InvokeVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	b.mu.Lock()
	b.mimes = append(b.mimes, mimeType)
	b.mu.Unlock()
	return b.next(ctx, prompt, image)
}

func (b *scriptedBackend) next(ctx context.Context, prompt string, image []byte) (string, error) {
	b.mu.Lock()
	b.prompts = append(b.prompts, prompt)
	b.ctxs = append(b.ctxs, ctx)
	if image != nil {
		b.images = append(b.images, image)
	}
	n := len(b.prompts)
	var r reply
	if len(b.replies) == 0 {
		r = reply{err: fmt.Errorf("no scripted reply for call %d", n)}
	} else {
		r = b.replies[0]
		b.replies = b.replies[1:]
	}
	hook := b.onCall
	b.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return r.text, r.err
}

func (b *scriptedBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.prompts)
}

// sampleQuiz returns a valid draft with n questions of optionCount options.
func sampleQuiz(n, optionCount int) QuizDraft {
	var d QuizDraft
	for i := range n {
		opts := make([]string, optionCount)
		for j := range optionCount {
			opts[j] = fmt.Sprintf("Option %d.%d", i+1, j+1)
		}
		d.Questions = append(d.Questions, QuestionDraft{
			Question:      fmt.Sprintf("Question %d?", i+1),
			Options:       opts,
			CorrectAnswer: labelAlphabet[i%optionCount : i%optionCount+1],
			Explanation:   fmt.Sprintf("Because of line %d.", i+1),
		})
	}
	return d
}

func quizJSON(d QuizDraft) string {
	out, err := json.Marshal(d)
	if err != nil {
		panic(err)
	}
	return string(out)
}

func fenced(payload string) string {
	return "```json\n" + payload + "\n```"
}

// tinyPNG is the 8-byte PNG signature followed by an IHDR chunk header,
// enough for content sniffing.
var tinyPNG = []byte{
	0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
}

func jsonMarshal(v any) (string, error) {
	out, err := json.Marshal(v)
	return string(out), err
}
