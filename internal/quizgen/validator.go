package quizgen

import (
	"fmt"
	"strings"
)

// Validator checks a parsed QuizDraft beyond what the JSON Schema expresses.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier used in error messages and logs.
	Name() string

	// Validate returns nil if the draft passes.
	Validate(d QuizDraft, req GenerationRequest) *ValidationError
}

// StructuralValidator rejects blank question text and blank options, which
// the schema's type checks let through.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(d QuizDraft, _ GenerationRequest) *ValidationError {
	for i, q := range d.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("question %d has blank text", i+1),
			}
		}
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return &ValidationError{
					Validator: v.Name(),
					Message:   fmt.Sprintf("question %d option %s is blank", i+1, labelAlphabet[j:j+1]),
				}
			}
		}
	}
	return nil
}

// QuestionCountValidator requires exactly the requested number of questions.
// Off by default: backends often return one question more or less.
type QuestionCountValidator struct{}

func (v *QuestionCountValidator) Name() string { return "question-count" }

func (v *QuestionCountValidator) Validate(d QuizDraft, req GenerationRequest) *ValidationError {
	if len(d.Questions) != req.QuestionCount {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("expected %d questions, got %d", req.QuestionCount, len(d.Questions)),
		}
	}
	return nil
}

// DefaultValidators returns the validator chain used when none is configured.
func DefaultValidators() []Validator {
	return []Validator{&StructuralValidator{}}
}
