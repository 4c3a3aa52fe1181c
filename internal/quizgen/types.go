package quizgen

import (
	"fmt"
	"strings"
)

// Default and limit values for a GenerationRequest.
const (
	DefaultQuestionCount = 3
	DefaultOptionCount   = 4
	MaxQuestionCount     = 20
	MinOptionCount       = 2
	MaxOptionCount       = len(labelAlphabet)
)

// Modality identifies the kind of source material.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
)

// Source is the material a quiz is generated from: exactly one of Text or
// Image is set.
type Source struct {
	Text string

	Image []byte
	// ImageMIME is sent to the vision backend as the image type. It is
	// sniffed from Image when empty.
	ImageMIME string
}

// GenerationRequest is the immutable input to one generation.
type GenerationRequest struct {
	Source        Source
	QuestionCount int
	OptionCount   int
}

// NewTextRequest builds a validated request for a text passage.
// Zero counts take their defaults.
func NewTextRequest(text string, questionCount, optionCount int) (GenerationRequest, error) {
	return GenerationRequest{
		Source:        Source{Text: text},
		QuestionCount: questionCount,
		OptionCount:   optionCount,
	}.Normalize()
}

// NewImageRequest builds a validated request for an encoded image.
// Zero counts take their defaults.
func NewImageRequest(image []byte, questionCount, optionCount int) (GenerationRequest, error) {
	return GenerationRequest{
		Source:        Source{Image: image},
		QuestionCount: questionCount,
		OptionCount:   optionCount,
	}.Normalize()
}

// Modality reports whether the request carries text or an image.
func (r GenerationRequest) Modality() Modality {
	if len(r.Source.Image) > 0 {
		return ModalityImage
	}
	return ModalityText
}

// Normalize applies defaults, caps the option count at MaxOptionCount and
// validates the request. It returns a *RequestError for caller mistakes.
func (r GenerationRequest) Normalize() (GenerationRequest, error) {
	hasText := strings.TrimSpace(r.Source.Text) != ""
	hasImage := len(r.Source.Image) > 0
	switch {
	case hasText && hasImage:
		return r, &RequestError{Field: "source", Message: "provide either text or an image, not both"}
	case !hasText && !hasImage:
		return r, &RequestError{Field: "source", Message: "text or image is required"}
	}

	if r.QuestionCount == 0 {
		r.QuestionCount = DefaultQuestionCount
	}
	if r.QuestionCount < 1 || r.QuestionCount > MaxQuestionCount {
		return r, &RequestError{
			Field:   "question_count",
			Message: fmt.Sprintf("must be between 1 and %d, got %d", MaxQuestionCount, r.QuestionCount),
		}
	}

	if r.OptionCount == 0 {
		r.OptionCount = DefaultOptionCount
	}
	if r.OptionCount < MinOptionCount {
		return r, &RequestError{
			Field:   "option_count",
			Message: fmt.Sprintf("must be at least %d, got %d", MinOptionCount, r.OptionCount),
		}
	}
	if r.OptionCount > MaxOptionCount {
		r.OptionCount = MaxOptionCount
	}

	return r, nil
}

// QuizDraft is the structured quiz recovered from backend output.
type QuizDraft struct {
	Questions []QuestionDraft `json:"questions"`
}

// QuestionDraft is one multiple-choice question. CorrectAnswer holds the
// option label ("A".."G"), not the option text.
type QuestionDraft struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// Status distinguishes a usable quiz from a diagnostic placeholder.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
)

// Result is what callers receive from a generation: always quiz-shaped.
// When Status is StatusDegraded, Questions holds a single diagnostic
// question and Err describes the fault.
type Result struct {
	QuizDraft
	Status         Status    `json:"status"`
	Fault          FaultKind `json:"fault,omitempty"`
	RepairAttempts int       `json:"repair_attempts"`
	RequestID      string    `json:"request_id,omitempty"`

	Err error `json:"-"`
}

// OK reports whether the result carries a validated quiz.
func (r Result) OK() bool { return r.Status == StatusOK }
