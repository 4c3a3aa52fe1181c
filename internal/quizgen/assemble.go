package quizgen

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Diagnostic question text used in degraded results.
const (
	DiagnosticQuestion               = "Error generating questions."
	DiagnosticImageQuestion          = "Error generating image-based questions."
	DiagnosticImageTransportQuestion = "Error processing image."
)

// truncationMarker is appended to diagnostics cut at the byte cap.
const truncationMarker = "\n...[truncated %d bytes]"

// Assembled wraps a validated draft as an ok Result.
func Assembled(d QuizDraft, repairAttempts int) Result {
	return Result{QuizDraft: d, Status: StatusOK, RepairAttempts: repairAttempts}
}

// Degraded synthesises a diagnostic Result for err. The explanation is the
// last raw backend text when there is one, else the fault description.
func Degraded(m Modality, err error, repairAttempts, maxDiagnosticBytes int) Result {
	explanation := err.Error()
	var (
		exhausted *RepairExhaustedError
		aborted   *AbortedError
	)
	switch {
	case errors.As(err, &exhausted) && exhausted.LastText != "":
		explanation = exhausted.LastText
	case errors.As(err, &aborted) && aborted.LastText != "":
		explanation = aborted.LastText
	}

	kind := KindOf(err)
	question := DiagnosticQuestion
	switch {
	case m == ModalityImage && kind == FaultTransport:
		question = DiagnosticImageTransportQuestion
	case m == ModalityImage:
		question = DiagnosticImageQuestion
	}

	return Result{
		QuizDraft: QuizDraft{Questions: []QuestionDraft{{
			Question:      question,
			Options:       []string{},
			CorrectAnswer: "",
			Explanation:   TruncateDiagnostic(explanation, maxDiagnosticBytes),
		}}},
		Status:         StatusDegraded,
		Fault:          kind,
		RepairAttempts: repairAttempts,
		Err:            err,
	}
}

// TruncateDiagnostic caps s at maxBytes without splitting a UTF-8 sequence
// and appends an explicit marker. maxBytes <= 0 disables the cap.
func TruncateDiagnostic(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + fmt.Sprintf(truncationMarker, len(s)-cut)
}
