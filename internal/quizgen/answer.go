package quizgen

import "strings"

// LabeledOption is an option paired with its label, ready for storage or
// display.
type LabeledOption struct {
	Label     string
	Text      string
	IsCorrect bool
}

// CorrectIndex returns the index of the correct option, or -1 when the
// marker does not name one of the question's options.
func (q QuestionDraft) CorrectIndex() int {
	i := LabelIndex(ExtractLetter(q.CorrectAnswer))
	if i < 0 || i >= len(q.Options) {
		return -1
	}
	return i
}

// LabeledOptions pairs each option with its label. IsCorrect compares
// labels, never option text.
func (q QuestionDraft) LabeledOptions() []LabeledOption {
	correct := q.CorrectIndex()
	out := make([]LabeledOption, len(q.Options))
	for i, text := range q.Options {
		out[i] = LabeledOption{
			Label:     labelAlphabet[i : i+1],
			Text:      text,
			IsCorrect: i == correct,
		}
	}
	return out
}

// CorrectOption returns the text of the correct option, or "".
func (q QuestionDraft) CorrectOption() string {
	if i := q.CorrectIndex(); i >= 0 {
		return q.Options[i]
	}
	return ""
}

// ExtractLetter reduces an answer such as "B) Paris", "b." or " C " to its
// upper-case label. Text that does not start with a label is returned
// trimmed and unchanged.
func ExtractLetter(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if before, _, ok := strings.Cut(s, ")"); ok {
		s = strings.TrimSpace(before)
	}
	s = strings.TrimRight(s, ".:")
	s = strings.TrimPrefix(s, "(")
	if len(s) == 1 {
		return strings.ToUpper(s)
	}
	return s
}

// CheckAnswer reports whether selected names the correct option of q.
// selected may be a bare label or a labelled option such as "B) Paris".
func CheckAnswer(q QuestionDraft, selected string) bool {
	correct := q.CorrectIndex()
	if correct < 0 {
		return false
	}
	return LabelIndex(ExtractLetter(selected)) == correct
}

// Score counts correct selections; selections[i] answers q.Questions[i].
func Score(d QuizDraft, selections []string) int {
	n := 0
	for i, q := range d.Questions {
		if i < len(selections) && CheckAnswer(q, selections[i]) {
			n++
		}
	}
	return n
}
