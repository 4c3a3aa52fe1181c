package quizgen

import "strings"

// labelAlphabet bounds the option count: one letter per option.
const labelAlphabet = "ABCDEFG"

// Labels returns the first n option labels. n is clamped to [0, MaxOptionCount].
func Labels(n int) []string {
	n = max(0, min(n, MaxOptionCount))
	out := make([]string, n)
	for i := range n {
		out[i] = labelAlphabet[i : i+1]
	}
	return out
}

// LabelIndex returns the zero-based position of label, or -1.
func LabelIndex(label string) int {
	if len(label) != 1 {
		return -1
	}
	return strings.Index(labelAlphabet, label)
}
