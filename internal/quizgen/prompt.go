package quizgen

import (
	"encoding/json"
	"fmt"
	"strings"
)

// exampleOptions fill the one-question example in repair prompts.
var exampleOptions = []string{"Blue", "Green", "Red", "Yellow", "Purple", "Orange", "Black"}

// ComposeText builds the prompt for a text passage.
func ComposeText(text string, questionCount, optionCount int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a quiz generator. Read the following passage and generate %d multiple-choice comprehension questions.\n", questionCount)
	writeRules(&b, optionCount)

	b.WriteString("\nPassage:\n")
	b.WriteString(text)
	b.WriteString("\n\n")

	writeTemplate(&b, optionCount)
	return b.String()
}

// ComposeImage builds the prompt sent alongside an image. The image itself
// travels as an attachment.
func ComposeImage(questionCount, optionCount int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an educational assistant. Look at the attached image and generate %d multiple-choice questions about its contents.\n", questionCount)
	b.WriteString("Each question should test visual comprehension of what the image shows.\n")
	writeRules(&b, optionCount)
	b.WriteString("\n")

	writeTemplate(&b, optionCount)
	return b.String()
}

// ComposeRepair asks the backend to reformat badText into the quiz shape.
// badText is embedded verbatim.
func ComposeRepair(badText string, optionCount int) string {
	optionCount = clampOptions(optionCount)
	labels := Labels(optionCount)
	var b strings.Builder

	b.WriteString("The following response was supposed to be a quiz in JSON but it could not be parsed or has the wrong structure.\n")
	b.WriteString("Rewrite it as valid JSON with the exact structure shown in the example. Keep the original questions where possible.\n")
	fmt.Fprintf(&b, "Every question must have exactly %d options and a \"correct_answer\" that is one of: %s.\n",
		optionCount, strings.Join(labels, ", "))
	b.WriteString("Reply with only the corrected JSON inside a ```json fenced block and nothing else.\n\n")

	b.WriteString("Response to fix:\n")
	b.WriteString(badText)
	b.WriteString("\n\n")

	b.WriteString("Example of the expected format:\n```json\n")
	b.WriteString(repairExample(optionCount))
	b.WriteString("\n```\n")
	return b.String()
}

func writeRules(b *strings.Builder, optionCount int) {
	optionCount = clampOptions(optionCount)
	labels := Labels(optionCount)
	fmt.Fprintf(b, "Each question must have exactly %d options, labelled %s in order.\n",
		optionCount, strings.Join(labels, ", "))
	fmt.Fprintf(b, "\"correct_answer\" must be the letter of the correct option (one of %s), not the option text.\n",
		strings.Join(labels, ", "))
	b.WriteString("Include a brief \"explanation\" of why the answer is correct.\n")
	b.WriteString("Return only a JSON object in this exact structure.\n")
}

// writeTemplate writes the literal target shape.
func writeTemplate(b *strings.Builder, optionCount int) {
	labels := Labels(clampOptions(optionCount))
	opts := make([]string, len(labels))
	for i, l := range labels {
		opts[i] = fmt.Sprintf("%q", "Option "+l)
	}

	b.WriteString("Output format (JSON):\n")
	b.WriteString("{\n")
	b.WriteString("  \"questions\": [\n")
	b.WriteString("    {\n")
	b.WriteString("      \"question\": \"...\",\n")
	fmt.Fprintf(b, "      \"options\": [%s],\n", strings.Join(opts, ", "))
	fmt.Fprintf(b, "      \"correct_answer\": \"%s\",\n", labels[0])
	b.WriteString("      \"explanation\": \"...\"\n")
	b.WriteString("    }\n")
	b.WriteString("  ]\n")
	b.WriteString("}\n")
}

// repairExample renders a complete, valid one-question quiz.
func repairExample(optionCount int) string {
	n := clampOptions(optionCount)
	example := QuizDraft{Questions: []QuestionDraft{{
		Question:      "What color is the sky on a clear day?",
		Options:       exampleOptions[:n],
		CorrectAnswer: "A",
		Explanation:   "On a clear day the sky looks blue.",
	}}}
	out, _ := json.MarshalIndent(example, "", "  ")
	return string(out)
}

func clampOptions(n int) int {
	return max(MinOptionCount, min(n, MaxOptionCount))
}
