package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/eslquiz/quizgen/internal/llm"
	"github.com/eslquiz/quizgen/internal/quizgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a quiz and print it as JSON",
	Long: `Generate a quiz from a passage or an image and write the result to stdout.

The passage comes from --text, or from --file ("-" reads stdin). An image is
given with --image. The result is always quiz-shaped; when generation fails
its status is "degraded" and it holds a single diagnostic question.`,
	Example: `  quizgen generate --text "The Nile is the longest river in Africa." --questions 2
  quizgen generate --file story.txt --options 3
  quizgen generate --image page.jpg --provider openai --vision-model gpt-4o`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("text", "", "Passage to build the quiz from")
	generateCmd.Flags().String("file", "", `Read the passage from a file ("-" for stdin)`)
	generateCmd.Flags().String("image", "", "Image of a passage to build the quiz from")
	generateCmd.Flags().Int("questions", quizgen.DefaultQuestionCount, "Number of questions")
	generateCmd.Flags().Int("options", quizgen.DefaultOptionCount, "Options per question (2-7)")
	generateCmd.Flags().Bool("compact", false, "Print JSON on a single line")
	generateCmd.Flags().Bool("fail-on-degraded", false, "Exit non-zero when the result is degraded")
	generateCmd.MarkFlagsMutuallyExclusive("text", "file", "image")
	addQuizFlags(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}
	if _, err := req.Normalize(); err != nil {
		return err
	}

	ctx := cmd.Context()
	d, err := newDeps(ctx, cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer d.close()

	res, genErr := d.gen.Generate(ctx, req)

	enc := json.NewEncoder(cmd.OutOrStdout())
	if compact, _ := cmd.Flags().GetBool("compact"); !compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	if failOnDegraded, _ := cmd.Flags().GetBool("fail-on-degraded"); failOnDegraded && !res.OK() {
		return fmt.Errorf("quiz degraded (%s): %w", res.Fault, genErr)
	}
	return nil
}

// requestFromFlags builds a generation request from --text, --file or
// --image and the count flags.
func requestFromFlags(cmd *cobra.Command) (quizgen.GenerationRequest, error) {
	text, _ := cmd.Flags().GetString("text")
	file, _ := cmd.Flags().GetString("file")
	image, _ := cmd.Flags().GetString("image")
	questions, _ := cmd.Flags().GetInt("questions")
	options, _ := cmd.Flags().GetInt("options")

	req := quizgen.GenerationRequest{
		QuestionCount: questions,
		OptionCount:   options,
	}

	switch {
	case file != "":
		data, err := readPassage(cmd, file)
		if err != nil {
			return req, err
		}
		req.Source.Text = data
	case image != "":
		data, err := os.ReadFile(image)
		if err != nil {
			return req, fmt.Errorf("read image: %w", err)
		}
		mime := llm.SniffImageMIME(data)
		if mime == "" {
			return req, fmt.Errorf("%s: unsupported image format (want JPEG, PNG, GIF or WebP)", image)
		}
		req.Source.Image = data
		req.Source.ImageMIME = mime
	default:
		req.Source.Text = text
	}
	return req, nil
}

func readPassage(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read passage: %w", err)
	}
	return string(data), nil
}
