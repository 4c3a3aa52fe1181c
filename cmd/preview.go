package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/eslquiz/quizgen/internal/preview"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Generate a quiz and answer it interactively",
	Long: `Generate a quiz in the terminal and answer it question by question.

Without --text, --file or --image the passage is typed in. After the last
question the score is shown; press r to regenerate from the same source or
n to enter a new passage. Useful for judging prompt and model quality.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("text", "", "Passage to build the quiz from")
	previewCmd.Flags().String("file", "", `Read the passage from a file ("-" for stdin)`)
	previewCmd.Flags().String("image", "", "Image of a passage to build the quiz from")
	previewCmd.Flags().Int("questions", 0, "Number of questions (default 3)")
	previewCmd.Flags().Int("options", 0, "Options per question (default 4)")
	previewCmd.MarkFlagsMutuallyExclusive("text", "file", "image")
	addQuizFlags(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	// The terminal belongs to the TUI; the audit log still records calls.
	d, err := newDeps(ctx, cmd, io.Discard)
	if err != nil {
		return err
	}
	defer d.close()

	return preview.Run(ctx, d.gen, req, d.modelLabel(req.Modality()))
}
