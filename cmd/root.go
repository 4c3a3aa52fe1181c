package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eslquiz/quizgen/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizgen",
	Short: "Generate reading-comprehension quizzes with an LLM",
	Long: `quizgen turns a passage of text, or a photo of one, into a multiple-choice
reading-comprehension quiz. Backend output is extracted, validated against
the quiz schema and repaired when malformed; callers always receive a
quiz-shaped result.`,
	SilenceUsage: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML config file (default ./quizgen.yaml or ~/.config/quizgen/quizgen.yaml)")
	pf.String("db", "", "Path to SQLite audit log (overrides QUIZGEN_DB env var)")
	pf.Bool("no-db", false, "Disable the audit log")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("log-format", "", "Log format: console or json")
	pf.String("provider", "", "Backend provider: auto, ollama, openai, openrouter, anthropic, gemini or mock")
	pf.String("text-model", "", "Model for text passages")
	pf.String("vision-model", "", "Model for images")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(versionCmd)
}

// addQuizFlags registers the generation flags shared by generate, serve
// and preview.
func addQuizFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-repairs", 0, "Maximum repair round-trips per request (default 5)")
	cmd.Flags().Bool("refine", false, "Feed the previous repair output back instead of the original")
	cmd.Flags().Bool("strict", false, "Reject quizzes whose question count differs from the request")
}

// resolveDBPath returns path when set, otherwise QUIZGEN_DB or the default
// XDG location.
func resolveDBPath(path string) (string, error) {
	if path != "" {
		return path, store.EnsureDir(path)
	}
	return store.DefaultDBPath()
}
