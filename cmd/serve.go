package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eslquiz/quizgen/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve quiz generation over HTTP",
	Long: `Start the HTTP API:

  POST /v1/quizzes/text    JSON {"text", "question_count", "option_count"}
  POST /v1/quizzes/image   multipart "image" plus question_count/option_count fields
  GET  /healthz
  GET  /metrics            Prometheus metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
	addQuizFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	d, err := newDeps(ctx, cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer d.close()

	h := httpapi.New(d.gen, httpapi.Options{
		MaxImageBytes: d.cfg.Server.MaxImageBytes,
		Metrics:       d.metrics.Handler(),
		Log:           d.log,
	})

	srv := &http.Server{
		Addr:         d.cfg.Server.Addr,
		Handler:      h.Router(),
		ReadTimeout:  d.cfg.Server.ReadTimeout,
		WriteTimeout: d.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		d.log.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("provider", d.cfg.LLM.Provider))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	d.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
