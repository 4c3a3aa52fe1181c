package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eslquiz/quizgen/internal/config"
	"github.com/eslquiz/quizgen/internal/llm"
	"github.com/eslquiz/quizgen/internal/logger"
	"github.com/eslquiz/quizgen/internal/metrics"
	"github.com/eslquiz/quizgen/internal/quizgen"
	"github.com/eslquiz/quizgen/internal/store"
)

// deps holds the wired dependencies shared by the generating commands.
type deps struct {
	cfg     config.Config
	log     *zap.Logger
	store   *store.Store // nil when the audit log is disabled
	metrics *metrics.Metrics
	gen     *quizgen.Generator
}

// loadConfig reads the config file, environment and the command's flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	v, err := config.New(cmd.Flags(), path)
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(v)
}

// newDeps opens the store, builds the provider stack and the generator.
// Logs go to logOut. The caller must call close.
func newDeps(ctx context.Context, cmd *cobra.Command, logOut io.Writer) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewWithWriter(cfg.Log, logOut)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	d := &deps{cfg: cfg, log: log, metrics: metrics.New()}

	var repo store.EventRepo
	if !cfg.DB.Disabled {
		dbPath, err := resolveDBPath(cfg.DB.Path)
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		d.store = st
		repo = st.EventRepo()

		if cfg.DB.Retain > 0 {
			n, err := repo.Prune(ctx, cfg.DB.Retain)
			if err != nil {
				log.Warn("prune audit log", zap.Error(err))
			} else if n > 0 {
				log.Debug("pruned audit log", zap.Int64("rows", n), zap.Int("kept", cfg.DB.Retain))
			}
		}
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, repo, log)
	if err != nil {
		d.close()
		return nil, fmt.Errorf("LLM provider: %w", err)
	}
	provider = d.metrics.InstrumentProvider(provider, cfg.LLM.Provider)

	opts := []quizgen.Option{
		quizgen.WithLogger(log),
		quizgen.WithObserver(d.metrics),
	}
	if repo != nil {
		opts = append(opts, quizgen.WithObserver(quizgen.NewEventRecorder(repo, log)))
	}

	inv := quizgen.NewInvoker(provider, cfg.Models, cfg.Quiz)
	d.gen = quizgen.New(inv, cfg.Quiz, opts...)

	log.Debug("generator ready",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("text_model", cfg.Models.ModelFor(quizgen.ModalityText)),
		zap.String("vision_model", cfg.Models.ModelFor(quizgen.ModalityImage)),
		zap.Bool("audit_log", repo != nil))

	return d, nil
}

// modelLabel names the model used for m, falling back to the provider's
// default model.
func (d *deps) modelLabel(m quizgen.Modality) string {
	if id := d.cfg.Models.ModelFor(m); id != "" {
		return id
	}
	return d.cfg.LLM.DefaultModel()
}

func (d *deps) close() {
	if d.store != nil {
		d.store.Close()
	}
	_ = d.log.Sync()
}
