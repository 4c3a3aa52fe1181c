package quizgen

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eslquiz/quizgen/internal/llm"
)

// Purpose labels attached to backend calls for the audit log.
const (
	PurposeText   = "quiz-text"
	PurposeImage  = "quiz-image"
	PurposeRepair = "quiz-repair"
)

// Generator runs the pipeline: compose, invoke, extract, repair, assemble.
// It holds no per-request state and is safe for concurrent use.
type Generator struct {
	backend   Backend
	config    Config
	log       *zap.Logger
	observers []Observer
	newID     func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(g *Generator) {
		if log != nil {
			g.log = log
		}
	}
}

// WithObserver registers an Observer notified after every generation.
func WithObserver(o Observer) Option {
	return func(g *Generator) {
		if o != nil {
			g.observers = append(g.observers, o)
		}
	}
}

// New creates a Generator over backend.
func New(backend Backend, cfg Config, opts ...Option) *Generator {
	g := &Generator{
		backend: backend,
		config:  cfg,
		log:     zap.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateFromText returns a quiz for a passage. It never fails: faults are
// reported as a degraded Result whose Err field holds the typed error.
// Zero counts take their defaults.
func (g *Generator) GenerateFromText(ctx context.Context, text string, questionCount, optionCount int) Result {
	res, _ := g.Generate(ctx, GenerationRequest{
		Source:        Source{Text: text},
		QuestionCount: questionCount,
		OptionCount:   optionCount,
	})
	return res
}

// GenerateFromImage returns a quiz about an encoded image. Like
// GenerateFromText it always returns a quiz-shaped Result.
func (g *Generator) GenerateFromImage(ctx context.Context, image []byte, questionCount, optionCount int) Result {
	res, _ := g.Generate(ctx, GenerationRequest{
		Source:        Source{Image: image},
		QuestionCount: questionCount,
		OptionCount:   optionCount,
	})
	return res
}

// Generate runs the pipeline for req. The Result is always populated; when
// err is non-nil it is degraded and err is one of *RequestError,
// *TransportFault, *RepairExhaustedError or *AbortedError.
func (g *Generator) Generate(ctx context.Context, req GenerationRequest) (Result, error) {
	start := time.Now()

	requestID := llm.RequestIDFrom(ctx)
	if requestID == "" {
		requestID = g.newID()
		ctx = llm.WithRequestID(ctx, requestID)
	}

	if g.config.OverallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.OverallTimeout)
		defer cancel()
	}

	log := g.log.With(
		zap.String("request_id", requestID),
		zap.String("modality", string(req.Modality())),
	)

	res, err := g.run(ctx, req, log)
	res.RequestID = requestID

	if err != nil {
		log.Warn("generation degraded",
			zap.String("fault", string(res.Fault)),
			zap.Int("repair_attempts", res.RepairAttempts),
			zap.Error(err))
	} else {
		log.Info("generation succeeded",
			zap.Int("questions", len(res.Questions)),
			zap.Int("repair_attempts", res.RepairAttempts))
	}

	g.notify(ctx, req, res, time.Since(start))
	return res, err
}

func (g *Generator) run(ctx context.Context, req GenerationRequest, log *zap.Logger) (Result, error) {
	modality := req.Modality()

	req, err := req.Normalize()
	if err != nil {
		return Degraded(modality, err, 0, g.config.MaxDiagnosticBytes), err
	}

	if err := ctx.Err(); err != nil {
		err = &AbortedError{Err: err}
		return Degraded(modality, err, 0, g.config.MaxDiagnosticBytes), err
	}

	log.Debug("invoking backend",
		zap.Int("question_count", req.QuestionCount),
		zap.Int("option_count", req.OptionCount))

	text, err := g.invokeInitial(ctx, req)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			err = &AbortedError{Err: cerr}
			return Degraded(modality, err, 0, g.config.MaxDiagnosticBytes), err
		}
		var tf *TransportFault
		if errors.As(err, &tf) {
			tf.Stage = "initial"
		} else {
			err = &TransportFault{Stage: "initial", Err: err}
		}
		return Degraded(modality, err, 0, g.config.MaxDiagnosticBytes), err
	}

	extractor := &Extractor{Request: req, Validators: g.config.validators()}
	draft, xerr := extractor.Extract(text)
	if xerr == nil {
		return Assembled(draft, 0), nil
	}
	log.Debug("initial output rejected, repairing", zap.String("fault", string(KindOf(xerr))), zap.Error(xerr))

	repairer := NewRepairer(g.backend, extractor, g.config.MaxRepairAttempts, g.config.RefineRepairs, log)
	draft, attempts, rerr := repairer.Repair(ctx, text)
	if rerr != nil {
		return Degraded(modality, rerr, len(attempts), g.config.MaxDiagnosticBytes), rerr
	}
	return Assembled(draft, len(attempts)), nil
}

func (g *Generator) invokeInitial(ctx context.Context, req GenerationRequest) (string, error) {
	if req.Modality() == ModalityImage {
		prompt := ComposeImage(req.QuestionCount, req.OptionCount)
		return g.backend.InvokeVision(llm.WithPurpose(ctx, PurposeImage), prompt, req.Source.Image, req.Source.ImageMIME)
	}
	prompt := ComposeText(req.Source.Text, req.QuestionCount, req.OptionCount)
	return g.backend.InvokeText(llm.WithPurpose(ctx, PurposeText), prompt)
}

func (g *Generator) notify(ctx context.Context, req GenerationRequest, res Result, d time.Duration) {
	if len(g.observers) == 0 {
		return
	}
	if n, err := req.Normalize(); err == nil {
		req = n
	}
	rep := Report{
		RequestID:      res.RequestID,
		Modality:       req.Modality(),
		Status:         res.Status,
		Fault:          res.Fault,
		RepairAttempts: res.RepairAttempts,
		Questions:      len(res.Questions),
		QuestionCount:  req.QuestionCount,
		OptionCount:    req.OptionCount,
		Duration:       d,
		Err:            res.Err,
	}
	// Observers run after the deadline may have passed.
	octx := context.WithoutCancel(ctx)
	for _, o := range g.observers {
		o.ObserveGeneration(octx, rep)
	}
}
