package quizgen

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eslquiz/quizgen/internal/store"
)

// Report summarizes one finished generation for observers.
type Report struct {
	RequestID      string
	Modality       Modality
	Status         Status
	Fault          FaultKind
	RepairAttempts int
	Questions      int
	QuestionCount  int
	OptionCount    int
	Duration       time.Duration
	Err            error
}

// Observer is notified after every generation, ok or degraded.
type Observer interface {
	ObserveGeneration(ctx context.Context, r Report)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, r Report)

func (f ObserverFunc) ObserveGeneration(ctx context.Context, r Report) { f(ctx, r) }

// EventRecorder writes each generation outcome to the audit log.
type EventRecorder struct {
	repo store.EventRepo
	log  *zap.Logger
}

// NewEventRecorder creates an Observer backed by repo.
func NewEventRecorder(repo store.EventRepo, log *zap.Logger) *EventRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventRecorder{repo: repo, log: log}
}

func (e *EventRecorder) ObserveGeneration(ctx context.Context, r Report) {
	data := store.GenerationEventData{
		RequestID:      r.RequestID,
		Modality:       string(r.Modality),
		Status:         string(r.Status),
		Fault:          string(r.Fault),
		RepairAttempts: r.RepairAttempts,
		Questions:      r.Questions,
		QuestionCount:  r.QuestionCount,
		OptionCount:    r.OptionCount,
		DurationMs:     r.Duration.Milliseconds(),
	}
	if r.Err != nil {
		data.ErrorMessage = TruncateDiagnostic(r.Err.Error(), 1024)
	}
	if err := e.repo.AppendGeneration(ctx, data); err != nil {
		e.log.Warn("failed to record generation event", zap.String("request_id", r.RequestID), zap.Error(err))
	}
}
