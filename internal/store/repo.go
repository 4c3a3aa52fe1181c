package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	Purpose   string    // backend calls only: exact purpose match
	RequestID string    // exact generation request id match
	Status    string    // generation outcomes only: "ok" or "degraded"
}

// LLMRequestEventData captures the data for a single backend call.
type LLMRequestEventData struct {
	RequestID    string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored backend call.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates backend calls by purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
	Failures     int
}

// ModelUsage aggregates token usage by model, for cost estimates.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// GenerationEventData captures the outcome of one quiz generation request.
type GenerationEventData struct {
	RequestID      string
	Modality       string
	Status         string
	Fault          string
	RepairAttempts int
	Questions      int
	QuestionCount  int
	OptionCount    int
	DurationMs     int64
	ErrorMessage   string
}

// GenerationEvent is a stored generation outcome.
type GenerationEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	GenerationEventData
}

// OutcomeCount aggregates generation outcomes by status and fault kind.
type OutcomeCount struct {
	Modality          string
	Status            string
	Fault             string
	Count             int
	AvgRepairAttempts float64
	AvgDurationMs     int64
}

// EventRepo provides append and query access to the audit log.
type EventRepo interface {
	// AppendLLMRequest records a backend call.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// AppendGeneration records the outcome of a generation request.
	AppendGeneration(ctx context.Context, data GenerationEventData) error

	// QueryLLMEvents returns backend calls, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one backend call, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates backend calls by purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates token usage by model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	// QueryGenerations returns generation outcomes, newest first.
	QueryGenerations(ctx context.Context, opts QueryOpts) ([]GenerationEvent, error)

	// GenerationOutcomes counts generation outcomes by modality, status and fault.
	GenerationOutcomes(ctx context.Context) ([]OutcomeCount, error)

	// Prune deletes all but the keep most recent events of each type and
	// returns the number of rows removed.
	Prune(ctx context.Context, keep int) (int64, error)
}
