package quizgen

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/eslquiz/quizgen/internal/llm"
)

// RepairOutcome describes how one repair attempt ended.
type RepairOutcome string

const (
	RepairSucceeded RepairOutcome = "succeeded"
	RepairMalformed RepairOutcome = "malformed"
	RepairMismatch  RepairOutcome = "schema_mismatch"
	RepairTransport RepairOutcome = "transport"
)

// RepairAttempt records one iteration of the repair loop.
type RepairAttempt struct {
	Index   int // 1-based
	Input   string
	Output  string
	Outcome RepairOutcome
	Err     error
}

// Repairer asks the backend to reformat bad output until it extracts or the
// attempt budget runs out. Attempts run strictly one after another.
type Repairer struct {
	backend     Backend
	extractor   *Extractor
	maxAttempts int
	refine      bool
	log         *zap.Logger
}

// NewRepairer creates a Repairer. A nil logger is replaced by a no-op logger.
func NewRepairer(backend Backend, extractor *Extractor, maxAttempts int, refine bool, log *zap.Logger) *Repairer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repairer{
		backend:     backend,
		extractor:   extractor,
		maxAttempts: max(0, maxAttempts),
		refine:      refine,
		log:         log,
	}
}

// Repair runs the loop starting from badText. On success it returns the
// draft and the attempts made, the last one successful. Otherwise it
// returns a *RepairExhaustedError, or an *AbortedError when ctx ends
// between attempts.
func (r *Repairer) Repair(ctx context.Context, badText string) (QuizDraft, []RepairAttempt, error) {
	ctx = llm.WithPurpose(ctx, PurposeRepair)

	var attempts []RepairAttempt
	lastText := badText
	input := badText
	var lastErr error = &MalformedOutputError{Raw: badText, Err: errNoCandidate}

	for i := 1; i <= r.maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return QuizDraft{}, attempts, &AbortedError{Attempts: i - 1, LastText: lastText, Err: err}
		}

		prompt := ComposeRepair(input, r.extractor.optionCount())
		text, err := r.backend.InvokeText(ctx, prompt)
		if err != nil {
			var tf *TransportFault
			if errors.As(err, &tf) {
				tf.Stage = "repair"
				tf.Attempt = i
			} else {
				err = &TransportFault{Stage: "repair", Attempt: i, Err: err}
			}
			attempts = append(attempts, RepairAttempt{Index: i, Input: input, Outcome: RepairTransport, Err: err})
			r.log.Warn("repair attempt failed to reach backend", zap.Int("attempt", i), zap.Error(err))
			lastErr = err
			continue
		}

		draft, xerr := r.extractor.Extract(text)
		if xerr == nil {
			attempts = append(attempts, RepairAttempt{Index: i, Input: input, Output: text, Outcome: RepairSucceeded})
			r.log.Info("repair succeeded", zap.Int("attempt", i))
			return draft, attempts, nil
		}

		outcome := RepairMalformed
		var mismatch *SchemaMismatchError
		if errors.As(xerr, &mismatch) {
			outcome = RepairMismatch
		}
		attempts = append(attempts, RepairAttempt{Index: i, Input: input, Output: text, Outcome: outcome, Err: xerr})
		r.log.Debug("repair attempt rejected", zap.Int("attempt", i), zap.String("outcome", string(outcome)), zap.Error(xerr))

		lastText = text
		lastErr = xerr
		if r.refine {
			input = text
		}
	}

	return QuizDraft{}, attempts, &RepairExhaustedError{
		Attempts: len(attempts),
		LastText: lastText,
		LastErr:  lastErr,
	}
}
