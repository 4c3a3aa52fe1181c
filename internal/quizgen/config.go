package quizgen

import "time"

// Config controls the generation pipeline.
type Config struct {
	// MaxRepairAttempts bounds the repair loop. Zero disables repair.
	MaxRepairAttempts int

	// RefineRepairs feeds each failed repair output into the next attempt
	// instead of restating the original bad text.
	RefineRepairs bool

	// CallTimeout bounds a single backend call.
	CallTimeout time.Duration

	// OverallTimeout bounds the whole generation, across repair attempts.
	// Zero means no ceiling beyond the caller's context.
	OverallTimeout time.Duration

	// MaxDiagnosticBytes caps the raw text carried in a degraded result.
	MaxDiagnosticBytes int

	// MaxTokens is the token budget for each backend response.
	MaxTokens int

	// Temperature controls backend output randomness (0.0-1.0).
	Temperature float64

	// StrictQuestionCount rejects drafts whose question count differs from
	// the request, sending them through repair.
	StrictQuestionCount bool
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxRepairAttempts:  5,
		CallTimeout:        2 * time.Minute,
		OverallTimeout:     10 * time.Minute,
		MaxDiagnosticBytes: 4096,
		MaxTokens:          2048,
		Temperature:        0.7,
	}
}

// validators returns the chain implied by the config.
func (c Config) validators() []Validator {
	vs := DefaultValidators()
	if c.StrictQuestionCount {
		vs = append(vs, &QuestionCountValidator{})
	}
	return vs
}
