package quizgen

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	req, err := NewTextRequest("passage", 3, 4)
	require.NoError(t, err)
	return NewExtractor(req)
}

func TestRepair_RespectsAttemptBound(t *testing.T) {
	for _, limit := range []int{1, 2, 5, 8} {
		t.Run(fmt.Sprintf("max=%d", limit), func(t *testing.T) {
			var replies []string
			for i := range limit + 3 {
				replies = append(replies, fmt.Sprintf("bad %d", i))
			}
			b := newScripted(texts(replies...)...)
			r := NewRepairer(b, newTestExtractor(t), limit, false, nil)

			_, attempts, err := r.Repair(context.Background(), "original")
			var exhausted *RepairExhaustedError
			require.ErrorAs(t, err, &exhausted)
			assert.Equal(t, limit, exhausted.Attempts)
			assert.Len(t, attempts, limit)
			assert.Equal(t, limit, b.calls())
			assert.Equal(t, fmt.Sprintf("bad %d", limit-1), exhausted.LastText)
		})
	}
}

func TestRepair_RestatesOriginalByDefault(t *testing.T) {
	b := newScripted(texts("first try", "second try")...)
	r := NewRepairer(b, newTestExtractor(t), 2, false, nil)

	_, attempts, _ := r.Repair(context.Background(), "original output")
	require.Len(t, b.prompts, 2)
	for i, p := range b.prompts {
		assert.Contains(t, p, "original output", "prompt %d", i)
	}
	assert.Equal(t, "original output", attempts[1].Input)
}

func TestRepair_RefineFeedsPreviousOutput(t *testing.T) {
	b := newScripted(texts("first try", "second try")...)
	r := NewRepairer(b, newTestExtractor(t), 2, true, nil)

	_, attempts, _ := r.Repair(context.Background(), "original output")
	require.Len(t, b.prompts, 2)
	assert.Contains(t, b.prompts[0], "original output")
	assert.Contains(t, b.prompts[1], "first try")
	assert.NotContains(t, b.prompts[1], "original output")
	assert.Equal(t, "first try", attempts[1].Input)
}

func TestRepair_Outcomes(t *testing.T) {
	b := newScripted(
		reply{text: "no payload"},
		reply{text: `{"questions": []}`},
		reply{err: errors.New("reset by peer")},
		reply{text: quizJSON(sampleQuiz(3, 4))},
	)
	r := NewRepairer(b, newTestExtractor(t), 5, false, nil)

	draft, attempts, err := r.Repair(context.Background(), "bad")
	require.NoError(t, err)
	assert.Len(t, draft.Questions, 3)

	outcomes := make([]RepairOutcome, len(attempts))
	for i, a := range attempts {
		outcomes[i] = a.Outcome
		assert.Equal(t, i+1, a.Index)
	}
	assert.Equal(t, []RepairOutcome{RepairMalformed, RepairMismatch, RepairTransport, RepairSucceeded}, outcomes)

	var tf *TransportFault
	require.ErrorAs(t, attempts[2].Err, &tf)
	assert.Equal(t, "repair", tf.Stage)
	assert.Equal(t, 3, tf.Attempt)
}

func TestRepair_ExhaustedByTransportKeepsLastText(t *testing.T) {
	b := newScripted(
		reply{text: "garbled"},
		reply{err: errors.New("down")},
	)
	r := NewRepairer(b, newTestExtractor(t), 2, false, nil)

	_, _, err := r.Repair(context.Background(), "bad")
	var exhausted *RepairExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "garbled", exhausted.LastText)

	var tf *TransportFault
	assert.ErrorAs(t, exhausted.LastErr, &tf)
}

func TestRepair_PromptCarriesOptionCount(t *testing.T) {
	req, err := NewTextRequest("passage", 1, 5)
	require.NoError(t, err)
	b := newScripted(texts(quizJSON(sampleQuiz(1, 5)))...)
	r := NewRepairer(b, NewExtractor(req), 1, false, nil)

	_, _, err = r.Repair(context.Background(), "bad")
	require.NoError(t, err)
	assert.Contains(t, b.prompts[0], "exactly 5 options")
	assert.Contains(t, b.prompts[0], "A, B, C, D, E")
}
