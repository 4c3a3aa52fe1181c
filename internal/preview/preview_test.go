package preview

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslquiz/quizgen/internal/quizgen"
)

type stubGenerator struct {
	calls  int
	last   quizgen.GenerationRequest
	result quizgen.Result
	err    error
}

func (s *stubGenerator) Generate(_ context.Context, req quizgen.GenerationRequest) (quizgen.Result, error) {
	s.calls++
	s.last = req
	return s.result, s.err
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func twoQuestions() quizgen.Result {
	return quizgen.Assembled(quizgen.QuizDraft{Questions: []quizgen.QuestionDraft{
		{Question: "Capital of France?", Options: []string{"Berlin", "Paris", "Rome"}, CorrectAnswer: "B", Explanation: "Paris."},
		{Question: "2+2?", Options: []string{"4", "5", "6"}, CorrectAnswer: "A"},
	}}, 0)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm, ok := next.(Model)
	require.True(t, ok)
	return pm, cmd
}

func TestStartsInInputWithoutSource(t *testing.T) {
	m := New(context.Background(), &stubGenerator{}, quizgen.GenerationRequest{}, "mock")
	assert.Equal(t, stateInput, m.state)
}

func TestStartsGeneratingWithSource(t *testing.T) {
	gen := &stubGenerator{result: twoQuestions()}
	m := New(context.Background(), gen, quizgen.GenerationRequest{Source: quizgen.Source{Text: "passage"}}, "mock")
	assert.Equal(t, stateGenerating, m.state)

	msg := m.generateCmd()()
	ready, ok := msg.(quizReadyMsg)
	require.True(t, ok)
	assert.True(t, ready.result.OK())
	assert.Equal(t, "passage", gen.last.Source.Text)
}

func TestEnterPassageStartsGeneration(t *testing.T) {
	gen := &stubGenerator{result: twoQuestions()}
	m := New(context.Background(), gen, quizgen.GenerationRequest{QuestionCount: 2}, "mock")

	for _, r := range "hello" {
		m, _ = update(t, m, keyPress(r))
	}
	m, cmd := update(t, m, specialKey(tea.KeyEnter))
	assert.Equal(t, stateGenerating, m.state)
	assert.NotNil(t, cmd)
	assert.Equal(t, "hello", m.req.Source.Text)
	assert.Equal(t, 2, m.req.QuestionCount)
}

func TestInputStatusCountsWords(t *testing.T) {
	m := New(context.Background(), &stubGenerator{}, quizgen.GenerationRequest{}, "mock")
	assert.Equal(t, "mock  0 words", m.status())

	for _, r := range "the  quick fox" {
		m, _ = update(t, m, keyPress(r))
	}
	assert.Equal(t, 3, m.input.Words())
	assert.Equal(t, "mock  3 words", m.status())
}

func TestEmptyPassageIgnored(t *testing.T) {
	m := New(context.Background(), &stubGenerator{}, quizgen.GenerationRequest{}, "mock")
	m, _ = update(t, m, specialKey(tea.KeyEnter))
	assert.Equal(t, stateInput, m.state)
}

func TestAnswerFlowAndScore(t *testing.T) {
	m := New(context.Background(), &stubGenerator{}, quizgen.GenerationRequest{Source: quizgen.Source{Text: "p"}}, "mock")
	m, _ = update(t, m, quizReadyMsg{result: twoQuestions()})
	require.Equal(t, stateAnswering, m.state)

	// Answer by letter.
	m, _ = update(t, m, keyPress('b'))
	assert.True(t, m.choice.Submitted)
	assert.True(t, m.choice.IsCorrect())

	m, _ = update(t, m, specialKey(tea.KeyEnter))
	assert.Equal(t, 1, m.index)

	// Navigate and pick the wrong option.
	m, _ = update(t, m, specialKey(tea.KeyDown))
	m, _ = update(t, m, specialKey(tea.KeyEnter))
	assert.Equal(t, "B", m.choice.ChosenLabel())
	assert.False(t, m.choice.IsCorrect())

	m, _ = update(t, m, specialKey(tea.KeyEnter))
	assert.Equal(t, stateSummary, m.state)
	assert.Equal(t, 1, m.Score())
	assert.Equal(t, []string{"B", "B"}, m.answers)
}

func TestLetterOutOfRangeIgnored(t *testing.T) {
	m := New(context.Background(), &stubGenerator{}, quizgen.GenerationRequest{Source: quizgen.Source{Text: "p"}}, "mock")
	m, _ = update(t, m, quizReadyMsg{result: twoQuestions()})

	m, _ = update(t, m, keyPress('f'))
	assert.False(t, m.choice.Submitted)
}

func TestDegradedResultShowsFailure(t *testing.T) {
	err := &quizgen.RepairExhaustedError{Attempts: 5, LastText: "the raw output", LastErr: errors.New("x")}
	res := quizgen.Degraded(quizgen.ModalityText, err, 5, 4096)

	gen := &stubGenerator{result: twoQuestions()}
	m := New(context.Background(), gen, quizgen.GenerationRequest{Source: quizgen.Source{Text: "p"}}, "mock")
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = update(t, m, quizReadyMsg{result: res, err: err})
	require.Equal(t, stateFailed, m.state)

	body := m.body()
	assert.Contains(t, body, "the raw output")
	assert.Contains(t, body, "repair_exhausted")

	// Regenerate.
	m, cmd := update(t, m, keyPress('r'))
	assert.Equal(t, stateGenerating, m.state)
	assert.NotNil(t, cmd)
}

func TestNewPassageFromSummary(t *testing.T) {
	m := New(context.Background(), &stubGenerator{}, quizgen.GenerationRequest{Source: quizgen.Source{Text: "p"}}, "mock")
	m, _ = update(t, m, quizReadyMsg{result: quizgen.Degraded(quizgen.ModalityText, errors.New("x"), 0, 0)})

	m, _ = update(t, m, keyPress('n'))
	assert.Equal(t, stateInput, m.state)
}

func TestQuitKeys(t *testing.T) {
	m := New(context.Background(), &stubGenerator{}, quizgen.GenerationRequest{}, "mock")
	_, cmd := update(t, m, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestViewRenders(t *testing.T) {
	m := New(context.Background(), &stubGenerator{}, quizgen.GenerationRequest{Source: quizgen.Source{Text: "p"}}, "llama3.2")
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = update(t, m, quizReadyMsg{result: twoQuestions()})

	v := m.View()
	assert.True(t, v.AltScreen)
	assert.True(t, strings.Contains(m.body(), "Capital of France?"))
	assert.Contains(t, m.status(), "llama3.2")
}
