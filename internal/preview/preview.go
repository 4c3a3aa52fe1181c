// Package preview is an interactive terminal front end for trying the
// generator: enter a passage (or pass an image), answer the quiz and see
// the explanations and a score.
package preview

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eslquiz/quizgen/internal/quizgen"
	"github.com/eslquiz/quizgen/internal/ui/components"
	"github.com/eslquiz/quizgen/internal/ui/layout"
	"github.com/eslquiz/quizgen/internal/ui/theme"
)

// Generator is the part of *quizgen.Generator the preview needs.
type Generator interface {
	Generate(ctx context.Context, req quizgen.GenerationRequest) (quizgen.Result, error)
}

type state int

const (
	stateInput state = iota
	stateGenerating
	stateAnswering
	stateFailed
	stateSummary
)

// quizReadyMsg carries a finished generation back into the update loop.
type quizReadyMsg struct {
	result quizgen.Result
	err    error
}

// Model is the root Bubble Tea model of the preview.
type Model struct {
	ctx   context.Context
	gen   Generator
	req   quizgen.GenerationRequest
	label string

	state   state
	input   components.TextInput
	spinner spinner.Model

	result  quizgen.Result
	err     error
	index   int
	choice  components.MultiChoice
	answers []string

	width  int
	height int
}

// New creates the preview. When req carries no source the user is asked
// for a passage first; counts in req apply to every generation. label is
// shown in the header (typically the model name).
func New(ctx context.Context, gen Generator, req quizgen.GenerationRequest, label string) Model {
	m := Model{
		ctx:     ctx,
		gen:     gen,
		req:     req,
		label:   label,
		input:   components.NewTextInput("Paste or type a passage, then press Enter", 8000),
		spinner: spinner.New(),
	}
	if hasSource(req) {
		m.state = stateGenerating
	}
	return m
}

func hasSource(req quizgen.GenerationRequest) bool {
	return strings.TrimSpace(req.Source.Text) != "" || len(req.Source.Image) > 0
}

func (m Model) Init() tea.Cmd {
	if m.state == stateGenerating {
		return tea.Batch(m.spinner.Tick, m.generateCmd())
	}
	return m.input.Init()
}

// generateCmd runs the pipeline off the update loop.
func (m Model) generateCmd() tea.Cmd {
	gen, ctx, req := m.gen, m.ctx, m.req
	return func() tea.Msg {
		res, err := gen.Generate(ctx, req)
		return quizReadyMsg{result: res, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case quizReadyMsg:
		return m.handleQuizReady(msg)

	case spinner.TickMsg:
		if m.state != stateGenerating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	if m.state == stateInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleQuizReady(msg quizReadyMsg) (tea.Model, tea.Cmd) {
	m.result = msg.result
	m.err = msg.err
	m.index = 0
	m.answers = nil

	if !msg.result.OK() || len(msg.result.Questions) == 0 {
		m.state = stateFailed
		return m, nil
	}
	m.state = stateAnswering
	m.choice = m.choiceFor(0)
	return m, nil
}

func (m Model) choiceFor(i int) components.MultiChoice {
	q := m.result.Questions[i]
	return components.NewMultiChoice(
		fmt.Sprintf("%d. %s", i+1, q.Question),
		q.Options,
		q.CorrectIndex(),
	)
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch m.state {
	case stateInput:
		if key == "enter" {
			text := m.input.Passage()
			if text == "" {
				return m, nil
			}
			m.req.Source = quizgen.Source{Text: text}
			return m.startGeneration()
		}
		if key == "esc" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case stateGenerating:
		return m, nil

	case stateAnswering:
		if !m.choice.Submitted {
			var cmd tea.Cmd
			m.choice, cmd = m.choice.Update(msg)
			if m.choice.Submitted {
				m.answers = append(m.answers, m.choice.ChosenLabel())
			}
			return m, cmd
		}
		if key == "enter" || key == "space" || key == " " {
			if m.index+1 >= len(m.result.Questions) {
				m.state = stateSummary
				return m, nil
			}
			m.index++
			m.choice = m.choiceFor(m.index)
		}
		return m, nil

	case stateFailed, stateSummary:
		switch key {
		case "r":
			return m.startGeneration()
		case "n":
			if len(m.req.Source.Image) > 0 {
				return m, nil
			}
			m.input.Reset()
			m.state = stateInput
			return m, m.input.Init()
		case "q", "esc", "enter":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) startGeneration() (tea.Model, tea.Cmd) {
	m.state = stateGenerating
	return m, tea.Batch(m.spinner.Tick, m.generateCmd())
}

// Score returns the number of correct answers given so far.
func (m Model) Score() int {
	return quizgen.Score(m.result.QuizDraft, m.answers)
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	header := layout.RenderHeader(m.title(), m.status(), m.width)
	footer := layout.RenderFooter(m.hints(), m.width)
	content := lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(m.body())

	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

func (m Model) title() string {
	switch m.state {
	case stateInput:
		return "New quiz"
	case stateGenerating:
		return "Generating"
	case stateAnswering:
		return fmt.Sprintf("Question %d of %d", m.index+1, len(m.result.Questions))
	case stateFailed:
		return "Generation failed"
	default:
		return "Summary"
	}
}

func (m Model) status() string {
	switch m.state {
	case stateInput:
		return fmt.Sprintf("%s  %d words", m.label, m.input.Words())
	case stateAnswering, stateSummary:
		return fmt.Sprintf("%s  %d/%d", m.label, m.Score(), len(m.result.Questions))
	}
	return m.label
}

func (m Model) hints() []layout.KeyHint {
	switch m.state {
	case stateInput:
		return []layout.KeyHint{{Key: "Enter", Description: "Generate"}, {Key: "Esc", Description: "Quit"}}
	case stateAnswering:
		if m.choice.Submitted {
			return []layout.KeyHint{{Key: "Enter", Description: "Next"}, {Key: "Ctrl+C", Description: "Quit"}}
		}
		return []layout.KeyHint{{Key: "↑↓", Description: "Navigate"}, {Key: "A-G", Description: "Answer"}, {Key: "Enter", Description: "Select"}}
	case stateFailed, stateSummary:
		hints := []layout.KeyHint{{Key: "r", Description: "Regenerate"}}
		if len(m.req.Source.Image) == 0 {
			hints = append(hints, layout.KeyHint{Key: "n", Description: "New passage"})
		}
		return append(hints, layout.KeyHint{Key: "q", Description: "Quit"})
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
}

func (m Model) body() string {
	switch m.state {
	case stateInput:
		return theme.Body.Render("Enter the passage to build a quiz from:") + "\n\n" + m.input.View()

	case stateGenerating:
		return m.spinner.View() + " " + theme.Hint.Render("Asking the model for questions...")

	case stateAnswering:
		var b strings.Builder
		bar := components.NewProgressBar("", m.index, len(m.result.Questions), m.width-4)
		b.WriteString(bar.View())
		b.WriteString("\n\n")
		b.WriteString(m.choice.View())
		if m.choice.Submitted {
			b.WriteString("\n")
			b.WriteString(m.feedback())
		}
		return b.String()

	case stateFailed:
		q := m.result.Questions
		var b strings.Builder
		b.WriteString(theme.Incorrect.Render(firstQuestion(q)))
		b.WriteString("\n\n")
		if m.result.Fault != quizgen.FaultNone {
			b.WriteString(theme.Hint.Render(fmt.Sprintf("fault: %s, repair attempts: %d", m.result.Fault, m.result.RepairAttempts)))
			b.WriteString("\n\n")
		}
		if len(q) > 0 {
			b.WriteString(theme.Body.Render(q[0].Explanation))
		}
		return b.String()

	default:
		total := len(m.result.Questions)
		var b strings.Builder
		b.WriteString(theme.Title.Render(fmt.Sprintf("You scored %d out of %d", m.Score(), total)))
		b.WriteString("\n\n")
		if m.result.RepairAttempts > 0 {
			b.WriteString(theme.Hint.Render(fmt.Sprintf("The model needed %d repair attempt(s) to produce valid output.", m.result.RepairAttempts)))
			b.WriteString("\n")
		}
		return b.String()
	}
}

func (m Model) feedback() string {
	q := m.result.Questions[m.index]
	var line string
	if m.choice.IsCorrect() {
		line = theme.Correct.Render("✓ Correct!")
	} else {
		line = theme.Incorrect.Render(fmt.Sprintf("✗ Wrong. Answer: %s) %s", strings.ToUpper(q.CorrectAnswer), q.CorrectOption()))
	}
	if q.Explanation != "" {
		line += "\n" + theme.Hint.Render(q.Explanation)
	}
	return line
}

func firstQuestion(qs []quizgen.QuestionDraft) string {
	if len(qs) == 0 {
		return quizgen.DiagnosticQuestion
	}
	return qs[0].Question
}

// Run starts the preview program.
func Run(ctx context.Context, gen Generator, req quizgen.GenerationRequest, label string) error {
	p := tea.NewProgram(New(ctx, gen, req, label), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
