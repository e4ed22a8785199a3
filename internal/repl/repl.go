// Package repl provides an interactive BubbleTea interface that
// tokenizes each line typed against a loaded dictionary.
package repl

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stellanomia/vibrato-rkyv/dictionary"
	"github.com/stellanomia/vibrato-rkyv/tokenizer"
)

var (
	colorAccent = lipgloss.Color("#7C6AF7")
	colorMuted  = lipgloss.Color("#888888")
	colorText   = lipgloss.Color("#DDDDDD")
	colorCost   = lipgloss.Color("#5ECEF5")
	colorErr    = lipgloss.Color("#FF6B6B")

	sAccent = lipgloss.NewStyle().Foreground(colorAccent)
	sMuted  = lipgloss.NewStyle().Foreground(colorMuted)
	sSurf   = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	sCost   = lipgloss.NewStyle().Foreground(colorCost)
	sErr    = lipgloss.NewStyle().Foreground(colorErr)
)

type row struct {
	surface, feature string
	leftID, rightID  uint16
	wordCost         int16
}

// Model is the BubbleTea application model: a single-line input, tokenized
// on every keystroke against the bound dictionary.
type Model struct {
	tok   *tokenizer.Tokenizer
	w     *tokenizer.Worker
	input textinput.Model
	rows  []row
	err   error
	width int
}

// New builds a REPL model bound to dict.
func New(dict *dictionary.Dictionary) (Model, error) {
	tok, err := tokenizer.New(dict)
	if err != nil {
		return Model{}, err
	}
	ti := textinput.New()
	ti.Placeholder = "タイプすると形態素解析されます…"
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60
	ti.PromptStyle = sAccent
	ti.Prompt = "❯ "
	return Model{tok: tok, w: tok.NewWorker(), input: ti}, nil
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.retokenize()
	return m, cmd
}

func (m *Model) retokenize() {
	text := m.input.Value()
	if text == "" {
		m.rows = nil
		m.err = nil
		return
	}
	m.w.ResetSentence(text)
	m.w.Tokenize()

	m.rows = m.rows[:0]
	it := m.w.TokenIter()
	for {
		tok, ok := it.Next()
		if !ok {
			break
		}
		m.rows = append(m.rows, row{
			surface:  tok.Surface(),
			feature:  tok.Feature(),
			leftID:   tok.LeftID(),
			rightID:  tok.RightID(),
			wordCost: tok.WordCost(),
		})
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(sAccent.Render("vibrato") + sMuted.Render(" — interactive tokenizer") + "\n\n")
	b.WriteString(m.input.View() + "\n\n")
	if m.err != nil {
		b.WriteString(sErr.Render(m.err.Error()) + "\n")
		return b.String()
	}
	for _, r := range m.rows {
		fmt.Fprintf(&b, "%s  %s  %s\n",
			sSurf.Render(r.surface),
			sCost.Render(fmt.Sprintf("(%d/%d %+d)", r.leftID, r.rightID, r.wordCost)),
			sMuted.Render(r.feature))
	}
	b.WriteString("\n" + sMuted.Render("esc/ctrl+c to quit"))
	return b.String()
}
