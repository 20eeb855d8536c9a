package prompt

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// pathModel is a single-field bubbletea form that only accepts a valid path
type pathModel struct {
	label   string
	kind    Kind
	input   textinput.Model
	err     error
	path    string
	aborted bool
}

func newPathModel(label string, kind Kind) pathModel {
	input := textinput.New()
	input.Placeholder = "path/to/file"
	input.Prompt = "> "
	input.CharLimit = 4096
	input.Width = 60
	input.Focus()

	return pathModel{label: label, kind: kind, input: input}
}

func (m pathModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pathModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyEnter:
			path, err := ValidatePath(m.input.Value(), m.kind)
			if err != nil {
				m.err = err
				m.input.Reset()
				return m, nil
			}
			m.path = path
			m.err = nil
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m pathModel) View() string {
	if m.path != "" || m.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render(m.label))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v, please try again.", m.err)))
		b.WriteString("\n")
	}
	b.WriteString(hintStyle.Render("enter to confirm, esc to cancel"))
	b.WriteString("\n")
	return b.String()
}

// TeaPrompter asks for paths with an interactive terminal form
type TeaPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewTeaPrompter creates a terminal prompter reading keys from in
func NewTeaPrompter(in io.Reader, out io.Writer) *TeaPrompter {
	return &TeaPrompter{in: in, out: out}
}

// Path runs the form until a valid path is entered or the user cancels
func (p *TeaPrompter) Path(ctx context.Context, label string, kind Kind) (string, error) {
	program := tea.NewProgram(
		newPathModel(label, kind),
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)

	final, err := program.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("run prompt: %w", err)
	}

	m, ok := final.(pathModel)
	if !ok || m.aborted || m.path == "" {
		return "", fmt.Errorf("%w: %s", ErrAborted, label)
	}
	fmt.Fprintf(p.out, "%s: %s\n", label, m.path)
	return m.path, nil
}
