package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/examjson/parser/pkg/document"
	"github.com/examjson/parser/pkg/exam"
	"github.com/examjson/parser/pkg/models"
)

// New starts a report for a conversion run with a fresh run ID
func New(input, output string) *models.Report {
	return &models.Report{
		RunID:     uuid.NewString(),
		Input:     input,
		Output:    output,
		StartedAt: time.Now(),
		Failures:  []models.LineFailure{},
	}
}

// Finish copies the counts of a conversion result into the report
func Finish(r *models.Report, result *exam.Result) {
	r.Duration = time.Since(r.StartedAt)
	r.Lines = result.Lines
	r.Parsed = result.Parsed()
	r.Failed = result.Failed()
	r.Failures = result.LineFailures()
}

// SaveJSON writes the run report to path
func SaveJSON(path string, r *models.Report) error {
	return document.WriteFileAtomic(path, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", document.DefaultIndent)
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return nil
	})
}

// Console prints per-line failures and the run summary
type Console struct {
	out    io.Writer
	errOut io.Writer

	errorStyle   lipgloss.Style
	lineStyle    lipgloss.Style
	successStyle lipgloss.Style
}

// NewConsole creates a console reporter. Styling is enabled only when
// the writers are terminals.
func NewConsole(out, errOut io.Writer) *Console {
	c := &Console{
		out:          out,
		errOut:       errOut,
		errorStyle:   lipgloss.NewStyle(),
		lineStyle:    lipgloss.NewStyle(),
		successStyle: lipgloss.NewStyle(),
	}
	if useStyling(errOut) {
		c.errorStyle = c.errorStyle.Foreground(lipgloss.Color("9")).Bold(true)
		c.lineStyle = c.lineStyle.Foreground(lipgloss.Color("8"))
	}
	if useStyling(out) {
		c.successStyle = c.successStyle.Foreground(lipgloss.Color("10")).Bold(true)
	}
	return c
}

func useStyling(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// LineFailed reports a skipped line with its cause
func (c *Console) LineFailed(f *exam.LineError) {
	fmt.Fprintf(c.errOut, "%s %s\n",
		c.errorStyle.Render(fmt.Sprintf("parse error at line %d:", f.Line)),
		c.lineStyle.Render(f.Text))
	fmt.Fprintf(c.errOut, "  cause: %v\n", f.Err)
}

// Summary prints the aggregate counts of a run
func (c *Console) Summary(r *models.Report) {
	fmt.Fprintln(c.out, c.successStyle.Render(fmt.Sprintf("Successfully parsed %d questions", r.Parsed)))
	fmt.Fprintf(c.out, "  lines: %d, parsed: %d, failed: %d\n", r.Lines, r.Parsed, r.Failed)
	if r.Output != "" {
		fmt.Fprintf(c.out, "JSON written to: %s\n", r.Output)
	}
}

// Question prints a single parsed question for inspection
func (c *Console) Question(q models.Question) {
	fmt.Fprintf(c.out, "Q%d [%s]: %s\n", q.Number, q.CorrectAnswer, q.Text)
	for _, letter := range q.Options.Letters() {
		text, _ := q.Options.Get(letter)
		marker := ""
		if letter == q.CorrectAnswer {
			marker = " [CORRECT]"
		}
		fmt.Fprintf(c.out, "  (%s) %s%s\n", letter, text, marker)
	}
	fmt.Fprintf(c.out, "  source: %s\n", strings.TrimSpace(q.Reference))
}
