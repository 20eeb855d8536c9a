package exam

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/examjson/parser/pkg/document"
	"github.com/examjson/parser/pkg/models"
)

// lineBreak matches CRLF, CR and LF line endings
var lineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// LineError records a line that was skipped during conversion
type LineError struct {
	Line int    // 1-based line number in the input
	Text string // Line content as read, without the line break
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Result holds the outcome of converting a document
type Result struct {
	Questions []models.Question // Parsed questions in input order
	Failures  []*LineError      // Skipped lines in input order
	Lines     int               // Non-blank lines that were attempted
}

// Parsed returns the number of lines that became questions
func (r *Result) Parsed() int {
	return len(r.Questions)
}

// Failed returns the number of skipped lines
func (r *Result) Failed() int {
	return len(r.Failures)
}

// LineFailures converts the failures for reporting
func (r *Result) LineFailures() []models.LineFailure {
	failures := make([]models.LineFailure, 0, len(r.Failures))
	for _, f := range r.Failures {
		failures = append(failures, models.LineFailure{
			Line:  f.Line,
			Text:  f.Text,
			Cause: f.Err.Error(),
			Fault: errors.Is(f.Err, ErrFault),
		})
	}
	return failures
}

// Converter turns whole documents into question lists
type Converter struct {
	log       commonlog.Logger
	workers   int
	parseLine func(string) (models.Question, error)
	onFailure func(*LineError)
}

// Option configures a Converter
type Option func(*Converter)

// WithWorkers parses lines on up to n goroutines. Output order is kept.
func WithWorkers(n int) Option {
	return func(c *Converter) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithFailureHandler is called for each skipped line in input order
func WithFailureHandler(fn func(*LineError)) Option {
	return func(c *Converter) {
		c.onFailure = fn
	}
}

// WithLineParser replaces the line grammar
func WithLineParser(fn func(string) (models.Question, error)) Option {
	return func(c *Converter) {
		c.parseLine = fn
	}
}

// NewConverter creates a new converter
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		log:       commonlog.GetLogger("examjson.exam"),
		workers:   1,
		parseLine: ParseLine,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert reads the file at path and parses every line
func (c *Converter) Convert(ctx context.Context, path string) (*Result, error) {
	text, err := document.ReadSource(ctx, path)
	if err != nil {
		return nil, err
	}

	c.log.Infof("parsing %s", path)
	return c.ParseText(ctx, text)
}

type sourceLine struct {
	number int
	raw    string
	text   string
}

// ParseText parses every non-blank line of text. Lines that fail are
// recorded and skipped; the only error returned is context cancellation.
func (c *Converter) ParseText(ctx context.Context, text string) (*Result, error) {
	var lines []sourceLine
	for i, raw := range lineBreak.Split(text, -1) {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		lines = append(lines, sourceLine{number: i + 1, raw: raw, text: trimmed})
	}

	questions := make([]*models.Question, len(lines))
	failures := make([]*LineError, len(lines))

	parse := func(i int) {
		q, err := c.safeParse(lines[i].text)
		if err != nil {
			failures[i] = &LineError{Line: lines[i].number, Text: lines[i].raw, Err: err}
			return
		}
		questions[i] = &q
	}

	if c.workers > 1 && len(lines) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.workers)
		for i := range lines {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				parse(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range lines {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			parse(i)
		}
	}

	result := &Result{
		Questions: []models.Question{},
		Lines:     len(lines),
	}
	for i := range lines {
		if questions[i] != nil {
			result.Questions = append(result.Questions, *questions[i])
			continue
		}
		f := failures[i]
		c.log.Debugf("skipping line %d: %v", f.Line, f.Err)
		result.Failures = append(result.Failures, f)
		if c.onFailure != nil {
			c.onFailure(f)
		}
	}

	c.log.Infof("parsed %d of %d lines", result.Parsed(), result.Lines)
	return result, nil
}

// safeParse keeps a panicking parse from aborting the batch
func (c *Converter) safeParse(line string) (q models.Question, err error) {
	defer func() {
		if r := recover(); r != nil {
			q = models.Question{}
			err = &FaultError{Reason: fmt.Sprint(r)}
		}
	}()
	return c.parseLine(line)
}
