package exam

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/examjson/parser/pkg/models"
)

// CitationMarker introduces the trailing source annotation of a line
const CitationMarker = "出處："

// ws matches the whitespace allowed between fields, including
// ideographic spaces.
const ws = `[\s\p{Z}]*`

var (
	// linePattern captures answer, number, body, option block and reference
	linePattern = regexp.MustCompile(
		`^\(([A-D])\)` + ws +
			`([0-9]+)\.` + ws +
			`([^()]+?)` + ws +
			`(\([A-D]\)[^()]+(?:\([A-D]\)[^()]+)*)` + ws +
			`\(` + regexp.QuoteMeta(CitationMarker) + `([^()]+)\)$`)

	// optionPattern splits an option block into lettered entries. Option
	// text cannot contain parentheses, so each entry ends at the next marker.
	optionPattern = regexp.MustCompile(`\(([A-D])\)([^()]+)`)
)

// ErrNoMatch reports that a line does not follow the question grammar
var ErrNoMatch = errors.New("line does not match question format")

// ErrFault marks an internal failure while parsing a line that did match
var ErrFault = errors.New("unexpected parse fault")

// FaultError carries the detail of an unexpected parse fault
type FaultError struct {
	Reason string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%v: %s", ErrFault, e.Reason)
}

func (e *FaultError) Is(target error) bool {
	return target == ErrFault
}

// ParseLine converts one line into a question. A line that does not follow
// the grammar end to end yields ErrNoMatch and no partial question.
func ParseLine(line string) (models.Question, error) {
	matches := linePattern.FindStringSubmatch(strings.TrimSpace(line))
	if matches == nil {
		return models.Question{}, ErrNoMatch
	}

	number, err := strconv.Atoi(matches[2])
	if err != nil {
		return models.Question{}, &FaultError{Reason: fmt.Sprintf("question number %s: %v", matches[2], errors.Unwrap(err))}
	}

	return models.Question{
		Number:        number,
		CorrectAnswer: matches[1],
		Text:          strings.TrimSpace(matches[3]),
		Options:       parseOptions(matches[4]),
		Reference:     strings.TrimSpace(matches[5]),
	}, nil
}

// parseOptions is the second pass over the captured option block
func parseOptions(block string) models.Options {
	opts := models.NewOptions()
	for _, m := range optionPattern.FindAllStringSubmatch(block, -1) {
		opts.Set(m[1], strings.TrimSpace(m[2]))
	}
	return opts
}

// Format writes a question back in the single-line source convention
func Format(q models.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(%s)%d.%s", q.CorrectAnswer, q.Number, q.Text)
	for _, letter := range q.Options.Letters() {
		text, _ := q.Options.Get(letter)
		fmt.Fprintf(&b, "(%s)%s", letter, text)
	}
	fmt.Fprintf(&b, "(%s%s)", CitationMarker, q.Reference)
	return b.String()
}
