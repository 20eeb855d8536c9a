package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyPath is returned for a blank answer
	ErrEmptyPath = errors.New("path cannot be empty")

	// ErrFileNotFound is returned when the input file does not exist
	ErrFileNotFound = errors.New("file does not exist")

	// ErrDirectoryNotFound is returned when the output directory does not exist
	ErrDirectoryNotFound = errors.New("directory does not exist")

	// ErrAborted is returned when the user gives up answering
	ErrAborted = errors.New("prompt aborted")
)

// Kind selects the validation applied to an answer
type Kind int

const (
	// Input paths must name an existing file
	Input Kind = iota
	// Output paths must live in an existing directory
	Output
)

// PathPrompter obtains validated file paths from the user
type PathPrompter interface {
	Path(ctx context.Context, label string, kind Kind) (string, error)
}

// ValidatePath checks an answer and returns it as an absolute path
func ValidatePath(answer string, kind Kind) (string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", ErrEmptyPath
	}

	path, err := filepath.Abs(answer)
	if err != nil {
		return "", err
	}

	switch kind {
	case Input:
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return "", ErrFileNotFound
		}
	case Output:
		info, err := os.Stat(filepath.Dir(path))
		if err != nil || !info.IsDir() {
			return "", ErrDirectoryNotFound
		}
	}
	return path, nil
}

// LinePrompter asks on a plain writer and reads answers line by line
type LinePrompter struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewLinePrompter creates a prompter over in and out
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{reader: bufio.NewReader(in), out: out}
}

// Path asks until a valid answer is given. End of input aborts.
func (p *LinePrompter) Path(ctx context.Context, label string, kind Kind) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		fmt.Fprintf(p.out, "%s: ", label)
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		eof := err == io.EOF

		path, verr := ValidatePath(strings.TrimRight(line, "\r\n"), kind)
		if verr == nil {
			return path, nil
		}
		if eof {
			fmt.Fprintln(p.out)
			return "", fmt.Errorf("%w: %s", ErrAborted, label)
		}
		fmt.Fprintf(p.out, "Error: %v, please try again.\n", verr)
	}
}
