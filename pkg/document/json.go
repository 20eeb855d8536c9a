package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"

	"github.com/examjson/parser/pkg/models"
)

// DefaultIndent is the indentation used for question documents
const DefaultIndent = "  "

// WriteJSON writes questions as an indented JSON array. Non-ASCII and
// HTML characters are written as-is.
func WriteJSON(w io.Writer, questions []models.Question, indent string) error {
	if questions == nil {
		questions = []models.Question{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", indent)
	if err := encoder.Encode(questions); err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	return nil
}

// SaveJSON writes the question document to path
func SaveJSON(path string, questions []models.Question, indent string) error {
	err := WriteFileAtomic(path, func(w io.Writer) error {
		return WriteJSON(w, questions, indent)
	})
	if err != nil {
		return err
	}

	commonlog.GetLogger("examjson.document").Infof("wrote %d questions to %s", len(questions), path)
	return nil
}

// WriteFileAtomic writes a file next to path with write and renames it
// into place, so readers never see a partial file. Failures are returned
// as *IOError.
func WriteFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := write(tmp); err != nil {
		tmp.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// ReadJSON decodes a question document written by WriteJSON
func ReadJSON(r io.Reader) ([]models.Question, error) {
	var questions []models.Question
	if err := json.NewDecoder(r).Decode(&questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return questions, nil
}

// LoadJSON reads the question document at path
func LoadJSON(path string) ([]models.Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	defer f.Close()
	return ReadJSON(f)
}
