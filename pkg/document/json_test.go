package document

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/examjson/parser/pkg/models"
)

func sampleQuestion() models.Question {
	opts := models.NewOptions()
	opts.Set("A", "藍色")
	opts.Set("B", "紅色 & <粉紅>")
	return models.Question{
		Number:        1,
		CorrectAnswer: "A",
		Text:          "天空是什麼顏色",
		Options:       opts,
		Reference:     "常識手冊",
	}
}

func TestWriteJSONLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, []models.Question{sampleQuestion()}, DefaultIndent); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	want := `[
  {
    "QuestionNumber": 1,
    "CorrectAnswer": "A",
    "QuestionText": "天空是什麼顏色",
    "Options": {
      "A": "藍色",
      "B": "紅色 & <粉紅>"
    },
    "Reference": "常識手冊"
  }
]
`
	if buf.String() != want {
		t.Errorf("WriteJSON() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil, DefaultIndent); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("WriteJSON(nil) = %q, want []", got)
	}
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	want := []models.Question{sampleQuestion()}

	if err := SaveJSON(path, want, DefaultIndent); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	got, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if len(got) != 1 || !got[0].Equal(want[0]) {
		t.Errorf("LoadJSON() = %+v, want %+v", got, want)
	}
	if letters := got[0].Options.Letters(); strings.Join(letters, "") != "AB" {
		t.Errorf("option order = %v, want [A B]", letters)
	}
}

func TestSaveJSONMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.json")
	err := SaveJSON(path, nil, DefaultIndent)

	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("SaveJSON() error = %v, want *IOError", err)
	}
	if ioErr.Op != "write" {
		t.Errorf("IOError.Op = %q, want write", ioErr.Op)
	}
}

func TestReadSource(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{
			name:    "plain",
			content: []byte("(A)1.x(A)y(出處：z)\n"),
			want:    "(A)1.x(A)y(出處：z)\n",
		},
		{
			name:    "byte order mark",
			content: append([]byte{0xEF, 0xBB, 0xBF}, "line"...),
			want:    "line",
		},
		{
			name:    "invalid utf-8",
			content: []byte{'a', 0xff, 'b'},
			want:    "a\ufffdb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".txt")
			if err := os.WriteFile(path, tt.content, 0644); err != nil {
				t.Fatal(err)
			}
			got, err := ReadSource(context.Background(), path)
			if err != nil {
				t.Fatalf("ReadSource() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadSource() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadSourceMissing(t *testing.T) {
	_, err := ReadSource(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("ReadSource() error = %v, want *IOError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadSource() error should wrap os.ErrNotExist, got %v", err)
	}
}
