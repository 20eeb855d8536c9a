package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/examjson/parser/pkg/document"
	"github.com/examjson/parser/pkg/exam"
	"github.com/examjson/parser/pkg/models"
)

func convert(t *testing.T, text string) *exam.Result {
	t.Helper()
	result, err := exam.NewConverter().ParseText(context.Background(), text)
	if err != nil {
		t.Fatalf("ParseText() error = %v", err)
	}
	return result
}

func TestNewAndFinish(t *testing.T) {
	r := New("in.txt", "out.json")
	if _, err := uuid.Parse(r.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", r.RunID, err)
	}

	Finish(r, convert(t, "(A)1.題目(A)甲(出處：X)\nhello world\n\n"))

	if r.Lines != 2 || r.Parsed != 1 || r.Failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", r.Lines, r.Parsed, r.Failed)
	}
	if len(r.Failures) != 1 || r.Failures[0].Line != 2 || r.Failures[0].Text != "hello world" {
		t.Errorf("Failures = %+v", r.Failures)
	}
	if r.Failures[0].Fault {
		t.Errorf("a mismatch should not be marked as a fault")
	}
}

func TestSaveJSON(t *testing.T) {
	r := New("in.txt", "out.json")
	Finish(r, convert(t, "(A)1.題目(A)甲(出處：X)"))

	path := filepath.Join(t.TempDir(), "report.json")
	if err := SaveJSON(path, r); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded models.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.RunID != r.RunID || decoded.Parsed != 1 || decoded.Failures == nil {
		t.Errorf("decoded report = %+v", decoded)
	}
}

func TestSaveJSONMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "report.json")
	err := SaveJSON(path, New("in.txt", "out.json"))

	var ioErr *document.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("SaveJSON() error = %v, want *document.IOError", err)
	}
	if ioErr.Path != path {
		t.Errorf("IOError.Path = %q, want %q", ioErr.Path, path)
	}
}

func TestSaveJSONReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := SaveJSON(path, New("in.txt", "out.json")); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Errorf("report is not JSON:\n%s", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the report", len(entries))
	}
}

func TestConsole(t *testing.T) {
	var out, errOut bytes.Buffer
	c := NewConsole(&out, &errOut)

	result := convert(t, "(A)1.題目(A)甲(出處：X)\nhello world")
	for _, f := range result.Failures {
		c.LineFailed(f)
	}

	r := New("in.txt", "out.json")
	Finish(r, result)
	c.Summary(r)

	if !strings.Contains(errOut.String(), "parse error at line 2: hello world") {
		t.Errorf("failure output = %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "cause: "+exam.ErrNoMatch.Error()) {
		t.Errorf("failure output should include the cause, got %q", errOut.String())
	}
	for _, want := range []string{"Successfully parsed 1 questions", "lines: 2, parsed: 1, failed: 1", "out.json"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary %q should contain %q", out.String(), want)
		}
	}
}

func TestConsoleQuestion(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &bytes.Buffer{})

	q, err := exam.ParseLine("(B)2.題目(A)甲(B)乙(出處：法規)")
	if err != nil {
		t.Fatal(err)
	}
	c.Question(q)

	want := "Q2 [B]: 題目\n  (A) 甲\n  (B) 乙 [CORRECT]\n  source: 法規\n"
	if out.String() != want {
		t.Errorf("Question() = %q, want %q", out.String(), want)
	}
}
