package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/examjson/parser/pkg/exam"
	"github.com/examjson/parser/pkg/models"
)

func gatherValues(t *testing.T, m *RunMetrics) map[string]float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	values := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			name := mf.GetName()
			for _, label := range metric.GetLabel() {
				name += "{" + label.GetName() + "=" + label.GetValue() + "}"
			}
			switch {
			case metric.GetCounter() != nil:
				values[name] = metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				values[name] = float64(metric.GetHistogram().GetSampleCount())
			case metric.GetGauge() != nil:
				values[name] = metric.GetGauge().GetValue()
			}
		}
	}
	return values
}

func TestObserve(t *testing.T) {
	c := exam.NewConverter(exam.WithLineParser(func(line string) (models.Question, error) {
		if line == "boom" {
			panic("bad fragment")
		}
		return exam.ParseLine(line)
	}))
	result, err := c.ParseText(context.Background(), "(A)1.題目(A)甲(出處：X)\nhello\nboom\n")
	if err != nil {
		t.Fatal(err)
	}

	m := New()
	m.Observe(result, 10*time.Millisecond)
	values := gatherValues(t, m)

	want := map[string]float64{
		"examjson_lines_total":                        3,
		"examjson_questions_parsed_total":             1,
		"examjson_lines_failed_total{cause=no_match}": 1,
		"examjson_lines_failed_total{cause=fault}":    1,
		"examjson_parse_duration_seconds":             1,
	}
	for name, v := range want {
		if values[name] != v {
			t.Errorf("%s = %v, want %v", name, values[name], v)
		}
	}
	if values["examjson_last_run_timestamp_seconds"] == 0 {
		t.Error("last run timestamp should be set")
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	path := filepath.Join(t.TempDir(), "examjson.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `examjson_lines_failed_total{cause="no_match"} 0`) {
		t.Errorf("textfile missing zero failure counter:\n%s", data)
	}
}
