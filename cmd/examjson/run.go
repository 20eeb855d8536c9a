package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/examjson/parser/pkg/config"
	"github.com/examjson/parser/pkg/document"
	"github.com/examjson/parser/pkg/exam"
	"github.com/examjson/parser/pkg/metrics"
	"github.com/examjson/parser/pkg/models"
	"github.com/examjson/parser/pkg/prompt"
	"github.com/examjson/parser/pkg/report"
	"github.com/examjson/parser/pkg/store"
)

// stdoutPath makes the JSON document go to standard output
const stdoutPath = "-"

// job describes one conversion
type job struct {
	input   string
	output  string
	workers int
	indent  string
	sqlite  string
	report  string
	metrics string
}

// jobFlags binds the conversion flags shared by convert and watch
type jobFlags struct {
	output  string
	workers int
	indent  string
	sqlite  string
	report  string
	metrics string
}

func (f *jobFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "path of the JSON document (\"-\" for stdout)")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "number of goroutines parsing lines")
	cmd.Flags().StringVar(&f.indent, "indent", "", "JSON indentation")
	cmd.Flags().StringVar(&f.sqlite, "sqlite", "", "also store the questions in this SQLite database")
	cmd.Flags().StringVar(&f.report, "report", "", "write a JSON run report to this path")
	cmd.Flags().StringVar(&f.metrics, "metrics-textfile", "", "write Prometheus metrics to this textfile")
}

// resolve merges config values with flags that were set explicitly
func (a *app) resolve(cmd *cobra.Command, args []string, f *jobFlags) job {
	j := job{
		input:   a.cfg.Input,
		output:  a.cfg.Output,
		workers: a.cfg.Workers,
		indent:  a.cfg.Indent,
		sqlite:  a.cfg.SQLite,
		report:  a.cfg.Report,
		metrics: a.cfg.MetricsTextfile,
	}
	if len(args) > 0 {
		j.input = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		j.output = f.output
	}
	if flags.Changed("workers") {
		j.workers = f.workers
	}
	if flags.Changed("indent") {
		j.indent = f.indent
	}
	if flags.Changed("sqlite") {
		j.sqlite = f.sqlite
	}
	if flags.Changed("report") {
		j.report = f.report
	}
	if flags.Changed("metrics-textfile") {
		j.metrics = f.metrics
	}
	return j
}

// config returns the settings of j that the config rules apply to
func (j job) config() *config.Config {
	return &config.Config{
		Input:   j.input,
		Output:  j.output,
		Workers: j.workers,
		Indent:  j.indent,
	}
}

// samePath reports whether a and b name the same file, however spelled
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}

	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}

// fillPaths prompts for a missing input path. When the input had to be
// asked for, the output is asked for too; otherwise it defaults to the
// input path with a .json extension.
func fillPaths(ctx context.Context, j *job, p prompt.PathPrompter) error {
	prompted := false
	if j.input == "" {
		path, err := p.Path(ctx, "Question file path", prompt.Input)
		if err != nil {
			return err
		}
		j.input = path
		prompted = true
	}

	if j.output == "" {
		if !prompted {
			j.output = strings.TrimSuffix(j.input, filepath.Ext(j.input)) + ".json"
			return nil
		}
		path, err := p.Path(ctx, "JSON output path", prompt.Output)
		if err != nil {
			return err
		}
		j.output = path
	}
	return nil
}

// run converts the input of j and writes every requested output
func run(ctx context.Context, j job, stdout, stderr io.Writer) (*models.Report, error) {
	if err := config.Validate(j.config()); err != nil {
		return nil, err
	}
	if j.output != stdoutPath && samePath(j.output, j.input) {
		return nil, fmt.Errorf("output %s would overwrite the input %s", j.output, j.input)
	}

	summaryOut := stdout
	if j.output == stdoutPath {
		summaryOut = stderr
	}
	console := report.NewConsole(summaryOut, stderr)

	r := report.New(j.input, j.output)
	converter := exam.NewConverter(
		exam.WithWorkers(j.workers),
		exam.WithFailureHandler(console.LineFailed),
	)

	result, err := converter.Convert(ctx, j.input)
	if err != nil {
		return nil, err
	}
	report.Finish(r, result)

	if j.output == stdoutPath {
		r.Output = ""
		if err := document.WriteJSON(stdout, result.Questions, j.indent); err != nil {
			return nil, err
		}
	} else if err := document.SaveJSON(j.output, result.Questions, j.indent); err != nil {
		return nil, err
	}

	if j.sqlite != "" {
		if err := saveToStore(ctx, j.sqlite, r.RunID, j.input, result.Questions); err != nil {
			return nil, err
		}
	}

	if j.report != "" {
		if err := report.SaveJSON(j.report, r); err != nil {
			return nil, err
		}
	}

	if j.metrics != "" {
		m := metrics.New()
		m.Observe(result, r.Duration)
		if err := m.WriteTextfile(j.metrics); err != nil {
			return nil, err
		}
	}

	console.Summary(r)
	return r, nil
}

func saveToStore(ctx context.Context, path, runID, source string, questions []models.Question) error {
	s, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.SaveRun(ctx, runID, source, questions)
}
