package document

import "fmt"

// IOError reports a failure to read the input or write an output file.
// It aborts the whole run.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ExtractError reports a failing external text extraction tool
type ExtractError struct {
	Tool string
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}
