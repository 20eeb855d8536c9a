package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents an invalid configuration field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// Validate checks the configuration and returns every problem found
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Workers < 1 {
		errs = append(errs, &ValidationError{Field: "workers", Message: fmt.Sprintf("must be at least 1, got %d", cfg.Workers)})
	}
	if cfg.Indent == "" || strings.Trim(cfg.Indent, " \t") != "" {
		errs = append(errs, &ValidationError{Field: "indent", Message: "must contain only spaces or tabs"})
	}
	if d := cfg.Watch.Debounce; d != nil && d.Duration < 0 {
		errs = append(errs, &ValidationError{Field: "watch.debounce", Message: "must not be negative"})
	}
	if cfg.Log.Verbosity < 0 {
		errs = append(errs, &ValidationError{Field: "log.verbosity", Message: "must not be negative"})
	}
	if cfg.Input != "" && cfg.Output != "" && cfg.Input == cfg.Output {
		errs = append(errs, &ValidationError{Field: "output", Message: "must differ from input"})
	}

	return errors.Join(errs...)
}
