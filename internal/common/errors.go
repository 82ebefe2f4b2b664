// Package common provides shared error types and logging setup.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Typed errors below match these via errors.Is.
var (
	// ErrLoad is fatal to a session: there is no fallback dataset.
	ErrLoad = errors.New("load failed")

	// ErrConfig covers malformed filter keys, unknown columns and bad settings.
	ErrConfig = errors.New("invalid configuration")
)

// LoadError reports why a voyage dataset could not be read.
type LoadError struct {
	Err     error
	Path    string
	Sheet   string
	Missing []string
	Row     int
	Column  string
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("load ")
	b.WriteString(e.Path)
	if e.Sheet != "" {
		fmt.Fprintf(&b, " (sheet %q)", e.Sheet)
	}
	switch {
	case len(e.Missing) > 0:
		fmt.Fprintf(&b, ": missing columns %s", strings.Join(quoteAll(e.Missing), ", "))
	case e.Row > 0:
		fmt.Fprintf(&b, ": row %d column %q", e.Row, e.Column)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is makes every LoadError match ErrLoad.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// ConfigError reports a bad key or value supplied by a caller.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

// Is makes every ConfigError match ErrConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError creates a ConfigError with a formatted reason.
func NewConfigError(key, format string, args ...any) error {
	return &ConfigError{Key: key, Reason: fmt.Sprintf(format, args...)}
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
