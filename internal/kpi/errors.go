package kpi

import (
	"errors"
	"fmt"
)

// ErrUnmatched is returned by the error-style mapper lookup when a
// department maps to no KPI document.
var ErrUnmatched = errors.New("no KPI document matches department")

// SourceError reports a KPI source that could not be read. Parse problems
// inside a readable source never produce an error; they yield an empty
// document with warnings instead.
type SourceError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("kpi source %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("kpi source %s: %s", e.Path, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}
