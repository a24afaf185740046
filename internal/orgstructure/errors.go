package orgstructure

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by the error-style lookups when nothing matches
var ErrNotFound = errors.New("org unit not found")

// MalformedSourceError reports an org-structure document that cannot be
// turned into a tree. It is fatal: the index cannot be built.
type MalformedSourceError struct {
	Path    string
	Message string
	Cause   error
}

func (e *MalformedSourceError) Error() string {
	where := "org structure"
	if e.Path != "" {
		where = fmt.Sprintf("org structure %s", e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("malformed %s: %s: %v", where, e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed %s: %s", where, e.Message)
}

func (e *MalformedSourceError) Unwrap() error {
	return e.Cause
}

func malformed(format string, args ...interface{}) *MalformedSourceError {
	return &MalformedSourceError{Message: fmt.Sprintf(format, args...)}
}
