package staticdocs

import "fmt"

// LoadError reports a static document that is missing, empty or corrupt.
// It is fatal: a Library is never built from partial input.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("static document %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("static document %s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
