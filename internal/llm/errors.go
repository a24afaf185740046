package llm

import "fmt"

// ResponseError reports a provider response that carries no usable text
type ResponseError struct {
	Message string
	// Reason is the provider's block or finish reason, if any.
	Reason string
	// Truncated is set when the output token limit cut the response.
	Truncated bool
}

func (e *ResponseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("llm response: %s (%s)", e.Message, e.Reason)
	}
	return "llm response: " + e.Message
}
