package ai

import (
	"errors"

	"github.com/sashabaranov/go-openai"
)

// ErrMalformedQuiz means the model's quiz did not match the question schema.
var ErrMalformedQuiz = errors.New("AI returned a malformed quiz")

// UpstreamError wraps a failure of the completion provider.
type UpstreamError struct {
	Err error
}

// Error returns the provider's own message, which is relayed to clients.
func (e *UpstreamError) Error() string {
	var apiErr *openai.APIError
	if errors.As(e.Err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
