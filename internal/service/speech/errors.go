package speech

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Error is the only error shape SynthesizeSpeech returns. Message is already
// suitable for display.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// normalizeError flattens any failure into *Error.
func normalizeError(err error) *Error {
	if err == nil {
		return nil
	}
	var speechErr *Error
	if errors.As(err, &speechErr) {
		return speechErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Message: "speech synthesis timed out"}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Message: "speech synthesis canceled"}
	}
	return &Error{Message: err.Error()}
}
