package form

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bartongroup/slivka-go/pkg/model"
)

// Error codes attached to ParameterError values produced by local validation.
// Server-side validation reuses the codes sent in the 422 response body.
const (
	CodeRequired = "required"
	CodeInvalid  = "invalid"
	CodeValue    = "value"
	CodeMin      = "min"
	CodeMax      = "max"
	CodeMinLen   = "min_length"
	CodeMaxLen   = "max_length"
	CodeChoice   = "choice"
)

// ParameterError describes one invalid submission field.
type ParameterError struct {
	Parameter string
	Message   string
	Code      string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid value for %q: %s", e.Parameter, e.Message)
}

// SubmissionError aggregates every field error of one submission attempt.
// Validation never stops at the first problem; Errors preserves field order
// so the caller sees all of them at once.
type SubmissionError struct {
	Errors []*ParameterError
}

func (e *SubmissionError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, pe := range e.Errors {
		msgs[i] = pe.Error()
	}
	return "submission failed: " + strings.Join(msgs, ", ")
}

// ParseSubmissionError decodes a 422 response body into a SubmissionError.
// It returns false when the body does not carry the expected error list.
func ParseSubmissionError(body []byte) (*SubmissionError, bool) {
	var wire model.SubmissionErrorBody
	if err := json.Unmarshal(body, &wire); err != nil || len(wire.Errors) == 0 {
		return nil, false
	}
	sub := &SubmissionError{}
	for _, e := range wire.Errors {
		sub.Errors = append(sub.Errors, &ParameterError{
			Parameter: e.Parameter,
			Message:   e.Message,
			Code:      e.ErrorCode,
		})
	}
	return sub, true
}
