package custom_errors

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ValidationError collects every problem found in a piece of input so the caller
// can report them all at once.
type ValidationError struct {
	Errors []error `json:"errors"`
}

func NewValidationError(errs ...error) *ValidationError {
	return &ValidationError{Errors: errs}
}

func (c *ValidationError) Add(err error) {
	c.Errors = append(c.Errors, err)
}

func (c *ValidationError) Addf(format string, args ...any) {
	c.Add(errors.Newf(format, args...))
}

func (c *ValidationError) HasError() bool {
	return len(c.Errors) > 0
}

func (c *ValidationError) Messages() []string {
	messages := make([]string, 0, len(c.Errors))
	for _, err := range c.Errors {
		messages = append(messages, err.Error())
	}
	return messages
}

func (c *ValidationError) Error() string {
	if len(c.Errors) == 0 {
		return ""
	}
	return strings.Join(c.Messages(), "; ")
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
