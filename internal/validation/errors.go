// Package validation gates submissions before any remote analysis is attempted.
package validation

import (
	"fmt"
	"strings"
)

// InputError reports which inputs were too short to analyze
type InputError struct {
	Fields []string
}

func (e *InputError) Error() string {
	if len(e.Fields) == 0 {
		return "validation error: invalid input"
	}
	return fmt.Sprintf("validation error: %s must be longer than %d characters",
		strings.Join(e.Fields, ", "), MinInputLength)
}
