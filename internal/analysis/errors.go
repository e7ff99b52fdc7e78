package analysis

import (
	"errors"
	"fmt"
)

// Failure messages carried by *Error. Callers tell failures apart by message only.
const (
	MsgNoResponse   = "no response from AI"
	MsgParseFailure = "failed to parse analysis results"
)

// Error is returned when the model answered but no result could be produced
// from the answer: either the payload was empty or it did not parse.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("analysis error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("analysis error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// APICallError represents a failure talking to the model provider
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// IsNoResponse reports whether err is an empty-payload failure
func IsNoResponse(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Message == MsgNoResponse
}

// IsParseFailure reports whether err is a payload parsing failure
func IsParseFailure(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Message == MsgParseFailure
}
