package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/resume-match/internal/pipeline"
)

// HTTPStatus returns the status for an error raised before a submission is
// accepted. Input problems surface through StateStatus instead.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, pipeline.ErrBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// StateStatus returns the HTTP status code that reports a finished submission
func StateStatus(st pipeline.State) int {
	if st.Phase != pipeline.PhaseFailed {
		return http.StatusOK
	}
	switch st.Failure {
	case pipeline.FailureValidation:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
