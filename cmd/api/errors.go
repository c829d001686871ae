package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/assistant"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/auth"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/notes"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/transcript"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/webhook"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/youtube"
)

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, youtube.ErrInvalidReference),
		errors.Is(err, webhook.ErrInvalidURL),
		errors.Is(err, auth.ErrMissingCredentials),
		errors.Is(err, assistant.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrPendingApproval):
		return http.StatusForbidden
	case notes.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, transcript.ErrTranscriptUnavailable),
		errors.Is(err, assistant.ErrNoTranscript),
		errors.Is(err, assistant.ErrEmptyTranscript):
		return http.StatusUnprocessableEntity
	case errors.Is(err, assistant.ErrCompletion),
		errors.Is(err, assistant.ErrEmptyResponse):
		return http.StatusBadGateway
	case errors.Is(err, notes.ErrExportUnavailable),
		errors.Is(err, notes.ErrAsyncDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Internal errors are logged
// and hidden from the client.
func (api *API) respondError(c *gin.Context, err error) {
	status := statusFor(err)

	message := err.Error()
	switch {
	case status == http.StatusInternalServerError:
		api.logger.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		message = "Internal server error"
	case status == http.StatusNotFound:
		message = "Not found"
	case errors.Is(err, auth.ErrPendingApproval):
		message = "Account pending approval"
	case errors.Is(err, auth.ErrInvalidCredentials):
		message = "Invalid credentials"
	}

	c.JSON(status, gin.H{"error": message})
}
