// Package httperr maps domain errors onto HTTP status codes.
package httperr

import (
	"errors"
	"net/http"

	"github.com/hirex-ai/hirex/backend/internal/service/assistant"
	chatservice "github.com/hirex-ai/hirex/backend/internal/service/chat"
)

// Status returns the status code a handler should answer err with. Errors
// that are not recognised are model failures and map to 502.
func Status(err error) int {
	switch {
	case errors.Is(err, assistant.ErrEmptyMessage), errors.Is(err, chatservice.ErrSessionRequired):
		return http.StatusBadRequest
	case errors.Is(err, chatservice.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, assistant.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
