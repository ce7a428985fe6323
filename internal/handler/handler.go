package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"fronteira/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: message})
}

// writeServiceError maps a service error to the right status code: domain
// errors are the client's fault (4xx), everything else is a storage or
// infrastructure failure (5xx).
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status := http.StatusBadRequest
		switch domainErr.Code {
		case model.ErrCodeOrderNotFound, model.ErrCodeDeliveryNotFound, model.ErrCodeDriverNotFound:
			status = http.StatusNotFound
		case model.ErrCodeAlreadyClaimed, model.ErrCodeInvalidTransition:
			status = http.StatusConflict
		}
		writeError(w, status, domainErr.Message, logger)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal server error", logger)
}
