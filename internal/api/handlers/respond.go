package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/arjun/vidtube-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// Envelope is the uniform response shape: every endpoint, success or failure,
// returns {statusCode, data, message, success}.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func respond(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < 400,
	})
}

// respondError maps a tagged AppError onto the envelope; anything untagged is
// an internal error and its detail stays in the logs.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		}
		respond(w, appErr.Status, nil, appErr.Message)
		return
	}

	log.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
	respond(w, http.StatusInternalServerError, nil, "internal server error")
}
