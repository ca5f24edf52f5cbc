package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the single error shape business logic surfaces to the transport
// layer. Every failure carries an HTTP status and a human-readable message;
// handlers map it onto the response envelope with errors.As.
type AppError struct {
	Status  int    `json:"statusCode"`
	Message string `json:"message"`
	err     error
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.err }

// Is matches on status and message so sentinel AppErrors work with errors.Is.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Status == t.Status && e.Message == t.Message
}

func ErrValidation(msg string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: msg}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Status: http.StatusConflict, Message: msg}
}

func ErrNotFound(msg string) *AppError {
	return &AppError{Status: http.StatusNotFound, Message: msg}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Status: http.StatusUnauthorized, Message: msg}
}

// ErrUnauthenticated covers a missing/invalid access token at the gate; it
// shares the 401 status with ErrUnauthorized but is kept distinct so the gate
// and the session manager read differently in logs.
func ErrUnauthenticated(msg string) *AppError {
	return &AppError{Status: http.StatusUnauthorized, Message: msg}
}

func ErrUpstream(msg string, err error) *AppError {
	return &AppError{Status: http.StatusBadGateway, Message: msg, err: err}
}

func ErrInternal(msg string, err error) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Message: msg, err: err}
}
