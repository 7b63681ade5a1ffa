package apperror

import (
	"fmt"
	"net/http"
)

// MsgUnauthenticated is returned whenever the bearer credential is missing or invalid
const MsgUnauthenticated = "User not authenticated"

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

// Unauthenticated is surfaced as a 500, matching the sync function contract
// the frontend already handles.
func Unauthenticated() *AppError {
	return New(http.StatusInternalServerError, MsgUnauthenticated, nil)
}

// Persistence wraps a datastore failure that must fail the request
func Persistence(op string, err error) *AppError {
	return New(http.StatusInternalServerError, fmt.Sprintf("%s: %v", op, err), err)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, err.Error(), err)
}
