package serverutils

import (
	"errors"
	"net/http"
)

// AppError is an error that knows its HTTP status. Services return it and the
// fiber error handler renders it.
type AppError struct {
	Code    int
	Message string
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy of e carrying details.
func (e *AppError) WithDetails(details interface{}) *AppError {
	c := *e
	c.Details = details
	return &c
}

func NewAppError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func NewBadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message)
}

func NewUnauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message)
}

func NewForbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, message)
}

func NewNotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message)
}

func NewConflict(message string) *AppError {
	return NewAppError(http.StatusConflict, message)
}

func NewBadGateway(message string, err error) *AppError {
	return &AppError{Code: http.StatusBadGateway, Message: message, Err: err}
}

// NewInternal hides err from the client; it is only logged.
func NewInternal(err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: "Internal server error", Err: err}
}

// AsAppError extracts an *AppError from err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
