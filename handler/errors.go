package handler

import (
	"errors"
	"net/http"
)

// ErrNilResponse indicates a handler returned nil instead of a Response.
var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is an error with a status code and a machine-readable code.
type HTTPError struct {
	Status int
	Code   string
}

func (e HTTPError) Error() string {
	return e.Code
}

func NewHTTPError(status int, code string) HTTPError {
	return HTTPError{Status: status, Code: code}
}

var (
	ErrBadRequest          = HTTPError{Status: http.StatusBadRequest, Code: "bad_request"}
	ErrValidation          = HTTPError{Status: http.StatusBadRequest, Code: "validation_error"}
	ErrUnauthorized        = HTTPError{Status: http.StatusUnauthorized, Code: "unauthorized"}
	ErrForbidden           = HTTPError{Status: http.StatusForbidden, Code: "forbidden"}
	ErrNotFound            = HTTPError{Status: http.StatusNotFound, Code: "not_found"}
	ErrConflict            = HTTPError{Status: http.StatusConflict, Code: "conflict"}
	ErrTooManyRequests     = HTTPError{Status: http.StatusTooManyRequests, Code: "too_many_requests"}
	ErrInternalServerError = HTTPError{Status: http.StatusInternalServerError, Code: "internal_server_error"}
)

// ErrorMapping pairs a domain sentinel with the HTTPError it surfaces as.
type ErrorMapping struct {
	Target error
	HTTP   HTTPError
}

// MapError wraps err with the HTTPError of the first mapping it matches.
// Errors that already carry an HTTPError, or match nothing, are returned as is.
func MapError(err error, mappings ...ErrorMapping) error {
	if err == nil {
		return nil
	}
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return err
	}
	for _, m := range mappings {
		if errors.Is(err, m.Target) {
			return errors.Join(m.HTTP, err)
		}
	}
	return err
}
