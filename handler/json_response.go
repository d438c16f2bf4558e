package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/subreminder/pkg/validator"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string              `json:"code"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   Envelope
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

type JSONOption func(*jsonResponse)

func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

func WithMessage(msg string) JSONOption {
	return func(r *jsonResponse) {
		r.body.Message = msg
	}
}

// JSON renders a success envelope with v as data.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{
		status: http.StatusOK,
		body:   Envelope{Success: true, Data: v},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError renders a failure envelope. Validation errors become 400 with
// per-field details; HTTPErrors use their status; anything else is a 500
// whose message does not leak the cause.
func JSONError(err error, opts ...JSONOption) Response {
	status, body := errorEnvelope(err)
	r := &jsonResponse{status: status, body: body}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func errorEnvelope(err error) (int, Envelope) {
	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
		return ErrValidation.Status, Envelope{
			Message: "validation failed",
			Error:   &ErrorDetail{Code: ErrValidation.Code, Details: verrs.Map()},
		}
	}

	var httpErr HTTPError
	if !errors.As(err, &httpErr) {
		return ErrInternalServerError.Status, Envelope{
			Message: http.StatusText(http.StatusInternalServerError),
			Error:   &ErrorDetail{Code: ErrInternalServerError.Code},
		}
	}

	msg := http.StatusText(httpErr.Status)
	if cause := errorCause(err, httpErr); cause != "" {
		msg = cause
	}
	return httpErr.Status, Envelope{
		Message: msg,
		Error:   &ErrorDetail{Code: httpErr.Code},
	}
}

// errorCause returns the message of the domain error joined with httpErr.
func errorCause(err error, httpErr HTTPError) string {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return ""
	}
	for _, e := range joined.Unwrap() {
		if e != error(httpErr) {
			return e.Error()
		}
	}
	return ""
}
