package binder

import "errors"

// Binding errors. Handlers map all of them to 400 Bad Request.
var (
	ErrMissingContentType   = errors.New("request has no content type")
	ErrUnsupportedMediaType = errors.New("content type is not application/json")
	ErrFailedToParseJSON    = errors.New("invalid JSON body")
	ErrFailedToParseQuery   = errors.New("invalid query string")
	ErrFailedToParsePath    = errors.New("invalid path parameter")
)
