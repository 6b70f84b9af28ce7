package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError carries a status code and a stable machine-readable key.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string { return e.Key }

// NewHTTPError builds an HTTPError for a domain-specific key.
func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}

var (
	ErrBadRequest          = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrUnauthorized        = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	ErrForbidden           = HTTPError{Code: http.StatusForbidden, Key: "forbidden"}
	ErrNotFound            = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict            = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrUnprocessableEntity = HTTPError{Code: http.StatusUnprocessableEntity, Key: "unprocessable_entity"}
	ErrTooManyRequests     = HTTPError{Code: http.StatusTooManyRequests, Key: "too_many_requests"}
	ErrInternalServerError = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
)

// ValidationError maps field names to messages.
type ValidationError url.Values

func NewValidationError() ValidationError {
	return make(ValidationError)
}

func (e ValidationError) Add(field, message string) {
	url.Values(e).Add(field, message)
}

func (e ValidationError) Has(field string) bool {
	return url.Values(e).Has(field)
}

func (e ValidationError) Empty() bool {
	return len(e) == 0
}

func (e ValidationError) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e))
	for field, msgs := range e {
		if len(msgs) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", field, msgs[0]))
		}
	}
	return "validation error: " + strings.Join(parts, ", ")
}
