package handler

import (
	"encoding/json"
	"errors"
	"maps"
	"net/http"
)

// JSONResponse is the envelope every JSON endpoint writes.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	header http.Header
	body   JSONResponse
}

func (j *jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	for k, v := range j.header {
		w.Header()[k] = v
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures a JSON response.
type JSONOption func(*jsonResponse)

func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) { r.status = status }
}

func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) { r.body.Meta = meta }
}

// WithJSONHeader sets a response header, e.g. Retry-After.
func WithJSONHeader(key, value string) JSONOption {
	return func(r *jsonResponse) {
		if r.header == nil {
			r.header = make(http.Header)
		}
		r.header.Set(key, value)
	}
}

// JSON responds 200 with v as data.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: JSONResponse{Data: v}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError responds with an error envelope. HTTPError and ValidationError
// choose the status and code; anything else is a 500 with a generic message.
func JSONError(err error, opts ...JSONOption) Response {
	r := &jsonResponse{body: JSONResponse{}}
	r.status, r.body.Error = errorDetail(err)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func errorDetail(err error) (int, *ErrorDetail) {
	var valErr ValidationError
	if errors.As(err, &valErr) {
		d := &ErrorDetail{Code: "validation_error", Message: "validation failed"}
		if len(valErr) > 0 {
			d.Details = make(map[string][]string, len(valErr))
			maps.Copy(d.Details, valErr)
		}
		return http.StatusUnprocessableEntity, d
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, &ErrorDetail{Code: httpErr.Key, Message: http.StatusText(httpErr.Code)}
	}

	return http.StatusInternalServerError, &ErrorDetail{
		Code:    ErrInternalServerError.Key,
		Message: http.StatusText(http.StatusInternalServerError),
	}
}

type emptyResponse struct {
	status int
}

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty responds 204 No Content.
func Empty() Response {
	return emptyResponse{status: http.StatusNoContent}
}

type errorResponse struct {
	err    error
	header http.Header
}

// Render sets the headers and returns err so the route's ErrorHandler
// writes the body.
func (e errorResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	for k, v := range e.header {
		w.Header()[k] = v
	}
	return e.err
}

// ErrorOption configures an error response.
type ErrorOption func(*errorResponse)

// WithErrorHeader sets a header that survives into the error envelope.
func WithErrorHeader(key, value string) ErrorOption {
	return func(r *errorResponse) {
		if r.header == nil {
			r.header = make(http.Header)
		}
		r.header.Set(key, value)
	}
}

// Error hands err to the ErrorHandler configured for the route, so it is
// logged and rendered in one place.
func Error(err error, opts ...ErrorOption) Response {
	r := errorResponse{err: err}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
