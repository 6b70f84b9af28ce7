package binder

import "errors"

var (
	// ErrBinderNotApplicable tells handler.Wrap to skip this binder for the request.
	ErrBinderNotApplicable  = errors.New("binder not applicable")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMissingContentType   = errors.New("missing content type")
	ErrInvalidJSON          = errors.New("invalid JSON")
	ErrInvalidPath          = errors.New("invalid path parameter")
)
