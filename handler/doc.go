// Package handler turns typed functions into http.HandlerFunc values.
//
// A HandlerFunc receives a Context and a request struct populated by binders,
// and returns a Response that renders itself:
//
//	type submitRequest struct {
//	    ID   string `path:"id"`
//	    Code string `json:"code"`
//	}
//
//	r.Post("/enrollments/{id}/verify", handler.Wrap(submit,
//	    handler.WithBinders[handler.Context, submitRequest](binder.Path(chi.URLParam), binder.JSON()),
//	    handler.WithErrorHandler[handler.Context, submitRequest](handler.NewErrorHandler(log)),
//	))
//
// Errors returned by binders or rendering go to the ErrorHandler. Handlers
// usually return JSONError for domain failures so the status code and error
// key stay next to the logic that produced them.
package handler
