package security

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures which services to mount in the security module.
// Each service is optional and will only be mounted if provided.
type RouterOptions struct {
	TwoFactor Mountable
}

// Router creates the security module router.
//
// Example:
//
//	tf := security.NewTwoFactorHandler(svc, resolveAccount)
//
//	r := chi.NewRouter()
//	r.Mount("/", security.Router(security.RouterOptions{TwoFactor: tf}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	if opts.TwoFactor != nil {
		r.Mount("/two-factor", opts.TwoFactor.Handle())
	}

	return r
}
