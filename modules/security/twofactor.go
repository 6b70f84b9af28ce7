package security

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/twofactor/binder"
	"github.com/dmitrymomot/twofactor/handler"
	"github.com/dmitrymomot/twofactor/svc/twofactor"
)

// TwoFactorService is the part of twofactor.Service the HTTP layer needs.
type TwoFactorService interface {
	Open(ctx context.Context, accountID, accountName string) (*twofactor.EnrollmentView, error)
	Get(ctx context.Context, enrollmentID, accountID string) (*twofactor.EnrollmentView, error)
	Submit(ctx context.Context, enrollmentID, accountID, code string) (*twofactor.EnrollmentView, error)
	ShowRecoveryCodes(ctx context.Context, enrollmentID, accountID string) ([]string, error)
	Confirm(ctx context.Context, enrollmentID, accountID string) (*twofactor.Status, error)
	Abandon(ctx context.Context, enrollmentID, accountID string) error
	Status(ctx context.Context, accountID string) (*twofactor.Status, error)
	VerifyCode(ctx context.Context, accountID, code string) error
	RedeemRecoveryCode(ctx context.Context, accountID, code string) error
	RegenerateRecoveryCodes(ctx context.Context, accountID string) ([]string, error)
	Disable(ctx context.Context, accountID string) error
}

// Account identifies the authenticated caller.
type Account struct {
	ID   string
	Name string // shown in authenticator apps, e.g. the email address
}

// AccountResolver returns the authenticated account for r. Authentication
// itself happens upstream; a resolver error yields 401.
type AccountResolver func(r *http.Request) (Account, error)

type TwoFactorHandler struct {
	svc          TwoFactorService
	resolve      AccountResolver
	errorHandler handler.ErrorHandler[handler.Context]
}

// TwoFactorOption configures a TwoFactorHandler.
type TwoFactorOption func(*TwoFactorHandler)

// WithErrorLogger logs failed requests to log.
func WithErrorLogger(log *slog.Logger) TwoFactorOption {
	return func(h *TwoFactorHandler) {
		h.errorHandler = handler.NewErrorHandler(log)
	}
}

func NewTwoFactorHandler(svc TwoFactorService, resolve AccountResolver, opts ...TwoFactorOption) *TwoFactorHandler {
	h := &TwoFactorHandler{
		svc:          svc,
		resolve:      resolve,
		errorHandler: handler.NewErrorHandler(nil),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TwoFactorHandler) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(h.status, options[noRequest](h)...))
	r.Delete("/", handler.Wrap(h.disable, options[noRequest](h)...))
	r.Post("/verify", handler.Wrap(h.verify, options[codeRequest](h, binder.JSON())...))
	r.Post("/recovery/redeem", handler.Wrap(h.redeem, options[codeRequest](h, binder.JSON())...))
	r.Post("/recovery-codes", handler.Wrap(h.regenerate, options[noRequest](h)...))

	path := binder.Path(chi.URLParam)
	r.Route("/enrollments", func(r chi.Router) {
		r.Post("/", handler.Wrap(h.open, options[noRequest](h)...))
		r.Get("/{id}", handler.Wrap(h.get, options[enrollmentRequest](h, path)...))
		r.Delete("/{id}", handler.Wrap(h.abandon, options[enrollmentRequest](h, path)...))
		r.Post("/{id}/verify", handler.Wrap(h.submit, options[submitRequest](h, path, binder.JSON())...))
		r.Post("/{id}/recovery-codes", handler.Wrap(h.showRecoveryCodes, options[enrollmentRequest](h, path)...))
		r.Post("/{id}/confirm", handler.Wrap(h.confirm, options[enrollmentRequest](h, path)...))
	})

	return r
}

type noRequest struct{}

type enrollmentRequest struct {
	ID string `path:"id"`
}

type submitRequest struct {
	ID   string `path:"id"`
	Code string `json:"code"`
}

type codeRequest struct {
	Code string `json:"code"`
}

type recoveryCodesResponse struct {
	RecoveryCodes []string `json:"recovery_codes"`
}

func (h *TwoFactorHandler) open(ctx handler.Context, _ noRequest) handler.Response {
	acct, err := h.account(ctx)
	if err != nil {
		return handler.Error(err)
	}
	view, err := h.svc.Open(ctx, acct.ID, acct.Name)
	if err != nil {
		return failure(err)
	}
	return handler.JSON(view, handler.WithJSONStatus(http.StatusCreated))
}

func (h *TwoFactorHandler) get(ctx handler.Context, req enrollmentRequest) handler.Response {
	acct, err := h.account(ctx)
	if err != nil {
		return handler.Error(err)
	}
	view, err := h.svc.Get(ctx, req.ID, acct.ID)
	if err != nil {
		return failure(err)
	}
	return handler.JSON(view)
}

func (h *TwoFactorHandler) submit(ctx handler.Context, req submitRequest) handler.Response {
	acct, err := h.account(ctx)
	if err != nil {
		return handler.Error(err)
	}
	view, err := h.svc.Submit(ctx, req.ID, acct.ID, req.Code)
	if err != nil {
		if view != nil && errors.Is(err, twofactor.ErrInvalidCode) {
			// The user retries against the same secret.
			return handler.JSONError(httpError(err), handler.WithJSONMeta(map[string]any{
				"attempts_left": view.AttemptsLeft,
			}))
		}
		return failure(err)
	}
	return handler.JSON(view)
}

func (h *TwoFactorHandler) showRecoveryCodes(ctx handler.Context, req enrollmentRequest) handler.Response {
	acct, err := h.account(ctx)
	if err != nil {
		return handler.Error(err)
	}
	codes, err := h.svc.ShowRecoveryCodes(ctx, req.ID, acct.ID)
	if err != nil {
		return failure(err)
	}
	return handler.JSON(recoveryCodesResponse{RecoveryCodes: codes}, handler.WithJSONHeader("Cache-Control", "no-store"))
}

func (h *TwoFactorHandler) confirm(ctx handler.Context, req enrollmentRequest) handler.Response {
	acct, err := h.account(ctx)
	if err != nil {
		return handler.Error(err)
	}
	status, err := h.svc.Confirm(ctx, req.ID, acct.ID)
	if err != nil {
		return failure(err)
	}
	return handler.JSON(status)
}

func (h *TwoFactorHandler) abandon(ctx handler.Context, req enrollmentRequest) handler.Response {
	acct, err := h.account(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := h.svc.Abandon(ctx, req.ID, acct.ID); err != nil {
		return failure(err)
	}
	return handler.Empty()
}

func (h *TwoFactorHandler) status(ctx handler.Context, _ noRequest) handler.Response {
	acct, err := h.account(ctx)
	if err != nil {
		return handler.Error(err)
	}
	status, err := h.svc.Status(ctx, acct.ID)
	if err != nil {
		return failure(err)
	}
	return handler.JSON(status)
}

func (h *TwoFactorHandler) verify(ctx handler.Context, req codeRequest) handler.Response {
	acct, err := h.account(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := h.svc.VerifyCode(ctx, acct.ID, req.Code); err != nil {
		return failure(err)
	}
	return handler.Empty()
}

func (h *TwoFactorHandler) redeem(ctx handler.Context, req codeRequest) handler.Response {
	acct, err := h.account(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := h.svc.RedeemRecoveryCode(ctx, acct.ID, req.Code); err != nil {
		return failure(err)
	}
	return handler.Empty()
}

func (h *TwoFactorHandler) regenerate(ctx handler.Context, _ noRequest) handler.Response {
	acct, err := h.account(ctx)
	if err != nil {
		return handler.Error(err)
	}
	codes, err := h.svc.RegenerateRecoveryCodes(ctx, acct.ID)
	if err != nil {
		return failure(err)
	}
	return handler.JSON(recoveryCodesResponse{RecoveryCodes: codes}, handler.WithJSONHeader("Cache-Control", "no-store"))
}

func (h *TwoFactorHandler) disable(ctx handler.Context, _ noRequest) handler.Response {
	acct, err := h.account(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := h.svc.Disable(ctx, acct.ID); err != nil {
		return failure(err)
	}
	return handler.Empty()
}

func (h *TwoFactorHandler) account(ctx handler.Context) (Account, error) {
	acct, err := h.resolve(ctx.Request())
	if err != nil || acct.ID == "" {
		return Account{}, errors.Join(handler.ErrUnauthorized, err)
	}
	return acct, nil
}

func options[R any](h *TwoFactorHandler, binders ...handler.Bind) []handler.WrapOption[handler.Context, R] {
	return []handler.WrapOption[handler.Context, R]{
		handler.WithBinders[handler.Context, R](binders...),
		handler.WithErrorHandler[handler.Context, R](h.errorHandler),
	}
}
