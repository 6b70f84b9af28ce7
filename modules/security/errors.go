package security

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/twofactor/handler"
	"github.com/dmitrymomot/twofactor/pkg/ratelimiter"
	"github.com/dmitrymomot/twofactor/svc/twofactor"
)

var (
	ErrInvalidCode         = handler.NewHTTPError(http.StatusUnprocessableEntity, "invalid_code")
	ErrSubmissionPending   = handler.NewHTTPError(http.StatusConflict, "submission_pending")
	ErrPersistenceConflict = handler.NewHTTPError(http.StatusConflict, "persistence_conflict")
	ErrInvalidState        = handler.NewHTTPError(http.StatusConflict, "invalid_state")
	ErrAlreadyEnabled      = handler.NewHTTPError(http.StatusConflict, "already_enabled")
	ErrNotEnabled          = handler.NewHTTPError(http.StatusConflict, "not_enabled")
	ErrEnrollmentNotFound  = handler.NewHTTPError(http.StatusNotFound, "enrollment_not_found")
	ErrTooManyAttempts     = handler.NewHTTPError(http.StatusTooManyRequests, "too_many_attempts")
	ErrIssuanceFailure     = handler.NewHTTPError(http.StatusInternalServerError, "issuance_failure")
	ErrProvisioningFailure = handler.NewHTTPError(http.StatusInternalServerError, "provisioning_failure")
)

// httpError attaches the HTTP status for a service error. The original error
// stays in the chain for logging.
func httpError(err error) error {
	var mapped handler.HTTPError
	switch {
	case errors.Is(err, twofactor.ErrTooManyAttempts):
		mapped = ErrTooManyAttempts
	case errors.Is(err, twofactor.ErrInvalidCode):
		mapped = ErrInvalidCode
	case errors.Is(err, twofactor.ErrSubmissionPending):
		mapped = ErrSubmissionPending
	case errors.Is(err, twofactor.ErrPersistenceConflict):
		mapped = ErrPersistenceConflict
	case errors.Is(err, twofactor.ErrIssuanceFailure):
		mapped = ErrIssuanceFailure
	case errors.Is(err, twofactor.ErrProvisioningFailure):
		mapped = ErrProvisioningFailure
	case errors.Is(err, twofactor.ErrEnrollmentNotFound):
		mapped = ErrEnrollmentNotFound
	case errors.Is(err, twofactor.ErrInvalidState):
		mapped = ErrInvalidState
	case errors.Is(err, twofactor.ErrAlreadyEnabled):
		mapped = ErrAlreadyEnabled
	case errors.Is(err, twofactor.ErrNotEnabled):
		mapped = ErrNotEnabled
	case errors.Is(err, twofactor.ErrMissingAccountID):
		mapped = handler.ErrUnauthorized
	default:
		return err
	}
	return errors.Join(mapped, err)
}

// failure renders a service error, adding Retry-After when the account's
// bucket is empty.
func failure(err error) handler.Response {
	var limited *ratelimiter.LimitError
	if errors.As(err, &limited) {
		return handler.Error(httpError(err), handler.WithErrorHeader("Retry-After", retryAfter(limited.RetryAfter)))
	}
	return handler.Error(httpError(err))
}

// retryAfter rounds up to whole seconds, at least one.
func retryAfter(d time.Duration) string {
	secs := int64((d + time.Second - 1) / time.Second)
	return strconv.FormatInt(max(secs, 1), 10)
}
