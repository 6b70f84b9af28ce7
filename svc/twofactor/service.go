package twofactor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/ratelimiter"
	"github.com/dmitrymomot/twofactor/pkg/statemachine"
	"github.com/dmitrymomot/twofactor/pkg/totp"
)

// Rate limiter key prefixes, one bucket per account and purpose.
const (
	limitEnrollment = "twofactor:enroll:"
	limitVerify     = "twofactor:verify:"
	limitRecovery   = "twofactor:recovery:"
)

// Verification kinds reported to the Observer.
const (
	kindEnrollment = "enrollment"
	kindLogin      = "login"
)

// Service runs enrollment sessions and post-enrollment checks.
type Service struct {
	storage     Storage
	sessions    SessionStore
	cipher      *totp.Cipher
	provisioner *Provisioner
	verifier    *Verifier
	recovery    *RecoveryIssuer
	limiter     ratelimiter.RateLimiter
	observer    Observer
	log         *slog.Logger
	now         func() time.Time
	newID       func() string

	issuer      string
	skew        int
	secretSize  int
	ttl         time.Duration
	maxAttempts int
	qrSize      int

	workflow *statemachine.Definition[State, Event]
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIssuer sets the issuer shown in authenticator apps.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithVerificationSkew sets how many 30s steps either side are accepted.
func WithVerificationSkew(steps int) Option {
	return func(s *Service) { s.skew = steps }
}

// WithClock replaces time.Now for sessions and code checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEnrollmentTTL sets how long an unfinished session lives.
func WithEnrollmentTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxAttempts caps failed code submissions per session.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithRateLimiter throttles code checks per account. Without it only the
// per-session attempt cap applies.
func WithRateLimiter(l ratelimiter.RateLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithObserver receives outcome counts.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithIDGenerator replaces the enrollment id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithTOTPConfig applies the issuer, skew and secret size from cfg.
func WithTOTPConfig(cfg totp.Config) Option {
	return func(s *Service) {
		WithIssuer(cfg.Issuer)(s)
		if cfg.Skew >= 0 {
			s.skew = cfg.Skew
		}
		if cfg.SecretSize > 0 {
			s.secretSize = cfg.SecretSize
		}
	}
}

// WithConfig applies non-zero Config values.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		WithEnrollmentTTL(cfg.EnrollmentTTL)(s)
		WithMaxAttempts(cfg.MaxAttempts)(s)
		if cfg.QRCodeSize > 0 {
			s.qrSize = cfg.QRCodeSize
		}
	}
}

// NewService wires the enrollment workflow. cipher seals secrets and recovery
// codes at rest.
func NewService(storage Storage, sessions SessionStore, cipher *totp.Cipher, opts ...Option) *Service {
	s := &Service{
		storage:     storage,
		sessions:    sessions,
		cipher:      cipher,
		observer:    noopObserver{},
		log:         logger.Discard(),
		now:         time.Now,
		newID:       uuid.NewString,
		issuer:      "Open Collective",
		skew:        totp.DefaultSkew,
		secretSize:  totp.DefaultSecretSize,
		ttl:         DefaultEnrollmentTTL,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.log = s.log.With(logger.Component("twofactor"))
	s.provisioner = NewProvisioner(s.issuer, WithSecretSize(s.secretSize), WithQRCodeSize(s.qrSize))
	s.verifier = NewVerifier(WithSkew(s.skew), WithVerifierClock(s.now))
	s.recovery = NewRecoveryIssuer(storage)
	s.workflow = s.newWorkflow()
	return s
}

// newWorkflow builds the enrollment transition table. Accepting a code
// generates the recovery code set; failing to do so aborts the transition.
func (s *Service) newWorkflow() *statemachine.Definition[State, Event] {
	hasAttemptsLeft := func(_ context.Context, _ State, _ Event, data any) bool {
		e, ok := data.(*Enrollment)
		return ok && e.FailedAttempts < s.maxAttempts
	}

	return statemachine.MustDefinition(StateIdle,
		statemachine.WithTransition[State, Event](StateIdle, StateSecretDisplayed, EventOpen),
		statemachine.WithTransition(StateSecretDisplayed, StateCodeSubmitted, EventSubmit,
			statemachine.WithGuard[State, Event](hasAttemptsLeft)),
		statemachine.WithTransition[State, Event](StateCodeSubmitted, StateSecretDisplayed, EventReject),
		statemachine.WithTransition(StateCodeSubmitted, StateCodeAccepted, EventAccept,
			statemachine.WithAction[State, Event](s.issueRecoveryCodes)),
		statemachine.WithTransition[State, Event](StateCodeSubmitted, StateFailed, EventFail),
		statemachine.WithTransition[State, Event](StateCodeAccepted, StateRecoveryCodesDisplayed, EventDisplayCodes),
		statemachine.WithTransition[State, Event](StateRecoveryCodesDisplayed, StateConfirmed, EventConfirm),
		statemachine.WithTransition[State, Event](StateRecoveryCodesDisplayed, StateFailed, EventFail),
		statemachine.WithTransition[State, Event](StateSecretDisplayed, StateAbandoned, EventAbandon),
		statemachine.WithTransition[State, Event](StateCodeSubmitted, StateAbandoned, EventAbandon),
		statemachine.WithTransition[State, Event](StateCodeAccepted, StateAbandoned, EventAbandon),
		statemachine.WithTransition[State, Event](StateRecoveryCodesDisplayed, StateAbandoned, EventAbandon),
	)
}

func (s *Service) issueRecoveryCodes(_ context.Context, _, _ State, _ Event, data any) error {
	e, ok := data.(*Enrollment)
	if !ok {
		return ErrIssuanceFailure
	}
	codes, hashes, err := s.recovery.Generate()
	if err != nil {
		return err
	}
	sealed, err := s.cipher.Encrypt(strings.Join(codes, "\n"), e.AccountID)
	if err != nil {
		return errors.Join(ErrIssuanceFailure, err)
	}
	e.SealedRecoveryCodes = sealed
	e.RecoveryCodeHashes = hashes
	return nil
}

// fire moves e along event. Unknown or guarded transitions become ErrInvalidState.
func (s *Service) fire(ctx context.Context, e *Enrollment, event Event) error {
	next, err := s.workflow.Next(ctx, e.State, event, e)
	if err != nil {
		if statemachine.IsNoTransitionAvailableError(err) || statemachine.IsTransitionRejectedError(err) {
			return fmt.Errorf("%w: %s on %s", ErrInvalidState, event, e.State)
		}
		return err
	}
	e.State = next
	e.UpdatedAt = s.now()
	return nil
}

// Open starts an enrollment session with a fresh secret.
func (s *Service) Open(ctx context.Context, accountID, accountName string) (*EnrollmentView, error) {
	if accountID == "" {
		return nil, ErrMissingAccountID
	}
	if accountName == "" {
		accountName = accountID
	}

	var version int64
	acct, err := s.storage.GetAccount(ctx, accountID)
	switch {
	case errors.Is(err, ErrAccountNotFound):
	case err != nil:
		return nil, err
	case acct.Enabled:
		return nil, ErrAlreadyEnabled
	default:
		version = acct.Version
	}

	secret, err := s.provisioner.GenerateSecret(accountName)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to provision secret", logger.AccountID(accountID), logger.Error(err))
		return nil, err
	}
	sealed, err := s.cipher.Encrypt(secret.Key, accountID)
	if err != nil {
		return nil, errors.Join(ErrProvisioningFailure, err)
	}

	now := s.now()
	e := &Enrollment{
		ID:             s.newID(),
		AccountID:      accountID,
		AccountName:    accountName,
		State:          StateIdle,
		SealedSecret:   sealed,
		AccountVersion: version,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl),
	}
	if err := s.fire(ctx, e, EventOpen); err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, e, s.ttl); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "two-factor enrollment opened",
		logger.AccountID(accountID),
		logger.EnrollmentID(e.ID),
	)
	return s.view(e, secret), nil
}

// Get returns the current view of a session owned by accountID.
func (s *Service) Get(ctx context.Context, enrollmentID, accountID string) (*EnrollmentView, error) {
	e, err := s.load(ctx, enrollmentID, accountID)
	if err != nil {
		return nil, err
	}
	var secret *Secret
	if e.State == StateSecretDisplayed || e.State == StateCodeSubmitted {
		if secret, err = s.renderSecret(e); err != nil {
			return nil, err
		}
	}
	return s.view(e, secret), nil
}

// Submit verifies code against the session secret. A wrong or malformed code
// returns ErrInvalidCode and leaves the session at secret_displayed with the
// same secret. A correct code moves it to code_accepted with a new recovery
// code set ready to display. A concurrent submission for the same session
// gets ErrSubmissionPending.
func (s *Service) Submit(ctx context.Context, enrollmentID, accountID, code string) (*EnrollmentView, error) {
	e, err := s.load(ctx, enrollmentID, accountID)
	if err != nil {
		return nil, err
	}
	if e.State == StateCodeSubmitted {
		return nil, ErrSubmissionPending
	}
	if err := s.allow(ctx, limitEnrollment, accountID); err != nil {
		s.observer.CodeVerified(kindEnrollment, ResultRateLimited)
		return nil, err
	}
	if err := s.fire(ctx, e, EventSubmit); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, e, s.remainingTTL(e)); err != nil {
		if errors.Is(err, ErrRevisionMismatch) {
			return nil, ErrSubmissionPending
		}
		return nil, err
	}

	// The session is pending now. Every exit below must move it on, so the
	// remaining writes outlive a cancelled request.
	ctx = context.WithoutCancel(ctx)

	secret, err := s.cipher.Decrypt(e.SealedSecret, accountID)
	if err != nil {
		s.discard(ctx, e, ResultIssuanceFailure, err)
		return nil, errors.Join(ErrProvisioningFailure, err)
	}

	if verr := s.verifier.Verify(secret, code); verr != nil {
		return s.rejectCode(ctx, e, verr)
	}

	s.observer.CodeVerified(kindEnrollment, ResultSuccess)
	s.forgive(ctx, limitEnrollment, accountID)
	if err := s.fire(ctx, e, EventAccept); err != nil {
		s.discard(ctx, e, ResultIssuanceFailure, err)
		return nil, errors.Join(ErrIssuanceFailure, err)
	}
	if err := s.sessions.Update(ctx, e, s.remainingTTL(e)); err != nil {
		s.releasePending(ctx, e, err)
		return nil, err
	}

	s.log.InfoContext(ctx, "two-factor code accepted",
		logger.AccountID(accountID),
		logger.EnrollmentID(e.ID),
		logger.State(string(e.State)),
	)
	return s.view(e, nil), nil
}

func (s *Service) rejectCode(ctx context.Context, e *Enrollment, verr error) (*EnrollmentView, error) {
	e.FailedAttempts++
	s.observer.CodeVerified(kindEnrollment, ResultFailure)
	s.log.WarnContext(ctx, "two-factor code rejected",
		logger.AccountID(e.AccountID),
		logger.EnrollmentID(e.ID),
		logger.Reason(failureReason(verr)),
		slog.Int("failed_attempts", e.FailedAttempts),
	)

	if e.FailedAttempts >= s.maxAttempts {
		s.discard(ctx, e, ResultExhausted, verr)
		return nil, fmt.Errorf("%w: %w", ErrTooManyAttempts, verr)
	}

	if err := s.fire(ctx, e, EventReject); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, e, s.remainingTTL(e)); err != nil {
		s.releasePending(ctx, e, err)
		return nil, err
	}

	secret, err := s.renderSecret(e)
	if err != nil {
		return nil, err
	}
	return s.view(e, secret), fmt.Errorf("%w: %w", ErrInvalidCode, verr)
}

// ShowRecoveryCodes returns the plain recovery codes once, after a code was accepted.
func (s *Service) ShowRecoveryCodes(ctx context.Context, enrollmentID, accountID string) ([]string, error) {
	e, err := s.load(ctx, enrollmentID, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.fire(ctx, e, EventDisplayCodes); err != nil {
		return nil, err
	}

	plain, err := s.cipher.Decrypt(e.SealedRecoveryCodes, accountID)
	if err != nil {
		s.discard(ctx, e, ResultIssuanceFailure, err)
		return nil, errors.Join(ErrIssuanceFailure, err)
	}
	if err := s.sessions.Update(ctx, e, s.remainingTTL(e)); err != nil {
		if errors.Is(err, ErrRevisionMismatch) {
			return nil, fmt.Errorf("%w: recovery codes already displayed", ErrInvalidState)
		}
		return nil, err
	}
	return strings.Split(plain, "\n"), nil
}

// Confirm activates two-factor for the account: secret, recovery code hashes
// and the enabled flag are written in one atomic step. On conflict or storage
// failure the session is discarded and enrollment must restart from Open.
// A Confirm racing another one for the same session gets ErrSubmissionPending.
func (s *Service) Confirm(ctx context.Context, enrollmentID, accountID string) (*Status, error) {
	e, err := s.load(ctx, enrollmentID, accountID)
	if err != nil {
		return nil, err
	}
	if e.State == StateConfirmed {
		return nil, ErrSubmissionPending
	}

	// The session is claimed as confirmed before activation; only the
	// request that wins this write reaches storage.
	if err := s.fire(ctx, e, EventConfirm); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, e, s.remainingTTL(e)); err != nil {
		if errors.Is(err, ErrRevisionMismatch) {
			return nil, ErrSubmissionPending
		}
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)

	now := s.now()
	err = s.storage.Activate(ctx, Activation{
		AccountID:          accountID,
		SealedSecret:       e.SealedSecret,
		RecoveryCodeHashes: e.RecoveryCodeHashes,
		ExpectedVersion:    e.AccountVersion,
		At:                 now,
	})
	switch {
	case errors.Is(err, ErrPersistenceConflict):
		s.discard(ctx, e, ResultConflict, err)
		return nil, ErrPersistenceConflict
	case err != nil:
		s.discard(ctx, e, ResultIssuanceFailure, err)
		return nil, errors.Join(ErrIssuanceFailure, err)
	}

	if err := s.sessions.Delete(ctx, e.ID); err != nil {
		s.log.WarnContext(ctx, "failed to delete confirmed enrollment",
			logger.EnrollmentID(e.ID), logger.Error(err))
	}

	s.observer.EnrollmentFinished(ResultConfirmed)
	s.log.InfoContext(ctx, "two-factor enabled",
		logger.AccountID(accountID),
		logger.EnrollmentID(e.ID),
	)
	return &Status{
		Enabled:                true,
		EnabledAt:              &now,
		RecoveryCodesRemaining: len(e.RecoveryCodeHashes),
	}, nil
}

// Abandon discards the session and its provisional secret.
func (s *Service) Abandon(ctx context.Context, enrollmentID, accountID string) error {
	e, err := s.load(ctx, enrollmentID, accountID)
	if err != nil {
		return err
	}
	if err := s.fire(ctx, e, EventAbandon); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, e.ID); err != nil {
		return err
	}
	s.observer.EnrollmentFinished(ResultAbandoned)
	s.log.InfoContext(ctx, "two-factor enrollment abandoned",
		logger.AccountID(accountID),
		logger.EnrollmentID(e.ID),
	)
	return nil
}

// Status reports whether two-factor is enabled for accountID.
func (s *Service) Status(ctx context.Context, accountID string) (*Status, error) {
	acct, err := s.storage.GetAccount(ctx, accountID)
	if errors.Is(err, ErrAccountNotFound) {
		return &Status{}, nil
	}
	if err != nil {
		return nil, err
	}
	st := &Status{Enabled: acct.Enabled, RecoveryCodesRemaining: acct.RecoveryCodesRemaining}
	if acct.Enabled && !acct.EnabledAt.IsZero() {
		at := acct.EnabledAt
		st.EnabledAt = &at
	}
	return st, nil
}

// VerifyCode checks a login-time code against the stored secret.
func (s *Service) VerifyCode(ctx context.Context, accountID, code string) error {
	if err := s.allow(ctx, limitVerify, accountID); err != nil {
		s.observer.CodeVerified(kindLogin, ResultRateLimited)
		return err
	}
	acct, err := s.enabledAccount(ctx, accountID)
	if err != nil {
		return err
	}
	secret, err := s.cipher.Decrypt(acct.SealedSecret, accountID)
	if err != nil {
		s.observer.CodeVerified(kindLogin, ResultFailure)
		s.log.ErrorContext(ctx, "failed to decrypt two-factor secret",
			logger.AccountID(accountID),
			logger.Reason("invalid_secret"),
			logger.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrInvalidCode, ErrVerificationFailed)
	}

	if verr := s.verifier.Verify(secret, code); verr != nil {
		s.observer.CodeVerified(kindLogin, ResultFailure)
		s.log.WarnContext(ctx, "two-factor login code rejected",
			logger.AccountID(accountID),
			logger.Reason(failureReason(verr)),
		)
		return fmt.Errorf("%w: %w", ErrInvalidCode, verr)
	}
	s.observer.CodeVerified(kindLogin, ResultSuccess)
	s.forgive(ctx, limitVerify, accountID)
	return nil
}

// RedeemRecoveryCode consumes one recovery code. Reusing a code fails.
func (s *Service) RedeemRecoveryCode(ctx context.Context, accountID, code string) error {
	if err := s.allow(ctx, limitRecovery, accountID); err != nil {
		s.observer.RecoveryCodeRedeemed(ResultRateLimited)
		return err
	}
	if _, err := s.enabledAccount(ctx, accountID); err != nil {
		return err
	}

	ok, err := s.recovery.Redeem(ctx, accountID, code)
	if err != nil {
		return err
	}
	if !ok {
		s.observer.RecoveryCodeRedeemed(ResultFailure)
		s.log.WarnContext(ctx, "recovery code rejected", logger.AccountID(accountID))
		return ErrInvalidCode
	}
	s.observer.RecoveryCodeRedeemed(ResultSuccess)
	s.forgive(ctx, limitRecovery, accountID)
	s.log.InfoContext(ctx, "recovery code redeemed", logger.AccountID(accountID))
	return nil
}

// RegenerateRecoveryCodes replaces the account's whole code set.
func (s *Service) RegenerateRecoveryCodes(ctx context.Context, accountID string) ([]string, error) {
	codes, err := s.recovery.Issue(ctx, accountID)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "recovery codes regenerated", logger.AccountID(accountID))
	return codes, nil
}

// Disable turns two-factor off, clearing the secret and every recovery code.
func (s *Service) Disable(ctx context.Context, accountID string) error {
	if err := s.storage.Disable(ctx, accountID); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "two-factor disabled", logger.AccountID(accountID))
	return nil
}

func (s *Service) load(ctx context.Context, enrollmentID, accountID string) (*Enrollment, error) {
	if enrollmentID == "" || accountID == "" {
		return nil, ErrEnrollmentNotFound
	}
	e, err := s.sessions.Get(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	// Other accounts' sessions are indistinguishable from missing ones.
	if e.AccountID != accountID {
		return nil, ErrEnrollmentNotFound
	}
	if !s.now().Before(e.ExpiresAt) {
		_ = s.sessions.Delete(ctx, e.ID)
		return nil, ErrEnrollmentNotFound
	}
	return e, nil
}

func (s *Service) enabledAccount(ctx context.Context, accountID string) (*Account, error) {
	acct, err := s.storage.GetAccount(ctx, accountID)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, ErrNotEnabled
	}
	if err != nil {
		return nil, err
	}
	if !acct.Enabled {
		return nil, ErrNotEnabled
	}
	return acct, nil
}

func (s *Service) allow(ctx context.Context, prefix, accountID string) error {
	if s.limiter == nil {
		return nil
	}
	res, err := s.limiter.Allow(ctx, prefix+accountID)
	if err != nil {
		// A limiter outage must not lock users out.
		s.log.ErrorContext(ctx, "rate limiter unavailable", logger.AccountID(accountID), logger.Error(err))
		return nil
	}
	if !res.Allowed() {
		return fmt.Errorf("%w: %w", ErrTooManyAttempts, res.Err())
	}
	return nil
}

// forgive clears the account's bucket after a correct code.
func (s *Service) forgive(ctx context.Context, prefix, accountID string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Reset(ctx, prefix+accountID); err != nil {
		s.log.WarnContext(ctx, "failed to reset rate limit", logger.AccountID(accountID), logger.Error(err))
	}
}

// releasePending moves a session left at code_submitted by a failed write
// back to secret_displayed with the same secret. If that write fails too the
// session is discarded, so it never stays pending until it expires.
func (s *Service) releasePending(ctx context.Context, e *Enrollment, cause error) {
	e.State = StateCodeSubmitted
	e.SealedRecoveryCodes = nil
	e.RecoveryCodeHashes = nil

	err := s.fire(ctx, e, EventReject)
	if err == nil {
		err = s.sessions.Update(ctx, e, s.remainingTTL(e))
	}
	if err != nil {
		s.discard(ctx, e, ResultStoreFailure, errors.Join(cause, err))
		return
	}
	s.log.WarnContext(ctx, "pending submission released",
		logger.AccountID(e.AccountID),
		logger.EnrollmentID(e.ID),
		logger.Error(cause),
	)
}

// discard ends a session that cannot continue.
func (s *Service) discard(ctx context.Context, e *Enrollment, result string, cause error) {
	ctx = context.WithoutCancel(ctx)
	if s.workflow.Can(ctx, e.State, EventFail, e) {
		_ = s.fire(ctx, e, EventFail)
	}
	if err := s.sessions.Delete(ctx, e.ID); err != nil {
		s.log.WarnContext(ctx, "failed to delete enrollment", logger.EnrollmentID(e.ID), logger.Error(err))
	}
	s.observer.EnrollmentFinished(result)
	s.log.WarnContext(ctx, "two-factor enrollment discarded",
		logger.AccountID(e.AccountID),
		logger.EnrollmentID(e.ID),
		logger.Reason(result),
		logger.Error(cause),
	)
}

func (s *Service) renderSecret(e *Enrollment) (*Secret, error) {
	key, err := s.cipher.Decrypt(e.SealedSecret, e.AccountID)
	if err != nil {
		return nil, errors.Join(ErrProvisioningFailure, err)
	}
	return s.provisioner.Render(key, e.AccountName)
}

func (s *Service) remainingTTL(e *Enrollment) time.Duration {
	return max(e.ExpiresAt.Sub(s.now()), time.Second)
}

func (s *Service) view(e *Enrollment, secret *Secret) *EnrollmentView {
	return &EnrollmentView{
		ID:           e.ID,
		State:        e.State,
		Secret:       secret,
		AttemptsLeft: max(s.maxAttempts-e.FailedAttempts, 0),
		ExpiresAt:    e.ExpiresAt,
	}
}
