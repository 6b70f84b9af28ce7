package twofactor

import "time"

// State is an enrollment session state.
type State string

const (
	StateIdle                   State = "idle"
	StateSecretDisplayed        State = "secret_displayed"
	StateCodeSubmitted          State = "code_submitted"
	StateCodeAccepted           State = "code_accepted"
	StateRecoveryCodesDisplayed State = "recovery_codes_displayed"
	StateConfirmed              State = "confirmed"
	StateFailed                 State = "failed"
	StateAbandoned              State = "abandoned"
)

// Event drives enrollment transitions.
type Event string

const (
	EventOpen         Event = "open"
	EventSubmit       Event = "submit"
	EventReject       Event = "reject"
	EventAccept       Event = "accept"
	EventDisplayCodes Event = "display_recovery_codes"
	EventConfirm      Event = "confirm"
	EventFail         Event = "fail"
	EventAbandon      Event = "abandon"
)

// Enrollment results reported to the Observer.
const (
	ResultConfirmed       = "confirmed"
	ResultAbandoned       = "abandoned"
	ResultConflict        = "conflict"
	ResultIssuanceFailure = "issuance_failure"
	ResultStoreFailure    = "store_failure"
	ResultExhausted       = "exhausted"
	ResultSuccess         = "success"
	ResultFailure         = "failure"
	ResultRateLimited     = "rate_limited"
)

// Enrollment is a server-side enrollment session. Secret material is sealed
// with the account id as associated data, so the sealed secret can be stored
// on the account as-is at confirmation.
type Enrollment struct {
	ID                  string    `json:"id"`
	AccountID           string    `json:"account_id"`
	AccountName         string    `json:"account_name"`
	State               State     `json:"state"`
	SealedSecret        []byte    `json:"sealed_secret"`
	SealedRecoveryCodes []byte    `json:"sealed_recovery_codes,omitempty"`
	RecoveryCodeHashes  []string  `json:"recovery_code_hashes,omitempty"`
	FailedAttempts      int       `json:"failed_attempts"`
	AccountVersion      int64     `json:"account_version"`
	Revision            int64     `json:"revision"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	ExpiresAt           time.Time `json:"expires_at"`
}

// Account is the persisted two-factor aggregate for one account.
type Account struct {
	AccountID              string
	SealedSecret           []byte
	Enabled                bool
	Version                int64
	EnabledAt              time.Time
	RecoveryCodesRemaining int
}

// Activation is the single write that turns two-factor on.
type Activation struct {
	AccountID          string
	SealedSecret       []byte
	RecoveryCodeHashes []string
	ExpectedVersion    int64
	At                 time.Time
}

// Secret is a freshly provisioned shared secret in every encoding a client needs.
type Secret struct {
	Key         string `json:"-"`
	ManualEntry string `json:"manual_entry"`
	URI         string `json:"uri"`
	QRCode      string `json:"qr_code"`
}

// EnrollmentView is the client-facing snapshot of a session. Secret is only
// present while the user still needs it to set up the authenticator.
type EnrollmentView struct {
	ID           string    `json:"id"`
	State        State     `json:"state"`
	Secret       *Secret   `json:"secret,omitempty"`
	AttemptsLeft int       `json:"attempts_left"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Status summarizes an account's two-factor configuration.
type Status struct {
	Enabled                bool       `json:"enabled"`
	EnabledAt              *time.Time `json:"enabled_at,omitempty"`
	RecoveryCodesRemaining int        `json:"recovery_codes_remaining"`
}
