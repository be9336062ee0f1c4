package entities

import "time"

// State is a login attempt state
type State string

const (
	StateNone         State = "none"
	StateAwaitAppID   State = "await_app_id"
	StateAwaitAppHash State = "await_app_hash"
	StateAwaitPhone   State = "await_phone"
	StateAwaitCode    State = "await_code"
	StateAwait2FA     State = "await_2fa"
	StateDone         State = "done"
)

// Active reports whether an attempt in this state holds resources
func (s State) Active() bool {
	return s != StateNone && s != StateDone
}

// InputKind enumerates user inputs and remote outcomes fed to the state machine
type InputKind string

const (
	// user inputs
	InputStart     InputKind = "start"
	InputText      InputKind = "text"
	InputDigit     InputKind = "digit"
	InputBackspace InputKind = "backspace"
	InputClear     InputKind = "clear"
	InputAccept    InputKind = "accept"
	InputPassword  InputKind = "password"
	InputCancel    InputKind = "cancel"

	// remote outcomes
	OutcomeCodeSent        InputKind = "code_sent"
	OutcomeCodeFailed      InputKind = "code_failed"
	OutcomeSignedIn        InputKind = "signed_in"
	OutcomePasswordNeeded  InputKind = "password_needed"
	OutcomeCodeInvalid     InputKind = "code_invalid"
	OutcomeCodeExpired     InputKind = "code_expired"
	OutcomePasswordInvalid InputKind = "password_invalid"
	OutcomeRateLimited     InputKind = "rate_limited"
	OutcomeSignInFailed    InputKind = "sign_in_failed"
	OutcomePromoted        InputKind = "promoted"
	OutcomePromoteFailed   InputKind = "promote_failed"
)

// Input is one event for the state machine
type Input struct {
	Kind InputKind
	// Text carries typed text, the digit, the password or the code hash of code_sent
	Text string
	// Wait is set for rate limited outcomes
	Wait time.Duration
	// Reason describes a failed outcome
	Reason string
}

// EffectKind enumerates side effects requested by the state machine
type EffectKind string

const (
	EffectOpenAndRequestCode EffectKind = "open_and_request_code"
	EffectResendCode         EffectKind = "resend_code"
	EffectSignIn             EffectKind = "sign_in"
	EffectCheckPassword      EffectKind = "check_password"
	EffectPromote            EffectKind = "promote"
	EffectDiscard            EffectKind = "discard"
)

// Effect is a side effect the caller must execute and answer with an outcome
type Effect struct {
	Kind     EffectKind
	Code     string
	Password string
}

// Notice is the last user-facing message of an attempt
type Notice string

const (
	NoticeNone            Notice = ""
	NoticeEnterAppID      Notice = "send your app id"
	NoticeInvalidAppID    Notice = "app id must be a positive number"
	NoticeEnterAppHash    Notice = "send your app hash"
	NoticeInvalidAppHash  Notice = "app hash must not be empty"
	NoticeEnterPhone      Notice = "send your phone number in international format, e.g. +15551234567"
	NoticeInvalidPhone    Notice = "invalid phone number"
	NoticeCodeSent        Notice = "enter the login code"
	NoticeCodeFailed      Notice = "could not send the login code"
	NoticeCodeInvalid     Notice = "invalid code, try again"
	NoticeCodeResent      Notice = "too many invalid codes, a new code was sent"
	NoticeCodeExpired     Notice = "the code expired, a new code was sent"
	NoticeEnterPassword   Notice = "enter your two-step verification password"
	NoticePasswordInvalid Notice = "invalid password, try again"
	NoticeRateLimited     Notice = "too many requests, wait before retrying"
	NoticeSignInFailed    Notice = "sign in failed, try again"
	NoticeLoggedIn        Notice = "logged in"
	NoticePromoteFailed   Notice = "could not save the session, start again"
	NoticeCancelled       Notice = "login cancelled"
)

// MaxCodeLength is the size of the keypad buffer
const MaxCodeLength = 5

// MaxInvalidCodes is the number of invalid codes that triggers a resend
const MaxInvalidCodes = 3

// LoginAttempt is the transient state of one login. It never holds secrets
// beyond the credentials being entered.
type LoginAttempt struct {
	ID       string
	UserID   int64
	State    State
	APIID    int
	APIHash  string
	Phone    string
	CodeHash string
	Code     string
	Attempts int
	// NeedsPassword is set once the account asked for the second factor
	NeedsPassword bool
	Notice        Notice
	Wait          time.Duration
	ExpiresAt     time.Time
}

// IsExpired returns true if the attempt has expired
func (a *LoginAttempt) IsExpired() bool {
	return !a.ExpiresAt.IsZero() && time.Now().After(a.ExpiresAt)
}
