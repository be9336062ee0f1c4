// Package fsm holds the login state machine. Step is pure: it never talks
// to Telegram and never touches storage. Callers execute the returned
// effects and feed each outcome back as the next input.
package fsm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Aztech-1729/sliptads/internal/domain/auth/entities"
)

var phonePattern = regexp.MustCompile(`^\+\d{7,15}$`)

// NormalizePhone strips spaces and dashes and validates the result
func NormalizePhone(raw string) (string, bool) {
	phone := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(raw))
	return phone, phonePattern.MatchString(phone)
}

// Step applies one input to the attempt and returns the next attempt and the effects to run
func Step(a entities.LoginAttempt, in entities.Input) (entities.LoginAttempt, []entities.Effect) {
	a.Wait = 0

	switch in.Kind {
	case entities.InputStart:
		return start(a)
	case entities.InputCancel:
		if !a.State.Active() {
			return a, nil
		}
		return reset(a, entities.NoticeCancelled), discard()
	case entities.OutcomeRateLimited:
		// surfaced in every state, never a transition
		a.Notice = entities.NoticeRateLimited
		a.Wait = in.Wait
		return a, nil
	case entities.OutcomePromoted:
		if !a.State.Active() {
			return a, nil
		}
		a.State = entities.StateDone
		a.Code = ""
		a.Notice = entities.NoticeLoggedIn
		return a, discard()
	case entities.OutcomePromoteFailed:
		if !a.State.Active() {
			return a, nil
		}
		return reset(a, entities.NoticePromoteFailed), discard()
	}

	switch a.State {
	case entities.StateAwaitAppID:
		return awaitAppID(a, in)
	case entities.StateAwaitAppHash:
		return awaitAppHash(a, in)
	case entities.StateAwaitPhone:
		return awaitPhone(a, in)
	case entities.StateAwaitCode:
		return awaitCode(a, in)
	case entities.StateAwait2FA:
		return await2FA(a, in)
	}

	return a, nil
}

func discard() []entities.Effect {
	return []entities.Effect{{Kind: entities.EffectDiscard}}
}

// reset ends the attempt. The identity is kept so callers can report on it.
func reset(a entities.LoginAttempt, notice entities.Notice) entities.LoginAttempt {
	return entities.LoginAttempt{
		ID:     a.ID,
		UserID: a.UserID,
		State:  entities.StateNone,
		Notice: notice,
	}
}

func start(a entities.LoginAttempt) (entities.LoginAttempt, []entities.Effect) {
	var effects []entities.Effect
	if a.State.Active() {
		effects = discard()
	}

	return entities.LoginAttempt{
		ID:        a.ID,
		UserID:    a.UserID,
		State:     entities.StateAwaitAppID,
		Notice:    entities.NoticeEnterAppID,
		ExpiresAt: a.ExpiresAt,
	}, effects
}

func awaitAppID(a entities.LoginAttempt, in entities.Input) (entities.LoginAttempt, []entities.Effect) {
	if in.Kind != entities.InputText {
		return a, nil
	}

	id, err := strconv.Atoi(strings.TrimSpace(in.Text))
	if err != nil || id <= 0 {
		a.Notice = entities.NoticeInvalidAppID
		return a, nil
	}

	a.APIID = id
	a.State = entities.StateAwaitAppHash
	a.Notice = entities.NoticeEnterAppHash
	return a, nil
}

func awaitAppHash(a entities.LoginAttempt, in entities.Input) (entities.LoginAttempt, []entities.Effect) {
	if in.Kind != entities.InputText {
		return a, nil
	}

	hash := strings.TrimSpace(in.Text)
	if hash == "" {
		a.Notice = entities.NoticeInvalidAppHash
		return a, nil
	}

	a.APIHash = hash
	a.State = entities.StateAwaitPhone
	a.Notice = entities.NoticeEnterPhone
	return a, nil
}

func awaitPhone(a entities.LoginAttempt, in entities.Input) (entities.LoginAttempt, []entities.Effect) {
	switch in.Kind {
	case entities.InputText:
		phone, ok := NormalizePhone(in.Text)
		if !ok {
			a.Notice = entities.NoticeInvalidPhone
			return a, nil
		}
		a.Phone = phone
		a.Notice = entities.NoticeNone
		return a, []entities.Effect{{Kind: entities.EffectOpenAndRequestCode}}

	case entities.OutcomeCodeSent:
		a.CodeHash = in.Text
		a.State = entities.StateAwaitCode
		a.Code = ""
		a.Attempts = 0
		a.Notice = entities.NoticeCodeSent
		return a, nil

	case entities.OutcomeCodeFailed:
		next := reset(a, entities.NoticeCodeFailed)
		next.Wait = in.Wait
		return next, discard()
	}

	return a, nil
}

func awaitCode(a entities.LoginAttempt, in entities.Input) (entities.LoginAttempt, []entities.Effect) {
	switch in.Kind {
	case entities.InputDigit:
		if len(in.Text) != 1 || in.Text[0] < '0' || in.Text[0] > '9' {
			return a, nil
		}
		if len(a.Code) >= entities.MaxCodeLength {
			return a, nil
		}
		a.Code += in.Text
		if len(a.Code) == entities.MaxCodeLength {
			return a, signIn(a.Code)
		}
		return a, nil

	case entities.InputBackspace:
		if a.Code != "" {
			a.Code = a.Code[:len(a.Code)-1]
		}
		return a, nil

	case entities.InputClear:
		a.Code = ""
		return a, nil

	case entities.InputAccept:
		if a.Code == "" {
			return a, nil
		}
		return a, signIn(a.Code)

	case entities.InputText:
		// a code typed in one go
		code := strings.TrimSpace(in.Text)
		if code == "" || len(code) > entities.MaxCodeLength || strings.Trim(code, "0123456789") != "" {
			a.Notice = entities.NoticeCodeInvalid
			return a, nil
		}
		a.Code = code
		return a, signIn(code)

	case entities.OutcomeSignedIn:
		return a, []entities.Effect{{Kind: entities.EffectPromote}}

	case entities.OutcomePasswordNeeded:
		a.State = entities.StateAwait2FA
		a.Code = ""
		a.NeedsPassword = true
		a.Notice = entities.NoticeEnterPassword
		return a, nil

	case entities.OutcomeCodeInvalid:
		a.Code = ""
		a.Attempts++
		if a.Attempts >= entities.MaxInvalidCodes {
			a.Attempts = 0
			a.Notice = entities.NoticeCodeResent
			return a, []entities.Effect{{Kind: entities.EffectResendCode}}
		}
		a.Notice = entities.NoticeCodeInvalid
		return a, nil

	case entities.OutcomeCodeExpired:
		a.Code = ""
		a.Attempts = 0
		a.Notice = entities.NoticeCodeExpired
		return a, []entities.Effect{{Kind: entities.EffectResendCode}}

	case entities.OutcomeSignInFailed:
		a.Code = ""
		a.Notice = entities.NoticeSignInFailed
		return a, nil

	case entities.OutcomeCodeSent:
		// answer to a resend, the notice set by the trigger stays
		a.CodeHash = in.Text
		return a, nil

	case entities.OutcomeCodeFailed:
		next := reset(a, entities.NoticeCodeFailed)
		next.Wait = in.Wait
		return next, discard()
	}

	return a, nil
}

func signIn(code string) []entities.Effect {
	return []entities.Effect{{Kind: entities.EffectSignIn, Code: code}}
}

func await2FA(a entities.LoginAttempt, in entities.Input) (entities.LoginAttempt, []entities.Effect) {
	switch in.Kind {
	case entities.InputPassword, entities.InputText:
		if in.Text == "" {
			a.Notice = entities.NoticeEnterPassword
			return a, nil
		}
		return a, []entities.Effect{{Kind: entities.EffectCheckPassword, Password: in.Text}}

	case entities.OutcomeSignedIn:
		return a, []entities.Effect{{Kind: entities.EffectPromote}}

	case entities.OutcomePasswordInvalid:
		a.Notice = entities.NoticePasswordInvalid
		return a, nil

	case entities.OutcomeSignInFailed:
		a.Notice = entities.NoticeSignInFailed
		return a, nil
	}

	return a, nil
}
