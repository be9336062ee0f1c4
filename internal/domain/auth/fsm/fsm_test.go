package fsm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Aztech-1729/sliptads/internal/domain/auth/entities"
)

func input(kind entities.InputKind, text string) entities.Input {
	return entities.Input{Kind: kind, Text: text}
}

func run(t *testing.T, a entities.LoginAttempt, inputs ...entities.Input) (entities.LoginAttempt, []entities.Effect) {
	t.Helper()
	var effects []entities.Effect
	for _, in := range inputs {
		var out []entities.Effect
		a, out = Step(a, in)
		effects = append(effects, out...)
	}
	return a, effects
}

func awaitingCode(t *testing.T) entities.LoginAttempt {
	t.Helper()
	a, _ := run(t, entities.LoginAttempt{ID: "a", UserID: 1},
		input(entities.InputStart, ""),
		input(entities.InputText, "12345"),
		input(entities.InputText, "hash"),
		input(entities.InputText, "+1 555-123-4567"),
		input(entities.OutcomeCodeSent, "code-hash"),
	)
	require.Equal(t, entities.StateAwaitCode, a.State)
	return a
}

func kinds(effects []entities.Effect) []entities.EffectKind {
	out := make([]entities.EffectKind, 0, len(effects))
	for _, e := range effects {
		out = append(out, e.Kind)
	}
	return out
}

// TestNormalizePhone tests phone validation
func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw   string
		want  string
		valid bool
	}{
		{"+15551234567", "+15551234567", true},
		{" +1 555-123-4567 ", "+15551234567", true},
		{"+1234567", "+1234567", true},
		{"+123456", "+123456", false},
		{"+1234567890123456", "+1234567890123456", false},
		{"15551234567", "15551234567", false},
		{"+1555abc4567", "+1555abc4567", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizePhone(tt.raw)
			require.Equal(t, tt.valid, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

// TestStep_HappyPath tests the credential prompts up to code entry
func TestStep_HappyPath(t *testing.T) {
	a, effects := Step(entities.LoginAttempt{UserID: 1}, input(entities.InputStart, ""))
	require.Equal(t, entities.StateAwaitAppID, a.State)
	require.Empty(t, effects)

	a, _ = Step(a, input(entities.InputText, "abc"))
	require.Equal(t, entities.StateAwaitAppID, a.State)
	require.Equal(t, entities.NoticeInvalidAppID, a.Notice)

	a, _ = Step(a, input(entities.InputText, "-5"))
	require.Equal(t, entities.StateAwaitAppID, a.State)

	a, _ = Step(a, input(entities.InputText, " 12345 "))
	require.Equal(t, entities.StateAwaitAppHash, a.State)
	require.Equal(t, 12345, a.APIID)

	a, _ = Step(a, input(entities.InputText, "   "))
	require.Equal(t, entities.StateAwaitAppHash, a.State)

	a, _ = Step(a, input(entities.InputText, " hash "))
	require.Equal(t, entities.StateAwaitPhone, a.State)
	require.Equal(t, "hash", a.APIHash)

	a, effects = Step(a, input(entities.InputText, "555"))
	require.Equal(t, entities.StateAwaitPhone, a.State)
	require.Equal(t, entities.NoticeInvalidPhone, a.Notice)
	require.Empty(t, effects)

	a, effects = Step(a, input(entities.InputText, "+1 555-123-4567"))
	require.Equal(t, []entities.EffectKind{entities.EffectOpenAndRequestCode}, kinds(effects))
	require.Equal(t, "+15551234567", a.Phone)

	a, _ = Step(a, input(entities.OutcomeCodeSent, "code-hash"))
	require.Equal(t, entities.StateAwaitCode, a.State)
	require.Equal(t, "code-hash", a.CodeHash)
}

// TestStep_CodeFailed tests that a failed code request ends the attempt
func TestStep_CodeFailed(t *testing.T) {
	a, _ := run(t, entities.LoginAttempt{ID: "a", UserID: 1},
		input(entities.InputStart, ""),
		input(entities.InputText, "1"),
		input(entities.InputText, "h"),
		input(entities.InputText, "+15551234567"),
	)

	a, effects := Step(a, entities.Input{Kind: entities.OutcomeCodeFailed, Wait: 30 * time.Second})
	require.Equal(t, entities.StateNone, a.State)
	require.Equal(t, 30*time.Second, a.Wait)
	require.Equal(t, []entities.EffectKind{entities.EffectDiscard}, kinds(effects))
	require.Empty(t, a.APIHash)
}

// TestStep_Keypad tests the code buffer
func TestStep_Keypad(t *testing.T) {
	a := awaitingCode(t)

	a, effects := run(t, a,
		input(entities.InputDigit, "1"),
		input(entities.InputDigit, "2"),
		input(entities.InputDigit, "x"),
		input(entities.InputDigit, "3"),
	)
	require.Equal(t, "123", a.Code)
	require.Empty(t, effects)

	a, _ = Step(a, input(entities.InputBackspace, ""))
	require.Equal(t, "12", a.Code)

	a, effects = Step(a, input(entities.InputAccept, ""))
	require.Equal(t, []entities.Effect{{Kind: entities.EffectSignIn, Code: "12"}}, effects)

	a, _ = Step(a, input(entities.InputClear, ""))
	require.Empty(t, a.Code)

	_, effects = Step(a, input(entities.InputAccept, ""))
	require.Empty(t, effects)
}

// TestStep_BackspaceThenClearEmpties tests that backspace then clear empties any buffer
func TestStep_BackspaceThenClearEmpties(t *testing.T) {
	for _, digits := range []string{"", "1", "12", "1234"} {
		a := awaitingCode(t)
		for _, d := range digits {
			a, _ = Step(a, input(entities.InputDigit, string(d)))
		}
		a, _ = run(t, a, input(entities.InputBackspace, ""), input(entities.InputClear, ""))
		require.Empty(t, a.Code, digits)
	}
}

// TestStep_FullBufferSubmits tests auto submit at five digits
func TestStep_FullBufferSubmits(t *testing.T) {
	a := awaitingCode(t)

	var effects []entities.Effect
	for _, d := range "1234" {
		a, effects = Step(a, input(entities.InputDigit, string(d)))
		require.Empty(t, effects)
	}
	a, effects = Step(a, input(entities.InputDigit, "5"))
	require.Equal(t, []entities.Effect{{Kind: entities.EffectSignIn, Code: "12345"}}, effects)

	// buffer is full, further digits are ignored
	a, effects = Step(a, input(entities.InputDigit, "6"))
	require.Equal(t, "12345", a.Code)
	require.Empty(t, effects)
}

// TestStep_TypedCode tests a code sent as text
func TestStep_TypedCode(t *testing.T) {
	a := awaitingCode(t)

	_, effects := Step(a, input(entities.InputText, " 54321 "))
	require.Equal(t, []entities.Effect{{Kind: entities.EffectSignIn, Code: "54321"}}, effects)

	a, effects = Step(a, input(entities.InputText, "12a"))
	require.Empty(t, effects)
	require.Equal(t, entities.NoticeCodeInvalid, a.Notice)
}

// TestStep_ThreeInvalidCodesResendOnce tests exactly one resend after three invalid codes
func TestStep_ThreeInvalidCodesResendOnce(t *testing.T) {
	a := awaitingCode(t)

	var resends int
	for i := 0; i < entities.MaxInvalidCodes; i++ {
		var effects []entities.Effect
		a, _ = Step(a, input(entities.InputText, "11111"))
		a, effects = Step(a, input(entities.OutcomeCodeInvalid, ""))
		for _, e := range effects {
			if e.Kind == entities.EffectResendCode {
				resends++
			}
		}
		require.Empty(t, a.Code)
	}

	require.Equal(t, 1, resends)
	require.Equal(t, 0, a.Attempts)
	require.Equal(t, entities.NoticeCodeResent, a.Notice)
	require.Equal(t, entities.StateAwaitCode, a.State)

	a, _ = Step(a, input(entities.OutcomeCodeSent, "new-hash"))
	require.Equal(t, "new-hash", a.CodeHash)
	require.Equal(t, entities.NoticeCodeResent, a.Notice)
}

// TestStep_CodeExpired tests resend on expiry
func TestStep_CodeExpired(t *testing.T) {
	a := awaitingCode(t)
	a, _ = run(t, a, input(entities.InputDigit, "1"), input(entities.OutcomeCodeInvalid, ""), input(entities.InputDigit, "2"))

	a, effects := Step(a, input(entities.OutcomeCodeExpired, ""))
	require.Equal(t, []entities.EffectKind{entities.EffectResendCode}, kinds(effects))
	require.Empty(t, a.Code)
	require.Equal(t, 0, a.Attempts)
	require.Equal(t, entities.NoticeCodeExpired, a.Notice)
}

// TestStep_RateLimited tests that rate limits only surface the wait
func TestStep_RateLimited(t *testing.T) {
	a := awaitingCode(t)
	a, _ = Step(a, input(entities.InputDigit, "1"))

	next, effects := Step(a, entities.Input{Kind: entities.OutcomeRateLimited, Wait: 42 * time.Second})
	require.Empty(t, effects)
	require.Equal(t, entities.StateAwaitCode, next.State)
	require.Equal(t, "1", next.Code)
	require.Equal(t, 42*time.Second, next.Wait)

	// the wait is cleared by the next input
	next, _ = Step(next, input(entities.InputDigit, "2"))
	require.Zero(t, next.Wait)
}

// TestStep_SignInFailed tests a generic sign in failure
func TestStep_SignInFailed(t *testing.T) {
	a := awaitingCode(t)
	a, _ = Step(a, input(entities.InputDigit, "1"))

	a, effects := Step(a, input(entities.OutcomeSignInFailed, ""))
	require.Empty(t, effects)
	require.Empty(t, a.Code)
	require.Equal(t, entities.StateAwaitCode, a.State)
}

// TestStep_DirectSignIn tests promotion after a code sign in
func TestStep_DirectSignIn(t *testing.T) {
	a := awaitingCode(t)

	a, effects := Step(a, input(entities.OutcomeSignedIn, ""))
	require.Equal(t, []entities.EffectKind{entities.EffectPromote}, kinds(effects))

	a, effects = Step(a, input(entities.OutcomePromoted, ""))
	require.Equal(t, entities.StateDone, a.State)
	require.Equal(t, []entities.EffectKind{entities.EffectDiscard}, kinds(effects))
}

// TestStep_PasswordFlow tests the second factor
func TestStep_PasswordFlow(t *testing.T) {
	a := awaitingCode(t)
	a, _ = Step(a, input(entities.InputDigit, "1"))

	a, _ = Step(a, input(entities.OutcomePasswordNeeded, ""))
	require.Equal(t, entities.StateAwait2FA, a.State)
	require.Empty(t, a.Code)
	require.True(t, a.NeedsPassword)

	a, effects := Step(a, input(entities.InputPassword, ""))
	require.Empty(t, effects)
	require.Equal(t, entities.NoticeEnterPassword, a.Notice)

	a, effects = Step(a, input(entities.InputPassword, "secret"))
	require.Equal(t, []entities.Effect{{Kind: entities.EffectCheckPassword, Password: "secret"}}, effects)

	a, _ = Step(a, input(entities.OutcomePasswordInvalid, ""))
	require.Equal(t, entities.StateAwait2FA, a.State)
	require.Equal(t, entities.NoticePasswordInvalid, a.Notice)

	a, effects = Step(a, input(entities.OutcomeSignedIn, ""))
	require.Equal(t, []entities.EffectKind{entities.EffectPromote}, kinds(effects))

	a, _ = Step(a, input(entities.OutcomePromoted, ""))
	require.Equal(t, entities.StateDone, a.State)
}

// TestStep_PromoteFailed tests that a failed promotion discards the attempt
func TestStep_PromoteFailed(t *testing.T) {
	a := awaitingCode(t)
	a, _ = Step(a, input(entities.OutcomeSignedIn, ""))

	a, effects := Step(a, input(entities.OutcomePromoteFailed, ""))
	require.Equal(t, entities.StateNone, a.State)
	require.Equal(t, []entities.EffectKind{entities.EffectDiscard}, kinds(effects))
}

// TestStep_Cancel tests cancel in every state
func TestStep_Cancel(t *testing.T) {
	for _, state := range []entities.State{
		entities.StateAwaitAppID,
		entities.StateAwaitAppHash,
		entities.StateAwaitPhone,
		entities.StateAwaitCode,
		entities.StateAwait2FA,
	} {
		a, effects := Step(entities.LoginAttempt{State: state, APIID: 1, Code: "12"}, input(entities.InputCancel, ""))
		require.Equal(t, entities.StateNone, a.State, state)
		require.Equal(t, []entities.EffectKind{entities.EffectDiscard}, kinds(effects), state)
		require.Zero(t, a.APIID)
	}

	for _, state := range []entities.State{entities.StateNone, entities.StateDone} {
		a, effects := Step(entities.LoginAttempt{State: state}, input(entities.InputCancel, ""))
		require.Equal(t, state, a.State)
		require.Empty(t, effects)
	}
}

// TestStep_RestartDiscardsPrevious tests start during an active attempt
func TestStep_RestartDiscardsPrevious(t *testing.T) {
	a := awaitingCode(t)

	a, effects := Step(a, input(entities.InputStart, ""))
	require.Equal(t, []entities.EffectKind{entities.EffectDiscard}, kinds(effects))
	require.Equal(t, entities.StateAwaitAppID, a.State)
	require.Empty(t, a.Phone)
	require.Empty(t, a.CodeHash)

	_, effects = Step(entities.LoginAttempt{State: entities.StateDone}, input(entities.InputStart, ""))
	require.Empty(t, effects)
}

// TestStep_IgnoresForeignInputs tests inputs that do not belong to a state
func TestStep_IgnoresForeignInputs(t *testing.T) {
	a := entities.LoginAttempt{State: entities.StateAwaitAppID}
	next, effects := Step(a, input(entities.InputDigit, "1"))
	require.Equal(t, a, next)
	require.Empty(t, effects)

	none := entities.LoginAttempt{State: entities.StateNone}
	next, effects = Step(none, input(entities.InputText, "hello"))
	require.Equal(t, none, next)
	require.Empty(t, effects)
}
