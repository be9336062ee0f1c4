package business

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/auth/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/auth/entities"
	autherrors "github.com/Aztech-1729/sliptads/internal/domain/auth/errors"
	"github.com/Aztech-1729/sliptads/internal/domain/auth/fsm"
	sessionerrors "github.com/Aztech-1729/sliptads/internal/domain/session/errors"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
	"github.com/Aztech-1729/sliptads/internal/utils"
	"github.com/Aztech-1729/sliptads/pkg/mutex"
)

const disconnectTimeout = 5 * time.Second

// UseCase drives login attempts through the state machine and runs its effects
type UseCase struct {
	store    deps.AttemptStore
	factory  domain.ClientFactory
	sessions deps.SessionPromoter
	locks    *mutex.KeyedMutex
	authCfg  *config.AuthConfig
	tgCfg    *config.TelegramConfig
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// NewUseCase creates a new login use case
func NewUseCase(
	store deps.AttemptStore,
	factory domain.ClientFactory,
	sessions deps.SessionPromoter,
	authCfg *config.AuthConfig,
	tgCfg *config.TelegramConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *UseCase {
	return &UseCase{
		store:    store,
		factory:  factory,
		sessions: sessions,
		locks:    &mutex.KeyedMutex{},
		authCfg:  authCfg,
		tgCfg:    tgCfg,
		logger:   logger.With().Str("component", "auth").Logger(),
		metrics:  m,
	}
}

var _ deps.Service = (*UseCase)(nil)

func lockKey(userID int64) string {
	return "auth:" + strconv.FormatInt(userID, 10)
}

// Start begins a fresh attempt, discarding any previous one
func (u *UseCase) Start(ctx context.Context, userID int64) (*entities.LoginAttempt, error) {
	if userID <= 0 {
		return nil, sessionerrors.ErrInvalidUserID
	}

	key := lockKey(userID)
	u.locks.Lock(key)
	defer u.locks.Unlock(key)

	rec, err := u.store.Claim(userID, u.authCfg.AttemptTTL)
	if err != nil {
		rec = &deps.Record{Attempt: entities.LoginAttempt{UserID: userID, State: entities.StateNone}}
	}
	rec.Attempt.ID = uuid.New().String()

	u.logger.Info().Int64("user_id", userID).Str("attempt_id", rec.Attempt.ID).Msg("Login started")

	return u.apply(ctx, rec, entities.Input{Kind: entities.InputStart})
}

// Input feeds typed text to the current attempt
func (u *UseCase) Input(ctx context.Context, userID int64, text string) (*entities.LoginAttempt, error) {
	return u.feed(ctx, userID, entities.Input{Kind: entities.InputText, Text: text})
}

// Key feeds one keypad key: a digit, "backspace", "clear" or "accept"
func (u *UseCase) Key(ctx context.Context, userID int64, key string) (*entities.LoginAttempt, error) {
	var in entities.Input
	switch key {
	case "backspace":
		in.Kind = entities.InputBackspace
	case "clear":
		in.Kind = entities.InputClear
	case "accept":
		in.Kind = entities.InputAccept
	default:
		if len(key) != 1 || key[0] < '0' || key[0] > '9' {
			return nil, autherrors.ErrUnknownKey
		}
		in = entities.Input{Kind: entities.InputDigit, Text: key}
	}
	return u.feed(ctx, userID, in)
}

// Password submits the second factor password
func (u *UseCase) Password(ctx context.Context, userID int64, password string) (*entities.LoginAttempt, error) {
	return u.feed(ctx, userID, entities.Input{Kind: entities.InputPassword, Text: password})
}

// Cancel discards the current attempt. Cancelling without an attempt is a no-op.
func (u *UseCase) Cancel(ctx context.Context, userID int64) (*entities.LoginAttempt, error) {
	attempt, err := u.feed(ctx, userID, entities.Input{Kind: entities.InputCancel})
	if errors.Is(err, autherrors.ErrAttemptNotFound) || errors.Is(err, autherrors.ErrAttemptExpired) {
		return &entities.LoginAttempt{UserID: userID, State: entities.StateNone}, nil
	}
	return attempt, err
}

// Status returns the current attempt, or a NONE attempt when there is none
func (u *UseCase) Status(ctx context.Context, userID int64) (*entities.LoginAttempt, error) {
	if userID <= 0 {
		return nil, sessionerrors.ErrInvalidUserID
	}

	rec, err := u.store.Load(userID)
	if err != nil {
		if errors.Is(err, autherrors.ErrAttemptNotFound) || errors.Is(err, autherrors.ErrAttemptExpired) {
			return &entities.LoginAttempt{UserID: userID, State: entities.StateNone}, nil
		}
		return nil, err
	}
	attempt := rec.Attempt
	return &attempt, nil
}

func (u *UseCase) feed(ctx context.Context, userID int64, in entities.Input) (*entities.LoginAttempt, error) {
	if userID <= 0 {
		return nil, sessionerrors.ErrInvalidUserID
	}

	key := lockKey(userID)
	u.locks.Lock(key)
	defer u.locks.Unlock(key)

	rec, err := u.store.Claim(userID, u.authCfg.AttemptTTL)
	if err != nil {
		return nil, err
	}

	return u.apply(ctx, rec, in)
}

// apply runs the input and every outcome produced by the resulting effects,
// then stores or drops the record. A finished attempt stays readable as DONE
// until its TTL runs out.
func (u *UseCase) apply(ctx context.Context, rec *deps.Record, in entities.Input) (*entities.LoginAttempt, error) {
	queue := []entities.Input{in}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		prev := rec.Attempt.State
		next, effects := fsm.Step(rec.Attempt, current)
		rec.Attempt = next
		if next.State != prev {
			u.metrics.RecordAuthTransition(string(next.State))
		}

		for _, effect := range effects {
			if outcome, ok := u.execute(ctx, rec, effect); ok {
				queue = append(queue, outcome)
			}
		}
	}

	attempt := rec.Attempt
	if attempt.State == entities.StateNone {
		u.store.Delete(attempt.UserID)
		return &attempt, nil
	}

	rec.Attempt.ExpiresAt = time.Now().Add(u.authCfg.AttemptTTL)
	if err := u.store.Save(rec); err != nil {
		u.release(rec)
		return nil, err
	}

	attempt = rec.Attempt
	return &attempt, nil
}

// execute runs one effect and returns the outcome to feed back
func (u *UseCase) execute(ctx context.Context, rec *deps.Record, effect entities.Effect) (entities.Input, bool) {
	a := rec.Attempt
	logger := u.logger.With().
		Int64("user_id", a.UserID).
		Str("attempt_id", a.ID).
		Str("effect", string(effect.Kind)).
		Logger()

	switch effect.Kind {
	case entities.EffectDiscard:
		u.release(rec)
		return entities.Input{}, false

	case entities.EffectOpenAndRequestCode:
		u.release(rec)
		client, err := u.open(ctx, domain.Credentials{APIID: a.APIID, APIHash: a.APIHash})
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to open login client")
			return u.failure(entities.OutcomeCodeFailed, err), true
		}
		rec.Client = client
		logger.Info().Str("phone", utils.MaskPhoneNumber(a.Phone)).Msg("Requesting login code")
		return u.requestCode(ctx, rec)

	case entities.EffectResendCode:
		return u.requestCode(ctx, rec)

	case entities.EffectSignIn:
		if rec.Client == nil {
			return entities.Input{Kind: entities.OutcomeSignInFailed, Reason: autherrors.ErrClientUnavailable.Error()}, true
		}
		err := rec.Client.SignIn(ctx, a.Phone, effect.Code, a.CodeHash)
		return u.signInOutcome(err, map[domain.ErrorKind]entities.InputKind{
			domain.KindPasswordNeeded: entities.OutcomePasswordNeeded,
			domain.KindInvalidCode:    entities.OutcomeCodeInvalid,
			domain.KindExpiredCode:    entities.OutcomeCodeExpired,
		}), true

	case entities.EffectCheckPassword:
		if rec.Client == nil {
			return entities.Input{Kind: entities.OutcomeSignInFailed, Reason: autherrors.ErrClientUnavailable.Error()}, true
		}
		err := rec.Client.SignInPassword(ctx, effect.Password)
		return u.signInOutcome(err, map[domain.ErrorKind]entities.InputKind{
			domain.KindInvalidPassword: entities.OutcomePasswordInvalid,
		}), true

	case entities.EffectPromote:
		if err := u.promote(ctx, rec); err != nil {
			logger.Error().Err(err).Msg("Failed to promote session")
			u.metrics.RecordAuthError("promote_failed")
			return entities.Input{Kind: entities.OutcomePromoteFailed, Reason: err.Error()}, true
		}
		u.metrics.RecordLogin()
		logger.Info().Str("phone", utils.MaskPhoneNumber(a.Phone)).Msg("Login completed")
		return entities.Input{Kind: entities.OutcomePromoted}, true
	}

	return entities.Input{}, false
}

// open creates and connects a transient client
func (u *UseCase) open(ctx context.Context, creds domain.Credentials) (domain.RemoteClient, error) {
	client, err := u.factory.NewLoginClient(creds)
	if err != nil {
		return nil, err
	}

	connectCtx := ctx
	if u.tgCfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, u.tgCfg.ConnectTimeout)
		defer cancel()
	}

	if err := client.Connect(connectCtx); err != nil {
		return nil, err
	}
	return client, nil
}

func (u *UseCase) requestCode(ctx context.Context, rec *deps.Record) (entities.Input, bool) {
	if rec.Client == nil {
		return entities.Input{Kind: entities.OutcomeCodeFailed, Reason: autherrors.ErrClientUnavailable.Error()}, true
	}

	hash, err := rec.Client.RequestCode(ctx, rec.Attempt.Phone)
	if err != nil {
		return u.failure(entities.OutcomeCodeFailed, err), true
	}
	return entities.Input{Kind: entities.OutcomeCodeSent, Text: hash}, true
}

// signInOutcome maps a sign in error to the state machine outcome
func (u *UseCase) signInOutcome(err error, byKind map[domain.ErrorKind]entities.InputKind) entities.Input {
	if err == nil {
		return entities.Input{Kind: entities.OutcomeSignedIn}
	}

	kind := domain.KindOf(err)
	if kind == domain.KindRateLimited {
		return u.failure(entities.OutcomeRateLimited, err)
	}
	if outcome, ok := byKind[kind]; ok {
		u.metrics.RecordAuthError(kind.String())
		return entities.Input{Kind: outcome, Reason: err.Error()}
	}
	return u.failure(entities.OutcomeSignInFailed, err)
}

func (u *UseCase) failure(kind entities.InputKind, err error) entities.Input {
	u.metrics.RecordAuthError(domain.KindOf(err).String())
	wait, _ := domain.WaitOf(err)
	return entities.Input{Kind: kind, Wait: wait, Reason: err.Error()}
}

// promote exports the transient handle and stores it as the durable session
func (u *UseCase) promote(ctx context.Context, rec *deps.Record) error {
	if rec.Client == nil {
		return autherrors.ErrClientUnavailable
	}

	handle, err := rec.Client.ExportSession(ctx)
	if err != nil {
		return err
	}

	a := rec.Attempt
	return u.sessions.PromoteHandle(ctx, a.UserID, domain.Credentials{
		APIID:   a.APIID,
		APIHash: a.APIHash,
		Phone:   a.Phone,
	}, handle)
}

// release disconnects and forgets the transient client
func (u *UseCase) release(rec *deps.Record) {
	if rec.Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()

	if err := rec.Client.Disconnect(ctx); err != nil {
		u.logger.Warn().Err(err).Int64("user_id", rec.Attempt.UserID).Msg("Failed to disconnect login client")
	}
	rec.Client = nil
}
