package dto

import (
	"time"

	"github.com/Aztech-1729/sliptads/internal/domain/auth/entities"
	"github.com/Aztech-1729/sliptads/internal/utils"
)

// InputRequest carries one typed text answer
type InputRequest struct {
	Text string `json:"text"`
}

// KeyRequest carries one keypad key: a digit, "backspace", "clear" or "accept"
type KeyRequest struct {
	Key string `json:"key"`
}

// PasswordRequest carries the second factor password
type PasswordRequest struct {
	Password string `json:"password"`
}

// AttemptResponse is the public view of a login attempt
type AttemptResponse struct {
	State       string     `json:"state"`
	Phone       string     `json:"phone,omitempty"` // masked
	CodeLength  int        `json:"code_length"`
	Attempts    int        `json:"attempts"`
	Notice      string     `json:"notice,omitempty"`
	WaitSeconds int        `json:"wait_seconds,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// NewAttemptResponse builds the response without exposing secrets
func NewAttemptResponse(a *entities.LoginAttempt) AttemptResponse {
	resp := AttemptResponse{
		State:       string(a.State),
		CodeLength:  len(a.Code),
		Attempts:    a.Attempts,
		Notice:      string(a.Notice),
		WaitSeconds: int(a.Wait.Seconds()),
	}
	if a.Phone != "" {
		resp.Phone = utils.MaskPhoneNumber(a.Phone)
	}
	if a.State.Active() && !a.ExpiresAt.IsZero() {
		expires := a.ExpiresAt
		resp.ExpiresAt = &expires
	}
	return resp
}
