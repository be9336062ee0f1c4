package dto

import (
	"time"

	"github.com/Aztech-1729/sliptads/internal/domain/session/entities"
)

// PremiumRequest extends premium access by Days, zero revokes it
type PremiumRequest struct {
	Days int `json:"days"`
}

// PremiumResponse is the user's premium state after a change
type PremiumResponse struct {
	UserID       int64      `json:"user_id"`
	Active       bool       `json:"active"`
	PremiumUntil *time.Time `json:"premium_until,omitempty"`
}

// NewPremiumResponse converts a session
func NewPremiumResponse(s *entities.Session, now time.Time) PremiumResponse {
	resp := PremiumResponse{UserID: s.UserID, Active: s.PremiumActive(now)}
	if !s.PremiumUntil.IsZero() {
		until := s.PremiumUntil.UTC()
		resp.PremiumUntil = &until
	}
	return resp
}
