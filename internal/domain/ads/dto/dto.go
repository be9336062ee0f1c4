package dto

import (
	"time"

	"github.com/Aztech-1729/sliptads/internal/domain/ads/entities"
)

// StatusResponse is the public view of a delivery worker
type StatusResponse struct {
	Running   bool       `json:"running"`
	Round     int        `json:"round"`
	Sent      int        `json:"sent"`
	Total     int        `json:"total"`
	SentTotal int64      `json:"sent_total"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// NewStatusResponse converts a worker status
func NewStatusResponse(st *entities.Status) StatusResponse {
	return StatusResponse{
		Running:   st.Running,
		Round:     st.Round,
		Sent:      st.Sent,
		Total:     st.Total,
		SentTotal: st.SentTotal,
		StartedAt: st.StartedAt,
	}
}
