package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType tags a delivery event
type EventType string

const (
	EventProgress        EventType = "progress"
	EventItemSuccess     EventType = "item_success"
	EventItemFailure     EventType = "item_failure"
	EventRoundComplete   EventType = "round_complete"
	EventCampaignStopped EventType = "campaign_stopped"
	EventLoginRequired   EventType = "login_required"
)

// Delivery methods recorded on item_success
const (
	MethodForward           = "forward"
	MethodFallback          = "fallback"
	MethodCopy              = "copy"
	MethodForwardDropAuthor = "forward_drop_author"
	MethodForwardPlain      = "forward_plain"
	MethodText              = "text"
	MethodMedia             = "media"
)

// Event is one delivery notification
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	UserID      int64     `json:"user_id"`
	Round       int       `json:"round,omitempty"`
	Sent        int       `json:"sent"`
	Total       int       `json:"total"`
	Succeeded   int       `json:"succeeded,omitempty"`
	Destination string    `json:"destination,omitempty"`
	Title       string    `json:"title,omitempty"`
	Method      string    `json:"method,omitempty"`
	Degraded    bool      `json:"degraded,omitempty"`
	Link        string    `json:"link,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	WaitSeconds int       `json:"wait_seconds,omitempty"`
	SentTotal   int64     `json:"sent_total,omitempty"`
	At          time.Time `json:"at"`
}

// NewEvent creates an event with a fresh id
func NewEvent(t EventType, userID int64) Event {
	return Event{
		ID:     uuid.NewString(),
		Type:   t,
		UserID: userID,
		At:     time.Now().UTC(),
	}
}

// Terminal reports whether no more events follow this one for the run
func (e Event) Terminal() bool {
	return e.Type == EventCampaignStopped || e.Type == EventLoginRequired
}

// Text renders the event as one plain-text line
func (e Event) Text() string {
	switch e.Type {
	case EventProgress:
		return fmt.Sprintf("Progress: %d/%d", e.Sent, e.Total)
	case EventItemSuccess:
		line := fmt.Sprintf("Sent %d/%d to %s via %s", e.Sent, e.Total, e.label(), e.Method)
		if e.Degraded {
			line += " (forward blocked)"
		}
		return line
	case EventItemFailure:
		return fmt.Sprintf("Failed %d/%d for %s: %s", e.Sent, e.Total, e.label(), e.Reason)
	case EventRoundComplete:
		return fmt.Sprintf("Round %d complete: sent to %d/%d groups, waiting %ds", e.Round, e.Sent, e.Total, e.WaitSeconds)
	case EventCampaignStopped:
		return fmt.Sprintf("Campaign stopped. Total ads sent: %d", e.SentTotal)
	case EventLoginRequired:
		return "Session expired. Please login again."
	}
	return strings.TrimSpace(string(e.Type) + " " + e.Reason)
}

func (e Event) label() string {
	if e.Title != "" {
		return e.Title
	}
	return e.Destination
}

// Status is a snapshot of a user's delivery worker
type Status struct {
	Running   bool       `json:"running"`
	Round     int        `json:"round"`
	Sent      int        `json:"sent"`
	Total     int        `json:"total"`
	SentTotal int64      `json:"sent_total"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// CommandType is the action requested over the command stream
type CommandType string

const (
	CommandStart CommandType = "start"
	CommandStop  CommandType = "stop"
)

// Command is a start or stop request received from the command stream
type Command struct {
	Type   CommandType `json:"type"`
	UserID int64       `json:"user_id"`
}
