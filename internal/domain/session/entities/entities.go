package entities

import (
	"strings"
	"time"
)

// DestinationKind is the classification tag used for bulk selection
type DestinationKind string

const (
	KindGroup DestinationKind = "group"
	KindTopic DestinationKind = "topic"
	// KindAll matches every destination in bulk operations
	KindAll DestinationKind = "all"
)

// Matches reports whether kind k is covered by a bulk operation on want
func (k DestinationKind) Matches(want DestinationKind) bool {
	return want == KindAll || want == "" || k == want
}

// Destination is one selectable send target in the user's catalog
type Destination struct {
	DisplayID   string          `json:"display_id"`
	Title       string          `json:"title"`
	Pinned      bool            `json:"pinned"`
	Kind        DestinationKind `json:"kind"`
	ChatID      int64           `json:"chat_id"`
	TopicID     int             `json:"topic_id,omitempty"`
	ParentTitle string          `json:"parent_title,omitempty"`
}

// MessageSource tags which kind of message the worker delivers
type MessageSource string

const (
	SourceNone         MessageSource = ""
	SourceCustom       MessageSource = "custom"
	SourceSavedCopy    MessageSource = "saved_copy"
	SourceSavedForward MessageSource = "saved_forward"
	SourcePostLink     MessageSource = "post_link"
)

// IsForward reports whether the source is delivered by tag-preserving forward
func (s MessageSource) IsForward() bool {
	return s == SourceSavedForward || s == SourcePostLink
}

// AdConfig is the user's ad configuration
type AdConfig struct {
	Source     MessageSource `json:"source"`
	Text       string        `json:"text,omitempty"`
	MediaPath  string        `json:"media_path,omitempty"`
	MediaKind  string        `json:"media_kind,omitempty"`
	SourcePeer string        `json:"source_peer,omitempty"`
	MessageID  int           `json:"message_id,omitempty"`
	PostLink   string        `json:"post_link,omitempty"`
	Fallback   string        `json:"fallback,omitempty"`
	RoundDelay time.Duration `json:"round_delay"`
	SendGap    time.Duration `json:"send_gap"`
	Targets    []string      `json:"targets"`
	Locked     bool          `json:"locked"`
}

// Missing returns the first missing piece that prevents a worker from starting,
// or an empty string when the configuration is complete.
func (a AdConfig) Missing() string {
	switch {
	case a.Source == SourceNone:
		return "message source"
	case a.Source == SourceCustom && strings.TrimSpace(a.Text) == "" && a.MediaPath == "":
		return "message text or media"
	case (a.Source == SourceSavedCopy || a.Source.IsForward()) && a.MessageID == 0:
		return "source message"
	case a.Source.IsForward() && strings.TrimSpace(a.Fallback) == "":
		return "fallback message"
	case len(a.Targets) == 0:
		return "destinations"
	}
	return ""
}

// Session is the durable per-user record
type Session struct {
	UserID        int64
	APIID         int
	APIHash       string
	Phone         string
	HasHandle     bool
	LoggerStarted bool
	Ad            AdConfig
	Catalog       []Destination
	Selected      []string
	Filter        string
	SentTotal     int64
	PremiumUntil  time.Time // zero when premium was never granted or was revoked
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// New creates an empty session for userID with the given timing defaults
func New(userID int64, roundDelay time.Duration) *Session {
	return &Session{
		UserID: userID,
		Ad: AdConfig{
			RoundDelay: roundDelay,
		},
	}
}

// Clone returns a deep copy
func (s *Session) Clone() *Session {
	c := *s
	c.Ad.Targets = append([]string(nil), s.Ad.Targets...)
	c.Catalog = append([]Destination(nil), s.Catalog...)
	c.Selected = append([]string(nil), s.Selected...)
	return &c
}

// PremiumActive reports whether paid access runs past now
func (s *Session) PremiumActive(now time.Time) bool {
	return s.PremiumUntil.After(now)
}

// IsSelected reports whether displayID is in the current selection
func (s *Session) IsSelected(displayID string) bool {
	for _, id := range s.Selected {
		if id == displayID {
			return true
		}
	}
	return false
}

// FindDestination looks up a catalog entry by display id
func (s *Session) FindDestination(displayID string) (Destination, bool) {
	for _, d := range s.Catalog {
		if d.DisplayID == displayID {
			return d, true
		}
	}
	return Destination{}, false
}
