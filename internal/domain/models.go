package domain

import (
	"github.com/Aztech-1729/sliptads/pkg/tglink"
)

// ChatKind classifies a joined chat
type ChatKind string

const (
	ChatKindGroup      ChatKind = "group"      // basic group
	ChatKindSupergroup ChatKind = "supergroup" // megagroup
	ChatKindChannel    ChatKind = "channel"    // broadcast channel
	ChatKindPrivate    ChatKind = "private"
)

// ChatDescriptor describes one joined chat as returned by ListChats
type ChatDescriptor struct {
	ID         int64
	AccessHash int64
	Title      string
	Kind       ChatKind
	Pinned     bool
	Forum      bool
}

// DisplayID returns "-100<id>" for supergroups and channels and "-<id>" for basic groups
func (c ChatDescriptor) DisplayID() string {
	if c.Kind == ChatKindGroup {
		return tglink.ChatDisplayID(c.ID)
	}
	return tglink.ChannelDisplayID(c.ID)
}

// JoinedChat is the outcome of a successful join
type JoinedChat struct {
	Chat          ChatDescriptor
	AlreadyMember bool
	// Pending is set when the invite needs admin approval
	Pending bool
}

// Topic is a forum topic
type Topic struct {
	ID    int
	Title string
}

// Target is a resolved, sendable destination
type Target struct {
	DisplayID  string
	ChatID     int64
	Channel    bool
	AccessHash int64
	TopicID    int
	Title      string
}

// ChatDisplayID returns the display id of the chat the target belongs to
func (t Target) ChatDisplayID() string {
	if t.Channel {
		return tglink.ChannelDisplayID(t.ChatID)
	}
	return tglink.ChatDisplayID(t.ChatID)
}

// MessageRef points at an existing message. Peer is "me", a username or a display id.
type MessageRef struct {
	Peer      string
	MessageID int
}

// SavedMessagesPeer refers to the user's own saved messages
const SavedMessagesPeer = "me"

// MessageContent is the resendable content of a fetched message
type MessageContent struct {
	Text string
	// Media is a client specific reusable media handle, nil for text only messages
	Media any
	// Entities is a client specific formatting payload
	Entities any
}

// Empty reports whether there is nothing to resend
func (m MessageContent) Empty() bool {
	return m.Text == "" && m.Media == nil
}

// MediaKind is the type of a custom media attachment
type MediaKind string

const (
	MediaPhoto     MediaKind = "photo"
	MediaVideo     MediaKind = "video"
	MediaAnimation MediaKind = "animation"
	MediaDocument  MediaKind = "document"
)

// MediaFile is a media payload ready for upload
type MediaFile struct {
	Name string
	Kind MediaKind
	Data []byte
}

// SentMessage identifies a delivered message
type SentMessage struct {
	ID            int
	ChatDisplayID string
	TopicID       int
}

// Link returns the public t.me/c link of the sent message
func (s SentMessage) Link() string {
	if s.ID == 0 || s.ChatDisplayID == "" {
		return ""
	}
	return tglink.MessageLink(s.ChatDisplayID, s.TopicID, s.ID)
}

// Credentials are the per-user application credentials
type Credentials struct {
	APIID   int
	APIHash string
	Phone   string
}
