// Package tglink parses and builds t.me links and the display identifiers
// used for chats and forum topics.
package tglink

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidLink is returned when a post link has no recognizable shape.
var ErrInvalidLink = errors.New("invalid post link")

// ErrInvalidDisplayID is returned when a display id cannot be parsed.
var ErrInvalidDisplayID = errors.New("invalid display id")

var (
	privateLinkRe = regexp.MustCompile(`^c/(\d+)/(?:(\d+)/)?(\d+)$`)
	publicLinkRe  = regexp.MustCompile(`^([A-Za-z0-9_]+)/(?:(\d+)/)?(\d+)$`)
)

// Post is the source of a message link.
// Exactly one of Username and ChatID is set.
type Post struct {
	Username  string
	ChatID    int64 // channel id without the -100 prefix
	MessageID int
}

// Peer returns the peer reference stored with the ad configuration: the
// username or the "-100<id>" display form.
func (p Post) Peer() string {
	if p.Username != "" {
		return p.Username
	}
	return ChannelDisplayID(p.ChatID)
}

// ParsePostLink accepts https://t.me/name/123, t.me/c/123456/789, @name/123
// and the topic forms t.me/c/<id>/<topic>/<msg>.
func ParsePostLink(link string) (Post, error) {
	s := strings.TrimSpace(link)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimLeft(s, "@")
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimPrefix(s, "t.me/")
	s = strings.TrimPrefix(s, "telegram.me/")
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, "/")

	if m := privateLinkRe.FindStringSubmatch(s); m != nil {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return Post{}, ErrInvalidLink
		}
		msgID, err := strconv.Atoi(m[3])
		if err != nil || msgID <= 0 {
			return Post{}, ErrInvalidLink
		}
		return Post{ChatID: id, MessageID: msgID}, nil
	}

	if m := publicLinkRe.FindStringSubmatch(s); m != nil {
		if m[1] == "c" {
			return Post{}, ErrInvalidLink
		}
		msgID, err := strconv.Atoi(m[3])
		if err != nil || msgID <= 0 {
			return Post{}, ErrInvalidLink
		}
		return Post{Username: m[1], MessageID: msgID}, nil
	}

	return Post{}, ErrInvalidLink
}

// ChannelDisplayID renders a channel/megagroup id as "-100<id>".
func ChannelDisplayID(id int64) string {
	return "-100" + strconv.FormatInt(id, 10)
}

// ChatDisplayID renders a basic group id as "-<id>".
func ChatDisplayID(id int64) string {
	return "-" + strconv.FormatInt(id, 10)
}

// TopicDisplayID renders a forum topic as "<chat display id>:<topic id>".
func TopicDisplayID(chatDisplayID string, topicID int) string {
	return chatDisplayID + ":" + strconv.Itoa(topicID)
}

// DisplayID is a parsed display identifier.
type DisplayID struct {
	ID      int64 // raw id without prefix
	Channel bool  // "-100" prefix
	TopicID int   // 0 when the destination is the whole chat
}

// String renders the display id back to its canonical form.
func (d DisplayID) String() string {
	var base string
	if d.Channel {
		base = ChannelDisplayID(d.ID)
	} else {
		base = ChatDisplayID(d.ID)
	}
	if d.TopicID != 0 {
		return TopicDisplayID(base, d.TopicID)
	}
	return base
}

// ChatDisplayID returns the display id of the chat without the topic part.
func (d DisplayID) ChatDisplayID() string {
	d.TopicID = 0
	return d.String()
}

// ParseDisplayID parses "-100<id>", "-<id>" and their ":<topic>" forms.
func ParseDisplayID(s string) (DisplayID, error) {
	var out DisplayID

	chatPart := s
	if i := strings.IndexByte(s, ':'); i >= 0 {
		chatPart = s[:i]
		topic, err := strconv.Atoi(s[i+1:])
		if err != nil || topic <= 0 {
			return DisplayID{}, fmt.Errorf("%w: %q", ErrInvalidDisplayID, s)
		}
		out.TopicID = topic
	}

	switch {
	case strings.HasPrefix(chatPart, "-100") && len(chatPart) > 4:
		out.Channel = true
		chatPart = chatPart[4:]
	case strings.HasPrefix(chatPart, "-") && len(chatPart) > 1:
		chatPart = chatPart[1:]
	default:
		return DisplayID{}, fmt.Errorf("%w: %q", ErrInvalidDisplayID, s)
	}

	id, err := strconv.ParseInt(chatPart, 10, 64)
	if err != nil || id <= 0 {
		return DisplayID{}, fmt.Errorf("%w: %q", ErrInvalidDisplayID, s)
	}
	out.ID = id

	return out, nil
}

// MessageLink builds https://t.me/c/<id>/<msg> for a sent message, or
// https://t.me/c/<id>/<topic>/<msg> when it was posted into a forum topic.
func MessageLink(chatDisplayID string, topicID, messageID int) string {
	id := strings.TrimPrefix(chatDisplayID, "-100")
	if id == chatDisplayID {
		id = strings.TrimPrefix(chatDisplayID, "-")
	}
	if i := strings.IndexByte(id, ':'); i >= 0 {
		id = id[:i]
	}
	if topicID != 0 {
		return fmt.Sprintf("https://t.me/c/%s/%d/%d", id, topicID, messageID)
	}
	return fmt.Sprintf("https://t.me/c/%s/%d", id, messageID)
}

// ErrInvalidJoinTarget is returned for tokens that name nothing joinable.
var ErrInvalidJoinTarget = errors.New("invalid join target")

var (
	inviteLinkRe = regexp.MustCompile(`(?:t\.me|telegram\.me)/(?:\+|joinchat/)([A-Za-z0-9_-]+)`)
	publicChatRe = regexp.MustCompile(`(?:t\.me|telegram\.me)/([A-Za-z0-9_]{3,})`)
	usernameRe   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{2,31}$`)
	numericIDRe  = regexp.MustCompile(`^-?\d{5,}$`)
	separatorsRe = regexp.MustCompile(`[,|\n]+`)
)

// JoinTarget is a chat to join. Exactly one field is set.
type JoinTarget struct {
	Invite    string // hash of a private invite link
	Username  string // public username without "@"
	DisplayID string // a chat the account can already see
}

func (t JoinTarget) String() string {
	switch {
	case t.Invite != "":
		return "+" + t.Invite
	case t.Username != "":
		return "@" + t.Username
	}
	return t.DisplayID
}

// ParseJoinTarget accepts invite links (t.me/+hash, t.me/joinchat/hash),
// public links and @usernames, and numeric ids. A bare positive id is
// taken as a channel id.
func ParseJoinTarget(token string) (JoinTarget, error) {
	s := strings.TrimSpace(token)

	if numericIDRe.MatchString(s) {
		if !strings.HasPrefix(s, "-") {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return JoinTarget{}, fmt.Errorf("%w: %q", ErrInvalidJoinTarget, token)
			}
			return JoinTarget{DisplayID: ChannelDisplayID(id)}, nil
		}
		id, err := ParseDisplayID(s)
		if err != nil {
			return JoinTarget{}, fmt.Errorf("%w: %q", ErrInvalidJoinTarget, token)
		}
		return JoinTarget{DisplayID: id.ChatDisplayID()}, nil
	}

	if m := inviteLinkRe.FindStringSubmatch(s); m != nil {
		return JoinTarget{Invite: m[1]}, nil
	}
	if m := publicChatRe.FindStringSubmatch(s); m != nil {
		if !usernameRe.MatchString(m[1]) {
			return JoinTarget{}, fmt.Errorf("%w: %q", ErrInvalidJoinTarget, token)
		}
		return JoinTarget{Username: m[1]}, nil
	}

	name := strings.TrimPrefix(s, "@")
	if !usernameRe.MatchString(name) {
		return JoinTarget{}, fmt.Errorf("%w: %q", ErrInvalidJoinTarget, token)
	}
	return JoinTarget{Username: name}, nil
}

// SplitTargets splits a pasted list on commas, pipes and newlines
func SplitTargets(raw string) []string {
	var out []string
	for _, tok := range separatorsRe.Split(raw, -1) {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
