package telegram

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/pkg/tglink"
)

// ListChats returns the joined groups, supergroups and channels, up to limit
func (c *MTProtoClient) ListChats(ctx context.Context, limit int) ([]domain.ChatDescriptor, error) {
	_, api, err := c.ready(ctx)
	if err != nil {
		return nil, err
	}

	res, err := api.MessagesGetAllChats(ctx, nil)
	if err != nil {
		return nil, classify(errors.Wrap(err, "get chats"))
	}

	var raw []tg.ChatClass
	switch v := res.(type) {
	case *tg.MessagesChats:
		raw = v.Chats
	case *tg.MessagesChatsSlice:
		raw = v.Chats
	}

	pinned := c.pinnedPeers(ctx, api)

	chats := make([]domain.ChatDescriptor, 0, len(raw))
	for _, ch := range raw {
		desc, ok := describeChat(ch)
		if !ok {
			continue
		}
		desc.Pinned = pinned[desc.DisplayID()]
		chats = append(chats, desc)
		if limit > 0 && len(chats) >= limit {
			break
		}
	}

	c.chatsMu.Lock()
	c.chats = make(map[string]domain.ChatDescriptor, len(chats))
	for _, ch := range chats {
		c.chats[ch.DisplayID()] = ch
	}
	c.chatsMu.Unlock()

	c.logger.Debug().Int("chats", len(chats)).Msg("listed chats")
	return chats, nil
}

// pinnedPeers returns display ids of pinned dialogs. Failures yield an empty set.
func (c *MTProtoClient) pinnedPeers(ctx context.Context, api *tg.Client) map[string]bool {
	pinned := make(map[string]bool)

	res, err := api.MessagesGetPinnedDialogs(ctx, 0)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to get pinned dialogs")
		return pinned
	}

	for _, d := range res.Dialogs {
		dialog, ok := d.(*tg.Dialog)
		if !ok {
			continue
		}
		switch p := dialog.Peer.(type) {
		case *tg.PeerChannel:
			pinned[tglink.ChannelDisplayID(p.ChannelID)] = true
		case *tg.PeerChat:
			pinned[tglink.ChatDisplayID(p.ChatID)] = true
		}
	}
	return pinned
}

// describeChat converts a raw chat. Left, deactivated and forbidden chats are skipped.
func describeChat(ch tg.ChatClass) (domain.ChatDescriptor, bool) {
	switch v := ch.(type) {
	case *tg.Chat:
		if v.Left || v.Deactivated {
			return domain.ChatDescriptor{}, false
		}
		return domain.ChatDescriptor{
			ID:    v.ID,
			Title: v.Title,
			Kind:  domain.ChatKindGroup,
		}, true
	case *tg.Channel:
		if v.Left {
			return domain.ChatDescriptor{}, false
		}
		kind := domain.ChatKindSupergroup
		if v.Broadcast {
			kind = domain.ChatKindChannel
		}
		return domain.ChatDescriptor{
			ID:         v.ID,
			AccessHash: v.AccessHash,
			Title:      v.Title,
			Kind:       kind,
			Forum:      v.Forum,
		}, true
	}
	return domain.ChatDescriptor{}, false
}

// ListTopics returns the forum topics of chat
func (c *MTProtoClient) ListTopics(ctx context.Context, chat domain.ChatDescriptor, limit int) ([]domain.Topic, error) {
	_, api, err := c.ready(ctx)
	if err != nil {
		return nil, err
	}

	res, err := api.ChannelsGetForumTopics(ctx, &tg.ChannelsGetForumTopicsRequest{
		Channel: &tg.InputChannel{ChannelID: chat.ID, AccessHash: chat.AccessHash},
		Limit:   limit,
	})
	if err != nil {
		return nil, classify(errors.Wrapf(err, "get topics of %d", chat.ID))
	}

	topics := make([]domain.Topic, 0, len(res.Topics))
	for _, t := range res.Topics {
		topic, ok := t.(*tg.ForumTopic)
		if !ok {
			continue
		}
		topics = append(topics, domain.Topic{ID: topic.ID, Title: topic.Title})
	}
	return topics, nil
}

// Resolve turns a display id into a sendable target. It only reads the joined chat list.
func (c *MTProtoClient) Resolve(ctx context.Context, displayID string) (domain.Target, error) {
	id, err := tglink.ParseDisplayID(displayID)
	if err != nil {
		return domain.Target{}, err
	}

	chat, err := c.lookupChat(ctx, id.ChatDisplayID())
	if err != nil {
		return domain.Target{}, err
	}

	return domain.Target{
		DisplayID:  displayID,
		ChatID:     chat.ID,
		Channel:    chat.Kind != domain.ChatKindGroup,
		AccessHash: chat.AccessHash,
		TopicID:    id.TopicID,
		Title:      chat.Title,
	}, nil
}

func (c *MTProtoClient) lookupChat(ctx context.Context, chatDisplayID string) (domain.ChatDescriptor, error) {
	c.chatsMu.Lock()
	loaded := c.chats != nil
	chat, ok := c.chats[chatDisplayID]
	c.chatsMu.Unlock()

	if !loaded {
		if _, err := c.ListChats(ctx, 0); err != nil {
			return domain.ChatDescriptor{}, err
		}
		c.chatsMu.Lock()
		chat, ok = c.chats[chatDisplayID]
		c.chatsMu.Unlock()
	}

	if !ok {
		return domain.ChatDescriptor{}, domain.NewRemoteError(domain.KindForbidden,
			fmt.Errorf("%w: chat %s is not joined", domain.ErrUnsupportedPeer, chatDisplayID))
	}
	return chat, nil
}

func inputPeer(t domain.Target) tg.InputPeerClass {
	if t.Channel {
		return &tg.InputPeerChannel{ChannelID: t.ChatID, AccessHash: t.AccessHash}
	}
	return &tg.InputPeerChat{ChatID: t.ChatID}
}

// resolvePeer resolves a message reference peer: "me", a display id or a username
func (c *MTProtoClient) resolvePeer(ctx context.Context, peer string) (tg.InputPeerClass, error) {
	if peer == "" || peer == domain.SavedMessagesPeer {
		return &tg.InputPeerSelf{}, nil
	}

	if peer[0] == '-' {
		target, err := c.Resolve(ctx, peer)
		if err != nil {
			return nil, err
		}
		return inputPeer(target), nil
	}

	c.mu.RLock()
	manager := c.peers
	c.mu.RUnlock()
	if manager == nil {
		return nil, domain.ErrNotConnected
	}

	p, err := manager.ResolveDomain(ctx, peer)
	if err != nil {
		return nil, classify(errors.Wrapf(err, "resolve @%s", peer))
	}
	if p != nil {
		return p.InputPeer(), nil
	}

	return nil, fmt.Errorf("%w: @%s", domain.ErrUnsupportedPeer, peer)
}

// Join joins a chat by invite hash or public username. A display id can
// only name a chat that is already joined.
func (c *MTProtoClient) Join(ctx context.Context, target tglink.JoinTarget) (domain.JoinedChat, error) {
	_, api, err := c.ready(ctx)
	if err != nil {
		return domain.JoinedChat{}, err
	}

	var (
		updates tg.UpdatesClass
		already bool
	)
	switch {
	case target.Invite != "":
		updates, err = api.MessagesImportChatInvite(ctx, target.Invite)
		if tgerr.Is(err, "USER_ALREADY_PARTICIPANT") {
			return c.inviteChat(ctx, api, target.Invite)
		}
		if tgerr.Is(err, "INVITE_REQUEST_SENT") {
			return domain.JoinedChat{Pending: true}, nil
		}
	case target.Username != "":
		var channel tg.InputChannelClass
		channel, err = c.publicChannel(ctx, target.Username)
		if err != nil {
			return domain.JoinedChat{}, err
		}
		updates, err = api.ChannelsJoinChannel(ctx, channel)
		if tgerr.Is(err, "USER_ALREADY_PARTICIPANT") {
			err, already = nil, true
		}
	default:
		chat, err := c.lookupChat(ctx, target.DisplayID)
		if err != nil {
			return domain.JoinedChat{}, err
		}
		return domain.JoinedChat{Chat: chat, AlreadyMember: true}, nil
	}
	if err != nil {
		return domain.JoinedChat{}, classify(errors.Wrapf(err, "join %s", target))
	}

	joined := domain.JoinedChat{AlreadyMember: already}
	if chat, ok := firstChat(updates); ok {
		joined.Chat = chat
		c.remember(chat)
	}

	c.logger.Info().Str("target", target.String()).Str("title", joined.Chat.Title).Msg("joined chat")
	return joined, nil
}

func (c *MTProtoClient) inviteChat(ctx context.Context, api *tg.Client, hash string) (domain.JoinedChat, error) {
	invite, err := api.MessagesCheckChatInvite(ctx, hash)
	if err != nil {
		return domain.JoinedChat{}, classify(errors.Wrap(err, "check invite"))
	}
	joined := domain.JoinedChat{AlreadyMember: true}
	if already, ok := invite.(*tg.ChatInviteAlready); ok {
		if chat, ok := describeChat(already.Chat); ok {
			joined.Chat = chat
		}
	}
	return joined, nil
}

func (c *MTProtoClient) publicChannel(ctx context.Context, username string) (tg.InputChannelClass, error) {
	c.mu.RLock()
	manager := c.peers
	c.mu.RUnlock()
	if manager == nil {
		return nil, domain.ErrNotConnected
	}

	p, err := manager.ResolveDomain(ctx, username)
	if err != nil {
		return nil, classify(errors.Wrapf(err, "resolve @%s", username))
	}
	ch, ok := p.InputPeer().(*tg.InputPeerChannel)
	if !ok {
		return nil, domain.NewRemoteError(domain.KindInvalidTarget,
			fmt.Errorf("%w: @%s is not a group or channel", domain.ErrUnsupportedPeer, username))
	}
	return &tg.InputChannel{ChannelID: ch.ChannelID, AccessHash: ch.AccessHash}, nil
}

// remember adds a freshly joined chat to the cached chat list
func (c *MTProtoClient) remember(chat domain.ChatDescriptor) {
	c.chatsMu.Lock()
	defer c.chatsMu.Unlock()
	if c.chats != nil {
		c.chats[chat.DisplayID()] = chat
	}
}

func firstChat(u tg.UpdatesClass) (domain.ChatDescriptor, bool) {
	var chats []tg.ChatClass
	switch v := u.(type) {
	case *tg.Updates:
		chats = v.Chats
	case *tg.UpdatesCombined:
		chats = v.Chats
	}
	for _, ch := range chats {
		if desc, ok := describeChat(ch); ok {
			return desc, true
		}
	}
	return domain.ChatDescriptor{}, false
}
