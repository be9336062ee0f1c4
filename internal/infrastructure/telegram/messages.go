package telegram

import (
	"context"
	"crypto/rand"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"
	"github.com/gotd/td/crypto"
	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"

	"github.com/Aztech-1729/sliptads/internal/domain"
)

func randomID() (int64, error) {
	return crypto.RandInt64(rand.Reader)
}

func replyTo(topicID int) tg.InputReplyToClass {
	if topicID == 0 {
		return nil
	}
	return &tg.InputReplyToMessage{ReplyToMsgID: topicID}
}

func (c *MTProtoClient) sent(target domain.Target, updates tg.UpdatesClass) domain.SentMessage {
	return domain.SentMessage{
		ID:            sentMessageID(updates),
		ChatDisplayID: target.ChatDisplayID(),
		TopicID:       target.TopicID,
	}
}

// SendText sends a plain text message, into the topic if the target has one
func (c *MTProtoClient) SendText(ctx context.Context, target domain.Target, text string) (domain.SentMessage, error) {
	_, api, err := c.ready(ctx)
	if err != nil {
		return domain.SentMessage{}, err
	}

	rid, err := randomID()
	if err != nil {
		return domain.SentMessage{}, err
	}

	updates, err := api.MessagesSendMessage(ctx, &tg.MessagesSendMessageRequest{
		Peer:     inputPeer(target),
		ReplyTo:  replyTo(target.TopicID),
		Message:  text,
		RandomID: rid,
	})
	if err != nil {
		return domain.SentMessage{}, classify(errors.Wrapf(err, "send text to %s", target.DisplayID))
	}

	return c.sent(target, updates), nil
}

// SendMedia uploads file and sends it with caption
func (c *MTProtoClient) SendMedia(ctx context.Context, target domain.Target, file domain.MediaFile, caption string) (domain.SentMessage, error) {
	_, api, err := c.ready(ctx)
	if err != nil {
		return domain.SentMessage{}, err
	}

	uploaded, err := uploader.NewUploader(api).FromBytes(ctx, file.Name, file.Data)
	if err != nil {
		return domain.SentMessage{}, classify(errors.Wrapf(err, "upload %s", file.Name))
	}

	rid, err := randomID()
	if err != nil {
		return domain.SentMessage{}, err
	}

	updates, err := api.MessagesSendMedia(ctx, &tg.MessagesSendMediaRequest{
		Peer:     inputPeer(target),
		ReplyTo:  replyTo(target.TopicID),
		Media:    uploadedMedia(file, uploaded),
		Message:  caption,
		RandomID: rid,
	})
	if err != nil {
		return domain.SentMessage{}, classify(errors.Wrapf(err, "send media to %s", target.DisplayID))
	}

	return c.sent(target, updates), nil
}

// uploadedMedia builds the input media for an uploaded file
func uploadedMedia(file domain.MediaFile, uploaded tg.InputFileClass) tg.InputMediaClass {
	if file.Kind == domain.MediaPhoto {
		return &tg.InputMediaUploadedPhoto{File: uploaded}
	}

	attributes := []tg.DocumentAttributeClass{
		&tg.DocumentAttributeFilename{FileName: file.Name},
	}
	switch file.Kind {
	case domain.MediaVideo:
		attributes = append(attributes, &tg.DocumentAttributeVideo{SupportsStreaming: true})
	case domain.MediaAnimation:
		attributes = append(attributes, &tg.DocumentAttributeAnimated{})
	}

	return &tg.InputMediaUploadedDocument{
		File:       uploaded,
		MimeType:   mimetype.Detect(file.Data).String(),
		Attributes: attributes,
		ForceFile:  file.Kind == domain.MediaDocument,
	}
}

// Forward forwards ref to target. preserveAuthor=false drops the forward header.
func (c *MTProtoClient) Forward(ctx context.Context, target domain.Target, ref domain.MessageRef, preserveAuthor bool) (domain.SentMessage, error) {
	_, api, err := c.ready(ctx)
	if err != nil {
		return domain.SentMessage{}, err
	}

	from, err := c.resolvePeer(ctx, ref.Peer)
	if err != nil {
		return domain.SentMessage{}, err
	}

	rid, err := randomID()
	if err != nil {
		return domain.SentMessage{}, err
	}

	updates, err := api.MessagesForwardMessages(ctx, &tg.MessagesForwardMessagesRequest{
		FromPeer:   from,
		ID:         []int{ref.MessageID},
		RandomID:   []int64{rid},
		ToPeer:     inputPeer(target),
		TopMsgID:   target.TopicID,
		DropAuthor: !preserveAuthor,
	})
	if err != nil {
		return domain.SentMessage{}, classify(errors.Wrapf(err, "forward %d to %s", ref.MessageID, target.DisplayID))
	}

	return c.sent(target, updates), nil
}

// FetchMessage loads a message and extracts its resendable content
func (c *MTProtoClient) FetchMessage(ctx context.Context, ref domain.MessageRef) (domain.MessageContent, error) {
	_, api, err := c.ready(ctx)
	if err != nil {
		return domain.MessageContent{}, err
	}

	from, err := c.resolvePeer(ctx, ref.Peer)
	if err != nil {
		return domain.MessageContent{}, err
	}

	ids := []tg.InputMessageClass{&tg.InputMessageID{ID: ref.MessageID}}

	var res tg.MessagesMessagesClass
	if ch, ok := from.(*tg.InputPeerChannel); ok {
		res, err = api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
			Channel: &tg.InputChannel{ChannelID: ch.ChannelID, AccessHash: ch.AccessHash},
			ID:      ids,
		})
	} else {
		res, err = api.MessagesGetMessages(ctx, ids)
	}
	if err != nil {
		return domain.MessageContent{}, classify(errors.Wrapf(err, "get message %d", ref.MessageID))
	}

	msg, ok := findMessage(res, ref.MessageID)
	if !ok {
		return domain.MessageContent{}, domain.NewRemoteError(domain.KindInvalidMessage, domain.ErrMessageNotFound)
	}

	content := domain.MessageContent{Text: msg.Message}
	if len(msg.Entities) > 0 {
		content.Entities = msg.Entities
	}
	if media := reusableMedia(msg.Media); media != nil {
		content.Media = media
	}
	if content.Empty() {
		return domain.MessageContent{}, domain.NewRemoteError(domain.KindInvalidMessage, domain.ErrMessageNotFound)
	}

	return content, nil
}

// LatestMessageID returns the id of the newest message in peer
func (c *MTProtoClient) LatestMessageID(ctx context.Context, peer string) (int, error) {
	_, api, err := c.ready(ctx)
	if err != nil {
		return 0, err
	}

	from, err := c.resolvePeer(ctx, peer)
	if err != nil {
		return 0, err
	}

	res, err := api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  from,
		Limit: 1,
	})
	if err != nil {
		return 0, classify(errors.Wrapf(err, "get history of %s", peer))
	}

	for _, m := range messagesOf(res) {
		if msg, ok := m.(*tg.Message); ok {
			return msg.ID, nil
		}
	}
	return 0, domain.NewRemoteError(domain.KindInvalidMessage, domain.ErrMessageNotFound)
}

func messagesOf(res tg.MessagesMessagesClass) []tg.MessageClass {
	switch v := res.(type) {
	case *tg.MessagesMessages:
		return v.Messages
	case *tg.MessagesMessagesSlice:
		return v.Messages
	case *tg.MessagesChannelMessages:
		return v.Messages
	}
	return nil
}

func findMessage(res tg.MessagesMessagesClass, id int) (*tg.Message, bool) {
	for _, m := range messagesOf(res) {
		if msg, ok := m.(*tg.Message); ok && msg.ID == id {
			return msg, true
		}
	}
	return nil, false
}

// reusableMedia returns input media referencing already uploaded photos and documents
func reusableMedia(media tg.MessageMediaClass) tg.InputMediaClass {
	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		if p, ok := m.Photo.(*tg.Photo); ok {
			return &tg.InputMediaPhoto{ID: &tg.InputPhoto{
				ID:            p.ID,
				AccessHash:    p.AccessHash,
				FileReference: p.FileReference,
			}}
		}
	case *tg.MessageMediaDocument:
		if d, ok := m.Document.(*tg.Document); ok {
			return &tg.InputMediaDocument{ID: &tg.InputDocument{
				ID:            d.ID,
				AccessHash:    d.AccessHash,
				FileReference: d.FileReference,
			}}
		}
	}
	return nil
}

// SendContent resends fetched content as a new message
func (c *MTProtoClient) SendContent(ctx context.Context, target domain.Target, content domain.MessageContent) (domain.SentMessage, error) {
	if content.Empty() {
		return domain.SentMessage{}, domain.NewRemoteError(domain.KindInvalidMessage, domain.ErrMessageNotFound)
	}

	_, api, err := c.ready(ctx)
	if err != nil {
		return domain.SentMessage{}, err
	}

	entities, _ := content.Entities.([]tg.MessageEntityClass)

	rid, err := randomID()
	if err != nil {
		return domain.SentMessage{}, err
	}

	var updates tg.UpdatesClass
	if media, ok := content.Media.(tg.InputMediaClass); ok && media != nil {
		updates, err = api.MessagesSendMedia(ctx, &tg.MessagesSendMediaRequest{
			Peer:     inputPeer(target),
			ReplyTo:  replyTo(target.TopicID),
			Media:    media,
			Message:  content.Text,
			Entities: entities,
			RandomID: rid,
		})
	} else {
		updates, err = api.MessagesSendMessage(ctx, &tg.MessagesSendMessageRequest{
			Peer:     inputPeer(target),
			ReplyTo:  replyTo(target.TopicID),
			Message:  content.Text,
			Entities: entities,
			RandomID: rid,
		})
	}
	if err != nil {
		return domain.SentMessage{}, classify(errors.Wrapf(err, "send copy to %s", target.DisplayID))
	}

	return c.sent(target, updates), nil
}

// sentMessageID extracts the id of the message a send call created
func sentMessageID(u tg.UpdatesClass) int {
	var list []tg.UpdateClass
	switch v := u.(type) {
	case *tg.UpdateShortSentMessage:
		return v.ID
	case *tg.Updates:
		list = v.Updates
	case *tg.UpdatesCombined:
		list = v.Updates
	default:
		return 0
	}

	fallback := 0
	for _, upd := range list {
		switch x := upd.(type) {
		case *tg.UpdateNewChannelMessage:
			if m, ok := x.Message.(*tg.Message); ok {
				return m.ID
			}
		case *tg.UpdateNewMessage:
			if m, ok := x.Message.(*tg.Message); ok {
				return m.ID
			}
		case *tg.UpdateMessageID:
			fallback = x.ID
		}
	}
	return fallback
}
