package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Aztech-1729/sliptads/internal/domain"
)

func newTestClient(t *testing.T) *MTProtoClient {
	t.Helper()

	client, err := NewMTProtoClient(MTProtoClientConfig{
		APIID:   1,
		APIHash: "hash",
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	return client
}

// droppingRunner serves until drop is closed, then fails like a broken connection
type droppingRunner struct {
	drop chan struct{}
}

func (r *droppingRunner) Run(ctx context.Context, f func(ctx context.Context) error) error {
	fctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- f(fctx) }()

	select {
	case <-r.drop:
		cancel()
		<-done
		return errors.New("connection reset by peer")
	case err := <-done:
		return err
	}
}

func (r *droppingRunner) API() *tg.Client {
	return tg.NewClient(nil)
}

func (r *droppingRunner) Auth() *auth.Client {
	return nil
}

// TestClient_ConnectionLost tests that a Run exit without Disconnect is observed by callers
func TestClient_ConnectionLost(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	fake := &droppingRunner{drop: make(chan struct{})}
	client.newRunner = func() runner { return fake }

	require.NoError(t, client.Connect(ctx))
	require.True(t, client.IsConnected())

	close(fake.drop)
	require.Eventually(t, func() bool { return !client.IsConnected() }, 5*time.Second, 5*time.Millisecond)

	target := domain.Target{DisplayID: "-100123", ChatID: 123, Channel: true}
	_, err := client.SendText(ctx, target, "hi")
	require.ErrorIs(t, err, domain.ErrNotConnected)

	require.NoError(t, client.Disconnect(ctx))

	// A new connection replaces the lost one
	fake.drop = make(chan struct{})
	require.NoError(t, client.Connect(ctx))
	require.True(t, client.IsConnected())
	require.NoError(t, client.Disconnect(ctx))
	require.False(t, client.IsConnected())
}

// TestNewMTProtoClient_Validation tests credential validation
func TestNewMTProtoClient_Validation(t *testing.T) {
	_, err := NewMTProtoClient(MTProtoClientConfig{APIHash: "hash"})
	require.Error(t, err)

	_, err = NewMTProtoClient(MTProtoClientConfig{APIID: 1})
	require.Error(t, err)
}

// TestClient_NotConnected tests error handling when client is not connected
func TestClient_NotConnected(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	target := domain.Target{DisplayID: "-100123", ChatID: 123, Channel: true}

	_, err := client.IsAuthorized(ctx)
	require.ErrorIs(t, err, domain.ErrNotConnected)

	_, err = client.RequestCode(ctx, "+15550000000")
	require.ErrorIs(t, err, domain.ErrNotConnected)

	_, err = client.ListChats(ctx, 10)
	require.ErrorIs(t, err, domain.ErrNotConnected)

	_, err = client.SendText(ctx, target, "hi")
	require.ErrorIs(t, err, domain.ErrNotConnected)

	_, err = client.Forward(ctx, target, domain.MessageRef{Peer: "me", MessageID: 1}, true)
	require.ErrorIs(t, err, domain.ErrNotConnected)

	_, err = client.FetchMessage(ctx, domain.MessageRef{Peer: "me", MessageID: 1})
	require.ErrorIs(t, err, domain.ErrNotConnected)

	_, err = client.LatestMessageID(ctx, domain.SavedMessagesPeer)
	require.ErrorIs(t, err, domain.ErrNotConnected)

	require.False(t, client.IsConnected())
	require.NoError(t, client.Disconnect(ctx))
}

// TestClient_ExportSession tests that export reads the bound storage
func TestClient_ExportSession(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	_, err := client.ExportSession(ctx)
	require.ErrorIs(t, err, domain.ErrNotAuthorized)

	require.NoError(t, client.storage.StoreSession(ctx, []byte("handle")))
	data, err := client.ExportSession(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("handle"), data)
}

// TestClient_ResolveIsPure tests that resolving the same display id twice gives equal targets
func TestClient_ResolveIsPure(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	client.chats = map[string]domain.ChatDescriptor{
		"-100123": {ID: 123, AccessHash: 99, Title: "Alpha", Kind: domain.ChatKindSupergroup, Forum: true},
		"-55":     {ID: 55, Title: "Basic", Kind: domain.ChatKindGroup},
	}

	first, err := client.Resolve(ctx, "-100123:7")
	require.NoError(t, err)
	second, err := client.Resolve(ctx, "-100123:7")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 7, first.TopicID)
	require.Equal(t, int64(99), first.AccessHash)
	require.True(t, first.Channel)

	basic, err := client.Resolve(ctx, "-55")
	require.NoError(t, err)
	require.False(t, basic.Channel)
	require.IsType(t, &tg.InputPeerChat{}, inputPeer(basic))

	_, err = client.Resolve(ctx, "-100999")
	require.ErrorIs(t, err, domain.ErrUnsupportedPeer)
	require.Equal(t, domain.KindForbidden, domain.KindOf(err))

	_, err = client.Resolve(ctx, "garbage")
	require.Error(t, err)
}

// TestDescribeChat tests chat classification
func TestDescribeChat(t *testing.T) {
	d, ok := describeChat(&tg.Chat{ID: 1, Title: "g"})
	require.True(t, ok)
	require.Equal(t, domain.ChatKindGroup, d.Kind)

	_, ok = describeChat(&tg.Chat{ID: 2, Deactivated: true})
	require.False(t, ok)

	d, ok = describeChat(&tg.Channel{ID: 3, AccessHash: 4, Title: "c", Broadcast: true})
	require.True(t, ok)
	require.Equal(t, domain.ChatKindChannel, d.Kind)

	d, ok = describeChat(&tg.Channel{ID: 5, Title: "f", Megagroup: true, Forum: true})
	require.True(t, ok)
	require.Equal(t, domain.ChatKindSupergroup, d.Kind)
	require.True(t, d.Forum)

	_, ok = describeChat(&tg.ChatForbidden{ID: 6})
	require.False(t, ok)
}

// TestSentMessageID tests message id extraction from send results
func TestSentMessageID(t *testing.T) {
	require.Equal(t, 11, sentMessageID(&tg.UpdateShortSentMessage{ID: 11}))

	updates := &tg.Updates{Updates: []tg.UpdateClass{
		&tg.UpdateMessageID{ID: 5, RandomID: 1},
		&tg.UpdateNewChannelMessage{Message: &tg.Message{ID: 42}},
	}}
	require.Equal(t, 42, sentMessageID(updates))

	onlyID := &tg.Updates{Updates: []tg.UpdateClass{&tg.UpdateMessageID{ID: 5}}}
	require.Equal(t, 5, sentMessageID(onlyID))

	require.Equal(t, 0, sentMessageID(&tg.UpdatesTooLong{}))
}

// TestReusableMedia tests media conversion for copies
func TestReusableMedia(t *testing.T) {
	photo := reusableMedia(&tg.MessageMediaPhoto{Photo: &tg.Photo{ID: 1, AccessHash: 2, FileReference: []byte{3}}})
	require.IsType(t, &tg.InputMediaPhoto{}, photo)

	doc := reusableMedia(&tg.MessageMediaDocument{Document: &tg.Document{ID: 1}})
	require.IsType(t, &tg.InputMediaDocument{}, doc)

	require.Nil(t, reusableMedia(&tg.MessageMediaGeo{}))
	require.Nil(t, reusableMedia(nil))
}

// TestUploadedMedia tests attributes per media kind
func TestUploadedMedia(t *testing.T) {
	file := &tg.InputFile{ID: 1, Name: "a"}

	photo := uploadedMedia(domain.MediaFile{Name: "a.jpg", Kind: domain.MediaPhoto}, file)
	require.IsType(t, &tg.InputMediaUploadedPhoto{}, photo)

	video := uploadedMedia(domain.MediaFile{Name: "a.mp4", Kind: domain.MediaVideo, Data: []byte("x")}, file)
	doc, ok := video.(*tg.InputMediaUploadedDocument)
	require.True(t, ok)
	require.Len(t, doc.Attributes, 2)
	require.False(t, doc.ForceFile)
	require.NotEmpty(t, doc.MimeType)

	document := uploadedMedia(domain.MediaFile{Name: "a.pdf", Kind: domain.MediaDocument}, file)
	require.True(t, document.(*tg.InputMediaUploadedDocument).ForceFile)
}
