// Package mocks holds hand-written test doubles for the domain interfaces.
// A nil func field makes the method succeed with a zero result.
package mocks

import (
	"context"
	"sync"

	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/pkg/tglink"
)

// RemoteClient is a func-field mock of domain.RemoteClient
type RemoteClient struct {
	ConnectFunc        func(ctx context.Context) error
	DisconnectFunc     func(ctx context.Context) error
	IsAuthorizedFunc   func(ctx context.Context) (bool, error)
	ExportSessionFunc  func(ctx context.Context) ([]byte, error)
	RequestCodeFunc    func(ctx context.Context, phone string) (string, error)
	SignInFunc         func(ctx context.Context, phone, code, codeHash string) error
	SignInPasswordFunc func(ctx context.Context, password string) error
	ListChatsFunc      func(ctx context.Context, limit int) ([]domain.ChatDescriptor, error)
	ListTopicsFunc     func(ctx context.Context, chat domain.ChatDescriptor, limit int) ([]domain.Topic, error)
	ResolveFunc        func(ctx context.Context, displayID string) (domain.Target, error)
	JoinFunc           func(ctx context.Context, target tglink.JoinTarget) (domain.JoinedChat, error)
	SendTextFunc       func(ctx context.Context, target domain.Target, text string) (domain.SentMessage, error)
	SendMediaFunc      func(ctx context.Context, target domain.Target, file domain.MediaFile, caption string) (domain.SentMessage, error)
	ForwardFunc        func(ctx context.Context, target domain.Target, ref domain.MessageRef, preserveAuthor bool) (domain.SentMessage, error)
	FetchMessageFunc   func(ctx context.Context, ref domain.MessageRef) (domain.MessageContent, error)
	LatestMessageFunc  func(ctx context.Context, peer string) (int, error)
	SendContentFunc    func(ctx context.Context, target domain.Target, content domain.MessageContent) (domain.SentMessage, error)

	mu          sync.Mutex
	connected   bool
	connects    int
	disconnects int
}

// Connects returns how many times Connect succeeded
func (m *RemoteClient) Connects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connects
}

// Disconnects returns how many times Disconnect was called
func (m *RemoteClient) Disconnects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnects
}

func (m *RemoteClient) Connect(ctx context.Context) error {
	if m.ConnectFunc != nil {
		if err := m.ConnectFunc(ctx); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.connected = true
	m.connects++
	m.mu.Unlock()
	return nil
}

func (m *RemoteClient) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	m.connected = false
	m.disconnects++
	m.mu.Unlock()
	if m.DisconnectFunc != nil {
		return m.DisconnectFunc(ctx)
	}
	return nil
}

// Drop marks the connection as lost without a Disconnect call
func (m *RemoteClient) Drop() {
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()
}

func (m *RemoteClient) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *RemoteClient) IsAuthorized(ctx context.Context) (bool, error) {
	if m.IsAuthorizedFunc != nil {
		return m.IsAuthorizedFunc(ctx)
	}
	return true, nil
}

func (m *RemoteClient) ExportSession(ctx context.Context) ([]byte, error) {
	if m.ExportSessionFunc != nil {
		return m.ExportSessionFunc(ctx)
	}
	return []byte("session"), nil
}

func (m *RemoteClient) RequestCode(ctx context.Context, phone string) (string, error) {
	if m.RequestCodeFunc != nil {
		return m.RequestCodeFunc(ctx, phone)
	}
	return "hash", nil
}

func (m *RemoteClient) SignIn(ctx context.Context, phone, code, codeHash string) error {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, phone, code, codeHash)
	}
	return nil
}

func (m *RemoteClient) SignInPassword(ctx context.Context, password string) error {
	if m.SignInPasswordFunc != nil {
		return m.SignInPasswordFunc(ctx, password)
	}
	return nil
}

func (m *RemoteClient) ListChats(ctx context.Context, limit int) ([]domain.ChatDescriptor, error) {
	if m.ListChatsFunc != nil {
		return m.ListChatsFunc(ctx, limit)
	}
	return nil, nil
}

func (m *RemoteClient) ListTopics(ctx context.Context, chat domain.ChatDescriptor, limit int) ([]domain.Topic, error) {
	if m.ListTopicsFunc != nil {
		return m.ListTopicsFunc(ctx, chat, limit)
	}
	return nil, nil
}

func (m *RemoteClient) Resolve(ctx context.Context, displayID string) (domain.Target, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, displayID)
	}
	return domain.Target{DisplayID: displayID}, nil
}

func (m *RemoteClient) Join(ctx context.Context, target tglink.JoinTarget) (domain.JoinedChat, error) {
	if m.JoinFunc != nil {
		return m.JoinFunc(ctx, target)
	}
	return domain.JoinedChat{}, nil
}

func (m *RemoteClient) SendText(ctx context.Context, target domain.Target, text string) (domain.SentMessage, error) {
	if m.SendTextFunc != nil {
		return m.SendTextFunc(ctx, target, text)
	}
	return domain.SentMessage{ID: 1, ChatDisplayID: target.DisplayID}, nil
}

func (m *RemoteClient) SendMedia(ctx context.Context, target domain.Target, file domain.MediaFile, caption string) (domain.SentMessage, error) {
	if m.SendMediaFunc != nil {
		return m.SendMediaFunc(ctx, target, file, caption)
	}
	return domain.SentMessage{ID: 1, ChatDisplayID: target.DisplayID}, nil
}

func (m *RemoteClient) Forward(ctx context.Context, target domain.Target, ref domain.MessageRef, preserveAuthor bool) (domain.SentMessage, error) {
	if m.ForwardFunc != nil {
		return m.ForwardFunc(ctx, target, ref, preserveAuthor)
	}
	return domain.SentMessage{ID: 1, ChatDisplayID: target.DisplayID}, nil
}

func (m *RemoteClient) FetchMessage(ctx context.Context, ref domain.MessageRef) (domain.MessageContent, error) {
	if m.FetchMessageFunc != nil {
		return m.FetchMessageFunc(ctx, ref)
	}
	return domain.MessageContent{Text: "saved"}, nil
}

func (m *RemoteClient) LatestMessageID(ctx context.Context, peer string) (int, error) {
	if m.LatestMessageFunc != nil {
		return m.LatestMessageFunc(ctx, peer)
	}
	return 0, nil
}

func (m *RemoteClient) SendContent(ctx context.Context, target domain.Target, content domain.MessageContent) (domain.SentMessage, error) {
	if m.SendContentFunc != nil {
		return m.SendContentFunc(ctx, target, content)
	}
	return domain.SentMessage{ID: 1, ChatDisplayID: target.DisplayID}, nil
}

var _ domain.RemoteClient = (*RemoteClient)(nil)

// ClientFactory is a func-field mock of domain.ClientFactory
type ClientFactory struct {
	NewLoginClientFunc   func(creds domain.Credentials) (domain.RemoteClient, error)
	NewSessionClientFunc func(ctx context.Context, userID int64) (domain.RemoteClient, error)
	NewCatalogClientFunc func(ctx context.Context, userID int64) (domain.RemoteClient, error)
}

func (f *ClientFactory) NewLoginClient(creds domain.Credentials) (domain.RemoteClient, error) {
	return f.NewLoginClientFunc(creds)
}

func (f *ClientFactory) NewSessionClient(ctx context.Context, userID int64) (domain.RemoteClient, error) {
	return f.NewSessionClientFunc(ctx, userID)
}

func (f *ClientFactory) NewCatalogClient(ctx context.Context, userID int64) (domain.RemoteClient, error) {
	if f.NewCatalogClientFunc == nil {
		return f.NewSessionClientFunc(ctx, userID)
	}
	return f.NewCatalogClientFunc(ctx, userID)
}

var _ domain.ClientFactory = (*ClientFactory)(nil)
