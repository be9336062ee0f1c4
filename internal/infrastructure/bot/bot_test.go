package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"

	tgbot "github.com/go-telegram/bot"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Aztech-1729/sliptads/internal/domain/ads/entities"
)

type sentMessage struct {
	chatID      string
	text        string
	replyMarkup string
}

type fakeAPI struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch path.Base(r.URL.Path) {
	case "getMe":
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"logger","username":"logger_bot"}}`))
	case "sendMessage":
		_ = r.ParseMultipartForm(1 << 20)
		f.mu.Lock()
		f.sent = append(f.sent, sentMessage{
			chatID:      r.FormValue("chat_id"),
			text:        r.FormValue("text"),
			replyMarkup: r.FormValue("reply_markup"),
		})
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`))
	default:
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}
}

func newTestBot(t *testing.T) (*Bot, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	b, err := NewBot("123:test", zerolog.Nop(), tgbot.WithServerURL(srv.URL))
	require.NoError(t, err)
	return b, api
}

// TestNewBot_RequiresToken tests token validation
func TestNewBot_RequiresToken(t *testing.T) {
	_, err := NewBot("", zerolog.Nop())
	require.Error(t, err)
}

// TestBot_Notify tests notification rendering
func TestBot_Notify(t *testing.T) {
	b, api := newTestBot(t)

	ev := entities.NewEvent(entities.EventItemSuccess, 42)
	ev.Sent, ev.Total = 1, 2
	ev.Title = "Group A"
	ev.Method = entities.MethodForward
	ev.Link = "https://t.me/c/1/5"
	require.NoError(t, b.Notify(context.Background(), 42, ev))

	stopped := entities.NewEvent(entities.EventCampaignStopped, 42)
	stopped.SentTotal = 9
	require.NoError(t, b.Notify(context.Background(), 42, stopped))

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.sent, 2)

	require.Equal(t, "42", api.sent[0].chatID)
	require.Equal(t, "Sent 1/2 to Group A via forward", api.sent[0].text)
	require.Contains(t, api.sent[0].replyMarkup, "https://t.me/c/1/5")
	require.Contains(t, api.sent[0].replyMarkup, "View message")

	require.Equal(t, "Campaign stopped. Total ads sent: 9", api.sent[1].text)
	require.Empty(t, api.sent[1].replyMarkup)
}

// TestBot_NotifySkipsProgress tests that per-item progress never reaches the chat
func TestBot_NotifySkipsProgress(t *testing.T) {
	b, api := newTestBot(t)

	progress := entities.NewEvent(entities.EventProgress, 42)
	progress.Sent, progress.Total = 1, 20
	require.False(t, b.Accepts(progress))
	require.NoError(t, b.Notify(context.Background(), 42, progress))

	round := entities.NewEvent(entities.EventRoundComplete, 42)
	round.Round, round.Sent, round.Total = 1, 20, 20
	require.True(t, b.Accepts(round))
	require.NoError(t, b.Notify(context.Background(), 42, round))

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.sent, 1)
	require.Equal(t, "Round 1 complete: sent to 20/20 groups, waiting 0s", api.sent[0].text)
}
