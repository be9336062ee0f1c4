package postgres

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/session/entities"
	sessionerrors "github.com/Aztech-1729/sliptads/internal/domain/session/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "sessions.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.SessionModel{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func TestRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	_, err := repo.Get(ctx, 42)
	require.ErrorIs(t, err, sessionerrors.ErrSessionNotFound)

	s := entities.New(42, time.Minute)
	s.Ad.Source = entities.SourceCustom
	s.Ad.Text = "hello"
	s.Ad.Targets = []string{"-100123", "-100123:4"}
	s.Catalog = []entities.Destination{
		{DisplayID: "-100123", Title: "Alpha", Kind: entities.KindGroup, ChatID: 123},
		{DisplayID: "-100123:4", Title: "News (in Alpha)", Kind: entities.KindTopic, ChatID: 123, TopicID: 4},
	}
	s.Selected = []string{"-100123"}
	require.NoError(t, repo.Put(ctx, s))

	got, err := repo.Get(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, entities.SourceCustom, got.Ad.Source)
	require.Equal(t, "hello", got.Ad.Text)
	require.Equal(t, time.Minute, got.Ad.RoundDelay)
	require.Equal(t, s.Ad.Targets, got.Ad.Targets)
	require.Equal(t, s.Catalog, got.Catalog)
	require.Equal(t, s.Selected, got.Selected)
	require.False(t, got.HasHandle)
}

func TestRepository_PutDoesNotTouchHandleOrCounter(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	creds := domain.Credentials{APIID: 1, APIHash: "hash", Phone: "+15550001"}
	require.NoError(t, repo.StoreHandle(ctx, 7, creds, []byte("durable")))

	for i := 0; i < 3; i++ {
		_, err := repo.IncrementSent(ctx, 7)
		require.NoError(t, err)
	}

	s := entities.New(7, time.Minute)
	s.Filter = "sale"
	require.NoError(t, repo.Put(ctx, s))

	got, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, got.HasHandle)
	require.Equal(t, int64(3), got.SentTotal)
	require.Equal(t, "sale", got.Filter)

	handle, err := repo.LoadHandle(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, []byte("durable"), handle)
}

func TestRepository_StoreHandleReplaces(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	require.NoError(t, repo.StoreHandle(ctx, 9, domain.Credentials{APIID: 1}, []byte("first")))
	require.NoError(t, repo.StoreHandle(ctx, 9, domain.Credentials{APIID: 2}, []byte("second")))

	handle, err := repo.LoadHandle(ctx, 9)
	require.NoError(t, err)
	require.Equal(t, []byte("second"), handle)

	got, err := repo.Get(ctx, 9)
	require.NoError(t, err)
	require.Equal(t, 2, got.APIID)

	require.NoError(t, repo.DeleteHandle(ctx, 9))
	_, err = repo.LoadHandle(ctx, 9)
	require.ErrorIs(t, err, sessionerrors.ErrHandleNotFound)
}

func TestRepository_IncrementSentMissing(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	_, err := repo.IncrementSent(context.Background(), 404)
	require.ErrorIs(t, err, sessionerrors.ErrSessionNotFound)
}

func TestRepository_SetLoggerStarted(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	require.NoError(t, repo.SetLoggerStarted(ctx, 3, true))

	got, err := repo.Get(ctx, 3)
	require.NoError(t, err)
	require.True(t, got.LoggerStarted)

	// Put never resets the flag
	require.NoError(t, repo.Put(ctx, entities.New(3, time.Minute)))
	got, err = repo.Get(ctx, 3)
	require.NoError(t, err)
	require.True(t, got.LoggerStarted)
}

func TestRepository_SetPremiumUntil(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	until := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, repo.SetPremiumUntil(ctx, 5, until))

	got, err := repo.Get(ctx, 5)
	require.NoError(t, err)
	require.WithinDuration(t, until, got.PremiumUntil, time.Second)

	// Put never touches paid access
	require.NoError(t, repo.Put(ctx, entities.New(5, time.Minute)))
	got, err = repo.Get(ctx, 5)
	require.NoError(t, err)
	require.True(t, got.PremiumActive(time.Now()))

	require.NoError(t, repo.SetPremiumUntil(ctx, 5, time.Time{}))
	got, err = repo.Get(ctx, 5)
	require.NoError(t, err)
	require.True(t, got.PremiumUntil.IsZero())
}
