package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_SQLITE_PATH", "test.db")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 60*time.Second, cfg.Delivery.RoundDelayMin)
	require.Equal(t, 15*time.Second, cfg.Delivery.SendGapMax)
	require.Equal(t, time.Second, cfg.Delivery.FloodWaitBuffer)
	require.Equal(t, 500, cfg.Catalog.DialogLimit)
	require.Equal(t, 10, cfg.Catalog.PageSize)
	require.Equal(t, "ads.events", cfg.Kafka.TopicEvents)
	require.False(t, cfg.Kafka.Enabled)
	require.Empty(t, cfg.Database.EncryptionKey)
	require.Equal(t, 50, cfg.Catalog.JoinMax)
	require.Equal(t, 3, cfg.Kafka.CommandAttempts)
	require.False(t, cfg.Access.Gated)
	require.Empty(t, cfg.Access.OwnerIDs)
}

func TestLoad_Access(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("ACCESS_GATED", "true")
	t.Setenv("OWNER_IDS", " 11, 22 ,")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.Access.Gated)
	require.Equal(t, []int64{11, 22}, cfg.Access.OwnerIDs)
}

func TestLoad_EncryptionKey(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("SESSION_ENCRYPTION_KEY", "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff")

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.Database.EncryptionKey, 32)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DATABASE_DRIVER": "mysql"}},
		{"short key", map[string]string{"DATABASE_DRIVER": "sqlite", "SESSION_ENCRYPTION_KEY": "0011"}},
		{"bad hex key", map[string]string{"DATABASE_DRIVER": "sqlite", "SESSION_ENCRYPTION_KEY": "zz"}},
		{"zero rate", map[string]string{"DATABASE_DRIVER": "sqlite", "TELEGRAM_RATE_LIMIT": "0"}},
		{"bad owner id", map[string]string{"DATABASE_DRIVER": "sqlite", "OWNER_IDS": "12,abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "ads", SSLMode: "disable"}
	require.Equal(t, "host=db port=5432 user=u password=p dbname=ads sslmode=disable", cfg.GetDSN())
}
