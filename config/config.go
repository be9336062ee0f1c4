package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds all configuration for the ads service
type Config struct {
	Database DatabaseConfig
	Telegram TelegramConfig
	Kafka    KafkaConfig
	Logging  LoggingConfig
	Service  ServiceConfig
	Auth     AuthConfig
	Catalog  CatalogConfig
	Delivery DeliveryConfig
	Notifier NotifierConfig
	S3       S3Config
	Redis    RedisConfig
	Sentry   SentryConfig
	Access   AccessConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver     string // postgres | sqlite
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	// EncryptionKey seals durable auth handles at rest when set (32 bytes, hex encoded)
	EncryptionKey []byte
}

// TelegramConfig holds MTProto client configuration
type TelegramConfig struct {
	RateLimit      int // requests per second per client
	ConnectTimeout time.Duration
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	GroupID       string
	TopicEvents   string
	TopicCommands string

	// CommandAttempts bounds handler attempts per command before it is skipped
	CommandAttempts   int
	CommandRetryDelay time.Duration
	CloseTimeout      time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name string
	Port string
}

// AuthConfig holds login attempt configuration
type AuthConfig struct {
	AttemptTTL      time.Duration
	CleanupInterval time.Duration
	MaxAttempts     int
	QRSessionTTL    time.Duration
	QRMaxSessions   int
}

// CatalogConfig holds destination discovery configuration
type CatalogConfig struct {
	DialogLimit int
	TopicLimit  int
	PageSize    int

	// JoinMax bounds the targets of one join request
	JoinMax int
	// JoinGap is the pause between two joins
	JoinGap time.Duration
	// JoinFloodWaitMax caps how long a join batch waits out a flood wait
	JoinFloodWaitMax time.Duration
}

// DeliveryConfig holds delivery worker bounds
type DeliveryConfig struct {
	RoundDelayMin   time.Duration
	SendGapMax      time.Duration
	FloodWaitBuffer time.Duration
}

// NotifierConfig holds logger bot configuration
type NotifierConfig struct {
	BotToken     string
	RequireStart bool
	// SendTimeout bounds each sink call so a stalled sink cannot hold up delivery
	SendTimeout time.Duration
}

// S3Config holds S3/MinIO configuration
type S3Config struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig holds Redis configuration used for worker leases
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LeaseTTL time.Duration
}

// AccessConfig gates paid features behind premium or owner status
type AccessConfig struct {
	// Gated off lets every user run ads and joins
	Gated    bool
	OwnerIDs []int64
	// AdminToken enables the premium admin routes, empty disables them
	AdminToken string
}

// SentryConfig holds error reporting configuration
type SentryConfig struct {
	DSN         string
	Environment string
}

// Result is fx.Out struct for providing config dependencies
type Result struct {
	fx.Out

	Config         *Config
	DatabaseConfig *DatabaseConfig
	TelegramConfig *TelegramConfig
	KafkaConfig    *KafkaConfig
	LoggingConfig  *LoggingConfig
	ServiceConfig  *ServiceConfig
	AuthConfig     *AuthConfig
	CatalogConfig  *CatalogConfig
	DeliveryConfig *DeliveryConfig
	NotifierConfig *NotifierConfig
	S3Config       *S3Config
	RedisConfig    *RedisConfig
	SentryConfig   *SentryConfig
	AccessConfig   *AccessConfig
}

// Out returns fx-compatible config result
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:         cfg,
		DatabaseConfig: &cfg.Database,
		TelegramConfig: &cfg.Telegram,
		KafkaConfig:    &cfg.Kafka,
		LoggingConfig:  &cfg.Logging,
		ServiceConfig:  &cfg.Service,
		AuthConfig:     &cfg.Auth,
		CatalogConfig:  &cfg.Catalog,
		AccessConfig:   &cfg.Access,
		DeliveryConfig: &cfg.Delivery,
		NotifierConfig: &cfg.Notifier,
		S3Config:       &cfg.S3,
		RedisConfig:    &cfg.Redis,
		SentryConfig:   &cfg.Sentry,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	var encryptionKey []byte
	if raw := getEnv("SESSION_ENCRYPTION_KEY", ""); raw != "" {
		key, err := hex.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_ENCRYPTION_KEY: %w", err)
		}
		encryptionKey = key
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:        strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
			Host:          getEnv("DATABASE_HOST", "localhost"),
			Port:          getEnv("DATABASE_PORT", "5432"),
			User:          getEnv("DATABASE_USER", "ads_user"),
			Password:      getEnv("DATABASE_PASSWORD", "ads_pass"),
			DBName:        getEnv("DATABASE_NAME", "ads_db"),
			SSLMode:       getEnv("DATABASE_SSLMODE", "disable"),
			SQLitePath:    getEnv("DATABASE_SQLITE_PATH", "sliptads.db"),
			EncryptionKey: encryptionKey,
		},
		Telegram: TelegramConfig{
			RateLimit:      getEnvInt("TELEGRAM_RATE_LIMIT", 10),
			ConnectTimeout: getEnvDuration("TELEGRAM_CONNECT_TIMEOUT", 30*time.Second),
		},
		Kafka: KafkaConfig{
			Enabled:       getEnvBool("KAFKA_ENABLED", false),
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9093"), ","),
			GroupID:       getEnv("KAFKA_GROUP_ID", "sliptads-group"),
			TopicEvents:   getEnv("KAFKA_TOPIC_EVENTS", "ads.events"),
			TopicCommands: getEnv("KAFKA_TOPIC_COMMANDS", "ads.commands"),

			CommandAttempts:   getEnvInt("KAFKA_COMMAND_ATTEMPTS", 3),
			CommandRetryDelay: getEnvDuration("KAFKA_COMMAND_RETRY_DELAY", time.Second),
			CloseTimeout:      getEnvDuration("KAFKA_CLOSE_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Service: ServiceConfig{
			Name: getEnv("SERVICE_NAME", "sliptads"),
			Port: getEnv("SERVICE_PORT", "8080"),
		},
		Auth: AuthConfig{
			AttemptTTL:      getEnvDuration("AUTH_ATTEMPT_TTL", 10*time.Minute),
			CleanupInterval: getEnvDuration("AUTH_CLEANUP_INTERVAL", time.Minute),
			MaxAttempts:     getEnvInt("AUTH_MAX_ATTEMPTS", 1000),
			QRSessionTTL:    getEnvDuration("QR_SESSION_TTL", 5*time.Minute),
			QRMaxSessions:   getEnvInt("QR_MAX_SESSIONS", 100),
		},
		Catalog: CatalogConfig{
			DialogLimit: getEnvInt("CATALOG_DIALOG_LIMIT", 500),
			TopicLimit:  getEnvInt("CATALOG_TOPIC_LIMIT", 500),
			PageSize:    getEnvInt("CATALOG_PAGE_SIZE", 10),

			JoinMax:          getEnvInt("CATALOG_JOIN_MAX", 50),
			JoinGap:          getEnvDuration("CATALOG_JOIN_GAP", 200*time.Millisecond),
			JoinFloodWaitMax: getEnvDuration("CATALOG_JOIN_FLOOD_WAIT_MAX", 5*time.Second),
		},
		Delivery: DeliveryConfig{
			RoundDelayMin:   getEnvDuration("ADS_ROUND_DELAY_MIN", 60*time.Second),
			SendGapMax:      getEnvDuration("ADS_SEND_GAP_MAX", 15*time.Second),
			FloodWaitBuffer: getEnvDuration("ADS_FLOOD_WAIT_BUFFER", time.Second),
		},
		Notifier: NotifierConfig{
			BotToken:     getEnv("LOGGER_BOT_TOKEN", ""),
			RequireStart: getEnvBool("LOGGER_BOT_REQUIRE_START", true),
			SendTimeout:  getEnvDuration("NOTIFY_SEND_TIMEOUT", 5*time.Second),
		},
		S3: S3Config{
			Enabled:   getEnvBool("S3_ENABLED", false),
			Endpoint:  getEnv("S3_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Bucket:    getEnv("S3_BUCKET", "ads-media"),
			UseSSL:    getEnvBool("S3_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			LeaseTTL: getEnvDuration("REDIS_LEASE_TTL", 2*time.Minute),
		},
		Sentry: SentryConfig{
			DSN:         getEnv("SENTRY_DSN", ""),
			Environment: getEnv("SENTRY_ENVIRONMENT", "production"),
		},
		Access: AccessConfig{
			Gated:      getEnvBool("ACCESS_GATED", false),
			AdminToken: getEnv("ACCESS_ADMIN_TOKEN", ""),
		},
	}

	owners, err := getEnvIDs("OWNER_IDS")
	if err != nil {
		return nil, err
	}
	cfg.Access.OwnerIDs = owners

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("DATABASE_HOST is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("DATABASE_USER is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("DATABASE_NAME is required")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("DATABASE_SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}

	if n := len(c.Database.EncryptionKey); n != 0 && n != 32 {
		return fmt.Errorf("SESSION_ENCRYPTION_KEY must be 32 bytes, got %d", n)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}

	if c.Delivery.RoundDelayMin <= 0 {
		return fmt.Errorf("ADS_ROUND_DELAY_MIN must be positive")
	}

	if c.Delivery.SendGapMax < 0 {
		return fmt.Errorf("ADS_SEND_GAP_MAX must not be negative")
	}

	if c.Telegram.RateLimit <= 0 {
		return fmt.Errorf("TELEGRAM_RATE_LIMIT must be positive")
	}

	if c.S3.Enabled && c.S3.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required")
	}

	return nil
}

// GetDSN returns database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets environment variable as int with default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvBool gets environment variable as bool with default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// getEnvDuration gets environment variable as duration with default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

// getEnvIDs parses a comma separated list of user ids
func getEnvIDs(key string) ([]int64, error) {
	var ids []int64
	for _, piece := range strings.Split(os.Getenv(key), ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		id, err := strconv.ParseInt(piece, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%s: invalid user id %q", key, piece)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
