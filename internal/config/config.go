package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "roomserve/common/config"
)

// Config roomserve (HTTP API) settings
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  commoncfg.DatabaseConfig
	Redis     commoncfg.RedisConfig
	Log       struct {
		Level  string
		Format string
	}
	Auth  AuthConfig
	MQTT  MQTTConfig
	Order OrderConfig

	RegistrationTokenTTL time.Duration
	// RootUserID is the bootstrap admin; it cannot be deleted, demoted, locked or moved.
	RootUserID string
}

// AuthConfig selects how bearer credentials are verified.
type AuthConfig struct {
	Mode          string // "jwt" or "remote"
	JWTSecret     string
	JWTIssuer     string
	SessionTTL    time.Duration
	RemoteURL     string
	RemoteTimeout time.Duration
}

// MQTTConfig kitchen print service (disabled by default; tickets are then only logged)
type MQTTConfig struct {
	Enabled bool
	commoncfg.MQTTConfig
	TopicPrefix string
}

type OrderConfig struct {
	EventsStream string
	EventsMaxLen int64
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "roomserve"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxConns = 20
	cfg.Database.MaxIdle = 5
	cfg.Database.ConnMaxLife = 30 * time.Minute
	cfg.Database.LoadFromEnv("DB")

	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Auth.Mode = getEnv("AUTH_MODE", "jwt")
	cfg.Auth.JWTSecret = getEnv("AUTH_JWT_SECRET", "")
	cfg.Auth.JWTIssuer = getEnv("AUTH_JWT_ISSUER", "roomserve")
	cfg.Auth.SessionTTL = parseDuration(getEnv("AUTH_SESSION_TTL", ""), 12*time.Hour)
	cfg.Auth.RemoteURL = getEnv("AUTH_REMOTE_URL", "http://localhost:9000")
	cfg.Auth.RemoteTimeout = parseDuration(getEnv("AUTH_REMOTE_TIMEOUT", ""), 3*time.Second)

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "roomserve-kitchen"
	cfg.MQTT.QoS = 1
	cfg.MQTT.MQTTConfig.LoadFromEnv("MQTT")
	cfg.MQTT.TopicPrefix = getEnv("KITCHEN_TOPIC", "roomserve/kitchen")

	cfg.Order.EventsStream = getEnv("ORDER_EVENTS_STREAM", "orders:events")
	cfg.Order.EventsMaxLen = int64(parseInt(getEnv("ORDER_EVENTS_MAXLEN", ""), 100000))

	cfg.RegistrationTokenTTL = parseDuration(getEnv("REGISTRATION_TOKEN_TTL", ""), 72*time.Hour)
	cfg.RootUserID = getEnv("ROOT_USER_ID", "00000000-0000-0000-0000-000000000001")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
