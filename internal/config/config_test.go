package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "roomserve", cfg.Database.Database)
	assert.Equal(t, "jwt", cfg.Auth.Mode)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, "orders:events", cfg.Order.EventsStream)
	assert.Equal(t, 72*time.Hour, cfg.RegistrationTokenTTL)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", cfg.RootUserID)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("DB_NAME", "rs_test")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("AUTH_MODE", "remote")
	t.Setenv("MQTT_ENABLED", "true")
	t.Setenv("MQTT_QOS", "2")
	t.Setenv("KITCHEN_TOPIC", "kitchen")
	t.Setenv("REGISTRATION_TOKEN_TTL", "30m")
	t.Setenv("ORDER_EVENTS_MAXLEN", "not-a-number")

	cfg := Load()

	assert.False(t, cfg.DBEnabled)
	assert.Equal(t, "rs_test", cfg.Database.Database)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "remote", cfg.Auth.Mode)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, byte(2), cfg.MQTT.QoS)
	assert.Equal(t, "kitchen", cfg.MQTT.TopicPrefix)
	assert.Equal(t, 30*time.Minute, cfg.RegistrationTokenTTL)
	assert.Equal(t, int64(100000), cfg.Order.EventsMaxLen)
}
