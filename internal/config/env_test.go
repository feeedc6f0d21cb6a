package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	env, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", env.AppAddr)
	assert.Equal(t, "mysql", env.DB.Driver)
	assert.Equal(t, 24*time.Hour, env.JWT.TTL)
	assert.Equal(t, 5, env.TicketRetries)
	assert.False(t, env.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, env.Kafka.Brokers)
	assert.Contains(t, env.CORS, "http://localhost:3000")
}

func TestLoadEnvFromEnvironment(t *testing.T) {
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("DB_DRIVER", "Memory")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://neelosewa.com, ,https://admin.neelosewa.com")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("BOOKING_TICKET_RETRIES", "0")

	env, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", env.AppAddr)
	assert.Equal(t, "memory", env.DB.Driver)
	assert.Equal(t, 2*time.Hour, env.JWT.TTL)
	assert.Equal(t, []string{"https://neelosewa.com", "https://admin.neelosewa.com"}, env.CORS)
	assert.True(t, env.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, env.Kafka.Brokers)
	assert.Equal(t, 5, env.TicketRetries, "non-positive retries fall back to the default")
}

func TestCheckSecrets(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	env, err := LoadEnv()
	require.NoError(t, err)
	assert.True(t, env.UsesDefaultSecret())
	assert.True(t, errors.Is(env.CheckSecrets(), ErrDefaultJWTSecret))

	t.Setenv("JWT_SECRET", "a-real-secret")
	env, err = LoadEnv()
	require.NoError(t, err)
	assert.False(t, env.UsesDefaultSecret())
	assert.NoError(t, env.CheckSecrets())

	debug := Env{GinMode: "debug", JWT: JWTSettings{Secret: DefaultJWTSecret}}
	assert.True(t, debug.UsesDefaultSecret())
	assert.NoError(t, debug.CheckSecrets(), "development mode only warns")
}

func TestPingDB(t *testing.T) {
	CloseDB()
	assert.Error(t, PingDB(context.Background()))

	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	DB = sqlx.NewDb(conn, "mysql")
	t.Cleanup(CloseDB)

	assert.NoError(t, PingDB(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
