package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is the development signing key used when JWT_SECRET is unset.
const DefaultJWTSecret = "change-me-in-production"

var ErrDefaultJWTSecret = errors.New("JWT_SECRET must be set when GIN_MODE=release")

type Env struct {
	AppAddr string
	GinMode string

	DB    DBSettings
	JWT   JWTSettings
	Log   LogSettings
	CORS  []string
	Redis RedisSettings
	Kafka KafkaSettings

	TicketRetries int
}

type DBSettings struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	Migrate      bool
}

type JWTSettings struct {
	Secret string
	TTL    time.Duration
}

type LogSettings struct {
	Level  string
	Format string
}

type RedisSettings struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaSettings struct {
	Enabled bool
	Brokers []string
	Topic   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.addr", ":8080")
	v.SetDefault("gin.mode", "")
	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.dsn", "root:@tcp(127.0.0.1:3306)/neelosewa?parseTime=true&loc=UTC&charset=utf8mb4&multiStatements=true")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.migrate", true)
	v.SetDefault("jwt.secret", DefaultJWTSecret)
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "60s")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "booking-events")
	v.SetDefault("booking.ticket_retries", 5)
}

// LoadEnv reads .env (when present), config.yaml (when present) and the
// process environment. Environment keys use underscores, e.g. DB_DSN.
func LoadEnv() (Env, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Env{}, err
		}
	}
	return fromViper(v), nil
}

func fromViper(v *viper.Viper) Env {
	retries := v.GetInt("booking.ticket_retries")
	if retries <= 0 {
		retries = 5
	}
	return Env{
		AppAddr: strings.TrimSpace(v.GetString("app.addr")),
		GinMode: strings.TrimSpace(v.GetString("gin.mode")),
		DB: DBSettings{
			Driver:       strings.ToLower(strings.TrimSpace(v.GetString("db.driver"))),
			DSN:          v.GetString("db.dsn"),
			MaxOpenConns: v.GetInt("db.max_open_conns"),
			Migrate:      v.GetBool("db.migrate"),
		},
		JWT: JWTSettings{
			Secret: v.GetString("jwt.secret"),
			TTL:    v.GetDuration("jwt.ttl"),
		},
		Log: LogSettings{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		CORS: splitCSV(v.GetString("cors.allowed_origins")),
		Redis: RedisSettings{
			Addr:     strings.TrimSpace(v.GetString("redis.addr")),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		Kafka: KafkaSettings{
			Enabled: v.GetBool("kafka.enabled"),
			Brokers: splitCSV(v.GetString("kafka.brokers")),
			Topic:   v.GetString("kafka.topic"),
		},
		TicketRetries: retries,
	}
}

// UsesDefaultSecret reports whether tokens would be signed with the
// development key.
func (e Env) UsesDefaultSecret() bool {
	s := strings.TrimSpace(e.JWT.Secret)
	return s == "" || s == DefaultJWTSecret
}

// CheckSecrets refuses the development signing key in release mode.
func (e Env) CheckSecrets() error {
	if e.UsesDefaultSecret() && strings.EqualFold(e.GinMode, "release") {
		return ErrDefaultJWTSecret
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
