package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT   JWTConfig
	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

// JWTConfig is the bearer-token signing material. Key has no default: the
// server refuses to start without one.
type JWTConfig struct {
	Key      string `env:"JWT_KEY"`
	Issuer   string `env:"JWT_ISSUER,   default=platform-api"`
	Audience string `env:"JWT_AUDIENCE, default=platform-api"`
}

type AuthConfig struct {
	SessionTTL       time.Duration `env:"SESSION_TTL,          default=24h"`
	RememberTTL      time.Duration `env:"SESSION_REMEMBER_TTL, default=720h"`
	MaxLoginFailures int           `env:"MAX_LOGIN_FAILURES,   default=5"`
	LockoutWindow    time.Duration `env:"LOCKOUT_WINDOW,       default=15m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=platform"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
