package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	AccessTokenTTL       time.Duration `env:"ACCESS_TOKEN_TTL,       default=15m"`
	RefreshTokenTTL      time.Duration `env:"REFRESH_TOKEN_TTL,      default=168h"`
	VerificationTokenTTL time.Duration `env:"VERIFICATION_TOKEN_TTL, default=24h"`
	ResetTokenTTL        time.Duration `env:"RESET_TOKEN_TTL,        default=1h"`

	// FrontendBaseURL prefixes the verification and reset links embedded in
	// outgoing mail.
	FrontendBaseURL string `env:"FRONTEND_BASE_URL, default=http://localhost:3000"`

	MailWorkers int `env:"MAIL_WORKERS, default=4"`

	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=hireiq_identity"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// SMTPConfig is optional: with an empty Host, outgoing mail is logged to the
// console instead of delivered.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	Sender   string `env:"SMTP_SENDER, default=HireIQ"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
