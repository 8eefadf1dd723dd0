// config/config.go
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port           int      `env:"PORT" envDefault:"5300"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Database
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// World ID
	WorldcoinAppID   string        `env:"WORLDCOIN_APP_ID,required,notEmpty"`
	WorldcoinAction  string        `env:"WORLDCOIN_ACTION" envDefault:"verification"`
	WorldcoinAPIURL  string        `env:"WORLDCOIN_API_URL" envDefault:"https://developer.worldcoin.org"`
	WorldcoinTimeout time.Duration `env:"WORLDCOIN_TIMEOUT" envDefault:"10s"`

	// Sessions
	SessionSecret        string        `env:"SESSION_SECRET,required,notEmpty"`
	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	SessionPruneInterval time.Duration `env:"SESSION_PRUNE_INTERVAL" envDefault:"10m"`

	// Countdown refresh for open sessions
	StatusTick time.Duration `env:"STATUS_TICK" envDefault:"1s"`

	// Optional JSON file replacing the default task list
	TasksFile string `env:"TASKS_FILE"`

	// Rate limits (requests per minute per client IP)
	VerifyRateLimit int `env:"VERIFY_RATE_LIMIT" envDefault:"20"`
	ClaimRateLimit  int `env:"CLAIM_RATE_LIMIT" envDefault:"30"`

	// Auth log archive (Cloudflare R2). Disabled unless the credentials are set.
	CloudflareAccountID    string        `env:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID          string        `env:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret      string        `env:"R2_ACCESS_KEY_SECRET"`
	R2Bucket               string        `env:"R2_BUCKET_NAME"`
	R2Endpoint             string        `env:"R2_ENDPOINT"`
	AuthLogArchiveInterval time.Duration `env:"AUTH_LOG_ARCHIVE_INTERVAL" envDefault:"24h"`
	AuthLogArchiveAfter    time.Duration `env:"AUTH_LOG_ARCHIVE_AFTER" envDefault:"72h"`
	AuthLogArchiveBatch    int           `env:"AUTH_LOG_ARCHIVE_BATCH" envDefault:"500"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 bytes")
	}
	if c.StatusTick <= 0 {
		return fmt.Errorf("STATUS_TICK must be positive, got %s", c.StatusTick)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// ArchiveEnabled reports whether every R2 setting needed by the auth log archive is present.
func (c *Config) ArchiveEnabled() bool {
	return c.CloudflareAccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != "" && c.R2Bucket != ""
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
