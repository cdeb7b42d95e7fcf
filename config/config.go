package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Reward   RewardConfig
}

type ServerConfig struct {
	Port         string        `envconfig:"SERVER_PORT" default:"8099"`
	Env          string        `envconfig:"APP_ENV" default:"development"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
}

type DatabaseConfig struct {
	DSN             string        `envconfig:"DB_DSN" default:"merit:merit@tcp(localhost:3306)/merit?charset=utf8mb4&parseTime=True&loc=Local"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"100"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
}

type JWTConfig struct {
	AccessSecret  string        `envconfig:"JWT_ACCESS_SECRET" default:"change-me-in-production"`
	RefreshSecret string        `envconfig:"JWT_REFRESH_SECRET" default:"change-me-refresh"`
	AccessExpiry  time.Duration `envconfig:"JWT_ACCESS_EXPIRY" default:"15m"`
	RefreshExpiry time.Duration `envconfig:"JWT_REFRESH_EXPIRY" default:"168h"`
	Issuer        string        `envconfig:"JWT_ISSUER" default:"merit"`
}

type RewardConfig struct {
	// Timezone defines the reward-day boundary; daily caps reset at local
	// midnight in this zone.
	Timezone string `envconfig:"REWARD_TIMEZONE" default:"Asia/Ho_Chi_Minh"`
	// PolicyFile seeds policy v1 when the policies table is empty.
	PolicyFile string `envconfig:"REWARD_POLICY_FILE" default:"deploy/policy.yaml"`
	// PolicyCacheTTL bounds staleness of the active-policy cache.
	PolicyCacheTTL time.Duration `envconfig:"REWARD_POLICY_CACHE_TTL" default:"30s"`
	// FingerprintSalt is mixed into device/IP hashes so registry entries
	// cannot be reversed by hashing candidate IPs.
	FingerprintSalt string `envconfig:"REWARD_FINGERPRINT_SALT" default:"merit-fp-v1"`
	// QualityTimeout caps the external quality-scoring call before falling
	// back to the policy default score.
	QualityTimeout time.Duration `envconfig:"REWARD_QUALITY_TIMEOUT" default:"5s"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// RewardLocation resolves the configured reward-day timezone, falling back
// to UTC if the zone database does not know it.
func (c *RewardConfig) RewardLocation() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
