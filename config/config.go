package config

import (
	"fmt"
	"log"
	"time"

	"takk_server/models"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime settings, loaded from the environment.
type Config struct {
	Port             string        `envconfig:"PORT" default:"8080"`
	AWSRegion        string        `envconfig:"AWS_REGION"`
	Cadence          string        `envconfig:"MATCH_CADENCE" default:"weekly"` // daily or weekly
	TargetMinMatches int           `envconfig:"TARGET_MIN_MATCHES" default:"3"`
	TargetMaxMatches int           `envconfig:"TARGET_MAX_MATCHES" default:"5"`
	RecentPairTTL    time.Duration `envconfig:"RECENT_PAIR_TTL" default:"720h"`
	RedisAddr        string        `envconfig:"REDIS_ADDR"`     // empty disables the recent-pair filter
	ReportBucket     string        `envconfig:"REPORT_BUCKET"`  // empty disables cycle reports
	ChatGrace        time.Duration `envconfig:"CHAT_GRACE" default:"0s"` // writable time past the cycle end
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if cfg.Cadence != models.CadenceDaily && cfg.Cadence != models.CadenceWeekly {
		return nil, fmt.Errorf("invalid MATCH_CADENCE %q: must be %q or %q", cfg.Cadence, models.CadenceDaily, models.CadenceWeekly)
	}
	if cfg.TargetMinMatches < 1 {
		return nil, fmt.Errorf("invalid TARGET_MIN_MATCHES %d: must be at least 1", cfg.TargetMinMatches)
	}
	if cfg.TargetMaxMatches < cfg.TargetMinMatches {
		return nil, fmt.Errorf("invalid TARGET_MAX_MATCHES %d: must be >= TARGET_MIN_MATCHES", cfg.TargetMaxMatches)
	}

	return &cfg, nil
}
