package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds environment-based settings
type Config struct {
	Environment   string `env:"APP_ENV" envDefault:"development"`
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:":8080"`

	YouTubeAPIKey   string `env:"YOUTUBE_API_KEY,required"`
	YouTubeEndpoint string `env:"YOUTUBE_API_ENDPOINT"` // overrides the API base URL, for staging fakes
	TargetRegion    string `env:"TARGET_REGION" envDefault:"US"`
	MaxCandidates   int    `env:"MAX_CANDIDATES" envDefault:"5"`

	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"3h"`
	DrinkCue      time.Duration `env:"DRINK_CUE_DURATION" envDefault:"2s"`

	RedisAddress  string        `env:"REDIS_ADDRESS"`
	RedisUsername string        `env:"REDIS_USERNAME"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"1h"`

	MQTTBrokerURL string `env:"MQTT_BROKER_URL"`
	MQTTClientID  string `env:"MQTT_CLIENT_ID" envDefault:"powerhour-server"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
}

func (c *Config) Development() bool {
	return c.Environment == "development"
}

// Load reads an optional .env file (or the given files) and then the
// environment. Variables already set in the environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, fmt.Errorf("load env files %v: %w", files, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.MaxCandidates < 1 {
		errs = append(errs, fmt.Errorf("MAX_CANDIDATES must be at least 1, got %d", c.MaxCandidates))
	}
	if c.DrinkCue <= 0 {
		errs = append(errs, fmt.Errorf("DRINK_CUE_DURATION must be positive, got %s", c.DrinkCue))
	}
	if len(c.TargetRegion) != 2 {
		errs = append(errs, fmt.Errorf("TARGET_REGION must be a two letter region code, got %q", c.TargetRegion))
	}
	return errors.Join(errs...)
}
