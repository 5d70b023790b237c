package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env         string `envconfig:"AUCTION_ENV" default:"local"`
	LogLevel    string `envconfig:"AUCTION_LOG_LEVEL" default:"info"`
	HTTPAddr    string `envconfig:"AUCTION_HTTP_ADDR" default:":8080"`
	MetricsAddr string `envconfig:"AUCTION_METRICS_ADDR" default:":9091"`

	// The external Ledger & Authorization Service.
	LedgerBaseURL string        `envconfig:"AUCTION_LEDGER_BASE_URL" default:"http://localhost:4000"`
	LedgerTimeout time.Duration `envconfig:"AUCTION_LEDGER_TIMEOUT" default:"3s"`

	// Minimum raise applied when a lot is opened without an increment.
	DefaultIncrement int `envconfig:"AUCTION_DEFAULT_INCREMENT" default:"100"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DefaultIncrement <= 0 {
		return nil, fmt.Errorf("AUCTION_DEFAULT_INCREMENT must be positive, got %d", cfg.DefaultIncrement)
	}
	if cfg.LedgerTimeout <= 0 {
		return nil, fmt.Errorf("AUCTION_LEDGER_TIMEOUT must be positive, got %s", cfg.LedgerTimeout)
	}
	return &cfg, nil
}
