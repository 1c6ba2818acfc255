// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

type Config struct {
	Addr               string        `env:"SPEAKERBOX_ADDR"                envDefault:":8080"`
	LogLevel           string        `env:"SPEAKERBOX_LOG_LEVEL"           envDefault:"info"`
	LogPretty          bool          `env:"SPEAKERBOX_LOG_PRETTY"          envDefault:"true"`
	MaxCalls           int           `env:"SPEAKERBOX_MAX_CALLS"           envDefault:"1"`
	DialDelay          time.Duration `env:"SPEAKERBOX_DIAL_DELAY"          envDefault:"1s"`
	TransactionHistory int           `env:"SPEAKERBOX_TRANSACTION_HISTORY" envDefault:"100"`
	ShutdownTimeout    time.Duration `env:"SPEAKERBOX_SHUTDOWN_TIMEOUT"    envDefault:"5s"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	if c.MaxCalls <= 0 {
		errs = append(errs, fmt.Errorf("max calls must be positive, got %d", c.MaxCalls))
	}
	if c.TransactionHistory <= 0 {
		errs = append(errs, fmt.Errorf("transaction history must be positive, got %d", c.TransactionHistory))
	}
	if c.DialDelay < 0 {
		errs = append(errs, fmt.Errorf("dial delay cannot be negative, got %s", c.DialDelay))
	}
	if c.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout cannot be negative, got %s", c.ShutdownTimeout))
	}
	return errors.Join(errs...)
}
