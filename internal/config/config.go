package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/rootzsu/orderbot/core/config"
	coredatabase "github.com/rootzsu/orderbot/core/database"
	"github.com/rootzsu/orderbot/internal/domain"
)

// PaymentsConfig holds wallet references published to users per currency.
// A currency without a wallet is still orderable when the catalog carries a
// price for it; the operator-settled channel never needs one.
type PaymentsConfig struct {
	WalletUSD string `yaml:"wallet_usd" envconfig:"PAYMENT_WALLET_USD"`
	WalletBTC string `yaml:"wallet_btc" envconfig:"PAYMENT_WALLET_BTC"`
	WalletEUR string `yaml:"wallet_eur" envconfig:"PAYMENT_WALLET_EUR"`
	WalletUAH string `yaml:"wallet_uah" envconfig:"PAYMENT_WALLET_UAH"`
}

// Wallet returns the configured wallet reference for a currency.
func (p PaymentsConfig) Wallet(c domain.Currency) (string, bool) {
	var w string
	switch c {
	case domain.CurrencyUSD:
		w = p.WalletUSD
	case domain.CurrencyBTC:
		w = p.WalletBTC
	case domain.CurrencyEUR:
		w = p.WalletEUR
	case domain.CurrencyUAH:
		w = p.WalletUAH
	}
	return w, w != ""
}

// BroadcastConfig tunes broadcast fan-out pacing.
type BroadcastConfig struct {
	PaceMS int `yaml:"pace_ms" envconfig:"BROADCAST_PACE_MS"`
}

// Config aggregates the core bot configuration with application settings.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Payments PaymentsConfig      `yaml:"payments"`

	// InitialOperatorID is seeded as the first operator and can never be
	// demoted.
	InitialOperatorID int64 `yaml:"initial_operator_id" envconfig:"INITIAL_OPERATOR_ID"`

	Broadcast BroadcastConfig `yaml:"broadcast"`
}

// CoreConfig exposes the embedded core configuration for the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if cfg.InitialOperatorID == 0 {
		return nil, fmt.Errorf("initial_operator_id is required")
	}
	if cfg.Broadcast.PaceMS < 0 {
		return nil, fmt.Errorf("broadcast.pace_ms must be >= 0")
	}
	return &cfg, nil
}
