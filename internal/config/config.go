/**
 * @description
 * This package handles configuration management for the ledger-service. It
 * uses the Viper library to read configuration from environment variables
 * (with an optional .env file), providing a centralized way to manage
 * application settings.
 *
 * Account-policy figures (minimum balances, overdraft limits, withdrawal fees,
 * opening-deposit minimums) are configuration rather than constants; the
 * defaults below are the canonical parameter set.
 *
 * @dependencies
 * - github.com/spf13/viper: Configuration loading.
 * - github.com/shopspring/decimal: Monetary policy values.
 */

package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for the ledger-service.
type Config struct {
	ServerPort string

	// Optional collaborators; empty disables them.
	DatabaseURL string
	RabbitMQURL string

	// DataDir holds the file-store snapshot when Postgres is not configured.
	DataDir string

	TransactionEventExchange string
	SeedSampleData           bool

	SavingsMinimumBalance  decimal.Decimal
	SavingsWithdrawalFee   decimal.Decimal
	CheckingOverdraftLimit decimal.Decimal
	CheckingWithdrawalFee  decimal.Decimal

	RegularMinimumOpeningDeposit decimal.Decimal
	PremiumMinimumOpeningDeposit decimal.Decimal

	SimulationMaxWorkers int
}

// Load reads configuration from environment variables, with an optional .env
// file in the given path for local development.
func Load(path string) (Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("TRANSACTION_EVENT_EXCHANGE", "ledger.events")
	viper.SetDefault("SEED_SAMPLE_DATA", false)
	viper.SetDefault("SAVINGS_MINIMUM_BALANCE", "500.00")
	viper.SetDefault("SAVINGS_WITHDRAWAL_FEE", "0.00")
	viper.SetDefault("CHECKING_OVERDRAFT_LIMIT", "500.00")
	viper.SetDefault("CHECKING_WITHDRAWAL_FEE", "0.00")
	viper.SetDefault("REGULAR_MINIMUM_OPENING_DEPOSIT", "500.00")
	viper.SetDefault("PREMIUM_MINIMUM_OPENING_DEPOSIT", "10000.00")
	viper.SetDefault("SIMULATION_MAX_WORKERS", 64)

	// The .env file is optional; only a malformed file is an error.
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, err
		}
	}

	cfg := Config{
		ServerPort:               viper.GetString("SERVER_PORT"),
		DatabaseURL:              viper.GetString("DATABASE_URL"),
		DataDir:                  viper.GetString("DATA_DIR"),
		RabbitMQURL:              viper.GetString("RABBITMQ_URL"),
		TransactionEventExchange: viper.GetString("TRANSACTION_EVENT_EXCHANGE"),
		SeedSampleData:           viper.GetBool("SEED_SAMPLE_DATA"),
		SimulationMaxWorkers:     viper.GetInt("SIMULATION_MAX_WORKERS"),
	}

	var err error
	if cfg.SavingsMinimumBalance, err = decimalSetting("SAVINGS_MINIMUM_BALANCE"); err != nil {
		return Config{}, err
	}
	if cfg.SavingsWithdrawalFee, err = decimalSetting("SAVINGS_WITHDRAWAL_FEE"); err != nil {
		return Config{}, err
	}
	if cfg.CheckingOverdraftLimit, err = decimalSetting("CHECKING_OVERDRAFT_LIMIT"); err != nil {
		return Config{}, err
	}
	if cfg.CheckingWithdrawalFee, err = decimalSetting("CHECKING_WITHDRAWAL_FEE"); err != nil {
		return Config{}, err
	}
	if cfg.RegularMinimumOpeningDeposit, err = decimalSetting("REGULAR_MINIMUM_OPENING_DEPOSIT"); err != nil {
		return Config{}, err
	}
	if cfg.PremiumMinimumOpeningDeposit, err = decimalSetting("PREMIUM_MINIMUM_OPENING_DEPOSIT"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func decimalSetting(key string) (decimal.Decimal, error) {
	raw := viper.GetString(key)
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal for %s: %q", key, raw)
	}
	if d.Sign() < 0 {
		return decimal.Zero, fmt.Errorf("%s must not be negative, got %q", key, raw)
	}
	return d, nil
}
