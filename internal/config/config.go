package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Telegram TelegramConfig
	Ledger   LedgerConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	AdminToken   string
	AllowOrigins string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type TelegramConfig struct {
	BotToken   string
	AdminID    int64
	CardNumber string
	CardHolder string
}

type LedgerConfig struct {
	Tariffs           map[string]Tariff
	MinWithdrawal     int64
	FirstDepositBonus int64
}

// Tariff is a named investment tier: the price the user pays and the bonus
// paid to whoever referred them, both in currency minor units.
type Tariff struct {
	Price    int64
	RefBonus int64
}

func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	adminID, err := getEnvInt64("ADMIN_ID", 0)
	if err != nil {
		return nil, err
	}
	minWithdrawal, err := getEnvInt64("MIN_WITHDRAW", 15000)
	if err != nil {
		return nil, err
	}
	firstDepositBonus, err := getEnvInt64("FIRST_DEPOSIT_BONUS", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			AdminToken:   getEnv("ADMIN_API_TOKEN", ""),
			AllowOrigins: getEnv("ALLOW_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "piramida"),
			Password: getEnv("DB_PASSWORD", "piramida"),
			Name:     getEnv("DB_NAME", "piramida"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Telegram: TelegramConfig{
			BotToken:   getEnv("BOT_TOKEN", ""),
			AdminID:    adminID,
			CardNumber: getEnv("CARD_NUMBER", "5614681621153729"),
			CardHolder: getEnv("CARD_HOLDER", "Bafoyev.I"),
		},
		Ledger: LedgerConfig{
			Tariffs:           DefaultTariffs(),
			MinWithdrawal:     minWithdrawal,
			FirstDepositBonus: firstDepositBonus,
		},
	}

	return cfg, nil
}

// DefaultTariffs returns the built-in tariff catalog.
func DefaultTariffs() map[string]Tariff {
	return map[string]Tariff{
		"BASIC": {Price: 10000, RefBonus: 1000},
		"PRO":   {Price: 20000, RefBonus: 2500},
		"ELITE": {Price: 35000, RefBonus: 3200},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
