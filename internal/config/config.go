package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ErrNotConfigured means no database connection was configured, via
// file or environment. Callers show a friendly message instead of a
// connection error.
var ErrNotConfigured = errors.New("storage is not configured")

// Server holds all configuration for the progression daemon.
type Server struct {
	// Gateway
	BindAddress string `yaml:"bind_address" env:"RPGD_BIND_ADDRESS"`
	Port        int    `yaml:"port" env:"RPGD_PORT"`

	// AdminSecretHash is the bcrypt hash of the operator secret.
	// Empty disables admin verbs entirely.
	AdminSecretHash string `yaml:"admin_secret_hash" env:"RPGD_ADMIN_SECRET_HASH"`

	Database DatabaseConfig `yaml:"database"`
	Game     GameConfig     `yaml:"game"`
}

// DatabaseConfig holds PostgreSQL connection parameters. URL wins over
// the individual fields when set.
type DatabaseConfig struct {
	URL      string `yaml:"url" env:"POSTGRES_URL"`
	Host     string `yaml:"host" env:"POSTGRES_HOST"`
	Port     int    `yaml:"port" env:"POSTGRES_PORT"`
	User     string `yaml:"user" env:"POSTGRES_USER"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB"`
	SSLMode  string `yaml:"sslmode" env:"POSTGRES_SSLMODE"`
}

// DSN returns the PostgreSQL connection string, or ErrNotConfigured
// when neither a URL nor host/dbname parameters were provided.
func (d DatabaseConfig) DSN() (string, error) {
	if d.URL != "" {
		return d.URL, nil
	}
	if d.Host == "" || d.DBName == "" {
		return "", ErrNotConfigured
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	), nil
}

// GameConfig holds tunable gameplay values.
type GameConfig struct {
	// ExpTickCooldownSeconds is the minimum gap between passive
	// experience awards for one player.
	ExpTickCooldownSeconds int `yaml:"exp_tick_cooldown_seconds" env:"RPGD_EXP_TICK_COOLDOWN_SECONDS"`

	// ExpTickExp and ExpTickCoins are the base passive award, before
	// rank and buff multipliers.
	ExpTickExp   int64 `yaml:"exp_tick_exp" env:"RPGD_EXP_TICK_EXP"`
	ExpTickCoins int64 `yaml:"exp_tick_coins" env:"RPGD_EXP_TICK_COINS"`
}

// Default returns Server config with sensible defaults.
func Default() Server {
	return Server{
		BindAddress: "0.0.0.0",
		Port:        8480,
		Database: DatabaseConfig{
			Port:    5432,
			User:    "rpgd",
			SSLMode: "disable",
		},
		Game: GameConfig{
			ExpTickCooldownSeconds: 30,
			ExpTickExp:             12,
			ExpTickCoins:           1,
		},
	}
}

// Load loads server config from a YAML file, then applies environment
// overrides. If the file doesn't exist, returns defaults plus env.
func Load(path string) (Server, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment overrides: %w", err)
	}

	return cfg, nil
}
