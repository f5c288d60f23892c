package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	SendBuffer int           `mapstructure:"send_buffer"`
	Secret     string        `mapstructure:"secret"`

	Ledger      LedgerConfig      `mapstructure:"ledger"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Rate        RateConfig        `mapstructure:"rate"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

type LedgerConfig struct {
	// Driver is one of memory, sqlite, postgres.
	Driver  string        `mapstructure:"driver"`
	DSN     string        `mapstructure:"dsn"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LeaderboardConfig struct {
	Limit int `mapstructure:"limit"`
}

type RateConfig struct {
	VotesPerSecond float64 `mapstructure:"votes_per_second"`
	Burst          int     `mapstructure:"burst"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("secret", "")
	v.SetDefault("ledger.driver", "memory")
	v.SetDefault("ledger.dsn", "")
	v.SetDefault("ledger.timeout", "3s")
	v.SetDefault("leaderboard.limit", 10)
	v.SetDefault("rate.votes_per_second", 5)
	v.SetDefault("rate.burst", 10)
	v.SetDefault("metrics.enabled", true)
}

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default). Every key
// can be overridden from the environment as TRACKLIST_<KEY>, with dots
// replaced by underscores.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvPrefix("tracklist")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("ledger", cfg.Ledger.Driver).Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Ledger.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("config.Validate: unknown ledger driver %q", c.Ledger.Driver)
	}
	if c.Ledger.Driver != "memory" && c.Ledger.DSN == "" {
		return fmt.Errorf("config.Validate: ledger.dsn is required for %s", c.Ledger.Driver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config.Validate: port %d out of range", c.Port)
	}
	return nil
}
