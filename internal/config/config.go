// Package config loads the process wide, read-only run configuration.
package config

import (
	"log/slog"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var (
	ErrReadConfig    = errors.New("Failed to read config file")
	ErrInvalidConfig = errors.New("Invalid config value")
	ErrDecodeConfig  = errors.New("Failed to decode config")
)

type StatsConfig struct {
	// MaxPlayers limits how many ranked players the report shows
	MaxPlayers int `mapstructure:"max_players"`
	// Sort is the ranking key, see stats.Rank for the accepted values
	Sort string `mapstructure:"sort"`
	// BanList holds exact player names to remove from the ranked output,
	// colour markers included
	BanList []string `mapstructure:"ban_list"`
	// MinPlay is the fraction (0-1) of the earliest joiner's play time a
	// player must exceed to count in a match
	MinPlay float64 `mapstructure:"min_play"`
	// QuoteCount is the size of the random chat quote sample
	QuoteCount int `mapstructure:"quote_count"`
	// GameTypeOverride replaces the parsed gametype name, for mixed logs
	GameTypeOverride string `mapstructure:"gametype_override"`
	// CTFTable enables the CTF report table when flag data exists
	CTFTable bool `mapstructure:"ctf_table"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type rootConfig struct {
	Stats StatsConfig `mapstructure:"stats"`
	Log   LogConfig   `mapstructure:"log"`
}

// Configured values. Anything defined in the config file or env overrides
// the defaults.
var (
	Stats StatsConfig
	Log   LogConfig
)

// Read loads configuration from the given file, or from q3stats.yml in the
// working directory or home directory when no file is given. Env vars with
// the Q3STATS_ prefix override file values.
func Read(cfgFiles ...string) error {
	setDefaultConfigValues()

	if home, errHomeDir := homedir.Dir(); errHomeDir == nil {
		viper.AddConfigPath(home)
	}

	viper.AddConfigPath(".")
	viper.SetConfigName("q3stats")
	viper.SetEnvPrefix("q3stats")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for _, cfgFile := range cfgFiles {
		if cfgFile == "" {
			continue
		}

		viper.SetConfigFile(cfgFile)

		if errReadConfig := viper.ReadInConfig(); errReadConfig != nil {
			return errors.Wrapf(ErrReadConfig, "%s: %v", cfgFile, errReadConfig)
		}
	}

	if viper.ConfigFileUsed() == "" {
		if errReadConfig := viper.ReadInConfig(); errReadConfig == nil {
			slog.Debug("Using config file", slog.String("path", viper.ConfigFileUsed()))
		}
	}

	var cfg rootConfig
	if errUnmarshal := viper.Unmarshal(&cfg); errUnmarshal != nil {
		return errors.Wrap(ErrDecodeConfig, errUnmarshal.Error())
	}

	if errValidate := validate(cfg); errValidate != nil {
		return errValidate
	}

	Stats = cfg.Stats
	Log = cfg.Log

	return nil
}

func validate(cfg rootConfig) error {
	if cfg.Stats.MaxPlayers <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "stats.max_players must be positive: %d", cfg.Stats.MaxPlayers)
	}

	if cfg.Stats.MinPlay < 0 || cfg.Stats.MinPlay > 1 {
		return errors.Wrapf(ErrInvalidConfig, "stats.min_play must be within 0-1: %f", cfg.Stats.MinPlay)
	}

	if cfg.Stats.QuoteCount < 0 {
		return errors.Wrapf(ErrInvalidConfig, "stats.quote_count must not be negative: %d", cfg.Stats.QuoteCount)
	}

	return nil
}

func setDefaultConfigValues() {
	viper.SetDefault("stats.max_players", 150)
	viper.SetDefault("stats.sort", "time")
	viper.SetDefault("stats.ban_list", []string{})
	viper.SetDefault("stats.min_play", 0.5)
	viper.SetDefault("stats.quote_count", 15)
	viper.SetDefault("stats.gametype_override", "")
	viper.SetDefault("stats.ctf_table", true)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", "")
}
