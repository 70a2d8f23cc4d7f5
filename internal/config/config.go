package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/eigerco/fury/internal/engine"
	"github.com/eigerco/fury/internal/payout"
	"github.com/eigerco/fury/internal/selection"
	"github.com/eigerco/fury/pkg/log"
)

// EnvPrefix prefixes every environment variable read by the configuration,
// e.g. FURY_STAKING_DENOM.
const EnvPrefix = "FURY"

// Configuration keys.
const (
	KeyDataDir         = "data_dir"
	KeyInMemory        = "in_memory"
	KeyStakingDenom    = "staking_denom"
	KeySampling        = "sampling"
	KeyRemainderPolicy = "remainder_policy"
	KeyCacheSize       = "cache_size"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyMetricsAddr     = "metrics_addr"
	KeyOperator        = "operator"
)

// Config holds everything needed to run the engine from the command line.
type Config struct {
	DataDir         string `mapstructure:"data_dir"`
	InMemory        bool   `mapstructure:"in_memory"`
	StakingDenom    string `mapstructure:"staking_denom"`
	Sampling        string `mapstructure:"sampling"`
	RemainderPolicy string `mapstructure:"remainder_policy"`
	CacheSize       int    `mapstructure:"cache_size"`
	LogLevel        string `mapstructure:"log_level"`
	LogFormat       string `mapstructure:"log_format"`
	// MetricsAddr enables the Prometheus endpoint when set, e.g. ":9090".
	MetricsAddr string `mapstructure:"metrics_addr"`
	// Operator is the admin identity the settlement relay reports as.
	Operator string `mapstructure:"operator"`
}

// New returns a viper instance with defaults set that also reads FURY_*
// environment variables.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDataDir, "./fury-data")
	v.SetDefault(KeyInMemory, false)
	v.SetDefault(KeyStakingDenom, "ufury")
	v.SetDefault(KeySampling, selection.WithReplacement.String())
	v.SetDefault(KeyRemainderPolicy, payout.Rollover.String())
	v.SetDefault(KeyCacheSize, 1024)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyMetricsAddr, "")
	v.SetDefault(KeyOperator, "")
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are skipped, variables already set are not overridden.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads file, or fury.{yaml,toml,json} from the working directory when
// file is empty, on top of the defaults and environment of v.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("fury")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.StakingDenom == "" {
		result = multierror.Append(result, errors.New("staking_denom must not be empty"))
	}
	if !c.InMemory && c.DataDir == "" {
		result = multierror.Append(result, errors.New("data_dir is required unless in_memory is set"))
	}
	if c.CacheSize < 0 {
		result = multierror.Append(result, fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize))
	}
	if _, err := selection.ParseMode(c.Sampling); err != nil {
		result = multierror.Append(result, err)
	}
	if _, err := payout.ParseRemainderPolicy(c.RemainderPolicy); err != nil {
		result = multierror.Append(result, err)
	}
	if _, err := log.ParseLogLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, err)
	}
	if _, err := log.ParseLoggerType(c.LogFormat); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// Engine converts the settings into the engine configuration.
func (c *Config) Engine() (engine.Config, error) {
	mode, err := selection.ParseMode(c.Sampling)
	if err != nil {
		return engine.Config{}, err
	}
	policy, err := payout.ParseRemainderPolicy(c.RemainderPolicy)
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		StakingDenom: c.StakingDenom,
		Sampling:     mode,
		Remainder:    policy,
	}, nil
}

// LogOptions converts the settings into logger options.
func (c *Config) LogOptions() (log.Options, error) {
	level, err := log.ParseLogLevel(c.LogLevel)
	if err != nil {
		return log.Options{}, err
	}
	typ, err := log.ParseLoggerType(c.LogFormat)
	if err != nil {
		return log.Options{}, err
	}
	return log.Options{LogLevel: level, Type: typ, Output: os.Stderr}, nil
}
