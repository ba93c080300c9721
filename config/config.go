package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/fees"
)

// Environments accepted in Env
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config holds the application configuration
type Config struct {
	JWTToken string
	BaseURL  string
	Env      string

	HTTPAddr       string
	RequestTimeout time.Duration
	DBPath         string

	Fees  FeesConfig
	Watch WatchConfig
}

// FeesConfig is the privacy pool fee schedule plus the default asset precision
type FeesConfig struct {
	ProportionalRate float64
	FixedFee         float64
	MinimumNet       float64
	Decimals         int32
}

// WatchConfig controls status polling
type WatchConfig struct {
	Interval   time.Duration
	MaxBackoff time.Duration
}

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName(".loofta")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	// Set default values
	v.SetDefault("base_url", "https://1click.chaindefuser.com")
	v.SetDefault("env", EnvLocal)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.request_timeout", 15*time.Second)
	v.SetDefault("db_path", "loofta.db")
	v.SetDefault("fees.proportional_rate", fees.DefaultProportionalRate)
	v.SetDefault("fees.fixed_fee", fees.DefaultFixedFee)
	v.SetDefault("fees.minimum_net", fees.DefaultMinimumNet)
	v.SetDefault("fees.decimals", fees.DefaultDecimals)
	v.SetDefault("watch.interval", 5*time.Second)
	v.SetDefault("watch.max_backoff", 60*time.Second)

	// Read from environment variables, LOOFTA_HTTP_ADDR maps to http.addr
	v.SetEnvPrefix("LOOFTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		JWTToken:       v.GetString("jwt_token"),
		BaseURL:        v.GetString("base_url"),
		Env:            strings.ToLower(v.GetString("env")),
		HTTPAddr:       v.GetString("http.addr"),
		RequestTimeout: v.GetDuration("http.request_timeout"),
		DBPath:         v.GetString("db_path"),
		Fees: FeesConfig{
			ProportionalRate: v.GetFloat64("fees.proportional_rate"),
			FixedFee:         v.GetFloat64("fees.fixed_fee"),
			MinimumNet:       v.GetFloat64("fees.minimum_net"),
			Decimals:         v.GetInt32("fees.decimals"),
		},
		Watch: WatchConfig{
			Interval:   v.GetDuration("watch.interval"),
			MaxBackoff: v.GetDuration("watch.max_backoff"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env %q (want local, dev or prod)", c.Env)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("http.request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.Fees.Decimals < 0 || c.Fees.Decimals > fees.MaxDecimals {
		return fmt.Errorf("fees.decimals must be between 0 and %d, got %d", fees.MaxDecimals, c.Fees.Decimals)
	}
	if _, err := c.FeeSchedule(); err != nil {
		return err
	}
	return nil
}

// RequireJWT fails when no 1Click token is configured
func (c *Config) RequireJWT() error {
	if c.JWTToken == "" {
		return fmt.Errorf("JWT token not found. Please set LOOFTA_JWT_TOKEN environment variable or create a .loofta.yaml config file")
	}
	return nil
}

// FeeSchedule builds the configured privacy pool fee schedule
func (c *Config) FeeSchedule() (fees.FeeSchedule, error) {
	return fees.NewFeeSchedule(c.Fees.ProportionalRate, c.Fees.FixedFee, c.Fees.MinimumNet)
}
