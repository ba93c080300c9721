package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/fees"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"LOOFTA_JWT_TOKEN", "LOOFTA_BASE_URL", "LOOFTA_ENV", "LOOFTA_HTTP_ADDR",
		"LOOFTA_DB_PATH", "LOOFTA_FEES_PROPORTIONAL_RATE", "LOOFTA_FEES_DECIMALS",
		"LOOFTA_WATCH_INTERVAL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "https://1click.chaindefuser.com", cfg.BaseURL)
	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "loofta.db", cfg.DBPath)
	assert.Equal(t, int32(fees.DefaultDecimals), cfg.Fees.Decimals)
	assert.Equal(t, 5*time.Second, cfg.Watch.Interval)
	assert.Equal(t, 60*time.Second, cfg.Watch.MaxBackoff)
	assert.Error(t, cfg.RequireJWT())

	schedule, err := cfg.FeeSchedule()
	require.NoError(t, err)
	assert.True(t, schedule.ProportionalRate.Equal(fees.DefaultSchedule().ProportionalRate))
	assert.True(t, schedule.FixedFee.Equal(fees.DefaultSchedule().FixedFee))
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("LOOFTA_JWT_TOKEN", "secret")
	t.Setenv("LOOFTA_ENV", "prod")
	t.Setenv("LOOFTA_HTTP_ADDR", ":9090")
	t.Setenv("LOOFTA_FEES_PROPORTIONAL_RATE", "0.01")
	t.Setenv("LOOFTA_FEES_DECIMALS", "9")
	t.Setenv("LOOFTA_WATCH_INTERVAL", "2s")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.NoError(t, cfg.RequireJWT())
	assert.Equal(t, EnvProd, cfg.Env)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 0.01, cfg.Fees.ProportionalRate)
	assert.Equal(t, int32(9), cfg.Fees.Decimals)
	assert.Equal(t, 2*time.Second, cfg.Watch.Interval)
}

func TestLoad_ConfigFile(t *testing.T) {
	home := isolate(t)
	yaml := `jwt_token: from-file
db_path: /tmp/snapshots.db
fees:
  fixed_fee: 0.5
  minimum_net: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(home, ".loofta.yaml"), []byte(yaml), 0o600))

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWTToken)
	assert.Equal(t, "/tmp/snapshots.db", cfg.DBPath)
	assert.Equal(t, 0.5, cfg.Fees.FixedFee)
	assert.Equal(t, float64(10), cfg.Fees.MinimumNet)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:            EnvDev,
			RequestTimeout: time.Second,
			Fees: FeesConfig{
				ProportionalRate: fees.DefaultProportionalRate,
				FixedFee:         fees.DefaultFixedFee,
				MinimumNet:       fees.DefaultMinimumNet,
				Decimals:         fees.DefaultDecimals,
			},
		}
	}
	require.NoError(t, base().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown env", func(c *Config) { c.Env = "staging" }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"negative decimals", func(c *Config) { c.Fees.Decimals = -1 }},
		{"too many decimals", func(c *Config) { c.Fees.Decimals = 19 }},
		{"rate of one", func(c *Config) { c.Fees.ProportionalRate = 1 }},
		{"negative fixed fee", func(c *Config) { c.Fees.FixedFee = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
