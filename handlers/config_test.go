package handlers

import (
	"errors"
	"testing"

	"github.com/kelseyhightower/envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyvein-baas/client-skyvein-golang-api/models"
)

func TestConfigDefaults(t *testing.T) {
	t.Setenv("MNEMONIC", aliceURI)

	var cfg Config
	require.NoError(t, envconfig.Process("", &cfg))
	assert.Equal(t, "wss://rpc.relay.blockchain.enjin.io", cfg.Endpoint)
	assert.Equal(t, "0.1", cfg.Amount)
	assert.Equal(t, uint64(64), cfg.EraPeriod)
	assert.True(t, cfg.WithSignedTransaction)
	assert.Equal(t, "https://enjin.subscan.io/extrinsic/", cfg.ExplorerURL)
	assert.Empty(t, cfg.Destination)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*Config)
	}{
		{"RPC_ENDPOINT", func(c *Config) { c.Endpoint = " " }},
		{"MNEMONIC", func(c *Config) { c.Mnemonic = "" }},
		{"AMOUNT", func(c *Config) { c.Amount = "" }},
		{"TIP", func(c *Config) { c.Tip = "-5" }},
		{"TIP", func(c *Config) { c.Tip = "lots" }},
		{"ERA_PERIOD", func(c *Config) { c.EraPeriod = 1 << 17 }},
		{"HANDSHAKE_TIMEOUT", func(c *Config) { c.HandshakeTimeout = 0 }},
		{"DESTINATION", func(c *Config) { c.Destination = "5Grwva" }},
		{"LOG_LEVEL", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrConfig))

			var pe *models.Error
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}

func TestConfigTipValue(t *testing.T) {
	cfg := testConfig()
	cfg.Tip = "1000"
	tip, err := cfg.TipValue()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), tip.Int64())

	cfg.Tip = ""
	tip, err = cfg.TipValue()
	require.NoError(t, err)
	assert.Equal(t, 0, tip.Sign())
}
