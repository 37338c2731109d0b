package handlers

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/skyvein-baas/client-skyvein-golang-api/models"
)

const MaxEraPeriod = 1 << 16

// Config is everything one transfer run needs from its caller.
type Config struct {
	Endpoint    string `envconfig:"RPC_ENDPOINT" default:"wss://rpc.relay.blockchain.enjin.io"`
	Mnemonic    string `envconfig:"MNEMONIC"`
	Destination string `envconfig:"DESTINATION"`
	// Amount is in whole tokens and scaled by the chain's decimals.
	Amount           string        `envconfig:"AMOUNT" default:"0.1"`
	Tip              string        `envconfig:"TIP" default:"0"`
	EraPeriod        uint64        `envconfig:"ERA_PERIOD" default:"64"`
	HandshakeTimeout time.Duration `envconfig:"HANDSHAKE_TIMEOUT" default:"30s"`

	WithSignedTransaction bool   `envconfig:"WITH_SIGNED_TRANSACTION" default:"true"`
	ExplorerURL           string `envconfig:"EXPLORER_URL" default:"https://enjin.subscan.io/extrinsic/"`
	LogLevel              string `envconfig:"LOG_LEVEL" default:"info"`
}

// Validate checks the configuration without touching the network.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return models.NewError(models.ErrConfig, "RPC_ENDPOINT", fmt.Errorf("endpoint is required"))
	}
	if strings.TrimSpace(c.Mnemonic) == "" {
		return models.NewError(models.ErrConfig, "MNEMONIC", fmt.Errorf("mnemonic is required"))
	}
	if strings.TrimSpace(c.Amount) == "" {
		return models.NewError(models.ErrConfig, "AMOUNT", fmt.Errorf("amount is required"))
	}
	if _, err := c.TipValue(); err != nil {
		return models.NewError(models.ErrConfig, "TIP", err)
	}
	if c.EraPeriod > MaxEraPeriod {
		return models.NewError(models.ErrConfig, "ERA_PERIOD", fmt.Errorf("%d exceeds %d", c.EraPeriod, MaxEraPeriod))
	}
	if c.HandshakeTimeout <= 0 {
		return models.NewError(models.ErrConfig, "HANDSHAKE_TIMEOUT", fmt.Errorf("must be positive"))
	}
	if c.Destination != "" {
		if _, _, err := models.SS58Decode(c.Destination); err != nil {
			return models.NewError(models.ErrConfig, "DESTINATION", err)
		}
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return models.NewError(models.ErrConfig, "LOG_LEVEL", err)
		}
	}
	return nil
}

// TipValue parses Tip, given in the smallest unit.
func (c Config) TipValue() (*big.Int, error) {
	if strings.TrimSpace(c.Tip) == "" {
		return new(big.Int), nil
	}
	tip, ok := new(big.Int).SetString(strings.TrimSpace(c.Tip), 10)
	if !ok || tip.Sign() < 0 {
		return nil, fmt.Errorf("invalid tip %q", c.Tip)
	}
	if tip.Cmp(models.MaxU128) > 0 {
		return nil, fmt.Errorf("tip overflows u128")
	}
	return tip, nil
}
