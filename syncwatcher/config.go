package syncwatcher

import (
	"github.com/bonder-network/bonder/config/types"
	"github.com/ethereum/go-ethereum/common"
)

type Config struct {
	// BonderAddress is the address whose credit is tracked on every bridge
	BonderAddress common.Address `mapstructure:"BonderAddress"`
	// ResyncInterval is the time to wait between two sync cycles
	ResyncInterval types.Duration `mapstructure:"ResyncInterval"`
	// SyncFromDate (unix seconds) makes the first cycle start at the first block of that date
	// instead of the last synced block. 0 disables it
	SyncFromDate uint64 `mapstructure:"SyncFromDate"`
	// CreditSyncInterval is the number of cycles between two credit syncs when the exporter
	// is disabled. With the exporter enabled the credit is synced every cycle
	CreditSyncInterval uint64 `mapstructure:"CreditSyncInterval"`
	// UnbondedRootStaleAfter is the age after which an unbonded transfer root amount is no
	// longer subtracted from the available credit
	UnbondedRootStaleAfter types.Duration `mapstructure:"UnbondedRootStaleAfter"`
	// ReconcileBatchSize is the number of incomplete items populated concurrently
	ReconcileBatchSize int `mapstructure:"ReconcileBatchSize"`
	// GasCost configures the bond gas cost poller
	GasCost GasCostConfig `mapstructure:"GasCost"`
}

type GasCostConfig struct {
	// Enabled turns on the gas cost poller
	Enabled bool `mapstructure:"Enabled"`
	// PollInterval is the time between two estimations
	PollInterval types.Duration `mapstructure:"PollInterval"`
	// PricesUSD is the USD price of the tokens, including the native tokens of the chains
	PricesUSD map[string]float64 `mapstructure:"PricesUSD"`
	// MinBonderFeeUSD is the minimum bonder fee in USD
	MinBonderFeeUSD float64 `mapstructure:"MinBonderFeeUSD"`
}
