package syncwatcher

import (
	"context"
	"math/big"

	"github.com/bonder-network/bonder/bridge"
	"github.com/bonder-network/bonder/chain"
	"github.com/bonder-network/bonder/exporter"
	"github.com/ethereum/go-ethereum/common"
)

// BridgeClient reads the bridge contract of the watched token on a chain
type BridgeClient interface {
	Chain() chain.Chain
	BridgeDeployedBlockNumber() uint64
	MapEvents(ctx context.Context, kind bridge.EventKind, opts bridge.SyncOptions, handler bridge.EventHandler) error
	EventsBatch(ctx context.Context, kind bridge.EventKind, opts bridge.SyncOptions, handler bridge.BatchHandler) error
	GetTransferSentEvents(
		ctx context.Context, destinationChainID, fromBlock, toBlock uint64,
	) ([]*bridge.TransferSentEvent, error)
	GetTransaction(ctx context.Context, txHash common.Hash) (*bridge.Transaction, error)
	GetTransactionTimestamp(ctx context.Context, txHash common.Hash) (uint64, error)
	GetBlockTimestamp(ctx context.Context, blockNum uint64) (uint64, error)
	GetBlockNumberFromDate(ctx context.Context, ts uint64) (uint64, error)
	GetBaseAvailableCredit(ctx context.Context, bonder common.Address) (*big.Int, error)
	GetPendingAmountForChainID(ctx context.Context, chainID uint64) (*big.Int, error)
	IsTransferRootIDBonded(ctx context.Context, transferRootID common.Hash) (bool, error)
	GetTransferIDsFromSettleEventTransaction(ctx context.Context, txHash common.Hash) ([]common.Hash, *big.Int, error)
	EstimateBondWithdrawalGas(
		ctx context.Context, bonder common.Address, attemptSwap bool,
	) (bridge.BondWithdrawalGasEstimation, error)
	FormatUnits(amount *big.Int) string
	ParseUnits(amount string) (*big.Int, error)
}

var _ BridgeClient = (*bridge.Client)(nil)

// Notifier reports errors without blocking
type Notifier interface {
	Error(msg string)
}

// Exporter publishes the liquidity snapshot of a token
type Exporter interface {
	Export(ctx context.Context, token string, snapshot exporter.TokenSnapshot) error
}

// PriceFeed returns the USD price of a token
type PriceFeed interface {
	PriceUSD(ctx context.Context, symbol string) (float64, error)
}
