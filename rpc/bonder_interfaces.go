package rpc

import (
	"context"
	"math/big"

	"github.com/bonder-network/bonder/store"
	"github.com/ethereum/go-ethereum/common"
)

// CreditReader exposes the liquidity kept by the watcher of a chain
type CreditReader interface {
	GetEffectiveAvailableCredit(destChainID uint64) *big.Int
	GetPendingAmount(destChainID uint64) *big.Int
	GetUnbondedTransferRootAmount(destChainID uint64) *big.Int
	IsAllSiblingWatchersInitialSyncCompleted() bool
}

// Storer is the read side of the storage of a token
type Storer interface {
	GetTransfer(ctx context.Context, transferID common.Hash) (*store.Transfer, error)
	GetTransferRoot(ctx context.Context, rootHash common.Hash) (*store.TransferRoot, error)
	GetTransfersByTimeRange(ctx context.Context, from, to uint64) ([]*store.Transfer, error)
	GetTransferRootsByTimeRange(ctx context.Context, from, to uint64) ([]*store.TransferRoot, error)
	GetLatestGasCost(ctx context.Context, chain, token string, attemptSwap bool) (*store.GasCost, error)
}

// Token groups what the endpoints serve for a token
type Token struct {
	Storage Storer
	// Watchers by chain id
	Watchers map[uint64]CreditReader
}
