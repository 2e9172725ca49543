package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/bonder-network/bonder/db"
	"github.com/bonder-network/bonder/log"
	"github.com/bonder-network/bonder/rpc/types"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	// BONDER is the namespace of the bonder service
	BONDER    = "bonder"
	meterName = "github.com/bonder-network/bonder/rpc"
)

// BonderEndpoints contains implementations for the "bonder" RPC endpoints
type BonderEndpoints struct {
	logger       *log.Logger
	meter        metric.Meter
	readTimeout  time.Duration
	maxTimeRange uint64
	tokens       map[string]Token
}

// NewBonderEndpoints returns BonderEndpoints. Tokens are keyed by symbol, maxTimeRange (seconds)
// bounds the range queries
func NewBonderEndpoints(
	logger *log.Logger,
	readTimeout time.Duration,
	maxTimeRange uint64,
	tokens map[string]Token,
) *BonderEndpoints {
	meter := otel.Meter(meterName)
	byToken := make(map[string]Token, len(tokens))
	for symbol, t := range tokens {
		byToken[strings.ToUpper(symbol)] = t
	}
	return &BonderEndpoints{
		logger:       logger,
		meter:        meter,
		readTimeout:  readTimeout,
		maxTimeRange: maxTimeRange,
		tokens:       byToken,
	}
}

// Credit returns the liquidity of the bonder to bond transfers from sourceChainID to destChainID
func (b *BonderEndpoints) Credit(token string, sourceChainID, destChainID uint64) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "credit")

	t, rpcErr := b.token(token)
	if rpcErr != nil {
		return nil, rpcErr
	}
	w, ok := t.Watchers[sourceChainID]
	if !ok {
		return nil, rpc.NewRPCError(
			rpc.DefaultErrorCode,
			fmt.Sprintf("this client does not watch %s on chain %d", token, sourceChainID),
		)
	}
	return types.Credit{
		Token:                      strings.ToUpper(token),
		SourceChainID:              sourceChainID,
		DestinationChainID:         destChainID,
		AvailableCredit:            w.GetEffectiveAvailableCredit(destChainID),
		PendingAmount:              w.GetPendingAmount(destChainID),
		UnbondedTransferRootAmount: w.GetUnbondedTransferRootAmount(destChainID),
		InitialSyncCompleted:       w.IsAllSiblingWatchersInitialSyncCompleted(),
	}, nil
}

// Transfer returns the stored state of a transfer
func (b *BonderEndpoints) Transfer(token string, transferID common.Hash) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "transfer")

	t, rpcErr := b.token(token)
	if rpcErr != nil {
		return nil, rpcErr
	}
	transfer, err := t.Storage.GetTransfer(ctx, transferID)
	if err != nil {
		return nil, storageError("transfer", err)
	}
	return transfer, nil
}

// TransferRoot returns the stored state of a transfer root
func (b *BonderEndpoints) TransferRoot(token string, rootHash common.Hash) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "transfer_root")

	t, rpcErr := b.token(token)
	if rpcErr != nil {
		return nil, rpcErr
	}
	root, err := t.Storage.GetTransferRoot(ctx, rootHash)
	if err != nil {
		return nil, storageError("transfer root", err)
	}
	return root, nil
}

// Transfers returns the transfers sent between the unix timestamps from and to
func (b *BonderEndpoints) Transfers(token string, from, to uint64) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "transfers")

	t, rpcErr := b.token(token)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := b.checkTimeRange(from, to); rpcErr != nil {
		return nil, rpcErr
	}
	transfers, err := t.Storage.GetTransfersByTimeRange(ctx, from, to)
	if err != nil {
		return nil, storageError("transfers", err)
	}
	return transfers, nil
}

// TransferRoots returns the transfer roots committed between the unix timestamps from and to
func (b *BonderEndpoints) TransferRoots(token string, from, to uint64) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "transfer_roots")

	t, rpcErr := b.token(token)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := b.checkTimeRange(from, to); rpcErr != nil {
		return nil, rpcErr
	}
	roots, err := t.Storage.GetTransferRootsByTimeRange(ctx, from, to)
	if err != nil {
		return nil, storageError("transfer roots", err)
	}
	return roots, nil
}

// GasCost returns the latest bond gas estimation of the token on a chain
func (b *BonderEndpoints) GasCost(token string, chain string, attemptSwap bool) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()
	b.count(ctx, "gas_cost")

	t, rpcErr := b.token(token)
	if rpcErr != nil {
		return nil, rpcErr
	}
	gasCost, err := t.Storage.GetLatestGasCost(ctx, chain, strings.ToUpper(token), attemptSwap)
	if err != nil {
		return nil, storageError("gas cost", err)
	}
	return gasCost, nil
}

func (b *BonderEndpoints) token(symbol string) (Token, rpc.Error) {
	t, ok := b.tokens[strings.ToUpper(symbol)]
	if !ok {
		return Token{}, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("this client does not support token %s", symbol))
	}
	return t, nil
}

func (b *BonderEndpoints) checkTimeRange(from, to uint64) rpc.Error {
	if from > to {
		return rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("invalid time range %d > %d", from, to))
	}
	if b.maxTimeRange > 0 && to-from > b.maxTimeRange {
		return rpc.NewRPCError(
			rpc.DefaultErrorCode,
			fmt.Sprintf("time range of %d seconds exceeds the limit of %d", to-from, b.maxTimeRange),
		)
	}
	return nil
}

func (b *BonderEndpoints) count(ctx context.Context, name string) {
	c, merr := b.meter.Int64Counter(name)
	if merr != nil {
		b.logger.Warnf("failed to create %s counter: %s", name, merr)
		return
	}
	c.Add(ctx, 1)
}

func storageError(what string, err error) rpc.Error {
	if errors.Is(err, db.ErrNotFound) {
		return rpc.NewRPCError(rpc.NotFoundErrorCode, fmt.Sprintf("%s not found", what))
	}
	return rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to get %s, error: %s", what, err))
}
