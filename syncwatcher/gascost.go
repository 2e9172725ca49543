package syncwatcher

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/bonder-network/bonder/store"
	"github.com/shopspring/decimal"
)

const nativeTokenDecimals = 18

// StaticPriceFeed serves the USD prices configured for the node
type StaticPriceFeed map[string]float64

// NewStaticPriceFeed indexes the prices by upper case symbol
func NewStaticPriceFeed(prices map[string]float64) StaticPriceFeed {
	feed := make(StaticPriceFeed, len(prices))
	for symbol, price := range prices {
		feed[strings.ToUpper(symbol)] = price
	}
	return feed
}

// PriceUSD returns an error for unknown or non positive prices
func (f StaticPriceFeed) PriceUSD(ctx context.Context, symbol string) (float64, error) {
	price, ok := f[strings.ToUpper(symbol)]
	if !ok || price <= 0 {
		return 0, fmt.Errorf("no price for %s", symbol)
	}
	return price, nil
}

func (w *SyncWatcher) pollGasCost(ctx context.Context) {
	for {
		if err := w.estimateGasCosts(ctx); err != nil {
			w.log.Errorf("error estimating gas cost: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.cfg.GasCost.PollInterval.Duration):
		}
	}
}

// estimateGasCosts stores the cost of bonding a withdrawal, and on child chains of bonding
// one with a swap
func (w *SyncWatcher) estimateGasCosts(ctx context.Context) error {
	timestamp := uint64(w.now().Unix())
	attemptSwaps := []bool{false}
	if !w.chain.IsRootChain() {
		attemptSwaps = append(attemptSwaps, true)
	}
	for _, attemptSwap := range attemptSwaps {
		gasCost, err := w.estimateGasCost(ctx, attemptSwap)
		if err != nil {
			return err
		}
		gasCost.Timestamp = timestamp
		if err := w.storage.AddGasCost(ctx, gasCost); err != nil {
			return err
		}
	}
	return nil
}

func (w *SyncWatcher) estimateGasCost(ctx context.Context, attemptSwap bool) (*store.GasCost, error) {
	estimation, err := w.client.EstimateBondWithdrawalGas(ctx, w.cfg.BonderAddress, attemptSwap)
	if err != nil {
		return nil, err
	}
	tokenPrice, err := w.prices.PriceUSD(ctx, w.token)
	if err != nil {
		return nil, err
	}
	nativeTokenPrice, err := w.prices.PriceUSD(ctx, w.chain.NativeToken)
	if err != nil {
		return nil, err
	}

	gasCost := estimation.GasCost()
	gasCostUSD := decimal.NewFromBigInt(gasCost, -nativeTokenDecimals).Mul(decimal.NewFromFloat(nativeTokenPrice))
	gasCostInToken, err := w.toTokenUnits(gasCostUSD, tokenPrice)
	if err != nil {
		return nil, err
	}
	minBonderFee, err := w.toTokenUnits(decimal.NewFromFloat(w.cfg.GasCost.MinBonderFeeUSD), tokenPrice)
	if err != nil {
		return nil, err
	}
	w.log.Debugf("gas cost estimation: attemptSwap %t gasLimit %d gasPrice %s gasCost %s gasCostInToken %s",
		attemptSwap, estimation.GasLimit, estimation.GasPrice, gasCost, w.client.FormatUnits(gasCostInToken))

	return &store.GasCost{
		Chain:                w.chain.Slug,
		Token:                w.token,
		AttemptSwap:          attemptSwap,
		GasCost:              gasCost,
		GasCostInToken:       gasCostInToken,
		GasPrice:             estimation.GasPrice,
		GasLimit:             estimation.GasLimit,
		TokenPriceUSD:        tokenPrice,
		NativeTokenPriceUSD:  nativeTokenPrice,
		MinBonderFeeAbsolute: minBonderFee,
	}, nil
}

// toTokenUnits converts a USD value into base units of the token
func (w *SyncWatcher) toTokenUnits(usd decimal.Decimal, tokenPriceUSD float64) (*big.Int, error) {
	amount := usd.Div(decimal.NewFromFloat(tokenPriceUSD))
	return w.client.ParseUnits(amount.String())
}
