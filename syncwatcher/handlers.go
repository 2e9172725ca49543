package syncwatcher

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/bonder-network/bonder/bridge"
	bondercommon "github.com/bonder-network/bonder/common"
	"github.com/bonder-network/bonder/db"
	"github.com/bonder-network/bonder/store"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

// syncHandler maps the new events of every stream into the store and then refreshes the
// bonder credit. The settlement stream waits for the two spend streams
func (w *SyncWatcher) syncHandler(ctx context.Context) error {
	var g errgroup.Group
	if w.chain.IsRootChain() {
		g.Go(func() error {
			return w.mapEvents(ctx, bridge.TransferRootBonded, handle(w.handleTransferRootBondedEvent))
		})
		g.Go(func() error {
			return w.mapEvents(ctx, bridge.TransferRootConfirmed, handle(w.handleTransferRootConfirmedEvent))
		})
		g.Go(func() error {
			return w.mapEvents(ctx, bridge.TransferBondChallenged, handle(w.handleTransferBondChallengedEvent))
		})
	} else {
		g.Go(func() error {
			return w.mapEvents(ctx, bridge.TransferSent, handle(w.handleTransferSentEvent))
		})
		g.Go(func() error {
			return w.mapEvents(ctx, bridge.TransfersCommitted, handle(w.handleTransfersCommittedEvent))
		})
	}
	g.Go(func() error {
		var spend errgroup.Group
		spend.Go(func() error {
			return w.mapEvents(ctx, bridge.WithdrawalBonded, handle(w.handleWithdrawalBondedEvent))
		})
		spend.Go(func() error {
			return w.mapEvents(ctx, bridge.Withdrew, handle(w.handleWithdrewEvent))
		})
		if err := spend.Wait(); err != nil {
			return err
		}
		return w.mapEvents(ctx, bridge.MultipleWithdrawalsSettled, handle(w.handleMultipleWithdrawalsSettledEvent))
	})
	g.Go(func() error {
		return w.mapEvents(ctx, bridge.TransferRootSet, handle(w.handleTransferRootSetEvent))
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return w.syncBonderCredit(ctx)
}

// mapEvents scans a stream. A handler error is reported and the scan goes on, only the
// errors of the scan itself are returned
func (w *SyncWatcher) mapEvents(ctx context.Context, kind bridge.EventKind, handler bridge.EventHandler) error {
	err := w.client.MapEvents(ctx, kind, w.syncOptions(kind), func(ctx context.Context, ev bridge.Event) error {
		if err := handleEvent(ctx, kind, handler, ev); err != nil {
			w.countHandlerError(ctx, kind)
			w.reportError(err.Error())
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error syncing %s events: %w", kind, err)
	}
	return nil
}

// handleEvent turns a panic of the handler into an error so one bad event can't stop the node
func handleEvent(ctx context.Context, kind bridge.EventKind, handler bridge.EventHandler, ev bridge.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic handling %s event: %v", kind, r)
		}
	}()
	if err := handler(ctx, ev); err != nil {
		return fmt.Errorf("error handling %s event of tx %s: %w", kind, ev.Meta().TxHash.Hex(), err)
	}
	return nil
}

func (w *SyncWatcher) countHandlerError(ctx context.Context, kind bridge.EventKind) {
	c, merr := w.meter.Int64Counter("event_handler_errors")
	if merr != nil {
		w.log.Warnf("failed to create event_handler_errors counter: %s", merr)
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(
		attribute.String("chain", w.chain.Slug),
		attribute.String("token", w.token),
		attribute.String("event", string(kind)),
	))
}

// handle adapts a typed handler to bridge.EventHandler
func handle[T bridge.Event](fn func(ctx context.Context, ev T) error) bridge.EventHandler {
	return func(ctx context.Context, ev bridge.Event) error {
		typed, ok := ev.(T)
		if !ok {
			return fmt.Errorf("unexpected event type %T", ev)
		}
		return fn(ctx, typed)
	}
}

// shouldAttemptSwap is true when the transfer asks for a swap at the destination
func shouldAttemptSwap(amountOutMin, deadline *big.Int) bool {
	return bondercommon.BigIntOrZero(amountOutMin).Sign() > 0 || bondercommon.BigIntOrZero(deadline).Sign() > 0
}

// isBondable is false for transfers to the root chain that ask for a swap
func (w *SyncWatcher) isBondable(destinationChainID uint64, amountOutMin, deadline *big.Int) bool {
	return !(w.topology.IsRootChainID(destinationChainID) && shouldAttemptSwap(amountOutMin, deadline))
}

func (w *SyncWatcher) handleTransferSentEvent(ctx context.Context, ev *bridge.TransferSentEvent) error {
	logger := w.log.WithFields("transferId", ev.TransferID.Hex())
	bondable := w.isBondable(ev.DestinationChainID, ev.AmountOutMin, ev.Deadline)
	logger.Debugf("handling TransferSent: destination %d amount %s bonderFee %s index %d block %d",
		ev.DestinationChainID, w.client.FormatUnits(ev.Amount), w.client.FormatUnits(ev.BonderFee),
		ev.Index, ev.BlockNumber)
	if !bondable {
		logger.Warnf("transfer is not bondable: amountOutMin %s deadline %s",
			bondercommon.BigIntOrZero(ev.AmountOutMin), bondercommon.BigIntOrZero(ev.Deadline))
	}

	return w.storage.UpsertTransfer(ctx, &store.Transfer{
		TransferID:              ev.TransferID,
		SourceChainID:           w.chain.ID,
		DestinationChainID:      ev.DestinationChainID,
		Recipient:               ev.Recipient,
		Amount:                  ev.Amount,
		TransferNonce:           ev.TransferNonce,
		BonderFee:               ev.BonderFee,
		AmountOutMin:            ev.AmountOutMin,
		Deadline:                ev.Deadline,
		IsBondable:              &bondable,
		TransferSentTxHash:      ev.TxHash,
		TransferSentBlockNumber: ev.BlockNumber,
		TransferSentTxIndex:     uint64(ev.TxIndex),
		TransferSentIndex:       ev.Index,
	})
}

func (w *SyncWatcher) handleTransfersCommittedEvent(ctx context.Context, ev *bridge.TransfersCommittedEvent) error {
	w.log.Debugf("handling TransfersCommitted: root %s destination %d total %s",
		ev.RootHash.Hex(), ev.DestinationChainID, w.client.FormatUnits(ev.TotalAmount))

	return w.storage.UpsertTransferRoot(ctx, &store.TransferRoot{
		TransferRootHash:       ev.RootHash,
		TransferRootID:         bondercommon.TransferRootID(ev.RootHash, ev.TotalAmount),
		TotalAmount:            ev.TotalAmount,
		CommittedAt:            ev.RootCommittedAt,
		SourceChainID:          w.chain.ID,
		DestinationChainID:     ev.DestinationChainID,
		Committed:              true,
		CommitTxHash:           ev.TxHash,
		CommitTxBlockNumber:    ev.BlockNumber,
		ShouldBondTransferRoot: w.chain.IsOptimisticRollup(),
	})
}

func (w *SyncWatcher) handleTransferRootBondedEvent(ctx context.Context, ev *bridge.TransferRootBondedEvent) error {
	transferRootID := bondercommon.TransferRootID(ev.RootHash, ev.Amount)
	w.log.Debugf("handling TransferRootBonded: root %s id %s amount %s",
		ev.RootHash.Hex(), transferRootID.Hex(), w.client.FormatUnits(ev.Amount))

	return w.storage.UpsertTransferRoot(ctx, &store.TransferRoot{
		TransferRootHash:   ev.RootHash,
		Bonded:             true,
		BondTotalAmount:    ev.Amount,
		BondTxHash:         ev.TxHash,
		BondBlockNumber:    ev.BlockNumber,
		BondTransferRootID: transferRootID,
	})
}

func (w *SyncWatcher) handleTransferRootConfirmedEvent(
	ctx context.Context, ev *bridge.TransferRootConfirmedEvent,
) error {
	w.log.Debugf("handling TransferRootConfirmed: root %s", ev.RootHash.Hex())

	return w.storage.UpsertTransferRoot(ctx, &store.TransferRoot{
		TransferRootHash:   ev.RootHash,
		Confirmed:          true,
		ConfirmTxHash:      ev.TxHash,
		ConfirmBlockNumber: ev.BlockNumber,
	})
}

func (w *SyncWatcher) handleTransferBondChallengedEvent(
	ctx context.Context, ev *bridge.TransferBondChallengedEvent,
) error {
	w.log.Warnf("transfer root %s bond challenged, original amount %s",
		ev.RootHash.Hex(), w.client.FormatUnits(ev.OriginalAmount))

	return w.storage.UpsertTransferRoot(ctx, &store.TransferRoot{
		TransferRootHash:   ev.RootHash,
		BondTransferRootID: ev.TransferRootID,
		Challenged:         true,
	})
}

func (w *SyncWatcher) handleTransferRootSetEvent(ctx context.Context, ev *bridge.TransferRootSetEvent) error {
	w.log.Debugf("handling TransferRootSet: root %s total %s", ev.RootHash.Hex(), w.client.FormatUnits(ev.TotalAmount))

	return w.storage.UpsertTransferRoot(ctx, &store.TransferRoot{
		TransferRootHash:   ev.RootHash,
		DestinationChainID: w.chain.ID,
		RootSetTxHash:      ev.TxHash,
		RootSetBlockNumber: ev.BlockNumber,
	})
}

func (w *SyncWatcher) handleWithdrawalBondedEvent(ctx context.Context, ev *bridge.WithdrawalBondedEvent) error {
	w.log.Debugf("handling WithdrawalBonded: transfer %s amount %s", ev.TransferID.Hex(), w.client.FormatUnits(ev.Amount))

	return w.storage.UpsertTransfer(ctx, &store.Transfer{
		TransferID:             ev.TransferID,
		DestinationChainID:     w.chain.ID,
		WithdrawalBonded:       true,
		WithdrawalBondedTxHash: ev.TxHash,
		IsTransferSpent:        true,
		TransferSpentTxHash:    ev.TxHash,
	})
}

func (w *SyncWatcher) handleWithdrewEvent(ctx context.Context, ev *bridge.WithdrewEvent) error {
	w.log.Debugf("handling Withdrew: transfer %s amount %s", ev.TransferID.Hex(), w.client.FormatUnits(ev.Amount))

	bondable := false
	return w.storage.UpsertTransfer(ctx, &store.Transfer{
		TransferID:          ev.TransferID,
		DestinationChainID:  w.chain.ID,
		IsTransferSpent:     true,
		TransferSpentTxHash: ev.TxHash,
		IsBondable:          &bondable,
	})
}

func (w *SyncWatcher) handleMultipleWithdrawalsSettledEvent(
	ctx context.Context, ev *bridge.MultipleWithdrawalsSettledEvent,
) error {
	w.log.Debugf("handling MultipleWithdrawalsSettled: root %s bonder %s total %s",
		ev.RootHash.Hex(), ev.Bonder.Hex(), w.client.FormatUnits(ev.TotalBondsSettled))

	err := w.storage.UpsertTransferRoot(ctx, &store.TransferRoot{
		TransferRootHash:                      ev.RootHash,
		DestinationChainID:                    w.chain.ID,
		MultipleWithdrawalsSettledTxHash:      ev.TxHash,
		MultipleWithdrawalsSettledTotalAmount: ev.TotalBondsSettled,
	})
	if err != nil {
		return err
	}
	return w.checkTransferRootSettledState(ctx, ev.RootHash, ev.TotalBondsSettled)
}

// checkTransferRootSettledState flags the bonded members of the root as settled and sets
// allSettled when the settled total covers the root or no bondable member is left unsettled
func (w *SyncWatcher) checkTransferRootSettledState(
	ctx context.Context, rootHash common.Hash, totalBondsSettled *big.Int,
) error {
	root, err := w.storage.GetTransferRoot(ctx, rootHash)
	if err != nil {
		return fmt.Errorf("error getting transfer root %s: %w", rootHash.Hex(), err)
	}
	if len(root.TransferIDs) == 0 {
		return nil
	}
	logger := w.log.WithFields("root", rootHash.Hex())

	unsettled := 0
	for _, transferID := range root.TransferIDs {
		t, err := w.storage.GetTransfer(ctx, transferID)
		if errors.Is(err, db.ErrNotFound) {
			logger.Warnf("transfer %s of the root is not in the db", transferID.Hex())
			continue
		}
		if err != nil {
			return fmt.Errorf("error getting transfer %s: %w", transferID.Hex(), err)
		}
		settled := t.WithdrawalBonded
		if settled && !t.WithdrawalBondSettled {
			err := w.storage.UpsertTransfer(ctx, &store.Transfer{TransferID: transferID, WithdrawalBondSettled: true})
			if err != nil {
				return err
			}
		}
		if t.IsBondable != nil && *t.IsBondable && !settled {
			unsettled++
		}
	}

	if totalBondsSettled == nil {
		totalBondsSettled = root.MultipleWithdrawalsSettledTotalAmount
	}
	totalSettled := root.TotalAmount != nil && totalBondsSettled != nil && root.TotalAmount.Cmp(totalBondsSettled) == 0
	allSettled := totalSettled || unsettled == 0
	logger.Debugf("settled state: totalSettled %t unsettled bondable transfers %d", totalSettled, unsettled)
	if !allSettled {
		return nil
	}
	return w.storage.UpsertTransferRoot(ctx, &store.TransferRoot{TransferRootHash: rootHash, AllSettled: true})
}
