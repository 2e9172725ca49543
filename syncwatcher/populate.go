package syncwatcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/bonder-network/bonder/log"
	"github.com/bonder-network/bonder/store"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// incompletePollSync fills the derived fields of the transfers and transfer roots sourced on
// the chain of the watcher
func (w *SyncWatcher) incompletePollSync(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		transfers, err := w.storage.GetIncompleteTransfers(ctx, w.chain.ID)
		if err != nil {
			return fmt.Errorf("error getting incomplete transfers: %w", err)
		}
		if len(transfers) > 0 {
			w.log.Debugf("populating %d incomplete transfers", len(transfers))
		}
		return forEachBatch(ctx, transfers, w.cfg.ReconcileBatchSize, func(t *store.Transfer) {
			w.runIsolated("populating transfer "+t.TransferID.Hex(), func() error {
				return w.populateTransferDbItem(ctx, t)
			})
		})
	})
	g.Go(func() error {
		roots, err := w.storage.GetIncompleteTransferRoots(ctx, w.chain.ID)
		if err != nil {
			return fmt.Errorf("error getting incomplete transfer roots: %w", err)
		}
		if len(roots) > 0 {
			w.log.Debugf("populating %d incomplete transfer roots", len(roots))
		}
		return forEachBatch(ctx, roots, w.cfg.ReconcileBatchSize, func(r *store.TransferRoot) {
			w.runIsolated("populating transfer root "+r.TransferRootHash.Hex(), func() error {
				return w.populateTransferRootDbItem(ctx, r)
			})
		})
	})
	return g.Wait()
}

// runIsolated reports the error or the panic of fn instead of propagating it
func (w *SyncWatcher) runIsolated(what string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			w.reportError(fmt.Sprintf("panic %s: %v", what, r))
		}
	}()
	if err := fn(); err != nil {
		w.reportError(fmt.Sprintf("error %s: %v", what, err))
	}
}

// forEachBatch calls fn concurrently for the items of a batch, one batch after the other
func forEachBatch[T any](ctx context.Context, items []T, batchSize int, fn func(item T)) error {
	if batchSize <= 0 {
		batchSize = 1
	}
	for start := 0; start < len(items); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+batchSize, len(items))
		var wg sync.WaitGroup
		for _, item := range items[start:end] {
			item := item
			wg.Add(1)
			go func() {
				defer wg.Done()
				fn(item)
			}()
		}
		wg.Wait()
	}
	return nil
}

func (w *SyncWatcher) populateTransferDbItem(ctx context.Context, t *store.Transfer) error {
	if err := w.populateTransferSentTimestamp(ctx, t); err != nil {
		return err
	}
	return w.populateTransferWithdrawalBonder(ctx, t)
}

func (w *SyncWatcher) populateTransferSentTimestamp(ctx context.Context, t *store.Transfer) error {
	if t.IsNotFound || t.TransferSentTimestamp > 0 || t.TransferSentBlockNumber == 0 || t.SourceChainID == 0 {
		return nil
	}
	logger := w.log.WithFields("transferId", t.TransferID.Hex())
	source := w.siblingOrSkip(logger, t.SourceChainID)
	if source == nil {
		return nil
	}
	ts, err := source.client.GetBlockTimestamp(ctx, t.TransferSentBlockNumber)
	if err != nil {
		return err
	}
	if ts == 0 {
		return w.markTransferNotFound(ctx, t, fmt.Sprintf("timestamp of block %d not found", t.TransferSentBlockNumber))
	}
	t.TransferSentTimestamp = ts
	return w.storage.UpsertTransfer(ctx, &store.Transfer{TransferID: t.TransferID, TransferSentTimestamp: ts})
}

func (w *SyncWatcher) populateTransferWithdrawalBonder(ctx context.Context, t *store.Transfer) error {
	if t.IsNotFound || t.WithdrawalBonder != (common.Address{}) ||
		t.WithdrawalBondedTxHash == (common.Hash{}) || t.DestinationChainID == 0 {
		return nil
	}
	logger := w.log.WithFields("transferId", t.TransferID.Hex())
	dest := w.siblingOrSkip(logger, t.DestinationChainID)
	if dest == nil {
		return nil
	}
	tx, err := dest.client.GetTransaction(ctx, t.WithdrawalBondedTxHash)
	if err != nil {
		return err
	}
	if tx == nil {
		return w.markTransferNotFound(ctx, t,
			fmt.Sprintf("withdrawal bond tx %s not found", t.WithdrawalBondedTxHash.Hex()))
	}
	t.WithdrawalBonder = tx.From
	return w.storage.UpsertTransfer(ctx, &store.Transfer{TransferID: t.TransferID, WithdrawalBonder: tx.From})
}

// populateTransferRootDbItem runs every backfill step, each one is a no-op when its data is
// already there or its inputs are missing
func (w *SyncWatcher) populateTransferRootDbItem(ctx context.Context, r *store.TransferRoot) error {
	steps := []func(context.Context, *store.TransferRoot) error{
		w.populateTransferRootCommittedAt,
		w.populateTransferRootBondedAt,
		w.populateTransferRootTimestamp,
		w.populateTransferRootMultipleWithdrawSettled,
		w.populateTransferRootTransferIDs,
	}
	for _, step := range steps {
		if err := step(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (w *SyncWatcher) populateTransferRootCommittedAt(ctx context.Context, r *store.TransferRoot) error {
	if r.IsNotFound || r.CommittedAt > 0 || r.CommitTxHash == (common.Hash{}) {
		return nil
	}
	logger := w.log.WithFields("root", r.TransferRootHash.Hex())
	source := w.siblingOrSkip(logger, r.SourceChainID)
	if source == nil {
		return nil
	}
	committedAt, err := source.client.GetTransactionTimestamp(ctx, r.CommitTxHash)
	if err != nil {
		return err
	}
	if committedAt == 0 {
		return w.markTransferRootNotFound(ctx, r, fmt.Sprintf("commit tx %s not found", r.CommitTxHash.Hex()))
	}
	r.CommittedAt = committedAt
	return w.storage.UpsertTransferRoot(ctx, &store.TransferRoot{TransferRootHash: r.TransferRootHash, CommittedAt: committedAt})
}

func (w *SyncWatcher) populateTransferRootBondedAt(ctx context.Context, r *store.TransferRoot) error {
	if r.IsNotFound || r.BondTxHash == (common.Hash{}) || (r.Bonder != (common.Address{}) && r.BondedAt > 0) {
		return nil
	}
	logger := w.log.WithFields("root", r.TransferRootHash.Hex())
	root := w.siblingOrSkip(logger, w.topology.RootChain().ID)
	if root == nil {
		return nil
	}
	tx, err := root.client.GetTransaction(ctx, r.BondTxHash)
	if err != nil {
		return err
	}
	if tx == nil {
		return w.markTransferRootNotFound(ctx, r, fmt.Sprintf("bond tx %s not found", r.BondTxHash.Hex()))
	}
	bondBlock := r.BondBlockNumber
	if bondBlock == 0 {
		bondBlock = tx.BlockNumber
	}
	bondedAt, err := root.client.GetBlockTimestamp(ctx, bondBlock)
	if err != nil {
		return err
	}
	if bondedAt == 0 {
		return w.markTransferRootNotFound(ctx, r, fmt.Sprintf("timestamp of bond block %d not found", bondBlock))
	}
	r.Bonder = tx.From
	r.BondedAt = bondedAt
	return w.storage.UpsertTransferRoot(ctx, &store.TransferRoot{
		TransferRootHash: r.TransferRootHash,
		Bonder:           tx.From,
		BondedAt:         bondedAt,
	})
}

func (w *SyncWatcher) populateTransferRootTimestamp(ctx context.Context, r *store.TransferRoot) error {
	if r.IsNotFound || r.RootSetTimestamp > 0 || r.RootSetBlockNumber == 0 || r.DestinationChainID == 0 {
		return nil
	}
	logger := w.log.WithFields("root", r.TransferRootHash.Hex())
	dest := w.siblingOrSkip(logger, r.DestinationChainID)
	if dest == nil {
		return nil
	}
	ts, err := dest.client.GetBlockTimestamp(ctx, r.RootSetBlockNumber)
	if err != nil {
		return err
	}
	if ts == 0 {
		return w.markTransferRootNotFound(ctx, r,
			fmt.Sprintf("timestamp of root set block %d not found", r.RootSetBlockNumber))
	}
	r.RootSetTimestamp = ts
	return w.storage.UpsertTransferRoot(ctx, &store.TransferRoot{TransferRootHash: r.TransferRootHash, RootSetTimestamp: ts})
}

// siblingOrSkip returns nil when no watcher runs on chainID
func (w *SyncWatcher) siblingOrSkip(logger *log.Logger, chainID uint64) *SyncWatcher {
	sibling, err := w.sibling(chainID)
	if err != nil {
		logger.Warnf("skipping lookup: %v", err)
		return nil
	}
	return sibling
}

func (w *SyncWatcher) markTransferNotFound(ctx context.Context, t *store.Transfer, reason string) error {
	w.log.WithFields("transferId", t.TransferID.Hex()).Warnf("marking transfer as not found: %s", reason)
	t.IsNotFound = true
	return w.storage.UpsertTransfer(ctx, &store.Transfer{TransferID: t.TransferID, IsNotFound: true})
}

func (w *SyncWatcher) markTransferRootNotFound(ctx context.Context, r *store.TransferRoot, reason string) error {
	w.log.WithFields("root", r.TransferRootHash.Hex()).Warnf("marking transfer root as not found: %s", reason)
	r.IsNotFound = true
	return w.storage.UpsertTransferRoot(ctx, &store.TransferRoot{TransferRootHash: r.TransferRootHash, IsNotFound: true})
}
