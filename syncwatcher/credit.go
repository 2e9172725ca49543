package syncwatcher

import (
	"context"
	"fmt"
	"math/big"

	"github.com/bonder-network/bonder/chain"
	bondercommon "github.com/bonder-network/bonder/common"
)

// syncBonderCredit refreshes the credit maps. Outside of the export mode the exposure is only
// recomputed every CreditSyncInterval cycles, starting with the first one
func (w *SyncWatcher) syncBonderCredit(ctx context.Context) error {
	counter := w.creditPollCounter.Add(1)
	if !w.shouldSyncCredit(counter) {
		return nil
	}
	if err := w.syncUnbondedTransferRootAmounts(ctx); err != nil {
		return err
	}
	if err := w.syncPendingAmounts(ctx); err != nil {
		return err
	}
	return w.syncAvailableCredit(ctx)
}

func (w *SyncWatcher) shouldSyncCredit(counter uint64) bool {
	if w.isExportMode() || w.cfg.CreditSyncInterval <= 1 {
		return true
	}
	return counter%w.cfg.CreditSyncInterval == 1
}

func (w *SyncWatcher) syncUnbondedTransferRootAmounts(ctx context.Context) error {
	for _, dest := range w.topology.Chains() {
		if !w.shouldSyncUnbondedTransferRootAmount(dest) {
			continue
		}
		amount, err := w.calculateUnbondedTransferRootAmounts(ctx, dest)
		if err != nil {
			return fmt.Errorf("error calculating unbonded transfer root amounts to %s: %w", dest, err)
		}
		w.creditMu.Lock()
		w.unbondedTransferRootAmounts[dest.Slug] = amount
		w.lastCalculated[dest.Slug] = w.now()
		w.creditMu.Unlock()
		w.log.Debugf("unbonded transfer root amount to %s: %s", dest.Slug, w.client.FormatUnits(amount))
	}
	return nil
}

func (w *SyncWatcher) shouldSyncUnbondedTransferRootAmount(dest chain.Chain) bool {
	return w.chain.IsOptimisticRollup() &&
		!w.chain.IsRootChain() &&
		dest.ID != w.chain.ID &&
		w.siblings.Has(dest.ID) &&
		w.siblings.Has(w.topology.RootChain().ID)
}

// calculateUnbondedTransferRootAmounts sums the roots to dest that are not bonded yet. Roots
// found bonded on the root chain are stale records and get marked as not found
func (w *SyncWatcher) calculateUnbondedTransferRootAmounts(ctx context.Context, dest chain.Chain) (*big.Int, error) {
	roots, err := w.storage.GetUnbondedTransferRoots(ctx, w.chain.ID, dest.ID)
	if err != nil {
		return nil, err
	}
	rootWatcher, err := w.rootSibling()
	if err != nil {
		return nil, err
	}

	total := big.NewInt(0)
	for _, r := range roots {
		isBonded, err := rootWatcher.client.IsTransferRootIDBonded(ctx, r.TransferRootID)
		if err != nil {
			return nil, err
		}
		if isBonded {
			if err := w.markTransferRootNotFound(ctx, r, "already bonded on the root chain"); err != nil {
				return nil, err
			}
			continue
		}
		total.Add(total, bondercommon.BigIntOrZero(r.TotalAmount))
	}
	return total, nil
}

// syncPendingAmounts is only needed by the export mode
func (w *SyncWatcher) syncPendingAmounts(ctx context.Context) error {
	if !w.isExportMode() || w.chain.IsRootChain() {
		return nil
	}
	for _, dest := range w.topology.Chains() {
		if dest.ID == w.chain.ID {
			continue
		}
		pending, err := w.client.GetPendingAmountForChainID(ctx, dest.ID)
		if err != nil {
			return fmt.Errorf("error getting pending amount to %s: %w", dest, err)
		}
		w.creditMu.Lock()
		w.pendingAmounts[dest.Slug] = pending
		w.creditMu.Unlock()
	}
	return nil
}

func (w *SyncWatcher) syncAvailableCredit(ctx context.Context) error {
	if w.chain.IsRootChain() {
		return nil
	}
	for _, dest := range w.topology.Chains() {
		if dest.ID == w.chain.ID || !w.siblings.Has(dest.ID) {
			continue
		}
		credit, err := w.calculateAvailableCredit(ctx, dest)
		if err != nil {
			return fmt.Errorf("error calculating available credit to %s: %w", dest, err)
		}
		w.creditMu.Lock()
		w.availableCredit[dest.Slug] = credit
		w.creditMu.Unlock()
		w.log.Debugf("available credit to %s: %s", dest.Slug, w.client.FormatUnits(credit))
	}
	return nil
}

// calculateAvailableCredit is the base credit of the bonder on dest. Towards the root chain the
// amounts that rollups still have to commit or bond are reserved. Never negative
func (w *SyncWatcher) calculateAvailableCredit(ctx context.Context, dest chain.Chain) (*big.Int, error) {
	destWatcher, err := w.sibling(dest.ID)
	if err != nil {
		return nil, err
	}
	credit, err := destWatcher.client.GetBaseAvailableCredit(ctx, w.cfg.BonderAddress)
	if err != nil {
		return nil, err
	}
	credit = new(big.Int).Set(credit)

	if dest.IsRootChain() {
		pending, err := w.getOruToL1PendingAmount(ctx)
		if err != nil {
			return nil, err
		}
		credit.Sub(credit, pending)
		credit.Sub(credit, w.getOruToAllUnbondedTransferRootAmounts())
	}

	if credit.Sign() < 0 {
		return big.NewInt(0), nil
	}
	return credit, nil
}

// getOruToL1PendingAmount sums the amounts every rollup watcher has pending towards the root chain
func (w *SyncWatcher) getOruToL1PendingAmount(ctx context.Context) (*big.Int, error) {
	rootID := w.topology.RootChain().ID
	total := big.NewInt(0)
	for _, sibling := range w.siblings.Watchers() {
		if !sibling.chain.IsOptimisticRollup() || sibling.chain.IsRootChain() {
			continue
		}
		pending, err := sibling.client.GetPendingAmountForChainID(ctx, rootID)
		if err != nil {
			return nil, fmt.Errorf("error getting pending amount of %s: %w", sibling.chain, err)
		}
		total.Add(total, pending)
	}
	return total, nil
}

// getOruToAllUnbondedTransferRootAmounts sums the unbonded root amounts of the watcher,
// entries older than UnbondedRootStaleAfter are left out
func (w *SyncWatcher) getOruToAllUnbondedTransferRootAmounts() *big.Int {
	w.creditMu.RLock()
	defer w.creditMu.RUnlock()
	now := w.now()
	total := big.NewInt(0)
	for dest, amount := range w.unbondedTransferRootAmounts {
		if calculatedAt, ok := w.lastCalculated[dest]; ok &&
			now.Sub(calculatedAt) > w.cfg.UnbondedRootStaleAfter.Duration {
			continue
		}
		total.Add(total, amount)
	}
	return total
}
