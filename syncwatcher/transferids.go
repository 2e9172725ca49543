package syncwatcher

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/bonder-network/bonder/bridge"
	bondercommon "github.com/bonder-network/bonder/common"
	"github.com/bonder-network/bonder/store"
	"github.com/bonder-network/bonder/sync"
	"github.com/bonder-network/bonder/tree"
	"github.com/ethereum/go-ethereum/common"
)

// populateTransferRootTransferIDs rebuilds the transfer ids of a root from the events of its
// source chain
func (w *SyncWatcher) populateTransferRootTransferIDs(ctx context.Context, root *store.TransferRoot) error {
	if root.IsNotFound || len(root.TransferIDs) > 0 {
		return nil
	}
	if root.SourceChainID == 0 || root.DestinationChainID == 0 ||
		root.CommitTxBlockNumber == 0 || root.TotalAmount == nil {
		return nil
	}
	if w.topology.IsRootChainID(root.SourceChainID) {
		return nil
	}
	logger := w.log.WithFields("root", root.TransferRootHash.Hex())
	source, err := w.sibling(root.SourceChainID)
	if err != nil {
		logger.Errorf("skipping transfer ids lookup: %v", err)
		return nil
	}

	ids, err := source.findTransferIDs(ctx, root)
	if err != nil {
		return fmt.Errorf("error looking up transfer ids of root %s: %w", root.TransferRootHash.Hex(), err)
	}
	if ids == nil {
		return nil
	}
	_, err = w.storeTransferIDs(ctx, root, ids)
	return err
}

// findTransferIDs returns the ids of the transfers committed under root, nil if the commit
// event can't be found. It must be called on the watcher of the source chain
func (w *SyncWatcher) findTransferIDs(ctx context.Context, root *store.TransferRoot) ([]common.Hash, error) {
	logger := w.log.WithFields("root", root.TransferRootHash.Hex())
	destTopic := common.BigToHash(new(big.Int).SetUint64(root.DestinationChainID))

	var startEvent, endEvent *bridge.TransfersCommittedEvent
	err := w.client.EventsBatch(ctx, bridge.TransfersCommitted, bridge.SyncOptions{
		EndBlockNumber: root.CommitTxBlockNumber,
		Topics:         [][]common.Hash{{destTopic}},
	}, func(ctx context.Context, events []bridge.Event, r sync.BlockRange) (bool, error) {
		for i := len(events) - 1; i >= 0; i-- {
			ev, ok := events[i].(*bridge.TransfersCommittedEvent)
			if !ok {
				return false, fmt.Errorf("unexpected event type %T", events[i])
			}
			if ev.RootHash == root.TransferRootHash {
				endEvent = ev
				continue
			}
			if endEvent != nil && ev.DestinationChainID == root.DestinationChainID {
				startEvent = ev
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if endEvent == nil {
		logger.Warnf("commit event not found up to block %d", root.CommitTxBlockNumber)
		return nil, nil
	}

	startBlock := w.client.BridgeDeployedBlockNumber()
	if startEvent != nil {
		startBlock = startEvent.BlockNumber
	}
	logger.Debugf("looking up transfers to %d between blocks %d and %d",
		root.DestinationChainID, startBlock, endEvent.BlockNumber)
	sent, err := w.client.GetTransferSentEvents(ctx, root.DestinationChainID, startBlock, endEvent.BlockNumber)
	if err != nil {
		return nil, err
	}

	window := make([]*bridge.TransferSentEvent, 0, len(sent))
	for _, ev := range sent {
		if startEvent != nil && ev.BlockNumber == startEvent.BlockNumber && ev.TxIndex < startEvent.TxIndex {
			continue
		}
		if ev.BlockNumber == endEvent.BlockNumber && ev.TxIndex >= endEvent.TxIndex {
			continue
		}
		window = append(window, ev)
	}

	window = trailingSequence(window)
	ids := make([]common.Hash, len(window))
	for i, ev := range window {
		ids[i] = ev.TransferID
	}
	return ids, nil
}

// trailingSequence drops the transfers of previous roots: the sequence of a root starts at
// the last transfer with index 0
func trailingSequence(events []*bridge.TransferSentEvent) []*bridge.TransferSentEvent {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Index == 0 {
			return events[i:]
		}
	}
	return events
}

// populateTransferRootMultipleWithdrawSettled takes the transfer ids from the calldata of the
// settlement transaction and rechecks the settled state of the root
func (w *SyncWatcher) populateTransferRootMultipleWithdrawSettled(ctx context.Context, root *store.TransferRoot) error {
	if root.IsNotFound || len(root.TransferIDs) > 0 {
		return nil
	}
	if root.MultipleWithdrawalsSettledTxHash == (common.Hash{}) ||
		root.MultipleWithdrawalsSettledTotalAmount == nil || root.DestinationChainID == 0 {
		return nil
	}
	logger := w.log.WithFields("root", root.TransferRootHash.Hex())
	dest, err := w.sibling(root.DestinationChainID)
	if err != nil {
		logger.Errorf("skipping settlement transfer ids lookup: %v", err)
		return nil
	}

	ids, _, err := dest.client.GetTransferIDsFromSettleEventTransaction(ctx, root.MultipleWithdrawalsSettledTxHash)
	if errors.Is(err, bridge.ErrNotSettleTransaction) {
		logger.Warnf("settlement tx %s can't be decoded: %v", root.MultipleWithdrawalsSettledTxHash.Hex(), err)
		return nil
	}
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return w.markTransferRootNotFound(ctx, root, "settlement transaction not found")
	}
	stored, err := w.storeTransferIDs(ctx, root, ids)
	if err != nil || !stored {
		return err
	}
	return w.checkTransferRootSettledState(ctx, root.TransferRootHash, root.MultipleWithdrawalsSettledTotalAmount)
}

// storeTransferIDs stores the ids if their merkle root matches the root hash and links every
// transfer to the root. A mismatch marks the root as not found
func (w *SyncWatcher) storeTransferIDs(ctx context.Context, root *store.TransferRoot, ids []common.Hash) (bool, error) {
	if !tree.VerifyRoot(ids, root.TransferRootHash) {
		err := w.markTransferRootNotFound(ctx, root,
			fmt.Sprintf("merkle root of %d transfer ids doesn't match", len(ids)))
		return false, err
	}

	transferRootID := root.TransferRootID
	if transferRootID == (common.Hash{}) && root.TotalAmount != nil {
		transferRootID = bondercommon.TransferRootID(root.TransferRootHash, root.TotalAmount)
	}
	err := w.storage.UpsertTransferRoot(ctx, &store.TransferRoot{
		TransferRootHash: root.TransferRootHash,
		TransferRootID:   transferRootID,
		TransferIDs:      ids,
	})
	if err != nil {
		return false, err
	}
	root.TransferIDs = ids

	for _, transferID := range ids {
		err := w.storage.UpsertTransfer(ctx, &store.Transfer{
			TransferID:       transferID,
			TransferRootHash: root.TransferRootHash,
			TransferRootID:   transferRootID,
		})
		if err != nil {
			return false, err
		}
	}
	w.log.Infof("stored %d transfer ids of root %s", len(ids), root.TransferRootHash.Hex())
	return true, nil
}
