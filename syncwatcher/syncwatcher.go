package syncwatcher

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bonder-network/bonder/bridge"
	"github.com/bonder-network/bonder/chain"
	"github.com/bonder-network/bonder/exporter"
	"github.com/bonder-network/bonder/log"
	"github.com/bonder-network/bonder/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/bonder-network/bonder/syncwatcher"

var errRegistryNotSet = errors.New("the watcher is not part of a registry")

// SyncWatcher keeps the transfers and transfer roots of a token sourced on a chain in sync
// with the bridge events and tracks the bonder credit towards every other chain
type SyncWatcher struct {
	cfg      Config
	token    string
	chain    chain.Chain
	topology *chain.Topology

	client   BridgeClient
	storage  store.Storage
	notifier Notifier
	// nil when the export mode is disabled
	exporter Exporter
	prices   PriceFeed

	siblings *Registry
	log      *log.Logger
	meter    metric.Meter
	now      func() time.Time

	customStartBlock     uint64
	initialSyncCompleted atomic.Bool
	syncIndex            atomic.Uint64
	creditPollCounter    atomic.Uint64

	creditMu                    sync.RWMutex
	availableCredit             exporter.Amounts
	pendingAmounts              exporter.Amounts
	unbondedTransferRootAmounts exporter.Amounts
	lastCalculated              map[string]time.Time
}

// New returns the watcher of token on the chain of client. The watcher can't start until
// it's added to a Registry
func New(
	cfg Config,
	token string,
	client BridgeClient,
	storage store.Storage,
	topology *chain.Topology,
	notifier Notifier,
	exp Exporter,
	prices PriceFeed,
) *SyncWatcher {
	c := client.Chain()
	return &SyncWatcher{
		cfg:                         cfg,
		token:                       token,
		chain:                       c,
		topology:                    topology,
		client:                      client,
		storage:                     storage,
		notifier:                    notifier,
		exporter:                    exp,
		prices:                      prices,
		log:                         log.WithFields("syncer", fmt.Sprintf("%s.%s", c.Slug, token)),
		meter:                       otel.Meter(meterName),
		now:                         time.Now,
		availableCredit:             exporter.Amounts{},
		pendingAmounts:              exporter.Amounts{},
		unbondedTransferRootAmounts: exporter.Amounts{},
		lastCalculated:              map[string]time.Time{},
	}
}

// Init resolves the configured start date into the block where the first cycle starts
func (w *SyncWatcher) Init(ctx context.Context) error {
	if w.cfg.SyncFromDate == 0 {
		return nil
	}
	blockNum, err := w.client.GetBlockNumberFromDate(ctx, w.cfg.SyncFromDate)
	if err != nil {
		return fmt.Errorf("error resolving start block of %s from date %d: %w", w.chain, w.cfg.SyncFromDate, err)
	}
	w.customStartBlock = blockNum
	w.log.Infof("first sync cycle starts at block %d", blockNum)
	return nil
}

// Chain returns the chain of the watcher
func (w *SyncWatcher) Chain() chain.Chain {
	return w.chain
}

// Token returns the token of the watcher
func (w *SyncWatcher) Token() string {
	return w.token
}

// Start runs the sync loop and the gas cost poller until ctx is done
func (w *SyncWatcher) Start(ctx context.Context) error {
	if w.siblings == nil {
		return errRegistryNotSet
	}
	if w.cfg.GasCost.Enabled {
		go w.pollGasCost(ctx)
	}
	w.pollSync(ctx)
	return nil
}

func (w *SyncWatcher) pollSync(ctx context.Context) {
	for {
		if err := w.sync(ctx); err != nil {
			w.reportError(fmt.Sprintf("error on sync cycle %d: %v", w.syncIndex.Load(), err))
		}
		select {
		case <-ctx.Done():
			w.log.Info("sync loop stopped")
			return
		case <-time.After(w.cfg.ResyncInterval.Duration):
		}
	}
}

func (w *SyncWatcher) sync(ctx context.Context) error {
	start := w.now()
	w.preSync()
	if err := w.syncHandler(ctx); err != nil {
		return err
	}
	if err := w.incompletePollSync(ctx); err != nil {
		return err
	}
	w.postSync(ctx)
	w.log.Debugf("sync cycle %d done in %s", w.syncIndex.Load()-1, w.now().Sub(start))
	return nil
}

func (w *SyncWatcher) preSync() {
	w.log.Debugf("starting sync cycle %d", w.syncIndex.Load())
}

func (w *SyncWatcher) postSync(ctx context.Context) {
	if w.syncIndex.Load() == 0 {
		w.initialSyncCompleted.Store(true)
		w.log.Info("initial sync completed")
	}
	w.syncIndex.Add(1)
	if err := w.export(ctx); err != nil {
		w.log.Errorf("error exporting snapshot: %v", err)
	}
}

func (w *SyncWatcher) isExportMode() bool {
	return w.exporter != nil
}

// export publishes the credit of every child chain watcher of the token
func (w *SyncWatcher) export(ctx context.Context) error {
	if !w.isExportMode() {
		return nil
	}
	snapshot := exporter.NewTokenSnapshot()
	for _, sibling := range w.siblings.Watchers() {
		if sibling.chain.IsRootChain() {
			continue
		}
		available, pending, unbonded := sibling.Snapshot()
		snapshot.AvailableCredit[sibling.chain.Slug] = available
		snapshot.PendingAmounts[sibling.chain.Slug] = pending
		snapshot.UnbondedTransferRootAmounts[sibling.chain.Slug] = unbonded
	}
	return w.exporter.Export(ctx, w.token, snapshot)
}

// IsInitialSyncCompleted returns true once the first sync cycle is done
func (w *SyncWatcher) IsInitialSyncCompleted() bool {
	return w.initialSyncCompleted.Load()
}

// IsAllSiblingWatchersInitialSyncCompleted returns true when every watcher of the token
// completed its first cycle
func (w *SyncWatcher) IsAllSiblingWatchersInitialSyncCompleted() bool {
	if w.siblings == nil {
		return false
	}
	for _, sibling := range w.siblings.Watchers() {
		if !sibling.IsInitialSyncCompleted() {
			return false
		}
	}
	return true
}

// GetEffectiveAvailableCredit returns the credit the bonder can use towards destChainID
func (w *SyncWatcher) GetEffectiveAvailableCredit(destChainID uint64) *big.Int {
	return w.readAmount(w.availableCredit, destChainID)
}

// GetPendingAmount returns the amount sent towards destChainID and not committed yet
func (w *SyncWatcher) GetPendingAmount(destChainID uint64) *big.Int {
	return w.readAmount(w.pendingAmounts, destChainID)
}

// GetUnbondedTransferRootAmount returns the amount of the roots towards destChainID waiting for a bond
func (w *SyncWatcher) GetUnbondedTransferRootAmount(destChainID uint64) *big.Int {
	return w.readAmount(w.unbondedTransferRootAmounts, destChainID)
}

func (w *SyncWatcher) readAmount(amounts exporter.Amounts, destChainID uint64) *big.Int {
	dest, err := w.topology.ByID(destChainID)
	if err != nil {
		return big.NewInt(0)
	}
	w.creditMu.RLock()
	defer w.creditMu.RUnlock()
	v, ok := amounts[dest.Slug]
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// Snapshot returns a copy of the available credit, pending amounts and unbonded root amounts
func (w *SyncWatcher) Snapshot() (available, pending, unbonded exporter.Amounts) {
	w.creditMu.RLock()
	defer w.creditMu.RUnlock()
	return copyAmounts(w.availableCredit), copyAmounts(w.pendingAmounts), copyAmounts(w.unbondedTransferRootAmounts)
}

func copyAmounts(amounts exporter.Amounts) exporter.Amounts {
	res := make(exporter.Amounts, len(amounts))
	for k, v := range amounts {
		res[k] = new(big.Int).Set(v)
	}
	return res
}

func (w *SyncWatcher) cacheKey(kind bridge.EventKind) string {
	return fmt.Sprintf("%s:%s:%s", w.chain.Slug, w.token, kind)
}

// syncOptions scans from the configured start block on the first cycle, the cursor is still
// written so the next cycles resume from there
func (w *SyncWatcher) syncOptions(kind bridge.EventKind) bridge.SyncOptions {
	opts := bridge.SyncOptions{CacheKey: w.cacheKey(kind)}
	if w.customStartBlock > 0 && w.syncIndex.Load() == 0 {
		opts.StartBlockNumber = w.customStartBlock
	}
	return opts
}

func (w *SyncWatcher) reportError(msg string) {
	w.log.Error(msg)
	if w.notifier != nil {
		w.notifier.Error(fmt.Sprintf("%s.%s: %s", w.chain.Slug, w.token, msg))
	}
}

// sibling returns the watcher of the token on chainID
func (w *SyncWatcher) sibling(chainID uint64) (*SyncWatcher, error) {
	if w.siblings == nil {
		return nil, errRegistryNotSet
	}
	return w.siblings.ByChainID(chainID)
}

func (w *SyncWatcher) rootSibling() (*SyncWatcher, error) {
	return w.sibling(w.topology.RootChain().ID)
}
