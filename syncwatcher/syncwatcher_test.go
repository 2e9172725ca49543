package syncwatcher

import (
	"context"
	"errors"
	"math/big"
	"path"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bonder-network/bonder/bridge"
	"github.com/bonder-network/bonder/chain"
	"github.com/bonder-network/bonder/config/types"
	"github.com/bonder-network/bonder/exporter"
	"github.com/bonder-network/bonder/log"
	"github.com/bonder-network/bonder/store"
	"github.com/bonder-network/bonder/syncwatcher/mocks"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	ethereumID = uint64(1)
	optimismID = uint64(10)
	gnosisID   = uint64(100)
	arbitrumID = uint64(42161)

	testToken = "USDC"
)

var (
	bonderAddr  = common.HexToAddress("0xb0b0")
	errTimeout  = errors.New("timeout")
	testConfigs = []chain.Config{
		{Slug: "ethereum", ChainID: ethereumID, IsRootChain: true},
		{Slug: "optimism", ChainID: optimismID, IsOptimisticRollup: true},
		{Slug: "arbitrum", ChainID: arbitrumID, IsOptimisticRollup: true},
		{Slug: "gnosis", ChainID: gnosisID, NativeToken: "XDAI"},
	}
)

func testConfig() Config {
	return Config{
		BonderAddress:          bonderAddr,
		ResyncInterval:         types.NewDuration(10 * time.Millisecond),
		CreditSyncInterval:     10,
		UnbondedRootStaleAfter: types.NewDuration(10 * time.Minute),
		ReconcileBatchSize:     20,
	}
}

type testEnv struct {
	topology *chain.Topology
	storage  *store.SQLStorage
	clients  map[uint64]*mocks.BridgeClientMock
	watchers map[uint64]*SyncWatcher
	registry *Registry
}

// newTestEnv builds a watcher for each chain id sharing a single storage, like the watchers of a token
func newTestEnv(t *testing.T, cfg Config, exp Exporter, chainIDs ...uint64) *testEnv {
	t.Helper()
	topology, err := chain.NewTopology(testConfigs)
	require.NoError(t, err)
	storage, err := store.NewSQLStorage(log.GetDefaultLogger(), path.Join(t.TempDir(), "syncwatcher.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	env := &testEnv{
		topology: topology,
		storage:  storage,
		clients:  map[uint64]*mocks.BridgeClientMock{},
		watchers: map[uint64]*SyncWatcher{},
	}
	watchers := make([]*SyncWatcher, 0, len(chainIDs))
	for _, id := range chainIDs {
		c, err := topology.ByID(id)
		require.NoError(t, err)
		client := mocks.NewBridgeClientMock(t)
		client.On("Chain").Return(c)
		client.On("FormatUnits", mock.Anything).Return("0").Maybe()
		w := New(cfg, testToken, client, storage, topology, nil, exp, nil)
		env.clients[id] = client
		env.watchers[id] = w
		watchers = append(watchers, w)
	}
	env.registry, err = NewRegistry(watchers...)
	require.NoError(t, err)
	return env
}

func TestRegistry(t *testing.T) {
	env := newTestEnv(t, testConfig(), nil, ethereumID, optimismID)

	w, err := env.registry.ByChainID(optimismID)
	require.NoError(t, err)
	require.Equal(t, env.watchers[optimismID], w)

	w, err = env.registry.BySlug("ethereum")
	require.NoError(t, err)
	require.Equal(t, env.watchers[ethereumID], w)

	_, err = env.registry.ByChainID(arbitrumID)
	require.ErrorIs(t, err, ErrNoSiblingWatcher)
	_, err = env.registry.BySlug("arbitrum")
	require.ErrorIs(t, err, ErrNoSiblingWatcher)

	require.True(t, env.registry.Has(ethereumID))
	require.False(t, env.registry.Has(gnosisID))
	require.Len(t, env.registry.Watchers(), 2)
	require.Equal(t, env.registry, env.watchers[optimismID].siblings)

	_, err = NewRegistry(env.watchers[optimismID], env.watchers[optimismID])
	require.Error(t, err)
}

func TestStartWithoutRegistry(t *testing.T) {
	client := mocks.NewBridgeClientMock(t)
	client.On("Chain").Return(chain.New("optimism", optimismID, false, true))
	w := New(testConfig(), testToken, client, nil, nil, nil, nil, nil)

	require.ErrorIs(t, w.Start(context.Background()), errRegistryNotSet)
}

func TestInit(t *testing.T) {
	ctx := context.Background()

	env := newTestEnv(t, testConfig(), nil, optimismID)
	require.NoError(t, env.watchers[optimismID].Init(ctx))
	require.Empty(t, env.watchers[optimismID].syncOptions(bridge.TransferSent).StartBlockNumber)

	cfg := testConfig()
	cfg.SyncFromDate = 1700000000
	env = newTestEnv(t, cfg, nil, optimismID)
	w := env.watchers[optimismID]
	env.clients[optimismID].On("GetBlockNumberFromDate", mock.Anything, uint64(1700000000)).Return(uint64(1234), nil)
	require.NoError(t, w.Init(ctx))

	opts := w.syncOptions(bridge.TransferSent)
	require.Equal(t, uint64(1234), opts.StartBlockNumber)
	require.Equal(t, "optimism:USDC:TransferSent", opts.CacheKey)

	// the custom start block only applies to the first cycle
	w.syncIndex.Store(1)
	opts = w.syncOptions(bridge.TransferSent)
	require.Zero(t, opts.StartBlockNumber)
	require.Equal(t, "optimism:USDC:TransferSent", opts.CacheKey)
}

func TestInitError(t *testing.T) {
	cfg := testConfig()
	cfg.SyncFromDate = 1700000000
	env := newTestEnv(t, cfg, nil, optimismID)
	env.clients[optimismID].On("GetBlockNumberFromDate", mock.Anything, uint64(1700000000)).Return(uint64(0), errTimeout)

	require.ErrorIs(t, env.watchers[optimismID].Init(context.Background()), errTimeout)
}

func TestPostSyncExport(t *testing.T) {
	ctx := context.Background()
	exp := mocks.NewExporterMock(t)
	env := newTestEnv(t, testConfig(), exp, ethereumID, optimismID)
	optimism := env.watchers[optimismID]
	ethereum := env.watchers[ethereumID]
	optimism.availableCredit["ethereum"] = big.NewInt(650)
	optimism.pendingAmounts["ethereum"] = big.NewInt(100)

	exp.On("Export", mock.Anything, testToken, mock.MatchedBy(func(s exporter.TokenSnapshot) bool {
		_, hasRoot := s.AvailableCredit["ethereum"]
		return !hasRoot &&
			s.AvailableCredit["optimism"]["ethereum"].Cmp(big.NewInt(650)) == 0 &&
			s.PendingAmounts["optimism"]["ethereum"].Cmp(big.NewInt(100)) == 0
	})).Return(errTimeout).Once()

	require.False(t, optimism.IsInitialSyncCompleted())
	optimism.postSync(ctx)
	require.True(t, optimism.IsInitialSyncCompleted())
	require.Equal(t, uint64(1), optimism.syncIndex.Load())
	require.False(t, optimism.IsAllSiblingWatchersInitialSyncCompleted())

	exp.On("Export", mock.Anything, testToken, mock.Anything).Return(nil).Once()
	ethereum.postSync(ctx)
	require.True(t, optimism.IsAllSiblingWatchersInitialSyncCompleted())
	require.True(t, ethereum.IsAllSiblingWatchersInitialSyncCompleted())
}

func TestGettersDefaultToZero(t *testing.T) {
	env := newTestEnv(t, testConfig(), nil, ethereumID, optimismID)
	w := env.watchers[optimismID]
	w.availableCredit["ethereum"] = big.NewInt(5)

	requireAmount(t, 5, w.GetEffectiveAvailableCredit(ethereumID))
	requireAmount(t, 0, w.GetEffectiveAvailableCredit(arbitrumID))
	requireAmount(t, 0, w.GetPendingAmount(ethereumID))
	requireAmount(t, 0, w.GetUnbondedTransferRootAmount(12345))

	// readers get copies
	w.GetEffectiveAvailableCredit(ethereumID).SetInt64(0)
	available, _, _ := w.Snapshot()
	available["ethereum"].SetInt64(0)
	requireAmount(t, 5, w.GetEffectiveAvailableCredit(ethereumID))
}

func TestStartRunsCycles(t *testing.T) {
	env := newTestEnv(t, testConfig(), nil, ethereumID)
	client := env.clients[ethereumID]
	client.On("MapEvents", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- env.watchers[ethereumID].Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return env.watchers[ethereumID].syncIndex.Load() >= 2
	}, time.Second, 5*time.Millisecond)
	require.True(t, env.watchers[ethereumID].IsInitialSyncCompleted())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher didn't stop")
	}
}

func TestCycleErrorIsReported(t *testing.T) {
	env := newTestEnv(t, testConfig(), nil, ethereumID)
	w := env.watchers[ethereumID]
	notifier := mocks.NewNotifierMock(t)
	w.notifier = notifier
	env.clients[ethereumID].On("MapEvents", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errTimeout)
	var reported atomic.Int32
	notifier.On("Error", mock.Anything).Run(func(args mock.Arguments) {
		reported.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.pollSync(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return reported.Load() >= 2
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	require.False(t, w.IsInitialSyncCompleted())
	require.Zero(t, w.syncIndex.Load())
}

func requireAmount(t *testing.T, expected int64, actual *big.Int) {
	t.Helper()
	require.NotNil(t, actual)
	require.Zero(t, big.NewInt(expected).Cmp(actual), "expected %d, got %s", expected, actual)
}
