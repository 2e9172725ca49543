package syncwatcher

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/bonder-network/bonder/bridge"
	bondercommon "github.com/bonder-network/bonder/common"
	"github.com/bonder-network/bonder/store"
	"github.com/bonder-network/bonder/syncwatcher/mocks"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func transferSentEvent(id common.Hash, dest uint64, amountOutMin, deadline int64) *bridge.TransferSentEvent {
	return &bridge.TransferSentEvent{
		EventMeta:          bridge.EventMeta{BlockNumber: 100, TxHash: common.HexToHash("0xa0"), TxIndex: 2},
		TransferID:         id,
		DestinationChainID: dest,
		Recipient:          common.HexToAddress("0xcafe"),
		Amount:             big.NewInt(1000),
		BonderFee:          big.NewInt(10),
		Index:              3,
		AmountOutMin:       big.NewInt(amountOutMin),
		Deadline:           big.NewInt(deadline),
	}
}

func TestHandleTransferSentBondable(t *testing.T) {
	tests := []struct {
		name         string
		dest         uint64
		amountOutMin int64
		deadline     int64
		bondable     bool
	}{
		{name: "to root chain with amountOutMin", dest: ethereumID, amountOutMin: 990, bondable: false},
		{name: "to root chain with deadline", dest: ethereumID, deadline: 1700000000, bondable: false},
		{name: "to root chain without swap", dest: ethereumID, bondable: true},
		{name: "to child chain with swap", dest: arbitrumID, amountOutMin: 990, deadline: 1700000000, bondable: true},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnv(t, testConfig(), nil, optimismID)
			id := common.BigToHash(big.NewInt(int64(i + 1)))

			err := env.watchers[optimismID].handleTransferSentEvent(ctx,
				transferSentEvent(id, tt.dest, tt.amountOutMin, tt.deadline))
			require.NoError(t, err)

			actual, err := env.storage.GetTransfer(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, actual.IsBondable)
			require.Equal(t, tt.bondable, *actual.IsBondable)
			require.Equal(t, optimismID, actual.SourceChainID)
			require.Equal(t, tt.dest, actual.DestinationChainID)
			require.Equal(t, uint64(100), actual.TransferSentBlockNumber)
			require.Equal(t, uint64(2), actual.TransferSentTxIndex)
			require.Equal(t, uint64(3), actual.TransferSentIndex)
			requireAmount(t, 1000, actual.Amount)
		})
	}
}

func TestHandleTransfersCommittedShouldBond(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig(), nil, ethereumID, optimismID, gnosisID)
	total := big.NewInt(5000)

	for _, tt := range []struct {
		source     uint64
		rootHash   common.Hash
		shouldBond bool
	}{
		{source: optimismID, rootHash: common.HexToHash("0x01"), shouldBond: true},
		{source: gnosisID, rootHash: common.HexToHash("0x02"), shouldBond: false},
	} {
		err := env.watchers[tt.source].handleTransfersCommittedEvent(ctx, &bridge.TransfersCommittedEvent{
			EventMeta:          bridge.EventMeta{BlockNumber: 50, TxHash: common.HexToHash("0xc0")},
			DestinationChainID: ethereumID,
			RootHash:           tt.rootHash,
			TotalAmount:        total,
			RootCommittedAt:    1700000000,
		})
		require.NoError(t, err)

		root, err := env.storage.GetTransferRoot(ctx, tt.rootHash)
		require.NoError(t, err)
		require.Equal(t, tt.shouldBond, root.ShouldBondTransferRoot)
		require.True(t, root.Committed)
		require.Equal(t, tt.source, root.SourceChainID)
		require.Equal(t, ethereumID, root.DestinationChainID)
		require.Equal(t, uint64(1700000000), root.CommittedAt)
		require.Equal(t, uint64(50), root.CommitTxBlockNumber)
		require.Equal(t, bondercommon.TransferRootID(tt.rootHash, total), root.TransferRootID)
		require.Equal(t, store.TransferRootTimestampedKey(1700000000, tt.rootHash), root.TimestampedKey)
	}
}

func TestRootChainHandlers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig(), nil, ethereumID)
	w := env.watchers[ethereumID]
	rootHash := common.HexToHash("0x01")
	amount := big.NewInt(700)

	require.NoError(t, w.handleTransferRootBondedEvent(ctx, &bridge.TransferRootBondedEvent{
		EventMeta: bridge.EventMeta{BlockNumber: 7, TxHash: common.HexToHash("0xb1")},
		RootHash:  rootHash,
		Amount:    amount,
	}))
	require.NoError(t, w.handleTransferRootConfirmedEvent(ctx, &bridge.TransferRootConfirmedEvent{
		EventMeta: bridge.EventMeta{BlockNumber: 9, TxHash: common.HexToHash("0xc1")},
		RootHash:  rootHash,
	}))
	require.NoError(t, w.handleTransferBondChallengedEvent(ctx, &bridge.TransferBondChallengedEvent{
		EventMeta:      bridge.EventMeta{BlockNumber: 10, TxHash: common.HexToHash("0xd1")},
		TransferRootID: bondercommon.TransferRootID(rootHash, amount),
		RootHash:       rootHash,
		OriginalAmount: amount,
	}))
	require.NoError(t, w.handleTransferRootSetEvent(ctx, &bridge.TransferRootSetEvent{
		EventMeta:   bridge.EventMeta{BlockNumber: 11, TxHash: common.HexToHash("0xe1")},
		RootHash:    rootHash,
		TotalAmount: amount,
	}))

	root, err := env.storage.GetTransferRoot(ctx, rootHash)
	require.NoError(t, err)
	require.True(t, root.Bonded)
	require.Equal(t, uint64(7), root.BondBlockNumber)
	require.Equal(t, common.HexToHash("0xb1"), root.BondTxHash)
	require.Equal(t, bondercommon.TransferRootID(rootHash, amount), root.BondTransferRootID)
	// the id of a root comes from its commit only
	require.Zero(t, root.TransferRootID)
	requireAmount(t, 700, root.BondTotalAmount)
	require.True(t, root.Confirmed)
	require.Equal(t, common.HexToHash("0xc1"), root.ConfirmTxHash)
	require.True(t, root.Challenged)
	require.Equal(t, uint64(11), root.RootSetBlockNumber)
	require.Equal(t, ethereumID, root.DestinationChainID)
}

func TestTransferRootIDIsOrderIndependent(t *testing.T) {
	rootHash := common.HexToHash("0x01")
	committed := &bridge.TransfersCommittedEvent{
		EventMeta:          bridge.EventMeta{BlockNumber: 50, TxHash: common.HexToHash("0xc0")},
		DestinationChainID: ethereumID,
		RootHash:           rootHash,
		TotalAmount:        big.NewInt(100),
		RootCommittedAt:    1700000000,
	}
	bonded := &bridge.TransferRootBondedEvent{
		EventMeta: bridge.EventMeta{BlockNumber: 7, TxHash: common.HexToHash("0xb1")},
		RootHash:  rootHash,
		Amount:    big.NewInt(90),
	}

	apply := func(t *testing.T, commitFirst bool) *store.TransferRoot {
		t.Helper()
		ctx := context.Background()
		env := newTestEnv(t, testConfig(), nil, ethereumID, optimismID)
		commit := func() {
			require.NoError(t, env.watchers[optimismID].handleTransfersCommittedEvent(ctx, committed))
		}
		bond := func() {
			require.NoError(t, env.watchers[ethereumID].handleTransferRootBondedEvent(ctx, bonded))
		}
		if commitFirst {
			commit()
			bond()
		} else {
			bond()
			commit()
		}
		root, err := env.storage.GetTransferRoot(ctx, rootHash)
		require.NoError(t, err)
		return root
	}

	commitThenBond := apply(t, true)
	bondThenCommit := apply(t, false)

	require.Equal(t, bondercommon.TransferRootID(rootHash, big.NewInt(100)), commitThenBond.TransferRootID)
	require.Equal(t, bondercommon.TransferRootID(rootHash, big.NewInt(90)), commitThenBond.BondTransferRootID)
	require.Equal(t, commitThenBond.TransferRootID, bondThenCommit.TransferRootID)
	require.Equal(t, commitThenBond.BondTransferRootID, bondThenCommit.BondTransferRootID)
	requireAmount(t, 100, bondThenCommit.TotalAmount)
	requireAmount(t, 90, bondThenCommit.BondTotalAmount)
	require.Equal(t, commitThenBond.TimestampedKey, bondThenCommit.TimestampedKey)
}

func TestSpendHandlersAreMonotonic(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig(), nil, optimismID, arbitrumID)
	id := common.HexToHash("0x01")
	bonded := &bridge.WithdrawalBondedEvent{
		EventMeta:  bridge.EventMeta{BlockNumber: 30, TxHash: common.HexToHash("0xb0")},
		TransferID: id,
		Amount:     big.NewInt(990),
	}

	// the destination side is seen before the source side
	require.NoError(t, env.watchers[arbitrumID].handleWithdrawalBondedEvent(ctx, bonded))
	require.NoError(t, env.watchers[optimismID].handleTransferSentEvent(ctx, transferSentEvent(id, arbitrumID, 0, 0)))
	first, err := env.storage.GetTransfer(ctx, id)
	require.NoError(t, err)

	// replaying both events doesn't change the record
	require.NoError(t, env.watchers[optimismID].handleTransferSentEvent(ctx, transferSentEvent(id, arbitrumID, 0, 0)))
	require.NoError(t, env.watchers[arbitrumID].handleWithdrawalBondedEvent(ctx, bonded))
	second, err := env.storage.GetTransfer(ctx, id)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.True(t, second.WithdrawalBonded)
	require.True(t, second.IsTransferSpent)
	require.Equal(t, common.HexToHash("0xb0"), second.WithdrawalBondedTxHash)
	require.Equal(t, common.HexToHash("0xb0"), second.TransferSpentTxHash)
	require.Equal(t, optimismID, second.SourceChainID)
	require.Equal(t, arbitrumID, second.DestinationChainID)
}

func TestWithdrewMakesTransferNotBondable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig(), nil, optimismID, arbitrumID)
	id := common.HexToHash("0x01")

	require.NoError(t, env.watchers[arbitrumID].handleWithdrewEvent(ctx, &bridge.WithdrewEvent{
		EventMeta:  bridge.EventMeta{BlockNumber: 30, TxHash: common.HexToHash("0xd0")},
		TransferID: id,
		Amount:     big.NewInt(1000),
	}))
	require.NoError(t, env.watchers[optimismID].handleTransferSentEvent(ctx, transferSentEvent(id, arbitrumID, 0, 0)))

	actual, err := env.storage.GetTransfer(ctx, id)
	require.NoError(t, err)
	require.True(t, actual.IsTransferSpent)
	require.False(t, actual.WithdrawalBonded)
	require.NotNil(t, actual.IsBondable)
	require.False(t, *actual.IsBondable)
}

func TestCheckTransferRootSettledState(t *testing.T) {
	bondable, notBondable := true, false
	idA, idB, idC := common.HexToHash("0x0a"), common.HexToHash("0x0b"), common.HexToHash("0x0c")

	tests := []struct {
		name         string
		transfers    []*store.Transfer
		settledTotal int64
		allSettled   bool
	}{
		{
			name: "settled total covers the root",
			transfers: []*store.Transfer{
				{TransferID: idA, IsBondable: &bondable},
				{TransferID: idB, IsBondable: &bondable},
			},
			settledTotal: 300,
			allSettled:   true,
		},
		{
			name: "every bondable transfer bonded",
			transfers: []*store.Transfer{
				{TransferID: idA, IsBondable: &bondable, WithdrawalBonded: true},
				{TransferID: idB, IsBondable: &notBondable},
				{TransferID: idC, IsBondable: &bondable, WithdrawalBonded: true},
			},
			settledTotal: 100,
			allSettled:   true,
		},
		{
			name: "a bondable transfer is not bonded",
			transfers: []*store.Transfer{
				{TransferID: idA, IsBondable: &bondable, WithdrawalBonded: true},
				{TransferID: idB, IsBondable: &bondable},
			},
			settledTotal: 100,
			allSettled:   false,
		},
		{
			name: "unknown bondability and missing transfers count as settled",
			transfers: []*store.Transfer{
				{TransferID: idA, IsBondable: &bondable, WithdrawalBonded: true},
				{TransferID: idB},
			},
			settledTotal: 100,
			allSettled:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnv(t, testConfig(), nil, arbitrumID)
			rootHash := common.HexToHash("0x01")
			ids := []common.Hash{idA, idB, idC}
			require.NoError(t, env.storage.UpsertTransferRoot(ctx, &store.TransferRoot{
				TransferRootHash: rootHash,
				TotalAmount:      big.NewInt(300),
				TransferIDs:      ids,
			}))
			for _, transfer := range tt.transfers {
				require.NoError(t, env.storage.UpsertTransfer(ctx, transfer))
			}

			err := env.watchers[arbitrumID].checkTransferRootSettledState(ctx, rootHash, big.NewInt(tt.settledTotal))
			require.NoError(t, err)

			root, err := env.storage.GetTransferRoot(ctx, rootHash)
			require.NoError(t, err)
			require.Equal(t, tt.allSettled, root.AllSettled)
			for _, transfer := range tt.transfers {
				actual, err := env.storage.GetTransfer(ctx, transfer.TransferID)
				require.NoError(t, err)
				require.Equal(t, transfer.WithdrawalBonded, actual.WithdrawalBondSettled)
			}
		})
	}
}

func TestHandleMultipleWithdrawalsSettled(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig(), nil, arbitrumID)
	rootHash := common.HexToHash("0x01")
	require.NoError(t, env.storage.UpsertTransferRoot(ctx, &store.TransferRoot{
		TransferRootHash: rootHash,
		TotalAmount:      big.NewInt(300),
		TransferIDs:      []common.Hash{common.HexToHash("0x0a")},
	}))

	err := env.watchers[arbitrumID].handleMultipleWithdrawalsSettledEvent(ctx, &bridge.MultipleWithdrawalsSettledEvent{
		EventMeta:         bridge.EventMeta{BlockNumber: 80, TxHash: common.HexToHash("0xf0")},
		Bonder:            bonderAddr,
		RootHash:          rootHash,
		TotalBondsSettled: big.NewInt(300),
	})
	require.NoError(t, err)

	root, err := env.storage.GetTransferRoot(ctx, rootHash)
	require.NoError(t, err)
	require.True(t, root.AllSettled)
	require.Equal(t, common.HexToHash("0xf0"), root.MultipleWithdrawalsSettledTxHash)
	requireAmount(t, 300, root.MultipleWithdrawalsSettledTotalAmount)
	require.Equal(t, arbitrumID, root.DestinationChainID)
}

// recordStreams mocks MapEvents and records the order in which the streams complete
func recordStreams(client *mocks.BridgeClientMock, events map[bridge.EventKind][]bridge.Event) func() []bridge.EventKind {
	var (
		mu    sync.Mutex
		order []bridge.EventKind
	)
	client.On("MapEvents", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			kind := args.Get(1).(bridge.EventKind)
			handler := args.Get(3).(bridge.EventHandler)
			for _, ev := range events[kind] {
				_ = handler(ctx, ev)
			}
			mu.Lock()
			order = append(order, kind)
			mu.Unlock()
		}).Return(nil)
	return func() []bridge.EventKind {
		mu.Lock()
		defer mu.Unlock()
		return append([]bridge.EventKind{}, order...)
	}
}

func indexOf(kinds []bridge.EventKind, kind bridge.EventKind) int {
	for i, k := range kinds {
		if k == kind {
			return i
		}
	}
	return -1
}

func TestSyncHandlerRootChainStreams(t *testing.T) {
	env := newTestEnv(t, testConfig(), nil, ethereumID)
	order := recordStreams(env.clients[ethereumID], nil)

	require.NoError(t, env.watchers[ethereumID].syncHandler(context.Background()))

	kinds := order()
	require.ElementsMatch(t, []bridge.EventKind{
		bridge.TransferRootBonded, bridge.TransferRootConfirmed, bridge.TransferBondChallenged,
		bridge.WithdrawalBonded, bridge.Withdrew, bridge.MultipleWithdrawalsSettled, bridge.TransferRootSet,
	}, kinds)
	require.Greater(t, indexOf(kinds, bridge.MultipleWithdrawalsSettled), indexOf(kinds, bridge.WithdrawalBonded))
	require.Greater(t, indexOf(kinds, bridge.MultipleWithdrawalsSettled), indexOf(kinds, bridge.Withdrew))
	env.clients[ethereumID].AssertCalled(t, "MapEvents", mock.Anything, bridge.TransferRootBonded,
		bridge.SyncOptions{CacheKey: "ethereum:USDC:TransferRootBonded"}, mock.Anything)
}

func TestSyncHandlerIsolatesHandlerErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig(), nil, optimismID)
	w := env.watchers[optimismID]
	notifier := mocks.NewNotifierMock(t)
	w.notifier = notifier
	notifier.On("Error", mock.Anything).Once()

	id := common.HexToHash("0x01")
	order := recordStreams(env.clients[optimismID], map[bridge.EventKind][]bridge.Event{
		// the first event doesn't belong to the stream and fails, the next one is still handled
		bridge.TransferSent: {
			&bridge.WithdrewEvent{TransferID: common.HexToHash("0x02")},
			transferSentEvent(id, arbitrumID, 0, 0),
		},
	})

	require.NoError(t, w.syncHandler(ctx))

	require.ElementsMatch(t, []bridge.EventKind{
		bridge.TransferSent, bridge.TransfersCommitted,
		bridge.WithdrawalBonded, bridge.Withdrew, bridge.MultipleWithdrawalsSettled, bridge.TransferRootSet,
	}, order())
	_, err := env.storage.GetTransfer(ctx, id)
	require.NoError(t, err)
}

func TestSyncHandlerRecoversHandlerPanic(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig(), nil, optimismID)
	w := env.watchers[optimismID]
	notifier := mocks.NewNotifierMock(t)
	w.notifier = notifier
	notifier.On("Error", mock.MatchedBy(func(msg string) bool {
		return strings.Contains(msg, "panic handling TransferSent event")
	})).Once()

	id := common.HexToHash("0x01")
	recordStreams(env.clients[optimismID], map[bridge.EventKind][]bridge.Event{
		bridge.TransferSent: {
			(*bridge.TransferSentEvent)(nil),
			transferSentEvent(id, arbitrumID, 0, 0),
		},
	})

	require.NoError(t, w.syncHandler(ctx))
	_, err := env.storage.GetTransfer(ctx, id)
	require.NoError(t, err)
}

func TestSyncHandlerScanError(t *testing.T) {
	env := newTestEnv(t, testConfig(), nil, optimismID)
	client := env.clients[optimismID]
	client.On("MapEvents", mock.Anything, bridge.TransfersCommitted, mock.Anything, mock.Anything).Return(errTimeout)
	client.On("MapEvents", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	err := env.watchers[optimismID].syncHandler(context.Background())
	require.ErrorIs(t, err, errTimeout)
	// credit is not synced after a failed scan
	require.Zero(t, env.watchers[optimismID].creditPollCounter.Load())
}
