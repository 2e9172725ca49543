package bridge

import (
	"context"
	"errors"
	"math/big"
	"path"
	"strings"
	"testing"

	"github.com/bonder-network/bonder/chain"
	"github.com/bonder-network/bonder/log"
	"github.com/bonder-network/bonder/store"
	"github.com/bonder-network/bonder/sync"
	"github.com/bonder-network/bonder/sync/mocks"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testChainID       = uint64(10)
	testDeployedBlock = uint64(5)
	testChunkSize     = uint64(10)
)

var (
	bridgeAddr     = common.HexToAddress("0xb8901acb165ed027e32754e0ffe830802919727f")
	testChain      = chain.New("optimism", testChainID, false, true)
	testRootChain  = chain.New("ethereum", 1, true, false)
	errNodeTimeout = errors.New("node timeout")
)

func parsedABI(t *testing.T) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(bridgeABI))
	require.NoError(t, err)
	return parsed
}

func newTestClient(t *testing.T, c chain.Chain) (*Client, *mocks.EthClienterMock, *store.SQLStorage) {
	t.Helper()
	ethClient := mocks.NewEthClienterMock(t)
	downloader, err := sync.NewEVMDownloader("test", ethClient, testChunkSize, chain.LatestBlock,
		&sync.RetryHandler{MaxRetryAttemptsAfterError: 1})
	require.NoError(t, err)
	storage, err := store.NewSQLStorage(log.GetDefaultLogger(), path.Join(t.TempDir(), "bridge.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	client, err := NewClient(c, "USDC", 6, Config{Address: bridgeAddr, DeployedBlock: testDeployedBlock},
		ethClient, downloader, storage)
	require.NoError(t, err)
	return client, ethClient, storage
}

func transferSentLog(t *testing.T, blockNum uint64, txIndex uint, id common.Hash, dest, index uint64) types.Log {
	t.Helper()
	ev := parsedABI(t).Events[string(TransferSent)]
	data, err := ev.Inputs.NonIndexed().Pack(
		big.NewInt(1000), [32]byte{1}, big.NewInt(10), new(big.Int).SetUint64(index), big.NewInt(0), big.NewInt(0),
	)
	require.NoError(t, err)
	return types.Log{
		Address: bridgeAddr,
		Topics: []common.Hash{
			ev.ID,
			id,
			common.BigToHash(new(big.Int).SetUint64(dest)),
			common.BytesToHash(common.HexToAddress("0xaaaa").Bytes()),
		},
		Data:        data,
		BlockNumber: blockNum,
		TxHash:      common.BytesToHash(id.Bytes()[:4]),
		TxIndex:     txIndex,
	}
}

func isLatest(n *big.Int) bool {
	return n != nil && n.Sign() < 0
}

func TestDecodeTransferSent(t *testing.T) {
	parsed := parsedABI(t)
	id := common.HexToHash("0x1234")
	l := transferSentLog(t, 8, 2, id, 1, 3)

	ev, err := decodeLog(&parsed, TransferSent, l)
	require.NoError(t, err)
	sent, ok := ev.(*TransferSentEvent)
	require.True(t, ok)
	require.Equal(t, TransferSent, sent.Kind())
	require.Equal(t, id, sent.TransferID)
	require.Equal(t, uint64(1), sent.DestinationChainID)
	require.Equal(t, common.HexToAddress("0xaaaa"), sent.Recipient)
	require.Equal(t, big.NewInt(1000), sent.Amount)
	require.Equal(t, big.NewInt(10), sent.BonderFee)
	require.Equal(t, uint64(3), sent.Index)
	require.Equal(t, uint64(8), sent.Meta().BlockNumber)
	require.Equal(t, uint(2), sent.Meta().TxIndex)
}

func TestDecodeLogErrors(t *testing.T) {
	parsed := parsedABI(t)
	l := transferSentLog(t, 8, 2, common.HexToHash("0x1234"), 1, 3)

	_, err := decodeLog(&parsed, Withdrew, l)
	require.Error(t, err)

	l.Topics = l.Topics[:2]
	_, err = decodeLog(&parsed, TransferSent, l)
	require.Error(t, err)

	_, err = decodeLog(&parsed, EventKind("Unknown"), l)
	require.Error(t, err)
}

func TestMapEventsPersistsCursor(t *testing.T) {
	ctx := context.Background()
	client, ethClient, storage := newTestClient(t, testChain)
	cacheKey := "optimism:USDC:TransferSent"

	ethClient.On("HeaderByNumber", mock.Anything, mock.MatchedBy(isLatest)).
		Return(&types.Header{Number: big.NewInt(25)}, nil)
	first := transferSentLog(t, 9, 1, common.HexToHash("0x01"), 1, 0)
	second := transferSentLog(t, 9, 0, common.HexToHash("0x02"), 1, 1)
	ethClient.On("FilterLogs", mock.Anything, mock.MatchedBy(func(q ethereum.FilterQuery) bool {
		return q.FromBlock.Uint64() == 5 && q.ToBlock.Uint64() == 14
	})).Return([]types.Log{first, second}, nil).Once()
	ethClient.On("FilterLogs", mock.Anything, mock.Anything).Return([]types.Log{}, nil).Twice()

	seen := []common.Hash{}
	err := client.MapEvents(ctx, TransferSent, SyncOptions{CacheKey: cacheKey}, func(ctx context.Context, ev Event) error {
		seen = append(seen, ev.(*TransferSentEvent).TransferID)
		return nil
	})
	require.NoError(t, err)
	// events of the same block are ordered by tx index
	require.Equal(t, []common.Hash{common.HexToHash("0x02"), common.HexToHash("0x01")}, seen)

	lastSynced, err := storage.GetLastSyncedBlock(ctx, cacheKey)
	require.NoError(t, err)
	require.Equal(t, uint64(25), lastSynced)

	// nothing new to scan
	err = client.MapEvents(ctx, TransferSent, SyncOptions{CacheKey: cacheKey}, func(ctx context.Context, ev Event) error {
		t.Fatal("unexpected event")
		return nil
	})
	require.NoError(t, err)
	ethClient.AssertNumberOfCalls(t, "FilterLogs", 3)
}

func TestMapEventsCustomStartBlock(t *testing.T) {
	ctx := context.Background()
	client, ethClient, storage := newTestClient(t, testChain)
	cacheKey := "optimism:USDC:Withdrew"
	require.NoError(t, storage.SetLastSyncedBlock(ctx, cacheKey, 100))

	ethClient.On("FilterLogs", mock.Anything, mock.MatchedBy(func(q ethereum.FilterQuery) bool {
		return q.FromBlock.Uint64() == 20 && q.ToBlock.Uint64() == 22
	})).Return([]types.Log{}, nil).Once()

	err := client.MapEvents(ctx, Withdrew,
		SyncOptions{CacheKey: cacheKey, StartBlockNumber: 20, EndBlockNumber: 22},
		func(ctx context.Context, ev Event) error { return nil })
	require.NoError(t, err)

	lastSynced, err := storage.GetLastSyncedBlock(ctx, cacheKey)
	require.NoError(t, err)
	require.Equal(t, uint64(22), lastSynced)
}

func TestMapEventsHandlerError(t *testing.T) {
	ctx := context.Background()
	client, ethClient, storage := newTestClient(t, testChain)
	cacheKey := "optimism:USDC:TransferSent"

	ethClient.On("FilterLogs", mock.Anything, mock.Anything).
		Return([]types.Log{transferSentLog(t, 6, 0, common.HexToHash("0x01"), 1, 0)}, nil).Once()

	err := client.MapEvents(ctx, TransferSent, SyncOptions{CacheKey: cacheKey, EndBlockNumber: 10},
		func(ctx context.Context, ev Event) error { return errNodeTimeout })
	require.ErrorIs(t, err, errNodeTimeout)

	lastSynced, err := storage.GetLastSyncedBlock(ctx, cacheKey)
	require.NoError(t, err)
	require.Equal(t, uint64(0), lastSynced)
}

func TestEventsBatchStopsWhenDone(t *testing.T) {
	ctx := context.Background()
	client, ethClient, _ := newTestClient(t, testChain)

	ethClient.On("FilterLogs", mock.Anything, mock.MatchedBy(func(q ethereum.FilterQuery) bool {
		return q.FromBlock.Uint64() == 21 && q.ToBlock.Uint64() == 30
	})).Return([]types.Log{}, nil).Once()
	ethClient.On("FilterLogs", mock.Anything, mock.MatchedBy(func(q ethereum.FilterQuery) bool {
		return q.FromBlock.Uint64() == 11 && q.ToBlock.Uint64() == 20
	})).Return([]types.Log{transferSentLog(t, 15, 0, common.HexToHash("0x01"), 1, 0)}, nil).Once()

	ranges := []sync.BlockRange{}
	err := client.EventsBatch(ctx, TransferSent, SyncOptions{EndBlockNumber: 30},
		func(ctx context.Context, events []Event, r sync.BlockRange) (bool, error) {
			ranges = append(ranges, r)
			return len(events) > 0, nil
		})
	require.NoError(t, err)
	require.Equal(t, []sync.BlockRange{{FromBlock: 21, ToBlock: 30}, {FromBlock: 11, ToBlock: 20}}, ranges)
}

func TestGetTransferSentEventsFiltersDestination(t *testing.T) {
	ctx := context.Background()
	client, ethClient, _ := newTestClient(t, testChain)

	ethClient.On("FilterLogs", mock.Anything, mock.MatchedBy(func(q ethereum.FilterQuery) bool {
		return len(q.Topics) == 3 && q.Topics[2][0] == common.BigToHash(big.NewInt(1))
	})).Return([]types.Log{transferSentLog(t, 6, 0, common.HexToHash("0x01"), 1, 4)}, nil).Once()

	events, err := client.GetTransferSentEvents(ctx, 1, 6, 6)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, uint64(4), events[0].Index)
}

func TestGetBlockNumberFromDate(t *testing.T) {
	ctx := context.Background()
	client, ethClient, _ := newTestClient(t, testChain)

	ethClient.On("HeaderByNumber", mock.Anything, mock.Anything).Return(
		func(ctx context.Context, n *big.Int) (*types.Header, error) {
			num := uint64(100)
			if !isLatest(n) {
				num = n.Uint64()
			}
			return &types.Header{Number: new(big.Int).SetUint64(num), Time: 1000 + num*10}, nil
		})

	blockNum, err := client.GetBlockNumberFromDate(ctx, 1055)
	require.NoError(t, err)
	require.Equal(t, uint64(6), blockNum)

	blockNum, err = client.GetBlockNumberFromDate(ctx, 1060)
	require.NoError(t, err)
	require.Equal(t, uint64(6), blockNum)

	_, err = client.GetBlockNumberFromDate(ctx, 5000)
	require.Error(t, err)
}

func TestGetBlockTimestampNotFound(t *testing.T) {
	client, ethClient, _ := newTestClient(t, testChain)
	ethClient.On("HeaderByNumber", mock.Anything, big.NewInt(3)).Return(nil, ethereum.NotFound)

	ts, err := client.GetBlockTimestamp(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, uint64(0), ts)
}

func TestVerifyChainID(t *testing.T) {
	client, ethClient, _ := newTestClient(t, testChain)
	ethClient.On("ChainID", mock.Anything).Return(big.NewInt(10), nil).Once()
	require.NoError(t, client.VerifyChainID(context.Background()))

	ethClient.On("ChainID", mock.Anything).Return(big.NewInt(11), nil).Once()
	require.ErrorIs(t, client.VerifyChainID(context.Background()), ErrInvalidChainID)
}

func TestUnits(t *testing.T) {
	client, _, _ := newTestClient(t, testChain)

	require.Equal(t, "1.5", client.FormatUnits(big.NewInt(1500000)))
	require.Equal(t, "0", client.FormatUnits(nil))
	require.Equal(t, "0.000001", client.FormatUnits(big.NewInt(1)))

	n, err := client.ParseUnits("2.25")
	require.NoError(t, err)
	require.Equal(t, big.NewInt(2250000), n)

	_, err = client.ParseUnits("not a number")
	require.Error(t, err)
}

func signedTx(t *testing.T, chainID uint64, data []byte) (*types.Transaction, common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   new(big.Int).SetUint64(chainID),
		Nonce:     1,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(10),
		Gas:       100000,
		To:        &bridgeAddr,
		Value:     big.NewInt(0),
		Data:      data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(new(big.Int).SetUint64(chainID)), key)
	require.NoError(t, err)
	return signed, crypto.PubkeyToAddress(key.PublicKey)
}
