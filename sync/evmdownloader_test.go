package sync

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/bonder-network/bonder/chain"
	"github.com/bonder-network/bonder/sync/mocks"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	contractAddr   = common.HexToAddress("f00")
	eventSignature = crypto.Keccak256Hash([]byte("foo"))
)

const (
	syncBlockChunck = uint64(10)
)

func TestChunkRanges(t *testing.T) {
	testCases := []struct {
		description string
		from, to    uint64
		chunk       uint64
		reverse     bool
		expected    []BlockRange
	}{
		{
			description: "empty range",
			from:        10, to: 9, chunk: 5,
			expected: nil,
		},
		{
			description: "single block",
			from:        7, to: 7, chunk: 5,
			expected: []BlockRange{{7, 7}},
		},
		{
			description: "forward exact chunks",
			from:        0, to: 9, chunk: 5,
			expected: []BlockRange{{0, 4}, {5, 9}},
		},
		{
			description: "forward with remainder",
			from:        1, to: 12, chunk: 5,
			expected: []BlockRange{{1, 5}, {6, 10}, {11, 12}},
		},
		{
			description: "backwards with remainder",
			from:        1, to: 12, chunk: 5,
			reverse:  true,
			expected: []BlockRange{{8, 12}, {3, 7}, {1, 2}},
		},
		{
			description: "backwards from genesis",
			from:        0, to: 4, chunk: 5,
			reverse:  true,
			expected: []BlockRange{{0, 4}},
		},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expected, ChunkRanges(tc.from, tc.to, tc.chunk, tc.reverse), tc.description)
	}
}

func NewTestDownloader(t *testing.T) (*EVMDownloader, *mocks.EthClienterMock) {
	t.Helper()
	rh := &RetryHandler{
		MaxRetryAttemptsAfterError: 3,
		RetryAfterErrorPeriod:      time.Millisecond,
	}
	clientMock := mocks.NewEthClienterMock(t)
	d, err := NewEVMDownloader("test", clientMock, syncBlockChunck, chain.LatestBlock, rh)
	require.NoError(t, err)
	return d, clientMock
}

func TestGetLogsRetries(t *testing.T) {
	ctx := context.Background()
	d, clientMock := NewTestDownloader(t)
	query := LogQuery{Addresses: []common.Address{contractAddr}, Topics: [][]common.Hash{{eventSignature}}}
	expectedQuery := ethereum.FilterQuery{
		FromBlock: big.NewInt(1),
		ToBlock:   big.NewInt(10),
		Addresses: query.Addresses,
		Topics:    query.Topics,
	}
	logs := []types.Log{
		{Address: contractAddr, Topics: []common.Hash{eventSignature}, BlockNumber: 3},
		{Address: contractAddr, Topics: []common.Hash{eventSignature}, BlockNumber: 4, Removed: true},
	}
	clientMock.On("FilterLogs", mock.Anything, expectedQuery).Return(nil, errors.New("boom")).Once()
	clientMock.On("FilterLogs", mock.Anything, expectedQuery).Return(logs, nil).Once()

	actual, err := d.GetLogs(ctx, 1, 10, query)
	require.NoError(t, err)
	require.Len(t, actual, 1)
	require.Equal(t, uint64(3), actual[0].BlockNumber)
}

func TestGetLogsMaxRetries(t *testing.T) {
	ctx := context.Background()
	d, clientMock := NewTestDownloader(t)
	clientMock.On("FilterLogs", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Times(3)

	_, err := d.GetLogs(ctx, 1, 10, LogQuery{})
	require.ErrorIs(t, err, ErrMaxRetriesReached)
}

func TestDownload(t *testing.T) {
	ctx := context.Background()
	d, clientMock := NewTestDownloader(t)
	clientMock.On("FilterLogs", mock.Anything, mock.Anything).Return([]types.Log{}, nil).Times(3)

	visited := []BlockRange{}
	err := d.Download(ctx, 0, 25, LogQuery{}, func(ctx context.Context, r BlockRange, logs []types.Log) error {
		visited = append(visited, r)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []BlockRange{{0, 9}, {10, 19}, {20, 25}}, visited)
}

func TestDownloadBackwardsStops(t *testing.T) {
	ctx := context.Background()
	d, clientMock := NewTestDownloader(t)
	clientMock.On("FilterLogs", mock.Anything, mock.Anything).Return([]types.Log{}, nil).Times(2)

	visited := []BlockRange{}
	err := d.DownloadBackwards(ctx, 0, 40, LogQuery{}, func(ctx context.Context, r BlockRange, logs []types.Log) (bool, error) {
		visited = append(visited, r)
		return len(visited) == 2, nil
	})
	require.NoError(t, err)
	require.Equal(t, []BlockRange{{31, 40}, {21, 30}}, visited)
}

func TestGetBlockHeader(t *testing.T) {
	ctx := context.Background()
	d, clientMock := NewTestDownloader(t)
	header := &types.Header{Number: big.NewInt(5), Time: 1700000000}
	clientMock.On("HeaderByNumber", mock.Anything, big.NewInt(5)).Return(header, nil).Once()
	clientMock.On("HeaderByNumber", mock.Anything, big.NewInt(6)).Return(nil, ethereum.NotFound).Once()

	actual, err := d.GetBlockHeader(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, uint64(1700000000), actual.Timestamp)
	require.Equal(t, header.Hash(), actual.Hash)

	_, err = d.GetBlockHeader(ctx, 6)
	require.ErrorIs(t, err, ethereum.NotFound)
}

func TestLastBlock(t *testing.T) {
	ctx := context.Background()
	d, clientMock := NewTestDownloader(t)
	clientMock.On("HeaderByNumber", mock.Anything, mock.Anything).Return(&types.Header{Number: big.NewInt(1234)}, nil).Once()

	last, err := d.LastBlock(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1234), last)
}
