package store

import (
	"context"
	"math/big"
	"path"
	"testing"

	"github.com/bonder-network/bonder/db"
	"github.com/bonder-network/bonder/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLStorage {
	t.Helper()
	dbPath := path.Join(t.TempDir(), "storeTest.sqlite")
	s, err := NewSQLStorage(log.GetDefaultLogger(), dbPath)
	require.NoError(t, err)
	return s
}

func TestUpsertTransferOutOfOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	id := common.HexToHash("0x1234")

	_, err := s.GetTransfer(ctx, id)
	require.ErrorIs(t, err, db.ErrNotFound)

	// the spend side arrives before the send side
	require.NoError(t, s.UpsertTransfer(ctx, &Transfer{
		TransferID:             id,
		WithdrawalBonded:       true,
		WithdrawalBondedTxHash: common.HexToHash("0xb0"),
		IsTransferSpent:        true,
		TransferSpentTxHash:    common.HexToHash("0xb0"),
	}))
	notBondable := false
	require.NoError(t, s.UpsertTransfer(ctx, &Transfer{
		TransferID:              id,
		SourceChainID:           10,
		DestinationChainID:      1,
		Amount:                  big.NewInt(1000),
		BonderFee:               big.NewInt(10),
		IsBondable:              &notBondable,
		TransferSentTxHash:      common.HexToHash("0xa0"),
		TransferSentBlockNumber: 100,
	}))

	actual, err := s.GetTransfer(ctx, id)
	require.NoError(t, err)
	require.True(t, actual.WithdrawalBonded)
	require.True(t, actual.IsTransferSpent)
	require.Equal(t, uint64(10), actual.SourceChainID)
	require.Equal(t, big.NewInt(1000), actual.Amount)
	require.NotNil(t, actual.IsBondable)
	require.False(t, *actual.IsBondable)

	// a later bondable=true never flips it back
	bondable := true
	require.NoError(t, s.UpsertTransfer(ctx, &Transfer{TransferID: id, IsBondable: &bondable}))
	actual, err = s.GetTransfer(ctx, id)
	require.NoError(t, err)
	require.False(t, *actual.IsBondable)
}

func TestGetIncompleteTransfers(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	missingTimestamp := &Transfer{
		TransferID:              common.HexToHash("0x01"),
		SourceChainID:           10,
		TransferSentTxHash:      common.HexToHash("0xa1"),
		TransferSentBlockNumber: 5,
	}
	missingBonder := &Transfer{
		TransferID:              common.HexToHash("0x02"),
		SourceChainID:           10,
		TransferSentTxHash:      common.HexToHash("0xa2"),
		TransferSentBlockNumber: 6,
		TransferSentTimestamp:   1000,
		WithdrawalBondedTxHash:  common.HexToHash("0xb2"),
	}
	complete := &Transfer{
		TransferID:              common.HexToHash("0x03"),
		SourceChainID:           10,
		TransferSentTxHash:      common.HexToHash("0xa3"),
		TransferSentBlockNumber: 7,
		TransferSentTimestamp:   1001,
	}
	notFound := &Transfer{
		TransferID:              common.HexToHash("0x04"),
		SourceChainID:           10,
		TransferSentTxHash:      common.HexToHash("0xa4"),
		TransferSentBlockNumber: 8,
		IsNotFound:              true,
	}
	otherSource := &Transfer{
		TransferID:              common.HexToHash("0x05"),
		SourceChainID:           42161,
		TransferSentTxHash:      common.HexToHash("0xa5"),
		TransferSentBlockNumber: 9,
	}
	for _, tr := range []*Transfer{missingTimestamp, missingBonder, complete, notFound, otherSource} {
		require.NoError(t, s.UpsertTransfer(ctx, tr))
	}

	incomplete, err := s.GetIncompleteTransfers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, incomplete, 2)
	require.Equal(t, missingTimestamp.TransferID, incomplete[0].TransferID)
	require.Equal(t, missingBonder.TransferID, incomplete[1].TransferID)

	byTime, err := s.GetTransfersByTimeRange(ctx, 1000, 1000)
	require.NoError(t, err)
	require.Len(t, byTime, 1)
	require.Equal(t, missingBonder.TransferID, byTime[0].TransferID)
	byTime, err = s.GetTransfersByTimeRange(ctx, 0, 2000)
	require.NoError(t, err)
	require.Len(t, byTime, 2)
}

func TestTransferRoots(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	committed := &TransferRoot{
		TransferRootHash:    common.HexToHash("0xf1"),
		TransferRootID:      common.HexToHash("0x11"),
		TotalAmount:         big.NewInt(500),
		SourceChainID:       10,
		DestinationChainID:  1,
		Committed:           true,
		CommitTxHash:        common.HexToHash("0xc1"),
		CommitTxBlockNumber: 10,
		CommittedAt:         2000,
	}
	bonded := &TransferRoot{
		TransferRootHash:    common.HexToHash("0xf2"),
		TransferRootID:      common.HexToHash("0x22"),
		TotalAmount:         big.NewInt(300),
		SourceChainID:       10,
		DestinationChainID:  1,
		Committed:           true,
		CommitTxHash:        common.HexToHash("0xc2"),
		CommitTxBlockNumber: 11,
		CommittedAt:         2001,
		TransferIDs:         []common.Hash{common.HexToHash("0x01")},
	}
	require.NoError(t, s.UpsertTransferRoot(ctx, committed))
	require.NoError(t, s.UpsertTransferRoot(ctx, bonded))
	require.NoError(t, s.UpsertTransferRoot(ctx, &TransferRoot{
		TransferRootHash: bonded.TransferRootHash,
		Bonded:           true,
		BondTxHash:       common.HexToHash("0xd2"),
		BondBlockNumber:  99,
	}))

	unbonded, err := s.GetUnbondedTransferRoots(ctx, 10, 1)
	require.NoError(t, err)
	require.Len(t, unbonded, 1)
	require.Equal(t, committed.TransferRootHash, unbonded[0].TransferRootHash)

	unbonded, err = s.GetUnbondedTransferRoots(ctx, 10, 100)
	require.NoError(t, err)
	require.Empty(t, unbonded)

	// committed is missing transfer ids, bonded is missing bonder and bondedAt
	incomplete, err := s.GetIncompleteTransferRoots(ctx, 10)
	require.NoError(t, err)
	require.Len(t, incomplete, 2)

	actual, err := s.GetTransferRoot(ctx, bonded.TransferRootHash)
	require.NoError(t, err)
	require.True(t, actual.Bonded)
	require.True(t, actual.Committed)
	require.Equal(t, bonded.TransferIDs, actual.TransferIDs)
	require.Equal(t, big.NewInt(300), actual.TotalAmount)

	byTime, err := s.GetTransferRootsByTimeRange(ctx, 2001, 3000)
	require.NoError(t, err)
	require.Len(t, byTime, 1)
	require.Equal(t, bonded.TransferRootHash, byTime[0].TransferRootHash)
}

func TestSyncState(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	block, err := s.GetLastSyncedBlock(ctx, "optimism:USDC:TransferSent")
	require.NoError(t, err)
	require.Equal(t, uint64(0), block)

	require.NoError(t, s.SetLastSyncedBlock(ctx, "optimism:USDC:TransferSent", 100))
	require.NoError(t, s.SetLastSyncedBlock(ctx, "optimism:USDC:TransferSent", 150))
	block, err = s.GetLastSyncedBlock(ctx, "optimism:USDC:TransferSent")
	require.NoError(t, err)
	require.Equal(t, uint64(150), block)
}

func TestGasCost(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	_, err := s.GetLatestGasCost(ctx, "optimism", "USDC", false)
	require.ErrorIs(t, err, db.ErrNotFound)

	for i, ts := range []uint64{100, 300, 200} {
		require.NoError(t, s.AddGasCost(ctx, &GasCost{
			Chain:                "optimism",
			Token:                "USDC",
			Timestamp:            ts,
			GasCost:              big.NewInt(int64(i + 1)),
			GasCostInToken:       big.NewInt(1),
			GasPrice:             big.NewInt(1),
			GasLimit:             21000,
			TokenPriceUSD:        1,
			NativeTokenPriceUSD:  2000,
			MinBonderFeeAbsolute: big.NewInt(1),
		}))
	}
	latest, err := s.GetLatestGasCost(ctx, "optimism", "USDC", false)
	require.NoError(t, err)
	require.Equal(t, uint64(300), latest.Timestamp)
	require.Equal(t, big.NewInt(2), latest.GasCost)
}
