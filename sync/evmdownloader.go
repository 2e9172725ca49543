package sync

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/bonder-network/bonder/chain"
	"github.com/bonder-network/bonder/log"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type EthClienter interface {
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// LogQuery selects the logs of a scan
type LogQuery struct {
	Addresses []common.Address
	Topics    [][]common.Hash
}

// ForwardHandler consumes the logs of a chunk. Chunks are delivered oldest first.
type ForwardHandler func(ctx context.Context, r BlockRange, logs []types.Log) error

// BackwardHandler consumes the logs of a chunk. Chunks are delivered newest first.
// Returning done stops the scan.
type BackwardHandler func(ctx context.Context, r BlockRange, logs []types.Log) (done bool, err error)

// EVMDownloader reads logs from a node in bounded block ranges
type EVMDownloader struct {
	ethClient          EthClienter
	syncBlockChunkSize uint64
	blockFinality      *big.Int
	rh                 *RetryHandler
	log                *log.Logger
}

func NewEVMDownloader(
	syncerID string,
	ethClient EthClienter,
	syncBlockChunkSize uint64,
	blockFinalityType chain.BlockNumberFinality,
	rh *RetryHandler,
) (*EVMDownloader, error) {
	logger := log.WithFields("syncer", syncerID)
	finality, err := blockFinalityType.ToBlockNum()
	if err != nil {
		return nil, err
	}
	if syncBlockChunkSize == 0 {
		return nil, errors.New("syncBlockChunkSize must be greater than 0")
	}
	return &EVMDownloader{
		ethClient:          ethClient,
		syncBlockChunkSize: syncBlockChunkSize,
		blockFinality:      finality,
		rh:                 rh,
		log:                logger,
	}, nil
}

// LastBlock returns the number of the head of the chain for the configured finality
func (d *EVMDownloader) LastBlock(ctx context.Context) (uint64, error) {
	attempts := 0
	for {
		header, err := d.ethClient.HeaderByNumber(ctx, d.blockFinality)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			attempts++
			d.log.Errorf("error getting last block num from eth client: %v", err)
			if errRetry := d.rh.Handle("lastBlock", attempts); errRetry != nil {
				return 0, errors.Join(errRetry, err)
			}
			continue
		}
		return header.Number.Uint64(), nil
	}
}

// Download scans [fromBlock, toBlock] from the oldest chunk to the newest one
func (d *EVMDownloader) Download(
	ctx context.Context, fromBlock, toBlock uint64, query LogQuery, handler ForwardHandler,
) error {
	for _, r := range ChunkRanges(fromBlock, toBlock, d.syncBlockChunkSize, false) {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.log.Debugf("getting events from block %d to %d", r.FromBlock, r.ToBlock)
		logs, err := d.GetLogs(ctx, r.FromBlock, r.ToBlock, query)
		if err != nil {
			return err
		}
		if err := handler(ctx, r, logs); err != nil {
			return err
		}
	}
	return nil
}

// DownloadBackwards scans [fromBlock, toBlock] from the newest chunk to the oldest one,
// until the handler reports it is done
func (d *EVMDownloader) DownloadBackwards(
	ctx context.Context, fromBlock, toBlock uint64, query LogQuery, handler BackwardHandler,
) error {
	for _, r := range ChunkRanges(fromBlock, toBlock, d.syncBlockChunkSize, true) {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.log.Debugf("getting events backwards from block %d to %d", r.FromBlock, r.ToBlock)
		logs, err := d.GetLogs(ctx, r.FromBlock, r.ToBlock, query)
		if err != nil {
			return err
		}
		done, err := handler(ctx, r, logs)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return nil
}

func filterQueryToString(query ethereum.FilterQuery) string {
	return fmt.Sprintf("FromBlock: %s, ToBlock: %s, Addresses: %s, Topics: %s",
		query.FromBlock.String(), query.ToBlock.String(), query.Addresses, query.Topics)
}

// GetLogs returns the logs of [fromBlock, toBlock] that match the query, ordered as the node returns them
func (d *EVMDownloader) GetLogs(ctx context.Context, fromBlock, toBlock uint64, q LogQuery) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		Addresses: q.Addresses,
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Topics:    q.Topics,
	}
	attempts := 0
	for {
		logs, err := d.ethClient.FilterLogs(ctx, query)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil, err
			}

			attempts++
			d.log.Errorf("error calling FilterLogs to eth client: filter: %s err:%v ",
				filterQueryToString(query),
				err,
			)
			if errRetry := d.rh.Handle("getLogs", attempts); errRetry != nil {
				return nil, errors.Join(errRetry, err)
			}
			continue
		}
		return removeRemovedLogs(logs), nil
	}
}

// GetBlockHeader returns ethereum.NotFound if the node doesn't know the block
func (d *EVMDownloader) GetBlockHeader(ctx context.Context, blockNum uint64) (EVMBlockHeader, error) {
	attempts := 0
	for {
		header, err := d.ethClient.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNum))
		if err != nil {
			if errors.Is(err, ethereum.NotFound) || ctx.Err() != nil {
				return EVMBlockHeader{}, err
			}

			attempts++
			d.log.Errorf("error getting block header for block %d, err: %v", blockNum, err)
			if errRetry := d.rh.Handle("getBlockHeader", attempts); errRetry != nil {
				return EVMBlockHeader{}, errors.Join(errRetry, err)
			}
			continue
		}
		return EVMBlockHeader{
			Num:        header.Number.Uint64(),
			Hash:       header.Hash(),
			ParentHash: header.ParentHash,
			Timestamp:  header.Time,
		}, nil
	}
}

func removeRemovedLogs(logs []types.Log) []types.Log {
	res := make([]types.Log, 0, len(logs))
	for _, l := range logs {
		if l.Removed {
			continue
		}
		res = append(res, l)
	}
	return res
}
