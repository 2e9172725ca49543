package bridge

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/bonder-network/bonder/chain"
	"github.com/bonder-network/bonder/log"
	"github.com/bonder-network/bonder/sync"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
)

var ErrInvalidChainID = errors.New("the node reports a chain id different from the configured one")

// EthClienter is the subset of the ethclient used by the bridge client
type EthClienter interface {
	sync.EthClienter
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (tx *types.Transaction, isPending bool, err error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// SyncStateStorer keeps the last synced block of each event stream
type SyncStateStorer interface {
	GetLastSyncedBlock(ctx context.Context, cacheKey string) (uint64, error)
	SetLastSyncedBlock(ctx context.Context, cacheKey string, blockNum uint64) error
}

// Config of the bridge contract of a token on a chain
type Config struct {
	// Address of the bridge contract
	Address common.Address `mapstructure:"Address"`
	// DeployedBlock is the block where the bridge contract was deployed
	DeployedBlock uint64 `mapstructure:"DeployedBlock"`
}

// SyncOptions selects the block range of MapEvents and EventsBatch
type SyncOptions struct {
	// CacheKey identifies the stream, the scan resumes from its last synced block
	CacheKey string
	// StartBlockNumber overrides the start of the scan (and the cache key)
	StartBlockNumber uint64
	// EndBlockNumber is the last block to scan, the head of the chain by default
	EndBlockNumber uint64
	// Topics filters by the indexed arguments of the event (topic0 is set by the client)
	Topics [][]common.Hash
}

// EventHandler processes a decoded event
type EventHandler func(ctx context.Context, ev Event) error

// BatchHandler processes the decoded events of a block range. Returning done stops the scan
type BatchHandler func(ctx context.Context, events []Event, r sync.BlockRange) (done bool, err error)

// Client reads the bridge contract of a token on a chain
type Client struct {
	chain         chain.Chain
	token         string
	decimals      uint8
	address       common.Address
	deployedBlock uint64

	ethClient  EthClienter
	downloader *sync.EVMDownloader
	syncState  SyncStateStorer
	abi        *abi.ABI
	log        *log.Logger
}

// NewClient returns the bridge client of token on c
func NewClient(
	c chain.Chain,
	token string,
	decimals uint8,
	cfg Config,
	ethClient EthClienter,
	downloader *sync.EVMDownloader,
	syncState SyncStateStorer,
) (*Client, error) {
	parsed, err := abi.JSON(strings.NewReader(bridgeABI))
	if err != nil {
		return nil, fmt.Errorf("error parsing bridge ABI: %w", err)
	}
	return &Client{
		chain:         c,
		token:         token,
		decimals:      decimals,
		address:       cfg.Address,
		deployedBlock: cfg.DeployedBlock,
		ethClient:     ethClient,
		downloader:    downloader,
		syncState:     syncState,
		abi:           &parsed,
		log:           log.WithFields("bridge", fmt.Sprintf("%s.%s", c.Slug, token)),
	}, nil
}

// Chain returns the chain of the bridge
func (c *Client) Chain() chain.Chain {
	return c.chain
}

// ChainID returns the configured chain id
func (c *Client) ChainID() uint64 {
	return c.chain.ID
}

// BridgeDeployedBlockNumber returns the block where the bridge was deployed
func (c *Client) BridgeDeployedBlockNumber() uint64 {
	return c.deployedBlock
}

// Address returns the address of the bridge contract
func (c *Client) Address() common.Address {
	return c.address
}

// VerifyChainID checks that the node serves the configured chain
func (c *Client) VerifyChainID(ctx context.Context) error {
	id, err := c.ethClient.ChainID(ctx)
	if err != nil {
		return err
	}
	if id.Uint64() != c.chain.ID {
		return fmt.Errorf("%w: expected %d got %d", ErrInvalidChainID, c.chain.ID, id.Uint64())
	}
	return nil
}

// EventTopic returns the topic0 of an event
func (c *Client) EventTopic(kind EventKind) common.Hash {
	return c.abi.Events[string(kind)].ID
}

func (c *Client) query(kind EventKind, topics [][]common.Hash) sync.LogQuery {
	allTopics := [][]common.Hash{{c.EventTopic(kind)}}
	allTopics = append(allTopics, topics...)
	return sync.LogQuery{
		Addresses: []common.Address{c.address},
		Topics:    allTopics,
	}
}

func (c *Client) decodeLogs(kind EventKind, logs []types.Log) ([]Event, error) {
	events := make([]Event, 0, len(logs))
	for _, l := range logs {
		ev, err := decodeLog(c.abi, kind, l)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].Meta(), events[j].Meta()
		if a.BlockNumber != b.BlockNumber {
			return a.BlockNumber < b.BlockNumber
		}
		if a.TxIndex != b.TxIndex {
			return a.TxIndex < b.TxIndex
		}
		return a.LogIndex < b.LogIndex
	})
	return events, nil
}

func (c *Client) resolveRange(ctx context.Context, opts SyncOptions) (fromBlock, toBlock uint64, err error) {
	fromBlock = c.deployedBlock
	switch {
	case opts.StartBlockNumber > 0:
		fromBlock = opts.StartBlockNumber
	case opts.CacheKey != "" && c.syncState != nil:
		lastSynced, err := c.syncState.GetLastSyncedBlock(ctx, opts.CacheKey)
		if err != nil {
			return 0, 0, fmt.Errorf("error reading last synced block of %s: %w", opts.CacheKey, err)
		}
		if lastSynced > 0 && lastSynced+1 > fromBlock {
			fromBlock = lastSynced + 1
		}
	}
	toBlock = opts.EndBlockNumber
	if toBlock == 0 {
		toBlock, err = c.downloader.LastBlock(ctx)
		if err != nil {
			return 0, 0, err
		}
	}
	return fromBlock, toBlock, nil
}

// MapEvents scans the events of a kind from oldest to newest and calls handler with each of them.
// When a cache key is given the last synced block is stored after each chunk.
func (c *Client) MapEvents(ctx context.Context, kind EventKind, opts SyncOptions, handler EventHandler) error {
	fromBlock, toBlock, err := c.resolveRange(ctx, opts)
	if err != nil {
		return err
	}
	if fromBlock > toBlock {
		return nil
	}
	c.log.Debugf("syncing %s events from block %d to %d", kind, fromBlock, toBlock)
	return c.downloader.Download(ctx, fromBlock, toBlock, c.query(kind, opts.Topics),
		func(ctx context.Context, r sync.BlockRange, logs []types.Log) error {
			events, err := c.decodeLogs(kind, logs)
			if err != nil {
				return err
			}
			for _, ev := range events {
				if err := handler(ctx, ev); err != nil {
					return err
				}
			}
			if opts.CacheKey == "" || c.syncState == nil {
				return nil
			}
			return c.syncState.SetLastSyncedBlock(ctx, opts.CacheKey, r.ToBlock)
		})
}

// EventsBatch scans the events of a kind from newest to oldest chunk until handler is done
func (c *Client) EventsBatch(ctx context.Context, kind EventKind, opts SyncOptions, handler BatchHandler) error {
	fromBlock := c.deployedBlock
	if opts.StartBlockNumber > 0 {
		fromBlock = opts.StartBlockNumber
	}
	toBlock := opts.EndBlockNumber
	if toBlock == 0 {
		var err error
		toBlock, err = c.downloader.LastBlock(ctx)
		if err != nil {
			return err
		}
	}
	return c.downloader.DownloadBackwards(ctx, fromBlock, toBlock, c.query(kind, opts.Topics),
		func(ctx context.Context, r sync.BlockRange, logs []types.Log) (bool, error) {
			events, err := c.decodeLogs(kind, logs)
			if err != nil {
				return false, err
			}
			return handler(ctx, events, r)
		})
}

// GetTransferSentEvents returns the TransferSent events towards destinationChainID in
// [fromBlock, toBlock], in chain order
func (c *Client) GetTransferSentEvents(
	ctx context.Context, destinationChainID, fromBlock, toBlock uint64,
) ([]*TransferSentEvent, error) {
	topics := [][]common.Hash{nil, {common.BigToHash(new(big.Int).SetUint64(destinationChainID))}}
	res := []*TransferSentEvent{}
	err := c.downloader.Download(ctx, fromBlock, toBlock, c.query(TransferSent, topics),
		func(ctx context.Context, r sync.BlockRange, logs []types.Log) error {
			events, err := c.decodeLogs(TransferSent, logs)
			if err != nil {
				return err
			}
			for _, ev := range events {
				res = append(res, ev.(*TransferSentEvent))
			}
			return nil
		})
	return res, err
}

// GetBlockTimestamp returns 0 if the block is unknown
func (c *Client) GetBlockTimestamp(ctx context.Context, blockNum uint64) (uint64, error) {
	header, err := c.downloader.GetBlockHeader(ctx, blockNum)
	if errors.Is(err, ethereum.NotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return header.Timestamp, nil
}

// GetBlockNumberFromDate returns the first block with a timestamp greater or equal than ts
func (c *Client) GetBlockNumberFromDate(ctx context.Context, ts uint64) (uint64, error) {
	head, err := c.downloader.LastBlock(ctx)
	if err != nil {
		return 0, err
	}
	headHeader, err := c.downloader.GetBlockHeader(ctx, head)
	if err != nil {
		return 0, err
	}
	if headHeader.Timestamp < ts {
		return 0, fmt.Errorf("date %d is after the head of %s (%d)", ts, c.chain.Slug, headHeader.Timestamp)
	}
	low, high := uint64(0), head
	for low < high {
		mid := low + (high-low)/2 //nolint:mnd
		header, err := c.downloader.GetBlockHeader(ctx, mid)
		if err != nil {
			return 0, err
		}
		if header.Timestamp < ts {
			low = mid + 1
		} else {
			high = mid
		}
	}
	return low, nil
}

// FormatUnits renders an amount of the token with its decimals
func (c *Client) FormatUnits(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -int32(c.decimals)).String()
}

// ParseUnits converts a decimal amount of the token into its base units
func (c *Client) ParseUnits(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	return d.Shift(int32(c.decimals)).BigInt(), nil
}
