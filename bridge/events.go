package bridge

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EventKind is the name of a bridge event
type EventKind string

const (
	TransferSent               EventKind = "TransferSent"
	TransfersCommitted         EventKind = "TransfersCommitted"
	TransferRootBonded         EventKind = "TransferRootBonded"
	TransferRootConfirmed      EventKind = "TransferRootConfirmed"
	TransferBondChallenged     EventKind = "TransferBondChallenged"
	TransferRootSet            EventKind = "TransferRootSet"
	WithdrawalBonded           EventKind = "WithdrawalBonded"
	Withdrew                   EventKind = "Withdrew"
	MultipleWithdrawalsSettled EventKind = "MultipleWithdrawalsSettled"
)

// EventMeta locates an event on its chain
type EventMeta struct {
	BlockNumber uint64
	TxHash      common.Hash
	TxIndex     uint
	LogIndex    uint
}

// Event is any decoded bridge event
type Event interface {
	Kind() EventKind
	Meta() EventMeta
}

func (m EventMeta) Meta() EventMeta { return m }

func metaFromLog(l types.Log) EventMeta {
	return EventMeta{
		BlockNumber: l.BlockNumber,
		TxHash:      l.TxHash,
		TxIndex:     l.TxIndex,
		LogIndex:    l.Index,
	}
}

type TransferSentEvent struct {
	EventMeta
	TransferID         common.Hash
	DestinationChainID uint64
	Recipient          common.Address
	Amount             *big.Int
	TransferNonce      common.Hash
	BonderFee          *big.Int
	Index              uint64
	AmountOutMin       *big.Int
	Deadline           *big.Int
}

func (TransferSentEvent) Kind() EventKind { return TransferSent }

type TransfersCommittedEvent struct {
	EventMeta
	DestinationChainID uint64
	RootHash           common.Hash
	TotalAmount        *big.Int
	RootCommittedAt    uint64
}

func (TransfersCommittedEvent) Kind() EventKind { return TransfersCommitted }

type TransferRootBondedEvent struct {
	EventMeta
	RootHash common.Hash
	Amount   *big.Int
}

func (TransferRootBondedEvent) Kind() EventKind { return TransferRootBonded }

type TransferRootConfirmedEvent struct {
	EventMeta
	OriginChainID      uint64
	DestinationChainID uint64
	RootHash           common.Hash
	TotalAmount        *big.Int
}

func (TransferRootConfirmedEvent) Kind() EventKind { return TransferRootConfirmed }

type TransferBondChallengedEvent struct {
	EventMeta
	TransferRootID common.Hash
	RootHash       common.Hash
	OriginalAmount *big.Int
}

func (TransferBondChallengedEvent) Kind() EventKind { return TransferBondChallenged }

type TransferRootSetEvent struct {
	EventMeta
	RootHash    common.Hash
	TotalAmount *big.Int
}

func (TransferRootSetEvent) Kind() EventKind { return TransferRootSet }

type WithdrawalBondedEvent struct {
	EventMeta
	TransferID common.Hash
	Amount     *big.Int
}

func (WithdrawalBondedEvent) Kind() EventKind { return WithdrawalBonded }

type WithdrewEvent struct {
	EventMeta
	TransferID    common.Hash
	Recipient     common.Address
	Amount        *big.Int
	TransferNonce common.Hash
}

func (WithdrewEvent) Kind() EventKind { return Withdrew }

type MultipleWithdrawalsSettledEvent struct {
	EventMeta
	Bonder            common.Address
	RootHash          common.Hash
	TotalBondsSettled *big.Int
}

func (MultipleWithdrawalsSettledEvent) Kind() EventKind { return MultipleWithdrawalsSettled }

type eventDecoder func(l types.Log, data []interface{}) (Event, error)

// decoders maps each event to the function building it from the indexed topics
// and the unpacked non indexed data
var decoders = map[EventKind]eventDecoder{
	TransferSent: func(l types.Log, data []interface{}) (Event, error) {
		return &TransferSentEvent{
			EventMeta:          metaFromLog(l),
			TransferID:         l.Topics[1],
			DestinationChainID: l.Topics[2].Big().Uint64(),
			Recipient:          common.BytesToAddress(l.Topics[3].Bytes()),
			Amount:             data[0].(*big.Int),
			TransferNonce:      common.Hash(data[1].([32]byte)),
			BonderFee:          data[2].(*big.Int),
			Index:              data[3].(*big.Int).Uint64(),
			AmountOutMin:       data[4].(*big.Int),
			Deadline:           data[5].(*big.Int),
		}, nil
	},
	TransfersCommitted: func(l types.Log, data []interface{}) (Event, error) {
		return &TransfersCommittedEvent{
			EventMeta:          metaFromLog(l),
			DestinationChainID: l.Topics[1].Big().Uint64(),
			RootHash:           l.Topics[2],
			TotalAmount:        data[0].(*big.Int),
			RootCommittedAt:    data[1].(*big.Int).Uint64(),
		}, nil
	},
	TransferRootBonded: func(l types.Log, data []interface{}) (Event, error) {
		return &TransferRootBondedEvent{
			EventMeta: metaFromLog(l),
			RootHash:  l.Topics[1],
			Amount:    data[0].(*big.Int),
		}, nil
	},
	TransferRootConfirmed: func(l types.Log, data []interface{}) (Event, error) {
		return &TransferRootConfirmedEvent{
			EventMeta:          metaFromLog(l),
			OriginChainID:      l.Topics[1].Big().Uint64(),
			DestinationChainID: l.Topics[2].Big().Uint64(),
			RootHash:           l.Topics[3],
			TotalAmount:        data[0].(*big.Int),
		}, nil
	},
	TransferBondChallenged: func(l types.Log, data []interface{}) (Event, error) {
		return &TransferBondChallengedEvent{
			EventMeta:      metaFromLog(l),
			TransferRootID: l.Topics[1],
			RootHash:       l.Topics[2],
			OriginalAmount: data[0].(*big.Int),
		}, nil
	},
	TransferRootSet: func(l types.Log, data []interface{}) (Event, error) {
		return &TransferRootSetEvent{
			EventMeta:   metaFromLog(l),
			RootHash:    l.Topics[1],
			TotalAmount: data[0].(*big.Int),
		}, nil
	},
	WithdrawalBonded: func(l types.Log, data []interface{}) (Event, error) {
		return &WithdrawalBondedEvent{
			EventMeta:  metaFromLog(l),
			TransferID: l.Topics[1],
			Amount:     data[0].(*big.Int),
		}, nil
	},
	Withdrew: func(l types.Log, data []interface{}) (Event, error) {
		return &WithdrewEvent{
			EventMeta:     metaFromLog(l),
			TransferID:    l.Topics[1],
			Recipient:     common.BytesToAddress(l.Topics[2].Bytes()),
			Amount:        data[0].(*big.Int),
			TransferNonce: common.Hash(data[1].([32]byte)),
		}, nil
	},
	MultipleWithdrawalsSettled: func(l types.Log, data []interface{}) (Event, error) {
		return &MultipleWithdrawalsSettledEvent{
			EventMeta:         metaFromLog(l),
			Bonder:            common.BytesToAddress(l.Topics[1].Bytes()),
			RootHash:          l.Topics[2],
			TotalBondsSettled: data[0].(*big.Int),
		}, nil
	},
}

// decodeLog builds the event of the given kind from a raw log
func decodeLog(contractABI *abi.ABI, kind EventKind, l types.Log) (Event, error) {
	ev, ok := contractABI.Events[string(kind)]
	if !ok {
		return nil, fmt.Errorf("event %s not found on the ABI", kind)
	}
	if len(l.Topics) == 0 || l.Topics[0] != ev.ID {
		return nil, fmt.Errorf("log %s:%d is not a %s event", l.TxHash.Hex(), l.Index, kind)
	}
	indexed := 0
	for _, input := range ev.Inputs {
		if input.Indexed {
			indexed++
		}
	}
	if len(l.Topics) != indexed+1 {
		return nil, fmt.Errorf("%s event expects %d topics, got %d", kind, indexed+1, len(l.Topics))
	}
	data, err := ev.Inputs.NonIndexed().Unpack(l.Data)
	if err != nil {
		return nil, fmt.Errorf("error unpacking %s event data: %w", kind, err)
	}
	return decoders[kind](l, data)
}
