package store

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const (
	transferKeyPrefix     = "transfer"
	transferRootKeyPrefix = "transferRoot"
	// timestamps are left padded so keys sort by time
	timestampedKeyFormat = "%s:%020d:%s"
)

// Transfer is a single cross-chain transfer. Zero values mean unknown.
type Transfer struct {
	TransferID              common.Hash    `meddler:"transfer_id,hash"`
	SourceChainID           uint64         `meddler:"source_chain_id"`
	DestinationChainID      uint64         `meddler:"destination_chain_id"`
	Recipient               common.Address `meddler:"recipient,address"`
	Amount                  *big.Int       `meddler:"amount,bigint"`
	TransferNonce           common.Hash    `meddler:"transfer_nonce,hash"`
	BonderFee               *big.Int       `meddler:"bonder_fee,bigint"`
	AmountOutMin            *big.Int       `meddler:"amount_out_min,bigint"`
	Deadline                *big.Int       `meddler:"deadline,bigint"`
	IsBondable              *bool          `meddler:"is_bondable"`
	TransferSentTxHash      common.Hash    `meddler:"transfer_sent_tx_hash,hash"`
	TransferSentBlockNumber uint64         `meddler:"transfer_sent_block_number"`
	TransferSentTxIndex     uint64         `meddler:"transfer_sent_tx_index"`
	TransferSentIndex       uint64         `meddler:"transfer_sent_index"`
	TransferSentTimestamp   uint64         `meddler:"transfer_sent_timestamp"`
	WithdrawalBonded        bool           `meddler:"withdrawal_bonded"`
	WithdrawalBondedTxHash  common.Hash    `meddler:"withdrawal_bonded_tx_hash,hash"`
	WithdrawalBonder        common.Address `meddler:"withdrawal_bonder,address"`
	IsTransferSpent         bool           `meddler:"is_transfer_spent"`
	TransferSpentTxHash     common.Hash    `meddler:"transfer_spent_tx_hash,hash"`
	WithdrawalBondSettled   bool           `meddler:"withdrawal_bond_settled"`
	TransferRootHash        common.Hash    `meddler:"transfer_root_hash,hash"`
	TransferRootID          common.Hash    `meddler:"transfer_root_id,hash"`
	IsNotFound              bool           `meddler:"is_not_found"`
	TimestampedKey          string         `meddler:"timestamped_key,zeroisnull"`
}

// IsBondableOrUnknown returns false only when the transfer is known to be non bondable
func (t *Transfer) IsBondableOrUnknown() bool {
	return t.IsBondable == nil || *t.IsBondable
}

// TransferRoot is a batch of transfers committed under a merkle root. Zero values mean unknown.
type TransferRoot struct {
	TransferRootHash                      common.Hash    `meddler:"transfer_root_hash,hash"`
	TransferRootID                        common.Hash    `meddler:"transfer_root_id,hash"`
	TotalAmount                           *big.Int       `meddler:"total_amount,bigint"`
	CommittedAt                           uint64         `meddler:"committed_at"`
	BondedAt                              uint64         `meddler:"bonded_at"`
	RootSetTimestamp                      uint64         `meddler:"root_set_timestamp"`
	SourceChainID                         uint64         `meddler:"source_chain_id"`
	DestinationChainID                    uint64         `meddler:"destination_chain_id"`
	Committed                             bool           `meddler:"committed"`
	CommitTxHash                          common.Hash    `meddler:"commit_tx_hash,hash"`
	CommitTxBlockNumber                   uint64         `meddler:"commit_tx_block_number"`
	Bonded                                bool           `meddler:"bonded"`
	BondTotalAmount                       *big.Int       `meddler:"bond_total_amount,bigint"`
	BondTxHash                            common.Hash    `meddler:"bond_tx_hash,hash"`
	BondBlockNumber                       uint64         `meddler:"bond_block_number"`
	BondTransferRootID                    common.Hash    `meddler:"bond_transfer_root_id,hash"`
	Bonder                                common.Address `meddler:"bonder,address"`
	Confirmed                             bool           `meddler:"confirmed"`
	ConfirmTxHash                         common.Hash    `meddler:"confirm_tx_hash,hash"`
	ConfirmBlockNumber                    uint64         `meddler:"confirm_block_number"`
	Challenged                            bool           `meddler:"challenged"`
	RootSetTxHash                         common.Hash    `meddler:"root_set_tx_hash,hash"`
	RootSetBlockNumber                    uint64         `meddler:"root_set_block_number"`
	MultipleWithdrawalsSettledTxHash      common.Hash    `meddler:"multiple_withdrawals_settled_tx_hash,hash"`
	MultipleWithdrawalsSettledTotalAmount *big.Int       `meddler:"multiple_withdrawals_settled_total_amount,bigint"`
	TransferIDs                           []common.Hash  `meddler:"transfer_ids,hashslice"`
	AllSettled                            bool           `meddler:"all_settled"`
	ShouldBondTransferRoot                bool           `meddler:"should_bond_transfer_root"`
	IsNotFound                            bool           `meddler:"is_not_found"`
	TimestampedKey                        string         `meddler:"timestamped_key,zeroisnull"`
}

// GasCost is a bond gas estimation for a chain and token
type GasCost struct {
	ID                   int64    `meddler:"id,pk"`
	Chain                string   `meddler:"chain"`
	Token                string   `meddler:"token"`
	Timestamp            uint64   `meddler:"timestamp"`
	AttemptSwap          bool     `meddler:"attempt_swap"`
	GasCost              *big.Int `meddler:"gas_cost,bigint"`
	GasCostInToken       *big.Int `meddler:"gas_cost_in_token,bigint"`
	GasPrice             *big.Int `meddler:"gas_price,bigint"`
	GasLimit             uint64   `meddler:"gas_limit"`
	TokenPriceUSD        float64  `meddler:"token_price_usd"`
	NativeTokenPriceUSD  float64  `meddler:"native_token_price_usd"`
	MinBonderFeeAbsolute *big.Int `meddler:"min_bonder_fee_absolute,bigint"`
}

type syncState struct {
	CacheKey        string `meddler:"cache_key"`
	LastSyncedBlock uint64 `meddler:"last_synced_block"`
}

// TransferTimestampedKey returns the key used to range transfers by sent time
func TransferTimestampedKey(sentTimestamp uint64, transferID common.Hash) string {
	return fmt.Sprintf(timestampedKeyFormat, transferKeyPrefix, sentTimestamp, transferID.Hex())
}

// TransferRootTimestampedKey returns the key used to range transfer roots by commit time
func TransferRootTimestampedKey(committedAt uint64, rootHash common.Hash) string {
	return fmt.Sprintf(timestampedKeyFormat, transferRootKeyPrefix, committedAt, rootHash.Hex())
}

func timestampedKeyBounds(prefix string, from, to uint64) (string, string) {
	// "~" sorts after any hex hash
	return fmt.Sprintf("%s:%020d:", prefix, from), fmt.Sprintf("%s:%020d:~", prefix, to)
}
