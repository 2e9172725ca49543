package store

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// mergeTransfer applies update on top of current. Unknown (zero) values of the update never
// overwrite known ones, lifecycle flags only go from false to true and a transfer that is
// known to be non bondable stays that way.
func mergeTransfer(current, update *Transfer) *Transfer {
	if current == nil {
		merged := *update
		merged.TimestampedKey = transferKey(&merged)
		return &merged
	}
	merged := *current
	mergeUint64(&merged.SourceChainID, update.SourceChainID)
	mergeUint64(&merged.DestinationChainID, update.DestinationChainID)
	mergeAddress(&merged.Recipient, update.Recipient)
	mergeBigInt(&merged.Amount, update.Amount)
	mergeHash(&merged.TransferNonce, update.TransferNonce)
	mergeBigInt(&merged.BonderFee, update.BonderFee)
	mergeBigInt(&merged.AmountOutMin, update.AmountOutMin)
	mergeBigInt(&merged.Deadline, update.Deadline)
	merged.IsBondable = mergeBondable(current.IsBondable, update.IsBondable)
	if update.TransferSentTxHash != (common.Hash{}) {
		// the whole sent event coordinates come together, index 0 is meaningful
		merged.TransferSentTxHash = update.TransferSentTxHash
		merged.TransferSentBlockNumber = update.TransferSentBlockNumber
		merged.TransferSentTxIndex = update.TransferSentTxIndex
		merged.TransferSentIndex = update.TransferSentIndex
	}
	mergeUint64(&merged.TransferSentTimestamp, update.TransferSentTimestamp)
	merged.WithdrawalBonded = current.WithdrawalBonded || update.WithdrawalBonded
	mergeHash(&merged.WithdrawalBondedTxHash, update.WithdrawalBondedTxHash)
	mergeAddress(&merged.WithdrawalBonder, update.WithdrawalBonder)
	merged.IsTransferSpent = current.IsTransferSpent || update.IsTransferSpent
	mergeHash(&merged.TransferSpentTxHash, update.TransferSpentTxHash)
	merged.WithdrawalBondSettled = current.WithdrawalBondSettled || update.WithdrawalBondSettled
	mergeHash(&merged.TransferRootHash, update.TransferRootHash)
	mergeHash(&merged.TransferRootID, update.TransferRootID)
	merged.IsNotFound = current.IsNotFound || update.IsNotFound
	merged.TimestampedKey = transferKey(&merged)
	return &merged
}

// mergeTransferRoot applies update on top of current following the same rules as mergeTransfer
func mergeTransferRoot(current, update *TransferRoot) *TransferRoot {
	if current == nil {
		merged := *update
		merged.TimestampedKey = transferRootKey(&merged)
		return &merged
	}
	merged := *current
	mergeHash(&merged.TransferRootID, update.TransferRootID)
	mergeBigInt(&merged.TotalAmount, update.TotalAmount)
	mergeUint64(&merged.CommittedAt, update.CommittedAt)
	mergeUint64(&merged.BondedAt, update.BondedAt)
	mergeUint64(&merged.RootSetTimestamp, update.RootSetTimestamp)
	mergeUint64(&merged.SourceChainID, update.SourceChainID)
	mergeUint64(&merged.DestinationChainID, update.DestinationChainID)
	merged.Committed = current.Committed || update.Committed
	mergeHash(&merged.CommitTxHash, update.CommitTxHash)
	mergeUint64(&merged.CommitTxBlockNumber, update.CommitTxBlockNumber)
	merged.Bonded = current.Bonded || update.Bonded
	mergeBigInt(&merged.BondTotalAmount, update.BondTotalAmount)
	mergeHash(&merged.BondTxHash, update.BondTxHash)
	mergeUint64(&merged.BondBlockNumber, update.BondBlockNumber)
	mergeHash(&merged.BondTransferRootID, update.BondTransferRootID)
	mergeAddress(&merged.Bonder, update.Bonder)
	merged.Confirmed = current.Confirmed || update.Confirmed
	mergeHash(&merged.ConfirmTxHash, update.ConfirmTxHash)
	mergeUint64(&merged.ConfirmBlockNumber, update.ConfirmBlockNumber)
	merged.Challenged = current.Challenged || update.Challenged
	mergeHash(&merged.RootSetTxHash, update.RootSetTxHash)
	mergeUint64(&merged.RootSetBlockNumber, update.RootSetBlockNumber)
	mergeHash(&merged.MultipleWithdrawalsSettledTxHash, update.MultipleWithdrawalsSettledTxHash)
	mergeBigInt(&merged.MultipleWithdrawalsSettledTotalAmount, update.MultipleWithdrawalsSettledTotalAmount)
	if update.TransferIDs != nil {
		merged.TransferIDs = update.TransferIDs
	}
	merged.AllSettled = current.AllSettled || update.AllSettled
	merged.ShouldBondTransferRoot = current.ShouldBondTransferRoot || update.ShouldBondTransferRoot
	merged.IsNotFound = current.IsNotFound || update.IsNotFound
	merged.TimestampedKey = transferRootKey(&merged)
	return &merged
}

func mergeBondable(current, update *bool) *bool {
	if current != nil && !*current {
		return current
	}
	if update == nil {
		return current
	}
	v := *update
	return &v
}

func mergeUint64(dst *uint64, v uint64) {
	if v != 0 {
		*dst = v
	}
}

func mergeHash(dst *common.Hash, v common.Hash) {
	if v != (common.Hash{}) {
		*dst = v
	}
}

func mergeAddress(dst *common.Address, v common.Address) {
	if v != (common.Address{}) {
		*dst = v
	}
}

func mergeBigInt(dst **big.Int, v *big.Int) {
	if v != nil {
		*dst = new(big.Int).Set(v)
	}
}

func transferKey(t *Transfer) string {
	if t.TransferSentTimestamp == 0 {
		return ""
	}
	return TransferTimestampedKey(t.TransferSentTimestamp, t.TransferID)
}

func transferRootKey(r *TransferRoot) string {
	if r.CommittedAt == 0 {
		return ""
	}
	return TransferRootTimestampedKey(r.CommittedAt, r.TransferRootHash)
}
