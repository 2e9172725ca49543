package bridge

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	bondercommon "github.com/bonder-network/bonder/common"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	methodGetCredit                   = "getCredit"
	methodGetDebitAndAdditionalDebit  = "getDebitAndAdditionalDebit"
	methodPendingAmountForChainID     = "pendingAmountForChainId"
	methodTransferBonds               = "transferBonds"
	methodSettleBondedWithdrawals     = "settleBondedWithdrawals"
	methodBondWithdrawal              = "bondWithdrawal"
	methodBondWithdrawalAndDistribute = "bondWithdrawalAndDistribute"

	methodIDLength = 4
)

var ErrNotSettleTransaction = errors.New("transaction is not a settleBondedWithdrawals call")

// Transaction is the subset of a mined transaction used by the watchers
type Transaction struct {
	Hash        common.Hash
	From        common.Address
	To          *common.Address
	BlockNumber uint64
	Data        []byte
}

// GetTransaction returns nil if the node doesn't know the transaction or it is still pending
func (c *Client) GetTransaction(ctx context.Context, txHash common.Hash) (*Transaction, error) {
	tx, isPending, err := c.ethClient.TransactionByHash(ctx, txHash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting transaction %s: %w", txHash.Hex(), err)
	}
	if isPending {
		return nil, nil
	}
	receipt, err := c.ethClient.TransactionReceipt(ctx, txHash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting receipt of %s: %w", txHash.Hex(), err)
	}
	signer := types.LatestSignerForChainID(new(big.Int).SetUint64(c.chain.ID))
	from, err := types.Sender(signer, tx)
	if err != nil {
		return nil, fmt.Errorf("error recovering sender of %s: %w", txHash.Hex(), err)
	}
	return &Transaction{
		Hash:        txHash,
		From:        from,
		To:          tx.To(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		Data:        tx.Data(),
	}, nil
}

// GetTransactionTimestamp returns the timestamp of the block that includes the transaction,
// 0 if either of them is unknown
func (c *Client) GetTransactionTimestamp(ctx context.Context, txHash common.Hash) (uint64, error) {
	receipt, err := c.ethClient.TransactionReceipt(ctx, txHash)
	if errors.Is(err, ethereum.NotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error getting receipt of %s: %w", txHash.Hex(), err)
	}
	return c.GetBlockTimestamp(ctx, receipt.BlockNumber.Uint64())
}

func (c *Client) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("error packing %s: %w", method, err)
	}
	out, err := c.ethClient.CallContract(ctx, ethereum.CallMsg{To: &c.address, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("error calling %s: %w", method, err)
	}
	res, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("error unpacking %s: %w", method, err)
	}
	return res, nil
}

func (c *Client) callBigInt(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	res, err := c.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	n, ok := res[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s returned %T instead of a number", method, res[0])
	}
	return n, nil
}

// GetBaseAvailableCredit returns the credit of the bonder minus its debit, it can be negative
func (c *Client) GetBaseAvailableCredit(ctx context.Context, bonder common.Address) (*big.Int, error) {
	credit, err := c.callBigInt(ctx, methodGetCredit, bonder)
	if err != nil {
		return nil, err
	}
	debit, err := c.callBigInt(ctx, methodGetDebitAndAdditionalDebit, bonder)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Sub(credit, debit), nil
}

// GetPendingAmountForChainID returns the amount sent towards chainID that has not been committed yet
func (c *Client) GetPendingAmountForChainID(ctx context.Context, chainID uint64) (*big.Int, error) {
	return c.callBigInt(ctx, methodPendingAmountForChainID, new(big.Int).SetUint64(chainID))
}

// IsTransferRootIDBonded checks the bond of a transfer root on the root chain bridge
func (c *Client) IsTransferRootIDBonded(ctx context.Context, transferRootID common.Hash) (bool, error) {
	res, err := c.call(ctx, methodTransferBonds, transferRootID)
	if err != nil {
		return false, err
	}
	const createdAtIndex = 1
	if len(res) <= createdAtIndex {
		return false, fmt.Errorf("%s returned %d values", methodTransferBonds, len(res))
	}
	createdAt, ok := res[createdAtIndex].(*big.Int)
	if !ok {
		return false, fmt.Errorf("%s returned %T as createdAt", methodTransferBonds, res[createdAtIndex])
	}
	return createdAt.Sign() > 0, nil
}

// GetTransferIDsFromSettleEventTransaction decodes the transfer ids and the total amount from the
// calldata of a settleBondedWithdrawals transaction. Returns nil ids if the transaction is unknown
func (c *Client) GetTransferIDsFromSettleEventTransaction(
	ctx context.Context, txHash common.Hash,
) ([]common.Hash, *big.Int, error) {
	tx, err := c.GetTransaction(ctx, txHash)
	if err != nil {
		return nil, nil, err
	}
	if tx == nil {
		return nil, nil, nil
	}
	return c.decodeSettleBondedWithdrawals(tx.Data)
}

func (c *Client) decodeSettleBondedWithdrawals(data []byte) ([]common.Hash, *big.Int, error) {
	if len(data) < methodIDLength {
		return nil, nil, ErrNotSettleTransaction
	}
	method, err := c.abi.MethodById(data[:methodIDLength])
	if err != nil || method.Name != methodSettleBondedWithdrawals {
		return nil, nil, ErrNotSettleTransaction
	}
	args, err := method.Inputs.Unpack(data[methodIDLength:])
	if err != nil {
		return nil, nil, fmt.Errorf("error unpacking %s calldata: %w", methodSettleBondedWithdrawals, err)
	}
	const expectedArgs = 3
	if len(args) != expectedArgs {
		return nil, nil, fmt.Errorf("%s has %d arguments", methodSettleBondedWithdrawals, len(args))
	}
	rawIDs, ok := args[1].([][32]byte)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected transfer ids type %T", args[1])
	}
	totalAmount, ok := args[2].(*big.Int)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected total amount type %T", args[2])
	}
	ids := make([]common.Hash, len(rawIDs))
	for i, id := range rawIDs {
		ids[i] = common.Hash(id)
	}
	return ids, totalAmount, nil
}

// BondWithdrawalGasEstimation is the gas needed to bond a withdrawal on the chain
type BondWithdrawalGasEstimation struct {
	GasLimit uint64
	GasPrice *big.Int
}

// GasCost returns GasLimit * GasPrice
func (e BondWithdrawalGasEstimation) GasCost() *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(e.GasLimit), bondercommon.BigIntOrZero(e.GasPrice))
}

// EstimateBondWithdrawalGas estimates the bond of a dummy withdrawal sent by bonder. On child
// chains attemptSwap selects bondWithdrawalAndDistribute
func (c *Client) EstimateBondWithdrawalGas(
	ctx context.Context, bonder common.Address, attemptSwap bool,
) (BondWithdrawalGasEstimation, error) {
	var (
		data []byte
		err  error
	)
	recipient := common.HexToAddress("0x0000000000000000000000000000000000000001")
	amount := big.NewInt(10) //nolint:mnd
	bonderFee := big.NewInt(1)
	transferNonce := common.HexToHash("0x01")
	if c.chain.IsRootChain() || !attemptSwap {
		data, err = c.abi.Pack(methodBondWithdrawal, recipient, amount, transferNonce, bonderFee)
	} else {
		data, err = c.abi.Pack(methodBondWithdrawalAndDistribute,
			recipient, amount, transferNonce, bonderFee, big.NewInt(0), big.NewInt(0))
	}
	if err != nil {
		return BondWithdrawalGasEstimation{}, err
	}
	gasLimit, err := c.ethClient.EstimateGas(ctx, ethereum.CallMsg{From: bonder, To: &c.address, Data: data})
	if err != nil {
		return BondWithdrawalGasEstimation{}, fmt.Errorf("error estimating bond withdrawal gas: %w", err)
	}
	gasPrice, err := c.ethClient.SuggestGasPrice(ctx)
	if err != nil {
		return BondWithdrawalGasEstimation{}, fmt.Errorf("error getting gas price: %w", err)
	}
	return BondWithdrawalGasEstimation{GasLimit: gasLimit, GasPrice: gasPrice}, nil
}
