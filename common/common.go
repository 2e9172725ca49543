package common

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iden3/go-iden3-crypto/keccak256"
)

// BigIntToBytes32 returns the 32 bytes big endian representation of a non negative number
func BigIntToBytes32(n *big.Int) []byte {
	var buf [32]byte
	if n == nil {
		return buf[:]
	}
	return n.FillBytes(buf[:])
}

// TransferRootID computes the id of a transfer root: keccak256(rootHash, uint256(totalAmount))
func TransferRootID(rootHash common.Hash, totalAmount *big.Int) common.Hash {
	return common.BytesToHash(keccak256.Hash(rootHash.Bytes(), BigIntToBytes32(totalAmount)))
}

// BigIntOrZero returns a copy of n, or 0 when n is nil
func BigIntOrZero(n *big.Int) *big.Int {
	if n == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(n)
}
