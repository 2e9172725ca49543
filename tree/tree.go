package tree

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

const (
	// DefaultHeight is the max depth supported by the default hashes table
	DefaultHeight uint8 = 32
)

var (
	ErrEmptyLeaves   = errors.New("cannot compute the root of an empty list of leaves")
	ErrTooManyLeaves = errors.New("too many leaves for the supported tree height")

	defaultHashes = generateDefaultHashes(DefaultHeight)
)

// Root calculates the root of the transfer tree built with the given transfer ids as leaves.
// Leaves are used as they come (not hashed). On each level pairs of nodes are hashed together;
// when a level has an odd number of nodes the last one is paired with the default hash of
// that level. A single leaf is its own root.
func Root(leaves []common.Hash) (common.Hash, error) {
	if len(leaves) == 0 {
		return common.Hash{}, ErrEmptyLeaves
	}
	if len(leaves) == 1 {
		return leaves[0], nil
	}

	level := make([]common.Hash, len(leaves))
	copy(level, leaves)
	depth := 0
	for len(level) > 1 {
		if depth >= len(defaultHashes) {
			return common.Hash{}, ErrTooManyLeaves
		}
		next := make([]common.Hash, 0, (len(level)+1)/2) //nolint:mnd
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, hash(level[i], level[i+1]))
			} else {
				next = append(next, hash(level[i], defaultHashes[depth]))
			}
		}
		level = next
		depth++
	}
	return level[0], nil
}

// VerifyRoot returns true if the leaves produce the expected root
func VerifyRoot(leaves []common.Hash, expected common.Hash) bool {
	root, err := Root(leaves)
	if err != nil {
		return false
	}
	return root == expected
}

// generateDefaultHashes returns the default hash of each level.
// Level 0 is the hash of an empty (all zeroes) node.
func generateDefaultHashes(height uint8) []common.Hash {
	var zero common.Hash
	defaults := make([]common.Hash, height)
	h := sha3.NewLegacyKeccak256()
	h.Write(zero[:])
	copy(defaults[0][:], h.Sum(nil))
	for i := 1; i < int(height); i++ {
		defaults[i] = hash(defaults[i-1], defaults[i-1])
	}
	return defaults
}

func hash(left, right common.Hash) common.Hash {
	var res common.Hash
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(left[:])
	hasher.Write(right[:])
	copy(res[:], hasher.Sum(nil))
	return res
}
