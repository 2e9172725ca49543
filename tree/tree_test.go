package tree

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestDefaultHashes(t *testing.T) {
	require.Equal(t,
		common.HexToHash("0x290decd9548b62a8d60345a988386fc84ba6bc95484008f6362f93160ef3e563"),
		defaultHashes[0],
	)
	require.Equal(t, crypto.Keccak256Hash(defaultHashes[0][:], defaultHashes[0][:]), defaultHashes[1])
	require.Len(t, defaultHashes, int(DefaultHeight))
}

func TestRoot(t *testing.T) {
	a := common.HexToHash("0xaa")
	b := common.HexToHash("0xbb")
	c := common.HexToHash("0xcc")
	d := common.HexToHash("0xdd")
	e := common.HexToHash("0xee")
	keccak := func(l, r common.Hash) common.Hash {
		return crypto.Keccak256Hash(l[:], r[:])
	}

	testCases := []struct {
		description string
		leaves      []common.Hash
		expected    common.Hash
	}{
		{
			description: "single leaf is its own root",
			leaves:      []common.Hash{a},
			expected:    a,
		},
		{
			description: "two leaves",
			leaves:      []common.Hash{a, b},
			expected:    keccak(a, b),
		},
		{
			description: "odd leaf is paired with the level 0 default",
			leaves:      []common.Hash{a, b, c},
			expected:    keccak(keccak(a, b), keccak(c, defaultHashes[0])),
		},
		{
			description: "four leaves",
			leaves:      []common.Hash{a, b, c, d},
			expected:    keccak(keccak(a, b), keccak(c, d)),
		},
		{
			description: "odd node on level 1 is paired with the level 1 default",
			leaves:      []common.Hash{a, b, c, d, e},
			expected: keccak(
				keccak(keccak(a, b), keccak(c, d)),
				keccak(keccak(e, defaultHashes[0]), defaultHashes[1]),
			),
		},
	}

	for _, tc := range testCases {
		actual, err := Root(tc.leaves)
		require.NoError(t, err, tc.description)
		require.Equal(t, tc.expected, actual, tc.description)
		require.True(t, VerifyRoot(tc.leaves, tc.expected), tc.description)
	}
}

func TestRootIsOrderSensitive(t *testing.T) {
	a := common.HexToHash("0x01")
	b := common.HexToHash("0x02")
	ab, err := Root([]common.Hash{a, b})
	require.NoError(t, err)
	ba, err := Root([]common.Hash{b, a})
	require.NoError(t, err)
	require.NotEqual(t, ab, ba)
}

func TestRootEmpty(t *testing.T) {
	_, err := Root(nil)
	require.ErrorIs(t, err, ErrEmptyLeaves)
	require.False(t, VerifyRoot(nil, common.Hash{}))
}
