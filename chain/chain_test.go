package chain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testChains() []Config {
	return []Config{
		{Slug: "optimism", ChainID: 10, IsOptimisticRollup: true},
		{Slug: "ethereum", ChainID: 1, IsRootChain: true},
		{Slug: "gnosis", ChainID: 100, NativeToken: "XDAI"},
		{Slug: "arbitrum", ChainID: 42161, IsOptimisticRollup: true},
	}
}

func TestNewTopology(t *testing.T) {
	topo, err := NewTopology(testChains())
	require.NoError(t, err)

	require.Equal(t, uint64(1), topo.RootChain().ID)
	require.True(t, topo.IsRootChainID(1))
	require.False(t, topo.IsRootChainID(10))
	require.False(t, topo.IsRootChainID(0))
	require.True(t, topo.IsOptimisticRollupID(10))
	require.False(t, topo.IsOptimisticRollupID(100))
	require.False(t, topo.IsOptimisticRollupID(12345))

	ids := []uint64{}
	for _, c := range topo.Chains() {
		ids = append(ids, c.ID)
	}
	require.Equal(t, []uint64{1, 10, 100, 42161}, ids)

	orus := topo.OptimisticRollups()
	require.Len(t, orus, 2)

	c, err := topo.BySlug("gnosis")
	require.NoError(t, err)
	require.Equal(t, uint64(100), c.ID)
	require.False(t, c.IsRootChain())
	require.False(t, c.IsOptimisticRollup())
	require.Equal(t, "XDAI", c.NativeToken)
	require.Equal(t, "ETH", topo.RootChain().NativeToken)

	_, err = topo.ByID(5)
	require.ErrorIs(t, err, ErrUnknownChain)
	_, err = topo.BySlug("nope")
	require.ErrorIs(t, err, ErrUnknownChain)
}

func TestNewTopologyErrors(t *testing.T) {
	testCases := []struct {
		description string
		cfgs        []Config
		expectedErr error
	}{
		{
			description: "no root chain",
			cfgs:        []Config{{Slug: "optimism", ChainID: 10}},
			expectedErr: ErrNoRootChain,
		},
		{
			description: "two root chains",
			cfgs: []Config{
				{Slug: "ethereum", ChainID: 1, IsRootChain: true},
				{Slug: "goerli", ChainID: 5, IsRootChain: true},
			},
			expectedErr: ErrMultipleRootChain,
		},
	}
	for _, tc := range testCases {
		_, err := NewTopology(tc.cfgs)
		require.ErrorIs(t, err, tc.expectedErr, tc.description)
	}

	_, err := NewTopology([]Config{
		{Slug: "ethereum", ChainID: 1, IsRootChain: true},
		{Slug: "ethereum2", ChainID: 1},
	})
	require.Error(t, err)
}

func TestBlockNumberFinality(t *testing.T) {
	for _, f := range []BlockNumberFinality{FinalizedBlock, SafeBlock, PendingBlock, LatestBlock, EarliestBlock, ""} {
		n, err := f.ToBlockNum()
		require.NoError(t, err, string(f))
		require.NotNil(t, n)
	}
	invalid := BlockNumberFinality("foo")
	_, err := invalid.ToBlockNum()
	require.Error(t, err)
}
