package chain

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNoRootChain       = errors.New("no root chain configured")
	ErrMultipleRootChain = errors.New("more than one root chain configured")
	ErrUnknownChain      = errors.New("unknown chain")
)

// Config describes a chain the node is connected to
type Config struct {
	// Slug is the short human readable name of the chain (ethereum, optimism, ...)
	Slug string `mapstructure:"Slug"`
	// ChainID is the EVM chain id
	ChainID uint64 `mapstructure:"ChainID"`
	// URL of the RPC node of the chain
	URL string `mapstructure:"URL"`
	// IsRootChain is true for the chain where transfer roots are bonded and confirmed (L1)
	IsRootChain bool `mapstructure:"IsRootChain"`
	// IsOptimisticRollup is true for chains whose messages to the root chain are delayed
	// by a fraud proof window
	IsOptimisticRollup bool `mapstructure:"IsOptimisticRollup"`
	// SyncBlockChunkSize is the max number of blocks requested on each eth_getLogs call
	SyncBlockChunkSize uint64 `mapstructure:"SyncBlockChunkSize"`
	// NativeToken is the symbol of the token used to pay gas on the chain
	NativeToken string `mapstructure:"NativeToken"`
	// BlockFinality indicates the status of the blocks that will be queried in order to sync
	BlockFinality string `jsonschema:"enum=LatestBlock, enum=SafeBlock, enum=PendingBlock, enum=FinalizedBlock, enum=EarliestBlock" mapstructure:"BlockFinality"` //nolint:lll
}

// Chain is the identity and role of a chain
type Chain struct {
	Slug string
	ID   uint64
	// NativeToken is the gas token symbol, ETH when not configured
	NativeToken string

	isRoot bool
	isORU  bool
}

const defaultNativeToken = "ETH"

// New returns a chain with the given roles
func New(slug string, id uint64, isRoot, isOptimisticRollup bool) Chain {
	return Chain{Slug: slug, ID: id, NativeToken: defaultNativeToken, isRoot: isRoot, isORU: isOptimisticRollup}
}

// IsRootChain returns true for the root ledger (L1)
func (c Chain) IsRootChain() bool {
	return c.isRoot
}

// IsOptimisticRollup returns true if the chain belongs to the optimistic rollup set
func (c Chain) IsOptimisticRollup() bool {
	return c.isORU
}

func (c Chain) String() string {
	return fmt.Sprintf("%s(%d)", c.Slug, c.ID)
}

// Topology is the immutable set of chains known by the node
type Topology struct {
	chains []Chain
	byID   map[uint64]Chain
	bySlug map[string]Chain
	root   Chain
}

// NewTopology validates the configured chains. Exactly one of them must be the root chain.
func NewTopology(cfgs []Config) (*Topology, error) {
	t := &Topology{
		chains: make([]Chain, 0, len(cfgs)),
		byID:   make(map[uint64]Chain, len(cfgs)),
		bySlug: make(map[string]Chain, len(cfgs)),
	}
	roots := 0
	for _, cfg := range cfgs {
		if cfg.Slug == "" || cfg.ChainID == 0 {
			return nil, fmt.Errorf("chain config must have Slug and ChainID: %+v", cfg)
		}
		if _, ok := t.byID[cfg.ChainID]; ok {
			return nil, fmt.Errorf("duplicated chain id %d", cfg.ChainID)
		}
		if _, ok := t.bySlug[cfg.Slug]; ok {
			return nil, fmt.Errorf("duplicated chain slug %s", cfg.Slug)
		}
		c := New(cfg.Slug, cfg.ChainID, cfg.IsRootChain, cfg.IsOptimisticRollup)
		if cfg.NativeToken != "" {
			c.NativeToken = cfg.NativeToken
		}
		if c.IsRootChain() {
			roots++
			t.root = c
		}
		t.chains = append(t.chains, c)
		t.byID[c.ID] = c
		t.bySlug[c.Slug] = c
	}
	switch {
	case roots == 0:
		return nil, ErrNoRootChain
	case roots > 1:
		return nil, ErrMultipleRootChain
	}
	sort.Slice(t.chains, func(i, j int) bool { return t.chains[i].ID < t.chains[j].ID })
	return t, nil
}

// Chains returns all the chains sorted by id
func (t *Topology) Chains() []Chain {
	res := make([]Chain, len(t.chains))
	copy(res, t.chains)
	return res
}

// ByID returns the chain with the given id
func (t *Topology) ByID(id uint64) (Chain, error) {
	c, ok := t.byID[id]
	if !ok {
		return Chain{}, fmt.Errorf("%w: id %d", ErrUnknownChain, id)
	}
	return c, nil
}

// BySlug returns the chain with the given slug
func (t *Topology) BySlug(slug string) (Chain, error) {
	c, ok := t.bySlug[slug]
	if !ok {
		return Chain{}, fmt.Errorf("%w: slug %s", ErrUnknownChain, slug)
	}
	return c, nil
}

// RootChain returns the root chain
func (t *Topology) RootChain() Chain {
	return t.root
}

// IsRootChainID returns true if id belongs to the root chain
func (t *Topology) IsRootChainID(id uint64) bool {
	return id != 0 && id == t.root.ID
}

// IsOptimisticRollupID returns true if id belongs to a chain of the optimistic rollup set
func (t *Topology) IsOptimisticRollupID(id uint64) bool {
	return t.byID[id].IsOptimisticRollup()
}

// OptimisticRollups returns the chains of the optimistic rollup set
func (t *Topology) OptimisticRollups() []Chain {
	res := []Chain{}
	for _, c := range t.chains {
		if c.IsOptimisticRollup() {
			res = append(res, c)
		}
	}
	return res
}
