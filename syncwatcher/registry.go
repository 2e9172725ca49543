package syncwatcher

import (
	"errors"
	"fmt"
)

var ErrNoSiblingWatcher = errors.New("no sibling watcher")

// Registry gives access to the watchers of the same token on every chain. It is built once
// all the watchers exist and it's never modified afterwards
type Registry struct {
	watchers []*SyncWatcher
	byID     map[uint64]*SyncWatcher
	bySlug   map[string]*SyncWatcher
}

// NewRegistry indexes the watchers and links each of them to the registry
func NewRegistry(watchers ...*SyncWatcher) (*Registry, error) {
	r := &Registry{
		watchers: watchers,
		byID:     make(map[uint64]*SyncWatcher, len(watchers)),
		bySlug:   make(map[string]*SyncWatcher, len(watchers)),
	}
	for _, w := range watchers {
		if _, ok := r.byID[w.chain.ID]; ok {
			return nil, fmt.Errorf("more than one watcher for chain %s", w.chain)
		}
		r.byID[w.chain.ID] = w
		r.bySlug[w.chain.Slug] = w
	}
	for _, w := range watchers {
		w.siblings = r
	}
	return r, nil
}

// ByChainID returns ErrNoSiblingWatcher if no watcher runs on the chain
func (r *Registry) ByChainID(chainID uint64) (*SyncWatcher, error) {
	w, ok := r.byID[chainID]
	if !ok {
		return nil, fmt.Errorf("%w for chain id %d", ErrNoSiblingWatcher, chainID)
	}
	return w, nil
}

// BySlug returns ErrNoSiblingWatcher if no watcher runs on the chain
func (r *Registry) BySlug(slug string) (*SyncWatcher, error) {
	w, ok := r.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("%w for chain %s", ErrNoSiblingWatcher, slug)
	}
	return w, nil
}

// Has returns true if a watcher runs on the chain
func (r *Registry) Has(chainID uint64) bool {
	_, ok := r.byID[chainID]
	return ok
}

// Watchers returns all the watchers
func (r *Registry) Watchers() []*SyncWatcher {
	res := make([]*SyncWatcher, len(r.watchers))
	copy(res, r.watchers)
	return res
}
