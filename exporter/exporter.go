package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/bonder-network/bonder/config/types"
	"github.com/bonder-network/bonder/log"
)

// Amounts maps a destination chain slug to an amount
type Amounts map[string]*big.Int

// TokenSnapshot is the liquidity of a token, keyed by source chain slug
type TokenSnapshot struct {
	AvailableCredit             map[string]Amounts `json:"availableCredit"`
	PendingAmounts              map[string]Amounts `json:"pendingAmounts"`
	UnbondedTransferRootAmounts map[string]Amounts `json:"unbondedTransferRootAmounts"`
}

// NewTokenSnapshot returns an empty snapshot
func NewTokenSnapshot() TokenSnapshot {
	return TokenSnapshot{
		AvailableCredit:             map[string]Amounts{},
		PendingAmounts:              map[string]Amounts{},
		UnbondedTransferRootAmounts: map[string]Amounts{},
	}
}

// Config of the exporter
type Config struct {
	// Enabled turns on the export mode of the watchers
	Enabled bool `mapstructure:"Enabled"`
	// MinPublishInterval is the minimum time between two publications
	MinPublishInterval types.Duration `mapstructure:"MinPublishInterval"`
	// FilePath is the file where the snapshot is written. Empty disables the file target
	FilePath string `mapstructure:"FilePath"`
	// RoutingKey used when publishing the snapshot to the broker. Empty disables the broker target
	RoutingKey string `mapstructure:"RoutingKey"`
}

// Publisher delivers a serialized snapshot
type Publisher interface {
	Publish(ctx context.Context, data []byte) error
}

// Exporter accumulates the snapshots of every token and publishes them all together,
// at most once per MinPublishInterval
type Exporter struct {
	minInterval time.Duration
	publishers  []Publisher
	log         *log.Logger
	now         func() time.Time

	mu            sync.Mutex
	data          map[string]TokenSnapshot
	lastPublished time.Time
}

// New returns an exporter publishing to every publisher
func New(cfg Config, publishers ...Publisher) *Exporter {
	return &Exporter{
		minInterval: cfg.MinPublishInterval.Duration,
		publishers:  publishers,
		log:         log.WithFields("module", "exporter"),
		now:         time.Now,
		data:        map[string]TokenSnapshot{},
	}
}

// Export stores the snapshot of token and publishes the accumulated data if the last
// publication is older than the min interval
func (e *Exporter) Export(ctx context.Context, token string, snapshot TokenSnapshot) error {
	e.mu.Lock()
	e.data[token] = snapshot
	now := e.now()
	if !e.lastPublished.IsZero() && now.Sub(e.lastPublished) < e.minInterval {
		e.mu.Unlock()
		return nil
	}
	e.lastPublished = now
	payload, err := json.Marshal(e.data)
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("error encoding snapshot: %w", err)
	}

	for _, p := range e.publishers {
		if err := p.Publish(ctx, payload); err != nil {
			return err
		}
	}
	e.log.Debugf("published liquidity snapshot of %d bytes", len(payload))
	return nil
}

// Data returns the last snapshot exported for token
func (e *Exporter) Data(token string) (TokenSnapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.data[token]
	return s, ok
}
