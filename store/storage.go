package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/bonder-network/bonder/db"
	"github.com/bonder-network/bonder/log"
	"github.com/bonder-network/bonder/store/migrations"
	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

const (
	transferTable     = "transfer"
	transferRootTable = "transfer_root"
	gasCostTable      = "gas_cost"

	errWhileRollbackFormat = "error while rolling back tx: %w"
)

// Storage persists transfers, transfer roots, sync cursors and gas cost estimations of a token
type Storage interface {
	// UpsertTransfer merges the known fields of t into the stored transfer
	UpsertTransfer(ctx context.Context, t *Transfer) error
	// GetTransfer returns db.ErrNotFound if the transfer is unknown
	GetTransfer(ctx context.Context, transferID common.Hash) (*Transfer, error)
	// GetIncompleteTransfers returns the transfers sent from sourceChainID that miss derived data
	GetIncompleteTransfers(ctx context.Context, sourceChainID uint64) ([]*Transfer, error)
	// GetTransfersByTimeRange returns the transfers sent in [from, to] (unix seconds)
	GetTransfersByTimeRange(ctx context.Context, from, to uint64) ([]*Transfer, error)

	// UpsertTransferRoot merges the known fields of r into the stored transfer root
	UpsertTransferRoot(ctx context.Context, r *TransferRoot) error
	// GetTransferRoot returns db.ErrNotFound if the transfer root is unknown
	GetTransferRoot(ctx context.Context, rootHash common.Hash) (*TransferRoot, error)
	// GetIncompleteTransferRoots returns the roots committed on sourceChainID that miss derived data
	GetIncompleteTransferRoots(ctx context.Context, sourceChainID uint64) ([]*TransferRoot, error)
	// GetUnbondedTransferRoots returns the committed roots of the route that are neither bonded nor confirmed
	GetUnbondedTransferRoots(ctx context.Context, sourceChainID, destinationChainID uint64) ([]*TransferRoot, error)
	// GetTransferRootsByTimeRange returns the roots committed in [from, to] (unix seconds)
	GetTransferRootsByTimeRange(ctx context.Context, from, to uint64) ([]*TransferRoot, error)

	// GetLastSyncedBlock returns 0 when nothing has been synced for the key
	GetLastSyncedBlock(ctx context.Context, cacheKey string) (uint64, error)
	// SetLastSyncedBlock stores the last synced block of the key
	SetLastSyncedBlock(ctx context.Context, cacheKey string, blockNum uint64) error

	// AddGasCost stores a gas cost estimation
	AddGasCost(ctx context.Context, gasCost *GasCost) error
	// GetLatestGasCost returns db.ErrNotFound if no estimation has been stored for the chain
	GetLatestGasCost(ctx context.Context, chain, token string, attemptSwap bool) (*GasCost, error)
}

var _ Storage = (*SQLStorage)(nil)

// SQLStorage implements Storage on top of SQLite
type SQLStorage struct {
	logger *log.Logger
	db     *sql.DB
	// serializes read-modify-write cycles of the upserts
	mu sync.Mutex
}

// NewSQLStorage runs the migrations and returns the storage
func NewSQLStorage(logger *log.Logger, dbPath string) (*SQLStorage, error) {
	database, err := db.NewSQLiteDB(dbPath)
	if err != nil {
		return nil, err
	}
	if err := migrations.RunMigrations(logger, database); err != nil {
		return nil, err
	}

	return &SQLStorage{
		db:     database,
		logger: logger,
	}, nil
}

// UpsertTransfer merges the known fields of t into the stored transfer
func (s *SQLStorage) UpsertTransfer(ctx context.Context, t *Transfer) error {
	if t.TransferID == (common.Hash{}) {
		return errors.New("transfer id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := db.NewTx(ctx, s.db)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if errRllbck := tx.Rollback(); errRllbck != nil {
				s.logger.Errorf(errWhileRollbackFormat, errRllbck)
			}
		}
	}()

	current, err := getTransfer(tx, t.TransferID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return err
	}
	merged := mergeTransfer(current, t)
	if err = replace(tx, transferTable, merged); err != nil {
		return fmt.Errorf("error upserting transfer %s: %w", t.TransferID.Hex(), err)
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

// GetTransfer returns db.ErrNotFound if the transfer is unknown
func (s *SQLStorage) GetTransfer(ctx context.Context, transferID common.Hash) (*Transfer, error) {
	return getTransfer(s.db, transferID)
}

func getTransfer(q meddler.DB, transferID common.Hash) (*Transfer, error) {
	t := &Transfer{}
	err := meddler.QueryRow(q, t, `SELECT * FROM transfer WHERE transfer_id = $1;`, transferID.Hex())
	if err != nil {
		return nil, db.ReturnErrNotFound(err)
	}
	return t, nil
}

// GetIncompleteTransfers returns the transfers sent from sourceChainID that miss derived data
func (s *SQLStorage) GetIncompleteTransfers(ctx context.Context, sourceChainID uint64) ([]*Transfer, error) {
	transfers := []*Transfer{}
	err := meddler.QueryAll(s.db, &transfers, `
		SELECT * FROM transfer
		WHERE is_not_found = FALSE
		AND source_chain_id = $1
		AND (
			(transfer_sent_block_number > 0 AND transfer_sent_timestamp = 0)
			OR (withdrawal_bonded_tx_hash IS NOT NULL AND withdrawal_bonder IS NULL)
		)
		ORDER BY transfer_sent_block_number ASC, transfer_sent_index ASC;
	`, sourceChainID)
	return transfers, err
}

// GetTransfersByTimeRange returns the transfers sent in [from, to] (unix seconds)
func (s *SQLStorage) GetTransfersByTimeRange(ctx context.Context, from, to uint64) ([]*Transfer, error) {
	lower, upper := timestampedKeyBounds(transferKeyPrefix, from, to)
	transfers := []*Transfer{}
	err := meddler.QueryAll(s.db, &transfers, `
		SELECT * FROM transfer
		WHERE timestamped_key >= $1 AND timestamped_key <= $2
		ORDER BY timestamped_key ASC;
	`, lower, upper)
	return transfers, err
}

// UpsertTransferRoot merges the known fields of r into the stored transfer root
func (s *SQLStorage) UpsertTransferRoot(ctx context.Context, r *TransferRoot) error {
	if r.TransferRootHash == (common.Hash{}) {
		return errors.New("transfer root hash is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := db.NewTx(ctx, s.db)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if errRllbck := tx.Rollback(); errRllbck != nil {
				s.logger.Errorf(errWhileRollbackFormat, errRllbck)
			}
		}
	}()

	current, err := getTransferRoot(tx, r.TransferRootHash)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return err
	}
	merged := mergeTransferRoot(current, r)
	if err = replace(tx, transferRootTable, merged); err != nil {
		return fmt.Errorf("error upserting transfer root %s: %w", r.TransferRootHash.Hex(), err)
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

// GetTransferRoot returns db.ErrNotFound if the transfer root is unknown
func (s *SQLStorage) GetTransferRoot(ctx context.Context, rootHash common.Hash) (*TransferRoot, error) {
	return getTransferRoot(s.db, rootHash)
}

func getTransferRoot(q meddler.DB, rootHash common.Hash) (*TransferRoot, error) {
	r := &TransferRoot{}
	err := meddler.QueryRow(q, r, `SELECT * FROM transfer_root WHERE transfer_root_hash = $1;`, rootHash.Hex())
	if err != nil {
		return nil, db.ReturnErrNotFound(err)
	}
	return r, nil
}

// GetIncompleteTransferRoots returns the roots committed on sourceChainID that miss derived data
func (s *SQLStorage) GetIncompleteTransferRoots(ctx context.Context, sourceChainID uint64) ([]*TransferRoot, error) {
	roots := []*TransferRoot{}
	err := meddler.QueryAll(s.db, &roots, `
		SELECT * FROM transfer_root
		WHERE is_not_found = FALSE
		AND source_chain_id = $1
		AND (
			(commit_tx_hash IS NOT NULL AND committed_at = 0)
			OR (bond_tx_hash IS NOT NULL AND (bonder IS NULL OR bonded_at = 0))
			OR (root_set_block_number > 0 AND root_set_timestamp = 0)
			OR (
				source_chain_id > 0 AND destination_chain_id > 0 AND commit_tx_block_number > 0
				AND total_amount IS NOT NULL AND (transfer_ids IS NULL OR transfer_ids = '')
			)
			OR (
				multiple_withdrawals_settled_tx_hash IS NOT NULL
				AND multiple_withdrawals_settled_total_amount IS NOT NULL
				AND (transfer_ids IS NULL OR transfer_ids = '')
			)
		)
		ORDER BY commit_tx_block_number ASC;
	`, sourceChainID)
	return roots, err
}

// GetUnbondedTransferRoots returns the committed roots of the route that are neither bonded nor confirmed
func (s *SQLStorage) GetUnbondedTransferRoots(
	ctx context.Context, sourceChainID, destinationChainID uint64,
) ([]*TransferRoot, error) {
	roots := []*TransferRoot{}
	err := meddler.QueryAll(s.db, &roots, `
		SELECT * FROM transfer_root
		WHERE bonded = FALSE
		AND bonded_at = 0
		AND confirmed = FALSE
		AND transfer_root_id IS NOT NULL
		AND committed = TRUE
		AND committed_at > 0
		AND is_not_found = FALSE
		AND source_chain_id = $1
		AND destination_chain_id = $2
		ORDER BY committed_at ASC;
	`, sourceChainID, destinationChainID)
	return roots, err
}

// GetTransferRootsByTimeRange returns the roots committed in [from, to] (unix seconds)
func (s *SQLStorage) GetTransferRootsByTimeRange(ctx context.Context, from, to uint64) ([]*TransferRoot, error) {
	lower, upper := timestampedKeyBounds(transferRootKeyPrefix, from, to)
	roots := []*TransferRoot{}
	err := meddler.QueryAll(s.db, &roots, `
		SELECT * FROM transfer_root
		WHERE timestamped_key >= $1 AND timestamped_key <= $2
		ORDER BY timestamped_key ASC;
	`, lower, upper)
	return roots, err
}

// GetLastSyncedBlock returns 0 when nothing has been synced for the key
func (s *SQLStorage) GetLastSyncedBlock(ctx context.Context, cacheKey string) (uint64, error) {
	state := &syncState{}
	err := meddler.QueryRow(s.db, state, `SELECT * FROM sync_state WHERE cache_key = $1;`, cacheKey)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return state.LastSyncedBlock, nil
}

// SetLastSyncedBlock stores the last synced block of the key
func (s *SQLStorage) SetLastSyncedBlock(ctx context.Context, cacheKey string, blockNum uint64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_state (cache_key, last_synced_block) VALUES ($1, $2)
		ON CONFLICT (cache_key) DO UPDATE SET last_synced_block = excluded.last_synced_block;
	`, cacheKey, blockNum)
	return err
}

// AddGasCost stores a gas cost estimation
func (s *SQLStorage) AddGasCost(ctx context.Context, gasCost *GasCost) error {
	if err := meddler.Insert(s.db, gasCostTable, gasCost); err != nil {
		return fmt.Errorf("error inserting gas cost: %w", err)
	}
	return nil
}

// GetLatestGasCost returns db.ErrNotFound if no estimation has been stored for the chain
func (s *SQLStorage) GetLatestGasCost(ctx context.Context, chain, token string, attemptSwap bool) (*GasCost, error) {
	gasCost := &GasCost{}
	err := meddler.QueryRow(s.db, gasCost, `
		SELECT * FROM gas_cost
		WHERE chain = $1 AND token = $2 AND attempt_swap = $3
		ORDER BY timestamp DESC, id DESC
		LIMIT 1;
	`, chain, token, attemptSwap)
	if err != nil {
		return nil, db.ReturnErrNotFound(err)
	}
	return gasCost, nil
}

// replace writes the full row of a record keyed by a non integer primary key
func replace(q meddler.DB, table string, src interface{}) error {
	columns, err := meddler.Default.ColumnsQuoted(src, true)
	if err != nil {
		return err
	}
	placeholders, err := meddler.Default.PlaceholdersString(src, true)
	if err != nil {
		return err
	}
	values, err := meddler.Default.Values(src, true)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s);", table, columns, placeholders)
	_, err = q.Exec(query, values...)
	return err
}

// Close closes the underlying database
func (s *SQLStorage) Close() error {
	return s.db.Close()
}
