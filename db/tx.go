package db

import (
	"context"
	"database/sql"
)

// Tx wraps sql.Tx. Once the transaction is finished further Commit or Rollback calls are no-ops
type Tx struct {
	*sql.Tx
	finished bool
}

var _ Txer = (*Tx)(nil)

func NewTx(ctx context.Context, db DBer) (*Tx, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{Tx: tx}, nil
}

func (t *Tx) Commit() error {
	if t.finished {
		return nil
	}
	if err := t.Tx.Commit(); err != nil {
		return err
	}
	t.finished = true
	return nil
}

func (t *Tx) Rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.Tx.Rollback()
}
