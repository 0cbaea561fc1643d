package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/unclebandit/campaign-crm/internal/db"
)

// insertBatchSize bounds the rows of one multi-row INSERT. At five columns a
// batch stays far below sqlite's 32766 and postgres' 65535 bind parameters.
const insertBatchSize = 500

// idBatchSize bounds the ids bound into one IN list.
const idBatchSize = 1000

// batches calls fn with consecutive [start, end) windows of at most size.
func batches(n, size int, fn func(start, end int) error) error {
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

// inTx runs fn in a transaction, rolling back when fn or the commit fails.
func inTx(ctx context.Context, d *db.Database, op string, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logrus.WithError(rbErr).WithField("op", op).Warn("rollback failed")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on
// either supported driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
