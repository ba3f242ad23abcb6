package util

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	log "github.com/sirupsen/logrus"
)

// ErrorNotInitialized is returned by GetMetastate when the key is not set.
var ErrorNotInitialized = errors.New("metastate key not initialized")

// TxWithRetry is a helper function that retries the function `f` in case the database
// transaction in it fails due to a serialization error. `f` is provided
// a transaction created using `opts`. `f` takes ownership of the
// transaction and must either call pgx.Tx.Rollback() or pgx.Tx.Commit(). In the second
// case, `f` must return an error which contains the error returned by pgx.Tx.Commit().
// The easiest way is to just return the result of pgx.Tx.Commit().
func TxWithRetry(ctx context.Context, db *pgxpool.Pool, opts pgx.TxOptions, f func(pgx.Tx) error, log *log.Logger) error {
	count := 0
	for {
		tx, err := db.BeginTx(ctx, opts)
		if err != nil {
			return err
		}

		err = f(tx)

		// If not serialization error.
		if !IsSerializationFailure(err) {
			if (count > 0) && (log != nil) {
				log.Printf("transaction was retried %d times", count)
			}
			return err
		}

		count++
		if log != nil {
			log.Printf("retrying transaction, count: %d", count)
		}
	}
}

func hasCode(err error, code string) bool {
	var pgerr *pgconn.PgError
	return errors.As(err, &pgerr) && pgerr.Code == code
}

// IsSerializationFailure reports whether err carries a serialization failure.
func IsSerializationFailure(err error) bool {
	return hasCode(err, pgerrcode.SerializationFailure)
}

// IsUniqueViolation reports whether err carries a unique key violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, pgerrcode.UniqueViolation)
}

// GetMetastate returns `ErrorNotInitialized` if uninitialized.
// If `tx` is nil, it uses a normal query.
func GetMetastate(ctx context.Context, db *pgxpool.Pool, tx pgx.Tx, key string) (string, error) {
	query := `SELECT v FROM metastate WHERE k = $1`

	var row pgx.Row
	if tx == nil {
		row = db.QueryRow(ctx, query, key)
	} else {
		row = tx.QueryRow(ctx, query, key)
	}

	var value string
	err := row.Scan(&value)
	if err == pgx.ErrNoRows {
		return "", ErrorNotInitialized
	}
	if err != nil {
		return "", fmt.Errorf("getMetastate() err: %w", err)
	}

	return value, nil
}

// SetMetastate sets metastate. If `tx` is nil, it uses a normal query.
func SetMetastate(ctx context.Context, db *pgxpool.Pool, tx pgx.Tx, key, jsonStrValue string) error {
	const setMetastateUpsert = `INSERT INTO metastate (k, v) VALUES ($1, $2) ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v`

	var err error
	if tx == nil {
		_, err = db.Exec(ctx, setMetastateUpsert, key, jsonStrValue)
	} else {
		_, err = tx.Exec(ctx, setMetastateUpsert, key, jsonStrValue)
	}
	if err != nil {
		return fmt.Errorf("setMetastate() err: %w", err)
	}
	return nil
}
