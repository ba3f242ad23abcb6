package util_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgtest "github.com/ledgerkit/ledgerdb/ledgerdb/postgres/internal/testing"
	"github.com/ledgerkit/ledgerdb/ledgerdb/postgres/internal/util"
)

func TestTxWithRetry(t *testing.T) {
	count := 3
	f := func(tx pgx.Tx) error {
		defer tx.Rollback(context.Background())
		if count == 0 {
			return nil
		}

		count--

		pgerr := pgconn.PgError{
			Code: pgerrcode.SerializationFailure,
		}
		return fmt.Errorf("database error: %w", &pgerr)
	}

	db, _, shutdownFunc := pgtest.SetupPostgres(t)
	defer shutdownFunc()

	err := util.TxWithRetry(context.Background(), db, pgx.TxOptions{}, f, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})
	assert.True(t, util.IsUniqueViolation(unique))
	assert.False(t, util.IsSerializationFailure(unique))
	assert.False(t, util.IsUniqueViolation(errors.New("other")))
	assert.False(t, util.IsUniqueViolation(nil))
}

func TestMetastate(t *testing.T) {
	db, _, shutdownFunc := pgtest.SetupPostgresWithSchema(t)
	defer shutdownFunc()
	ctx := context.Background()

	_, err := util.GetMetastate(ctx, db, nil, "k")
	assert.ErrorIs(t, err, util.ErrorNotInitialized)

	require.NoError(t, util.SetMetastate(ctx, db, nil, "k", `{"version": 1}`))
	require.NoError(t, util.SetMetastate(ctx, db, nil, "k", `{"version": 2}`))

	value, err := util.GetMetastate(ctx, db, nil, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"version": 2}`, value)
}
