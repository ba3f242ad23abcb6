package postgres

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledgerdb/ledgerdb"
	pgtest "github.com/ledgerkit/ledgerdb/ledgerdb/postgres/internal/testing"
	pgutil "github.com/ledgerkit/ledgerdb/ledgerdb/postgres/internal/util"
	"github.com/ledgerkit/ledgerdb/ledgerdb/storetest"
	"github.com/ledgerkit/ledgerdb/types"
	testutil "github.com/ledgerkit/ledgerdb/util/test"
)

func setupLedgerDbWithConnectionString(t *testing.T, connStr string, opts ledgerdb.LedgerDbOptions) *LedgerDb {
	logger, _ := test.NewNullLogger()
	db, ch, err := OpenPostgres(connStr, opts, logger)
	require.NoError(t, err)
	<-ch
	return db
}

func TestConformance(t *testing.T) {
	pool, connStr, shutdownFunc := pgtest.SetupPostgres(t)
	defer shutdownFunc()

	setupLedgerDbWithConnectionString(t, connStr, ledgerdb.LedgerDbOptions{}).Close()

	storetest.Run(t, func(t *testing.T) ledgerdb.LedgerDb {
		pgtest.TruncateAll(t, pool)
		db := setupLedgerDbWithConnectionString(t, connStr, ledgerdb.LedgerDbOptions{})
		t.Cleanup(db.Close)
		return db
	})
}

func TestInitRecordsSchemaVersion(t *testing.T) {
	pool, connStr, shutdownFunc := pgtest.SetupPostgres(t)
	defer shutdownFunc()

	db := setupLedgerDbWithConnectionString(t, connStr, ledgerdb.LedgerDbOptions{})
	defer db.Close()

	state, err := db.getSchemaState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, state.Version)

	// A second open finds the schema and leaves it alone.
	again := setupLedgerDbWithConnectionString(t, connStr, ledgerdb.LedgerDbOptions{})
	again.Close()

	err = pgutil.SetMetastate(context.Background(), pool, nil, "schema", `{"version":99}`)
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	_, _, err = OpenPostgres(connStr, ledgerdb.LedgerDbOptions{}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version 99")
}

func TestReadOnlySkipsSetup(t *testing.T) {
	_, connStr, shutdownFunc := pgtest.SetupPostgres(t)
	defer shutdownFunc()

	db := setupLedgerDbWithConnectionString(t, connStr, ledgerdb.LedgerDbOptions{ReadOnly: true})
	defer db.Close()

	setup, err := db.isSetup()
	require.NoError(t, err)
	assert.False(t, setup)

	health, err := db.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "schema not initialized", health.Error)
	assert.Equal(t, true, (*health.Data)["read-only-mode"])
}

func TestFactory(t *testing.T) {
	_, connStr, shutdownFunc := pgtest.SetupPostgres(t)
	defer shutdownFunc()

	logger, _ := test.NewNullLogger()
	db, ch, err := ledgerdb.LedgerDbByName("postgres", connStr, ledgerdb.LedgerDbOptions{MaxConn: 2}, logger)
	require.NoError(t, err)
	defer db.Close()
	<-ch

	health, err := db.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, health.DBAvailable)
	assert.Equal(t, 1, (*health.Data)["schema-version"])
}

// Transaction documents are stored whole and keyed by their own id or
// asset.id in the asset_id column.
func TestTransactionColumns(t *testing.T) {
	pool, connStr, shutdownFunc := pgtest.SetupPostgres(t)
	defer shutdownFunc()

	db := setupLedgerDbWithConnectionString(t, connStr, ledgerdb.LedgerDbOptions{})
	defer db.Close()

	ctx := context.Background()
	_, err := db.StoreTransactions(ctx, []types.Transaction{
		testutil.MakeCreateTxn("t1", testutil.AccountA, "10", map[string]interface{}{"kind": "kayak"}),
		testutil.MakeTransferTxn("t2", "t1", []types.TransactionLink{testutil.Link("t1", 0)}, testutil.MakeOutput("10", testutil.AccountB)),
	})
	require.NoError(t, err)

	var assetID, operation string
	err = pool.QueryRow(ctx, `SELECT asset_id, operation FROM transactions WHERE id = 't2'`).Scan(&assetID, &operation)
	require.NoError(t, err)
	assert.Equal(t, "t1", assetID)
	assert.Equal(t, "TRANSFER", operation)

	var count int
	err = pool.QueryRow(ctx, `SELECT count(*) FROM transactions WHERE asset_id = 't1'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
