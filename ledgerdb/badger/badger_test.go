package badger

import (
	"context"
	"fmt"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/ledgerdb/storetest"
	"github.com/ledgerkit/ledgerdb/types"
	testutil "github.com/ledgerkit/ledgerdb/util/test"
)

func setupBadger(t *testing.T, path string, opts ledgerdb.LedgerDbOptions) *LedgerDb {
	logger, _ := test.NewNullLogger()
	db, ch, err := OpenBadger(path, opts, logger)
	require.NoError(t, err)
	<-ch
	return db
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) ledgerdb.LedgerDb {
		db := setupBadger(t, InMemoryPath, ledgerdb.LedgerDbOptions{})
		t.Cleanup(db.Close)
		return db
	})
}

func TestFactory(t *testing.T) {
	db, ch, err := ledgerdb.LedgerDbByName("badger", "", ledgerdb.LedgerDbOptions{InMemory: true}, log.New())
	require.NoError(t, err)
	defer db.Close()
	<-ch

	health, err := db.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, health.DBAvailable)
	assert.Equal(t, true, (*health.Data)["in-memory"])
}

// The insertion order of transactions survives a restart.
func TestReopenKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db := setupBadger(t, dir, ledgerdb.LedgerDbOptions{})
	_, err := db.StoreTransactions(ctx, []types.Transaction{testutil.MakeCreateTxn("t1", testutil.AccountA, "2", nil)})
	require.NoError(t, err)
	_, err = db.StoreTransactions(ctx, []types.Transaction{
		testutil.MakeTransferTxn("t2", "t1", []types.TransactionLink{testutil.Link("t1", 0)}, testutil.MakeOutput("2", testutil.AccountB)),
	})
	require.NoError(t, err)
	db.Close()

	db = setupBadger(t, dir, ledgerdb.LedgerDbOptions{})
	_, err = db.StoreTransactions(ctx, []types.Transaction{
		testutil.MakeTransferTxn("t3", "t1", []types.TransactionLink{testutil.Link("t2", 0)}, testutil.MakeOutput("2", testutil.AccountC)),
	})
	require.NoError(t, err)

	ids, err := ledgerdb.CollectTxids(db.GetTxidsFiltered(ctx, ledgerdb.TxidFilter{AssetID: "t1"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids)

	ids, err = ledgerdb.CollectTxids(db.GetTxidsFiltered(ctx, ledgerdb.TxidFilter{AssetID: "t1", LastTx: true}))
	require.NoError(t, err)
	assert.Equal(t, []string{"t3"}, ids)
	db.Close()
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db := setupBadger(t, dir, ledgerdb.LedgerDbOptions{})
	_, err := db.StoreBlock(ctx, types.Block{Height: 1, Transactions: []string{}})
	require.NoError(t, err)
	db.Close()

	db = setupBadger(t, dir, ledgerdb.LedgerDbOptions{ReadOnly: true})
	defer db.Close()

	block, found, err := db.GetLatestBlock(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(1), block.Height)

	_, err = db.StoreBlock(ctx, types.Block{Height: 2})
	assert.Error(t, err)
	_, err = db.StoreTransactions(ctx, []types.Transaction{testutil.MakeCreateTxn("t1", testutil.AccountA, "1", nil)})
	assert.Error(t, err)
}

func TestDeleteTransactionsDropsIndexes(t *testing.T) {
	ctx := context.Background()
	db := setupBadger(t, InMemoryPath, ledgerdb.LedgerDbOptions{})
	defer db.Close()

	create := testutil.MakeCreateTxn("t1", testutil.AccountA, "1", nil)
	transfer := testutil.MakeTransferTxn("t2", "t1", []types.TransactionLink{testutil.Link("t1", 0)}, testutil.MakeOutput("1", testutil.AccountB))
	_, err := db.StoreTransactions(ctx, []types.Transaction{create, transfer})
	require.NoError(t, err)
	require.NoError(t, db.DeleteTransactions(ctx, []string{"t2"}))

	txns, err := ledgerdb.CollectTransactions(db.GetSpent(ctx, "t1", 0))
	require.NoError(t, err)
	assert.Empty(t, txns)
	txns, err = ledgerdb.CollectTransactions(db.GetOwnedIDs(ctx, testutil.AccountB))
	require.NoError(t, err)
	assert.Empty(t, txns)
	ids, err := ledgerdb.CollectTxids(db.GetTxidsFiltered(ctx, ledgerdb.TxidFilter{AssetID: "t1"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, ids)
}

func TestKeysDoNotCollideOnPrefix(t *testing.T) {
	ctx := context.Background()
	db := setupBadger(t, InMemoryPath, ledgerdb.LedgerDbOptions{})
	defer db.Close()

	_, err := db.StoreUnspentOutputs(ctx,
		types.UnspentOutput{TransactionID: "ab", OutputIndex: 0},
		types.UnspentOutput{TransactionID: "abc", OutputIndex: 0})
	require.NoError(t, err)

	txid := "ab"
	outputs, err := ledgerdb.CollectUnspentOutputs(db.GetUnspentOutputs(ctx, &ledgerdb.UnspentOutputQuery{TransactionID: &txid}))
	require.NoError(t, err)
	assert.Equal(t, []types.UnspentOutput{{TransactionID: "ab", OutputIndex: 0}}, outputs)
}

// Batches past badger's transaction size limit: idempotent inserts are split,
// transactions fail as a whole with ErrBatchTooLarge.
func TestLargeBatches(t *testing.T) {
	ctx := context.Background()
	db := setupBadger(t, InMemoryPath, ledgerdb.LedgerDbOptions{})
	defer db.Close()

	const count = 2000
	payload := strings.Repeat("x", 8*1024)
	assets := make([]types.Asset, count)
	txns := make([]types.Transaction, count)
	for i := range assets {
		id := fmt.Sprintf("t%d", i)
		assets[i] = types.Asset{ID: id, Data: map[string]interface{}{"payload": payload}}
		txns[i] = testutil.MakeCreateTxn(id, testutil.AccountA, "1", map[string]interface{}{"payload": payload})
	}

	res, err := db.StoreAssets(ctx, assets)
	require.NoError(t, err)
	assert.Equal(t, ledgerdb.BulkInsertResult{Inserted: count}, res)
	res, err = db.StoreAssets(ctx, assets)
	require.NoError(t, err)
	assert.Equal(t, ledgerdb.BulkInsertResult{AlreadyExisted: count}, res)

	_, err = db.StoreTransactions(ctx, txns)
	require.ErrorIs(t, err, ledgerdb.ErrBatchTooLarge)
	_, found, err := db.GetTransaction(ctx, "t0")
	require.NoError(t, err)
	assert.False(t, found)

	for i := 0; i < count; i += count / 4 {
		_, err = db.StoreTransactions(ctx, txns[i:i+count/4])
		require.NoError(t, err)
	}
	_, found, err = db.GetTransaction(ctx, fmt.Sprintf("t%d", count-1))
	require.NoError(t, err)
	assert.True(t, found)
}
