// Package storetest is a conformance suite every LedgerDb backend runs from
// its own tests.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/types"
	"github.com/ledgerkit/ledgerdb/util/test"
)

// OpenFunc returns an empty, ready to use store. Cleanup is registered on t.
type OpenFunc func(t *testing.T) ledgerdb.LedgerDb

// Run runs every conformance test against stores returned by open.
func Run(t *testing.T, open OpenFunc) {
	tests := []struct {
		name string
		fn   func(t *testing.T, db ledgerdb.LedgerDb)
	}{
		{"StoreAssetIdempotent", testStoreAssetIdempotent},
		{"StoreAssetsBulk", testStoreAssetsBulk},
		{"StoreTransactionsDuplicate", testStoreTransactionsDuplicate},
		{"StoreTransactionsAllOrNothing", testStoreTransactionsAllOrNothing},
		{"GetTransaction", testGetTransaction},
		{"EmptyIDLists", testEmptyIDLists},
		{"StoreMetadatas", testStoreMetadatas},
		{"GetSpent", testGetSpent},
		{"GetTxidsFiltered", testGetTxidsFiltered},
		{"GetOwnedIDs", testGetOwnedIDs},
		{"GetSpendingTransactions", testGetSpendingTransactions},
		{"GetAssetTokensForPublicKey", testGetAssetTokensForPublicKey},
		{"GetBlockWithTransaction", testGetBlockWithTransaction},
		{"DeleteTransactions", testDeleteTransactions},
		{"UnspentOutputLifecycle", testUnspentOutputLifecycle},
		{"BatchUnspentOutputDeletion", testBatchUnspentOutputDeletion},
		{"UnspentOutputQuery", testUnspentOutputQuery},
		{"LatestBlock", testLatestBlock},
		{"StoreBlockDuplicate", testStoreBlockDuplicate},
		{"ValidatorSetAsOfHeight", testValidatorSetAsOfHeight},
		{"ValidatorSetUpsert", testValidatorSetUpsert},
		{"Elections", testElections},
		{"ABCIChains", testABCIChains},
		{"PreCommitUpsert", testPreCommitUpsert},
		{"TextSearchScore", testTextSearchScore},
		{"TextSearchOptions", testTextSearchOptions},
		{"TextSearchStopwords", testTextSearchStopwords},
		{"TextSearchErrors", testTextSearchErrors},
		{"Health", testHealth},
		{"CancelledContext", testCancelledContext},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, open(t))
		})
	}
}

func storeTxns(t *testing.T, db ledgerdb.LedgerDb, txns ...types.Transaction) {
	res, err := db.StoreTransactions(context.Background(), txns)
	require.NoError(t, err)
	require.Equal(t, len(txns), res.Inserted)
}

func txnIDs(t *testing.T, rows <-chan ledgerdb.TxnRow) []string {
	txns, err := ledgerdb.CollectTransactions(rows)
	require.NoError(t, err)
	ids := make([]string, 0, len(txns))
	for _, txn := range txns {
		ids = append(ids, txn.ID)
	}
	return ids
}

// assetChain stores a CREATE t1 owned by A and two TRANSFERs: t2 spends t1
// into outputs for B and C, t3 spends t2:0 into an output for D.
func assetChain(t *testing.T, db ledgerdb.LedgerDb) (create, transfer1, transfer2 types.Transaction) {
	create = test.MakeCreateTxn("t1", test.AccountA, "10", nil)
	transfer1 = test.MakeTransferTxn("t2", "t1", []types.TransactionLink{test.Link("t1", 0)},
		test.MakeOutput("4", test.AccountB), test.MakeOutput("6", test.AccountC))
	transfer2 = test.MakeTransferTxn("t3", "t1", []types.TransactionLink{test.Link("t2", 0)},
		test.MakeOutput("4", test.AccountD))
	storeTxns(t, db, create)
	storeTxns(t, db, transfer1)
	storeTxns(t, db, transfer2)
	return
}

func testStoreAssetIdempotent(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	asset := types.Asset{ID: "a1", Data: map[string]interface{}{"name": "bicycle"}}

	res, err := db.StoreAsset(ctx, asset)
	require.NoError(t, err)
	assert.Equal(t, ledgerdb.Inserted, res)

	res, err = db.StoreAsset(ctx, types.Asset{ID: "a1", Data: map[string]interface{}{"name": "replaced"}})
	require.NoError(t, err)
	assert.Equal(t, ledgerdb.AlreadyExists, res)

	assets, err := ledgerdb.CollectAssets(db.GetAssets(ctx, []string{"a1"}))
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, asset, assets[0])

	data, found, err := db.GetAsset(ctx, "a1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, asset.Data, data)
	_, hasID := data["id"]
	assert.False(t, hasID)

	_, found, err = db.GetAsset(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func testStoreAssetsBulk(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	_, err := db.StoreAsset(ctx, types.Asset{ID: "a2", Data: map[string]interface{}{"n": "2"}})
	require.NoError(t, err)

	res, err := db.StoreAssets(ctx, []types.Asset{
		{ID: "a1", Data: map[string]interface{}{"n": "1"}},
		{ID: "a2", Data: map[string]interface{}{"n": "2"}},
		{ID: "a3", Data: map[string]interface{}{"n": "3"}},
	})
	require.NoError(t, err)
	assert.Equal(t, ledgerdb.BulkInsertResult{Inserted: 2, AlreadyExisted: 1}, res)

	assets, err := ledgerdb.CollectAssets(db.GetAssets(ctx, []string{"a1", "a2", "a3", "a4"}))
	require.NoError(t, err)
	assert.Len(t, assets, 3)

	res, err = db.StoreAssets(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, ledgerdb.BulkInsertResult{}, res)
}

func testStoreTransactionsDuplicate(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	txn := test.MakeCreateTxn("t1", test.AccountA, "1", nil)
	storeTxns(t, db, txn)

	_, err := db.StoreTransactions(ctx, []types.Transaction{txn})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledgerdb.ErrDuplicateKey), "unexpected error: %v", err)

	assert.Equal(t, []string{"t1"}, txnIDs(t, db.GetTransactions(ctx, []string{"t1"})))
}

func testStoreTransactionsAllOrNothing(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	storeTxns(t, db, test.MakeCreateTxn("t1", test.AccountA, "1", nil))

	_, err := db.StoreTransactions(ctx, []types.Transaction{
		test.MakeCreateTxn("t2", test.AccountA, "1", nil),
		test.MakeCreateTxn("t1", test.AccountA, "1", nil),
	})
	assert.ErrorIs(t, err, ledgerdb.ErrDuplicateKey)

	_, found, err := db.GetTransaction(ctx, "t2")
	require.NoError(t, err)
	assert.False(t, found)

	res, err := db.StoreTransactions(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, ledgerdb.BulkInsertResult{}, res)
}

func testGetTransaction(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	txn := test.MakeCreateTxn("t1", test.AccountA, "1", map[string]interface{}{"name": "bicycle"})
	txn.Metadata = map[string]interface{}{"note": "first"}
	storeTxns(t, db, txn)

	got, found, err := db.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, txn, got)

	_, found, err = db.GetTransaction(ctx, "t2")
	require.NoError(t, err)
	assert.False(t, found)
}

func testEmptyIDLists(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	storeTxns(t, db, test.MakeCreateTxn("t1", test.AccountA, "1", nil))

	assert.Empty(t, txnIDs(t, db.GetTransactions(ctx, []string{})))
	assert.Empty(t, txnIDs(t, db.GetTransactions(ctx, nil)))
	assert.Empty(t, txnIDs(t, db.GetSpendingTransactions(ctx, nil)))

	metadata, err := ledgerdb.CollectMetadata(db.GetMetadata(ctx, nil))
	require.NoError(t, err)
	assert.Empty(t, metadata)

	assets, err := ledgerdb.CollectAssets(db.GetAssets(ctx, []string{}))
	require.NoError(t, err)
	assert.Empty(t, assets)

	require.NoError(t, db.DeleteTransactions(ctx, nil))
	assert.Equal(t, []string{"t1"}, txnIDs(t, db.GetTransactions(ctx, []string{"t1"})))
}

func testStoreMetadatas(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	first := types.Metadata{ID: "t1", Metadata: map[string]interface{}{"note": "first"}}

	res, err := db.StoreMetadatas(ctx, []types.Metadata{first})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)

	res, err = db.StoreMetadatas(ctx, []types.Metadata{
		{ID: "t1", Metadata: map[string]interface{}{"note": "replaced"}},
		{ID: "t2", Metadata: map[string]interface{}{"note": "second"}},
	})
	require.NoError(t, err)
	assert.Equal(t, ledgerdb.BulkInsertResult{Inserted: 1, AlreadyExisted: 1}, res)

	metadata, err := ledgerdb.CollectMetadata(db.GetMetadata(ctx, []string{"t1", "t2", "t3"}))
	require.NoError(t, err)
	assert.ElementsMatch(t, []types.Metadata{first, {ID: "t2", Metadata: map[string]interface{}{"note": "second"}}}, metadata)
}

func testGetSpent(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	assetChain(t, db)

	assert.Equal(t, []string{"t2"}, txnIDs(t, db.GetSpent(ctx, "t1", 0)))
	assert.Equal(t, []string{"t3"}, txnIDs(t, db.GetSpent(ctx, "t2", 0)))
	assert.Empty(t, txnIDs(t, db.GetSpent(ctx, "t2", 1)))
	assert.Empty(t, txnIDs(t, db.GetSpent(ctx, "t3", 0)))

	// A second spender is reported, not hidden.
	storeTxns(t, db, test.MakeTransferTxn("t4", "t1", []types.TransactionLink{test.Link("t1", 0)},
		test.MakeOutput("10", test.AccountD)))
	assert.ElementsMatch(t, []string{"t2", "t4"}, txnIDs(t, db.GetSpent(ctx, "t1", 0)))
}

func testGetTxidsFiltered(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	assetChain(t, db)
	storeTxns(t, db, test.MakeCreateTxn("other", test.AccountA, "1", nil))

	tests := []struct {
		name   string
		filter ledgerdb.TxidFilter
		ids    []string
	}{
		{"all", ledgerdb.TxidFilter{AssetID: "t1"}, []string{"t1", "t2", "t3"}},
		{"create", ledgerdb.TxidFilter{AssetID: "t1", Operation: types.OperationCreate}, []string{"t1"}},
		{"transfer", ledgerdb.TxidFilter{AssetID: "t1", Operation: types.OperationTransfer}, []string{"t2", "t3"}},
		{"last", ledgerdb.TxidFilter{AssetID: "t1", LastTx: true}, []string{"t3"}},
		{"last create", ledgerdb.TxidFilter{AssetID: "t1", Operation: types.OperationCreate, LastTx: true}, []string{"t1"}},
		{"unknown asset", ledgerdb.TxidFilter{AssetID: "nope"}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ids, err := ledgerdb.CollectTxids(db.GetTxidsFiltered(ctx, tc.filter))
			require.NoError(t, err)
			assert.Equal(t, tc.ids, ids)
		})
	}
}

func testGetOwnedIDs(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	assetChain(t, db)
	storeTxns(t, db, test.MakeTransferTxn("t4", "t1", []types.TransactionLink{test.Link("t2", 1)},
		test.MakeOutput("6", test.AccountC, test.AccountD)))

	assert.Equal(t, []string{"t1"}, txnIDs(t, db.GetOwnedIDs(ctx, test.AccountA)))
	assert.ElementsMatch(t, []string{"t2", "t4"}, txnIDs(t, db.GetOwnedIDs(ctx, test.AccountC)))
	assert.ElementsMatch(t, []string{"t3", "t4"}, txnIDs(t, db.GetOwnedIDs(ctx, test.AccountD)))
	assert.Empty(t, txnIDs(t, db.GetOwnedIDs(ctx, "nobody")))
}

func testGetSpendingTransactions(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	assetChain(t, db)

	ids := txnIDs(t, db.GetSpendingTransactions(ctx, []types.TransactionLink{
		test.Link("t1", 0), test.Link("t2", 0), test.Link("t2", 1),
	}))
	assert.ElementsMatch(t, []string{"t2", "t3"}, ids)

	// Pairs match exactly, not field by field across links.
	assert.Empty(t, txnIDs(t, db.GetSpendingTransactions(ctx, []types.TransactionLink{test.Link("t1", 1)})))
}

func testGetAssetTokensForPublicKey(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	assetChain(t, db)
	storeTxns(t, db, test.MakeTransferTxn("t4", "t1", []types.TransactionLink{test.Link("t2", 1)},
		test.MakeOutput("6", test.AccountB, test.AccountC)))

	assert.Equal(t, []string{"t2"}, txnIDs(t, db.GetAssetTokensForPublicKey(ctx, "t1", test.AccountB)))
	assert.Equal(t, []string{"t3"}, txnIDs(t, db.GetAssetTokensForPublicKey(ctx, "t1", test.AccountD)))
	assert.Empty(t, txnIDs(t, db.GetAssetTokensForPublicKey(ctx, "other", test.AccountB)))
}

func testGetBlockWithTransaction(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	for _, b := range []types.Block{
		{Height: 1, AppHash: "h1", Transactions: []string{"t1"}},
		{Height: 2, AppHash: "h2", Transactions: []string{"t2", "t3"}},
	} {
		_, err := db.StoreBlock(ctx, b)
		require.NoError(t, err)
	}

	heights, err := ledgerdb.CollectBlockRefs(db.GetBlockWithTransaction(ctx, "t3"))
	require.NoError(t, err)
	assert.Equal(t, []uint64{2}, heights)

	heights, err = ledgerdb.CollectBlockRefs(db.GetBlockWithTransaction(ctx, "t9"))
	require.NoError(t, err)
	assert.Empty(t, heights)
}

func testDeleteTransactions(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	storeTxns(t, db,
		test.MakeCreateTxn("t1", test.AccountA, "1", nil),
		test.MakeCreateTxn("t2", test.AccountA, "1", nil))
	_, err := db.StoreAssets(ctx, []types.Asset{
		{ID: "t1", Data: map[string]interface{}{"n": "1"}},
		{ID: "t2", Data: map[string]interface{}{"n": "2"}},
	})
	require.NoError(t, err)
	_, err = db.StoreMetadatas(ctx, []types.Metadata{
		{ID: "t1", Metadata: map[string]interface{}{"n": "1"}},
		{ID: "t2", Metadata: map[string]interface{}{"n": "2"}},
	})
	require.NoError(t, err)

	require.NoError(t, db.DeleteTransactions(ctx, []string{"t1", "missing"}))

	_, found, err := db.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = db.GetAsset(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, found)
	metadata, err := ledgerdb.CollectMetadata(db.GetMetadata(ctx, []string{"t1"}))
	require.NoError(t, err)
	assert.Empty(t, metadata)

	assert.Equal(t, []string{"t2"}, txnIDs(t, db.GetTransactions(ctx, []string{"t1", "t2"})))
	_, found, err = db.GetAsset(ctx, "t2")
	require.NoError(t, err)
	assert.True(t, found)

	// The id can be stored again.
	storeTxns(t, db, test.MakeCreateTxn("t1", test.AccountA, "1", nil))
}

func unspent(t *testing.T, db ledgerdb.LedgerDb, q *ledgerdb.UnspentOutputQuery) []types.UnspentOutput {
	outputs, err := ledgerdb.CollectUnspentOutputs(db.GetUnspentOutputs(context.Background(), q))
	require.NoError(t, err)
	return outputs
}

func testUnspentOutputLifecycle(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	o := types.UnspentOutput{TransactionID: "abc", OutputIndex: 0, Amount: "1", AssetID: "abc"}

	res, err := db.StoreUnspentOutputs(ctx, o)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Contains(t, unspent(t, db, nil), o)

	res, err = db.StoreUnspentOutputs(ctx, o)
	require.NoError(t, err)
	assert.Equal(t, ledgerdb.BulkInsertResult{AlreadyExisted: 1}, res)
	assert.Len(t, unspent(t, db, nil), 1)

	deleted, err := db.DeleteUnspentOutputs(ctx, o.Link())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.NotContains(t, unspent(t, db, nil), o)

	deleted, err = db.DeleteUnspentOutputs(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	res, err = db.StoreUnspentOutputs(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledgerdb.BulkInsertResult{}, res)
}

func testBatchUnspentOutputDeletion(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	o1 := types.UnspentOutput{TransactionID: "t1", OutputIndex: 0}
	o2 := types.UnspentOutput{TransactionID: "t2", OutputIndex: 1}
	o3 := types.UnspentOutput{TransactionID: "t3", OutputIndex: 0}
	_, err := db.StoreUnspentOutputs(ctx, o1, o2, o3)
	require.NoError(t, err)

	// (t1, 1) and (t3, 1) must not be matched by crossing fields of the keys.
	deleted, err := db.DeleteUnspentOutputs(ctx, o1.Link(), o3.Link(), test.Link("t2", 0))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, []types.UnspentOutput{o2}, unspent(t, db, nil))
}

func testUnspentOutputQuery(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	outputs := []types.UnspentOutput{
		{TransactionID: "t1", OutputIndex: 0, Amount: "1", AssetID: "a", ConditionURI: "u1"},
		{TransactionID: "t1", OutputIndex: 1, Amount: "2", AssetID: "a", ConditionURI: "u2"},
		{TransactionID: "t2", OutputIndex: 0, Amount: "3", AssetID: "b", ConditionURI: "u1"},
	}
	_, err := db.StoreUnspentOutputs(ctx, outputs...)
	require.NoError(t, err)

	txid := "t1"
	idx := uint64(1)
	asset := "b"
	uri := "u1"
	assert.ElementsMatch(t, outputs, unspent(t, db, nil))
	assert.ElementsMatch(t, outputs[:2], unspent(t, db, &ledgerdb.UnspentOutputQuery{TransactionID: &txid}))
	assert.Equal(t, outputs[1:2], unspent(t, db, &ledgerdb.UnspentOutputQuery{TransactionID: &txid, OutputIndex: &idx}))
	assert.Equal(t, outputs[2:], unspent(t, db, &ledgerdb.UnspentOutputQuery{AssetID: &asset}))
	assert.ElementsMatch(t, []types.UnspentOutput{outputs[0], outputs[2]}, unspent(t, db, &ledgerdb.UnspentOutputQuery{ConditionURI: &uri}))
}

func testLatestBlock(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	_, found, err := db.GetLatestBlock(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	for _, h := range []uint64{1, 2, 5, 3} {
		_, err := db.StoreBlock(ctx, types.Block{Height: h, AppHash: "hash", Transactions: []string{}})
		require.NoError(t, err)
	}

	block, found, err := db.GetLatestBlock(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(5), block.Height)

	block, found, err = db.GetBlock(ctx, 3)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(3), block.Height)

	_, found, err = db.GetBlock(ctx, 4)
	require.NoError(t, err)
	assert.False(t, found)
}

func testStoreBlockDuplicate(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	block := types.Block{Height: 7, AppHash: "first", Transactions: []string{"t1"}}

	res, err := db.StoreBlock(ctx, block)
	require.NoError(t, err)
	assert.Equal(t, ledgerdb.Inserted, res)

	res, err = db.StoreBlock(ctx, types.Block{Height: 7, AppHash: "second", Transactions: []string{"t2"}})
	require.NoError(t, err)
	assert.Equal(t, ledgerdb.AlreadyExists, res)

	got, found, err := db.GetBlock(ctx, 7)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, block, got)
}

func validatorSet(height uint64, power uint64) types.ValidatorSet {
	return types.ValidatorSet{
		Height: height,
		Validators: []types.Validator{
			{PublicKey: types.PublicKey{Type: "ed25519-base64", Value: test.AccountA}, VotingPower: power},
		},
	}
}

func testValidatorSetAsOfHeight(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	require.NoError(t, db.StoreValidatorSet(ctx, validatorSet(20, 2)))
	require.NoError(t, db.StoreValidatorSet(ctx, validatorSet(10, 1)))

	height := func(h uint64) *uint64 { return &h }
	tests := []struct {
		name     string
		height   *uint64
		found    bool
		expected uint64
	}{
		{"between", height(15), true, 10},
		{"exact", height(20), true, 20},
		{"after", height(25), true, 20},
		{"latest", nil, true, 20},
		{"before", height(5), false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			set, found, err := db.GetValidatorSet(ctx, tc.height)
			require.NoError(t, err)
			require.Equal(t, tc.found, found)
			if found {
				assert.Equal(t, validatorSet(tc.expected, tc.expected/10), set)
			}
		})
	}
}

func testValidatorSetUpsert(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	require.NoError(t, db.StoreValidatorSet(ctx, validatorSet(10, 1)))
	require.NoError(t, db.StoreValidatorSet(ctx, validatorSet(10, 5)))

	set, found, err := db.GetValidatorSet(ctx, nil)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, validatorSet(10, 5), set)

	require.NoError(t, db.DeleteValidatorSet(ctx, 10))
	_, found, err = db.GetValidatorSet(ctx, nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func testElections(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	require.NoError(t, db.StoreElectionResults(ctx, types.Election{ElectionID: "e1", Height: 3}))
	// Upsert by height replaces the election recorded at 3.
	require.NoError(t, db.StoreElectionResults(ctx, types.Election{ElectionID: "e2", Height: 3, IsConcluded: true}))
	require.NoError(t, db.StoreElectionResults(ctx, types.Election{ElectionID: "e3", Height: 4}))

	_, found, err := db.GetElection(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, found)

	election, found, err := db.GetElection(ctx, "e2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.Election{ElectionID: "e2", Height: 3, IsConcluded: true}, election)

	require.NoError(t, db.DeleteElections(ctx, 4))
	_, found, err = db.GetElection(ctx, "e3")
	require.NoError(t, err)
	assert.False(t, found)
}

func testABCIChains(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	_, found, err := db.GetLatestABCIChain(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, db.StoreABCIChain(ctx, types.MakeABCIChain(1, "chain-1")))
	require.NoError(t, db.StoreABCIChain(ctx, types.ABCIChain{Height: 9, ChainID: "chain-2"}))
	require.NoError(t, db.StoreABCIChain(ctx, types.MakeABCIChain(9, "chain-2")))

	chain, found, err := db.GetLatestABCIChain(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.MakeABCIChain(9, "chain-2"), chain)

	require.NoError(t, db.DeleteABCIChain(ctx, 9))
	chain, found, err = db.GetLatestABCIChain(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "chain-1", chain.ChainID)
}

func testPreCommitUpsert(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	_, found, err := db.GetPreCommitState(ctx, "x")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, db.StorePreCommitState(ctx, types.PreCommitState{CommitID: "x", Height: 1, Round: 1, Transactions: []string{"t1"}}))
	require.NoError(t, db.StorePreCommitState(ctx, types.PreCommitState{CommitID: "x", Height: 1, Round: 2, Transactions: []string{"t1", "t2"}}))

	state, found, err := db.GetPreCommitState(ctx, "x")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.PreCommitState{CommitID: "x", Height: 1, Round: 2, Transactions: []string{"t1", "t2"}}, state)
}

func storeSearchAssets(t *testing.T, db ledgerdb.LedgerDb) {
	_, err := db.StoreAssets(context.Background(), []types.Asset{
		{ID: "a1", Data: map[string]interface{}{"name": "red bicycle"}},
		{ID: "a2", Data: map[string]interface{}{"name": "blue bicycle", "maker": "Crème Brûlée Cycles"}},
		{ID: "a3", Data: map[string]interface{}{"name": "green kayak"}},
	})
	require.NoError(t, err)
}

func searchIDs(t *testing.T, rows []ledgerdb.TextSearchRow) []interface{} {
	ids := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.Document["id"])
	}
	return ids
}

func testTextSearchScore(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	storeSearchAssets(t, db)

	rows, err := ledgerdb.CollectTextSearch(db.TextSearch(ctx, "bicycle", ledgerdb.TextSearchOptions{}))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Nil(t, row.Score)
		_, hasScore := row.Document["score"]
		assert.False(t, hasScore)
		assert.NotNil(t, row.Document["data"])
	}

	rows, err = ledgerdb.CollectTextSearch(db.TextSearch(ctx, "bicycle", ledgerdb.TextSearchOptions{TextScore: true}))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.NotNil(t, row.Score)
		assert.Greater(t, *row.Score, 0.0)
	}
	assert.GreaterOrEqual(t, *rows[0].Score, *rows[1].Score)
}

func testTextSearchOptions(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	storeSearchAssets(t, db)
	_, err := db.StoreMetadatas(ctx, []types.Metadata{
		{ID: "t1", Metadata: map[string]interface{}{"note": "kayak delivered"}},
	})
	require.NoError(t, err)

	search := func(q string, opts ledgerdb.TextSearchOptions) []interface{} {
		rows, err := ledgerdb.CollectTextSearch(db.TextSearch(ctx, q, opts))
		require.NoError(t, err)
		return searchIDs(t, rows)
	}

	assert.ElementsMatch(t, []interface{}{"a1", "a3"}, search("red kayak", ledgerdb.TextSearchOptions{}))
	assert.Len(t, search("bicycle", ledgerdb.TextSearchOptions{Limit: 1}), 1)
	assert.Empty(t, search("submarine", ledgerdb.TextSearchOptions{}))
	assert.Empty(t, search("   ", ledgerdb.TextSearchOptions{}))

	assert.Equal(t, []interface{}{"a2"}, search("creme", ledgerdb.TextSearchOptions{}))
	assert.Equal(t, []interface{}{"a2"}, search("Creme", ledgerdb.TextSearchOptions{CaseSensitive: true}))
	assert.Empty(t, search("creme", ledgerdb.TextSearchOptions{CaseSensitive: true}))
	assert.Equal(t, []interface{}{"a2"}, search("crème", ledgerdb.TextSearchOptions{DiacriticSensitive: true}))
	assert.Empty(t, search("creme", ledgerdb.TextSearchOptions{DiacriticSensitive: true}))
	assert.Equal(t, []interface{}{"a2"}, search("Crème", ledgerdb.TextSearchOptions{CaseSensitive: true, DiacriticSensitive: true}))

	assert.Equal(t, []interface{}{"a3"}, search("kayak", ledgerdb.TextSearchOptions{Language: "none"}))
	assert.Equal(t, []interface{}{"t1"}, search("kayak", ledgerdb.TextSearchOptions{Collection: ledgerdb.CollectionMetadata}))
}

func testTextSearchStopwords(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	storeSearchAssets(t, db)
	_, err := db.StoreAssets(ctx, []types.Asset{{ID: "a4", Data: map[string]interface{}{"name": "over the bridge"}}})
	require.NoError(t, err)

	search := func(q string, opts ledgerdb.TextSearchOptions) []interface{} {
		rows, err := ledgerdb.CollectTextSearch(db.TextSearch(ctx, q, opts))
		require.NoError(t, err)
		return searchIDs(t, rows)
	}

	assert.Empty(t, search("the", ledgerdb.TextSearchOptions{}))
	assert.Empty(t, search("The OVER", ledgerdb.TextSearchOptions{CaseSensitive: true}))
	assert.Equal(t, []interface{}{"a3"}, search("the kayak", ledgerdb.TextSearchOptions{}))
	assert.Equal(t, []interface{}{"a4"}, search("the", ledgerdb.TextSearchOptions{Language: "none"}))
}

func testTextSearchErrors(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	storeSearchAssets(t, db)

	_, err := ledgerdb.CollectTextSearch(db.TextSearch(ctx, "bicycle", ledgerdb.TextSearchOptions{Language: "klingon"}))
	assert.ErrorIs(t, err, ledgerdb.ErrUnsupportedLanguage)

	_, err = ledgerdb.CollectTextSearch(db.TextSearch(ctx, "bicycle", ledgerdb.TextSearchOptions{Collection: ledgerdb.CollectionBlocks}))
	assert.ErrorIs(t, err, ledgerdb.ErrNotSearchable)
}

func testHealth(t *testing.T, db ledgerdb.LedgerDb) {
	ctx := context.Background()
	_, err := db.StoreBlock(ctx, types.Block{Height: 4, Transactions: []string{}})
	require.NoError(t, err)

	health, err := db.Health(ctx)
	require.NoError(t, err)
	assert.True(t, health.DBAvailable)
	assert.Equal(t, uint64(4), health.Height)
}

func testCancelledContext(t *testing.T, db ledgerdb.LedgerDb) {
	_, err := db.StoreUnspentOutputs(context.Background(),
		types.UnspentOutput{TransactionID: "t1", OutputIndex: 0},
		types.UnspentOutput{TransactionID: "t1", OutputIndex: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ledgerdb.CollectUnspentOutputs(db.GetUnspentOutputs(ctx, nil))
	assert.Error(t, err)
}
