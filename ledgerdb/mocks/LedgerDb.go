package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/types"
)

// LedgerDb is a mock type for the LedgerDb type
type LedgerDb struct {
	mock.Mock
}

var _ ledgerdb.LedgerDb = (*LedgerDb)(nil)

// Close provides a mock function with given fields:
func (_m *LedgerDb) Close() {
	_m.Called()
}

// Health provides a mock function with given fields: ctx
func (_m *LedgerDb) Health(ctx context.Context) (ledgerdb.Health, error) {
	ret := _m.Called(ctx)

	r0 := ret.Get(0).(ledgerdb.Health)
	r1 := ret.Error(1)

	return r0, r1
}

// StoreTransactions provides a mock function with given fields: ctx, txns
func (_m *LedgerDb) StoreTransactions(ctx context.Context, txns []types.Transaction) (ledgerdb.BulkInsertResult, error) {
	ret := _m.Called(ctx, txns)

	r0 := ret.Get(0).(ledgerdb.BulkInsertResult)
	r1 := ret.Error(1)

	return r0, r1
}

// GetTransaction provides a mock function with given fields: ctx, id
func (_m *LedgerDb) GetTransaction(ctx context.Context, id string) (types.Transaction, bool, error) {
	ret := _m.Called(ctx, id)

	r0 := ret.Get(0).(types.Transaction)
	r1 := ret.Bool(1)
	r2 := ret.Error(2)

	return r0, r1, r2
}

// GetTransactions provides a mock function with given fields: ctx, ids
func (_m *LedgerDb) GetTransactions(ctx context.Context, ids []string) <-chan ledgerdb.TxnRow {
	ret := _m.Called(ctx, ids)

	var r0 <-chan ledgerdb.TxnRow
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(<-chan ledgerdb.TxnRow)
	}

	return r0
}

// StoreMetadatas provides a mock function with given fields: ctx, metadatas
func (_m *LedgerDb) StoreMetadatas(ctx context.Context, metadatas []types.Metadata) (ledgerdb.BulkInsertResult, error) {
	ret := _m.Called(ctx, metadatas)

	r0 := ret.Get(0).(ledgerdb.BulkInsertResult)
	r1 := ret.Error(1)

	return r0, r1
}

// GetMetadata provides a mock function with given fields: ctx, ids
func (_m *LedgerDb) GetMetadata(ctx context.Context, ids []string) <-chan ledgerdb.MetadataRow {
	ret := _m.Called(ctx, ids)

	var r0 <-chan ledgerdb.MetadataRow
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(<-chan ledgerdb.MetadataRow)
	}

	return r0
}

// GetSpent provides a mock function with given fields: ctx, transactionID, outputIndex
func (_m *LedgerDb) GetSpent(ctx context.Context, transactionID string, outputIndex uint64) <-chan ledgerdb.TxnRow {
	ret := _m.Called(ctx, transactionID, outputIndex)

	var r0 <-chan ledgerdb.TxnRow
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(<-chan ledgerdb.TxnRow)
	}

	return r0
}

// GetTxidsFiltered provides a mock function with given fields: ctx, filter
func (_m *LedgerDb) GetTxidsFiltered(ctx context.Context, filter ledgerdb.TxidFilter) <-chan ledgerdb.TxidRow {
	ret := _m.Called(ctx, filter)

	var r0 <-chan ledgerdb.TxidRow
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(<-chan ledgerdb.TxidRow)
	}

	return r0
}

// GetOwnedIDs provides a mock function with given fields: ctx, owner
func (_m *LedgerDb) GetOwnedIDs(ctx context.Context, owner string) <-chan ledgerdb.TxnRow {
	ret := _m.Called(ctx, owner)

	var r0 <-chan ledgerdb.TxnRow
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(<-chan ledgerdb.TxnRow)
	}

	return r0
}

// GetSpendingTransactions provides a mock function with given fields: ctx, links
func (_m *LedgerDb) GetSpendingTransactions(ctx context.Context, links []types.TransactionLink) <-chan ledgerdb.TxnRow {
	ret := _m.Called(ctx, links)

	var r0 <-chan ledgerdb.TxnRow
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(<-chan ledgerdb.TxnRow)
	}

	return r0
}

// GetAssetTokensForPublicKey provides a mock function with given fields: ctx, assetID, publicKey
func (_m *LedgerDb) GetAssetTokensForPublicKey(ctx context.Context, assetID string, publicKey string) <-chan ledgerdb.TxnRow {
	ret := _m.Called(ctx, assetID, publicKey)

	var r0 <-chan ledgerdb.TxnRow
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(<-chan ledgerdb.TxnRow)
	}

	return r0
}

// DeleteTransactions provides a mock function with given fields: ctx, ids
func (_m *LedgerDb) DeleteTransactions(ctx context.Context, ids []string) error {
	ret := _m.Called(ctx, ids)

	r0 := ret.Error(0)

	return r0
}

// StoreAsset provides a mock function with given fields: ctx, asset
func (_m *LedgerDb) StoreAsset(ctx context.Context, asset types.Asset) (ledgerdb.InsertResult, error) {
	ret := _m.Called(ctx, asset)

	r0 := ret.Get(0).(ledgerdb.InsertResult)
	r1 := ret.Error(1)

	return r0, r1
}

// StoreAssets provides a mock function with given fields: ctx, assets
func (_m *LedgerDb) StoreAssets(ctx context.Context, assets []types.Asset) (ledgerdb.BulkInsertResult, error) {
	ret := _m.Called(ctx, assets)

	r0 := ret.Get(0).(ledgerdb.BulkInsertResult)
	r1 := ret.Error(1)

	return r0, r1
}

// GetAsset provides a mock function with given fields: ctx, id
func (_m *LedgerDb) GetAsset(ctx context.Context, id string) (map[string]interface{}, bool, error) {
	ret := _m.Called(ctx, id)

	var r0 map[string]interface{}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[string]interface{})
	}
	r1 := ret.Bool(1)
	r2 := ret.Error(2)

	return r0, r1, r2
}

// GetAssets provides a mock function with given fields: ctx, ids
func (_m *LedgerDb) GetAssets(ctx context.Context, ids []string) <-chan ledgerdb.AssetRow {
	ret := _m.Called(ctx, ids)

	var r0 <-chan ledgerdb.AssetRow
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(<-chan ledgerdb.AssetRow)
	}

	return r0
}

// StoreBlock provides a mock function with given fields: ctx, block
func (_m *LedgerDb) StoreBlock(ctx context.Context, block types.Block) (ledgerdb.InsertResult, error) {
	ret := _m.Called(ctx, block)

	r0 := ret.Get(0).(ledgerdb.InsertResult)
	r1 := ret.Error(1)

	return r0, r1
}

// GetLatestBlock provides a mock function with given fields: ctx
func (_m *LedgerDb) GetLatestBlock(ctx context.Context) (types.Block, bool, error) {
	ret := _m.Called(ctx)

	r0 := ret.Get(0).(types.Block)
	r1 := ret.Bool(1)
	r2 := ret.Error(2)

	return r0, r1, r2
}

// GetBlock provides a mock function with given fields: ctx, height
func (_m *LedgerDb) GetBlock(ctx context.Context, height uint64) (types.Block, bool, error) {
	ret := _m.Called(ctx, height)

	r0 := ret.Get(0).(types.Block)
	r1 := ret.Bool(1)
	r2 := ret.Error(2)

	return r0, r1, r2
}

// GetBlockWithTransaction provides a mock function with given fields: ctx, txid
func (_m *LedgerDb) GetBlockWithTransaction(ctx context.Context, txid string) <-chan ledgerdb.BlockRefRow {
	ret := _m.Called(ctx, txid)

	var r0 <-chan ledgerdb.BlockRefRow
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(<-chan ledgerdb.BlockRefRow)
	}

	return r0
}

// StoreUnspentOutputs provides a mock function with given fields: ctx, outputs
func (_m *LedgerDb) StoreUnspentOutputs(ctx context.Context, outputs ...types.UnspentOutput) (ledgerdb.BulkInsertResult, error) {
	ret := _m.Called(ctx, outputs)

	r0 := ret.Get(0).(ledgerdb.BulkInsertResult)
	r1 := ret.Error(1)

	return r0, r1
}

// DeleteUnspentOutputs provides a mock function with given fields: ctx, links
func (_m *LedgerDb) DeleteUnspentOutputs(ctx context.Context, links ...types.TransactionLink) (int64, error) {
	ret := _m.Called(ctx, links)

	r0 := ret.Get(0).(int64)
	r1 := ret.Error(1)

	return r0, r1
}

// GetUnspentOutputs provides a mock function with given fields: ctx, query
func (_m *LedgerDb) GetUnspentOutputs(ctx context.Context, query *ledgerdb.UnspentOutputQuery) <-chan ledgerdb.UnspentOutputRow {
	ret := _m.Called(ctx, query)

	var r0 <-chan ledgerdb.UnspentOutputRow
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(<-chan ledgerdb.UnspentOutputRow)
	}

	return r0
}

// StorePreCommitState provides a mock function with given fields: ctx, state
func (_m *LedgerDb) StorePreCommitState(ctx context.Context, state types.PreCommitState) error {
	ret := _m.Called(ctx, state)

	r0 := ret.Error(0)

	return r0
}

// GetPreCommitState provides a mock function with given fields: ctx, commitID
func (_m *LedgerDb) GetPreCommitState(ctx context.Context, commitID string) (types.PreCommitState, bool, error) {
	ret := _m.Called(ctx, commitID)

	r0 := ret.Get(0).(types.PreCommitState)
	r1 := ret.Bool(1)
	r2 := ret.Error(2)

	return r0, r1, r2
}

// StoreValidatorSet provides a mock function with given fields: ctx, set
func (_m *LedgerDb) StoreValidatorSet(ctx context.Context, set types.ValidatorSet) error {
	ret := _m.Called(ctx, set)

	r0 := ret.Error(0)

	return r0
}

// GetValidatorSet provides a mock function with given fields: ctx, height
func (_m *LedgerDb) GetValidatorSet(ctx context.Context, height *uint64) (types.ValidatorSet, bool, error) {
	ret := _m.Called(ctx, height)

	r0 := ret.Get(0).(types.ValidatorSet)
	r1 := ret.Bool(1)
	r2 := ret.Error(2)

	return r0, r1, r2
}

// DeleteValidatorSet provides a mock function with given fields: ctx, height
func (_m *LedgerDb) DeleteValidatorSet(ctx context.Context, height uint64) error {
	ret := _m.Called(ctx, height)

	r0 := ret.Error(0)

	return r0
}

// StoreElectionResults provides a mock function with given fields: ctx, election
func (_m *LedgerDb) StoreElectionResults(ctx context.Context, election types.Election) error {
	ret := _m.Called(ctx, election)

	r0 := ret.Error(0)

	return r0
}

// GetElection provides a mock function with given fields: ctx, electionID
func (_m *LedgerDb) GetElection(ctx context.Context, electionID string) (types.Election, bool, error) {
	ret := _m.Called(ctx, electionID)

	r0 := ret.Get(0).(types.Election)
	r1 := ret.Bool(1)
	r2 := ret.Error(2)

	return r0, r1, r2
}

// DeleteElections provides a mock function with given fields: ctx, height
func (_m *LedgerDb) DeleteElections(ctx context.Context, height uint64) error {
	ret := _m.Called(ctx, height)

	r0 := ret.Error(0)

	return r0
}

// StoreABCIChain provides a mock function with given fields: ctx, chain
func (_m *LedgerDb) StoreABCIChain(ctx context.Context, chain types.ABCIChain) error {
	ret := _m.Called(ctx, chain)

	r0 := ret.Error(0)

	return r0
}

// GetLatestABCIChain provides a mock function with given fields: ctx
func (_m *LedgerDb) GetLatestABCIChain(ctx context.Context) (types.ABCIChain, bool, error) {
	ret := _m.Called(ctx)

	r0 := ret.Get(0).(types.ABCIChain)
	r1 := ret.Bool(1)
	r2 := ret.Error(2)

	return r0, r1, r2
}

// DeleteABCIChain provides a mock function with given fields: ctx, height
func (_m *LedgerDb) DeleteABCIChain(ctx context.Context, height uint64) error {
	ret := _m.Called(ctx, height)

	r0 := ret.Error(0)

	return r0
}

// TextSearch provides a mock function with given fields: ctx, search, opts
func (_m *LedgerDb) TextSearch(ctx context.Context, search string, opts ledgerdb.TextSearchOptions) <-chan ledgerdb.TextSearchRow {
	ret := _m.Called(ctx, search, opts)

	var r0 <-chan ledgerdb.TextSearchRow
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(<-chan ledgerdb.TextSearchRow)
	}

	return r0
}
