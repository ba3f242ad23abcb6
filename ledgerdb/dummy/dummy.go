package dummy

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/types"
)

type dummyLedgerDb struct {
	log *log.Logger
}

// LedgerDb is a no-op implementation of LedgerDb. Writes are accepted and
// dropped, reads find nothing.
func LedgerDb(logger *log.Logger) ledgerdb.LedgerDb {
	if logger == nil {
		logger = log.New()
	}
	return &dummyLedgerDb{log: logger}
}

func (db *dummyLedgerDb) Close() {
}

// Health is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) Health(ctx context.Context) (ledgerdb.Health, error) {
	return ledgerdb.Health{DBAvailable: true}, nil
}

// StoreTransactions is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) StoreTransactions(ctx context.Context, txns []types.Transaction) (ledgerdb.BulkInsertResult, error) {
	db.log.Printf("StoreTransactions %d", len(txns))
	return ledgerdb.BulkInsertResult{Inserted: len(txns)}, nil
}

// GetTransaction is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetTransaction(ctx context.Context, id string) (types.Transaction, bool, error) {
	return types.Transaction{}, false, nil
}

// GetTransactions is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetTransactions(ctx context.Context, ids []string) <-chan ledgerdb.TxnRow {
	return ledgerdb.Empty[ledgerdb.TxnRow]()
}

// StoreMetadatas is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) StoreMetadatas(ctx context.Context, metadatas []types.Metadata) (ledgerdb.BulkInsertResult, error) {
	return ledgerdb.BulkInsertResult{Inserted: len(metadatas)}, nil
}

// GetMetadata is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetMetadata(ctx context.Context, ids []string) <-chan ledgerdb.MetadataRow {
	return ledgerdb.Empty[ledgerdb.MetadataRow]()
}

// GetSpent is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetSpent(ctx context.Context, transactionID string, outputIndex uint64) <-chan ledgerdb.TxnRow {
	return ledgerdb.Empty[ledgerdb.TxnRow]()
}

// GetTxidsFiltered is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetTxidsFiltered(ctx context.Context, filter ledgerdb.TxidFilter) <-chan ledgerdb.TxidRow {
	return ledgerdb.Empty[ledgerdb.TxidRow]()
}

// GetOwnedIDs is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetOwnedIDs(ctx context.Context, owner string) <-chan ledgerdb.TxnRow {
	return ledgerdb.Empty[ledgerdb.TxnRow]()
}

// GetSpendingTransactions is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetSpendingTransactions(ctx context.Context, links []types.TransactionLink) <-chan ledgerdb.TxnRow {
	return ledgerdb.Empty[ledgerdb.TxnRow]()
}

// GetAssetTokensForPublicKey is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetAssetTokensForPublicKey(ctx context.Context, assetID string, publicKey string) <-chan ledgerdb.TxnRow {
	return ledgerdb.Empty[ledgerdb.TxnRow]()
}

// DeleteTransactions is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) DeleteTransactions(ctx context.Context, ids []string) error {
	return nil
}

// StoreAsset is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) StoreAsset(ctx context.Context, asset types.Asset) (ledgerdb.InsertResult, error) {
	return ledgerdb.Inserted, nil
}

// StoreAssets is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) StoreAssets(ctx context.Context, assets []types.Asset) (ledgerdb.BulkInsertResult, error) {
	return ledgerdb.BulkInsertResult{Inserted: len(assets)}, nil
}

// GetAsset is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetAsset(ctx context.Context, id string) (map[string]interface{}, bool, error) {
	return nil, false, nil
}

// GetAssets is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetAssets(ctx context.Context, ids []string) <-chan ledgerdb.AssetRow {
	return ledgerdb.Empty[ledgerdb.AssetRow]()
}

// StoreBlock is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) StoreBlock(ctx context.Context, block types.Block) (ledgerdb.InsertResult, error) {
	db.log.Printf("StoreBlock %d", block.Height)
	return ledgerdb.Inserted, nil
}

// GetLatestBlock is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetLatestBlock(ctx context.Context) (types.Block, bool, error) {
	return types.Block{}, false, nil
}

// GetBlock is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetBlock(ctx context.Context, height uint64) (types.Block, bool, error) {
	return types.Block{}, false, nil
}

// GetBlockWithTransaction is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetBlockWithTransaction(ctx context.Context, txid string) <-chan ledgerdb.BlockRefRow {
	return ledgerdb.Empty[ledgerdb.BlockRefRow]()
}

// StoreUnspentOutputs is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) StoreUnspentOutputs(ctx context.Context, outputs ...types.UnspentOutput) (ledgerdb.BulkInsertResult, error) {
	return ledgerdb.BulkInsertResult{Inserted: len(outputs)}, nil
}

// DeleteUnspentOutputs is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) DeleteUnspentOutputs(ctx context.Context, links ...types.TransactionLink) (int64, error) {
	return 0, nil
}

// GetUnspentOutputs is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetUnspentOutputs(ctx context.Context, query *ledgerdb.UnspentOutputQuery) <-chan ledgerdb.UnspentOutputRow {
	return ledgerdb.Empty[ledgerdb.UnspentOutputRow]()
}

// StorePreCommitState is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) StorePreCommitState(ctx context.Context, state types.PreCommitState) error {
	return nil
}

// GetPreCommitState is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetPreCommitState(ctx context.Context, commitID string) (types.PreCommitState, bool, error) {
	return types.PreCommitState{}, false, nil
}

// StoreValidatorSet is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) StoreValidatorSet(ctx context.Context, set types.ValidatorSet) error {
	return nil
}

// GetValidatorSet is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetValidatorSet(ctx context.Context, height *uint64) (types.ValidatorSet, bool, error) {
	return types.ValidatorSet{}, false, nil
}

// DeleteValidatorSet is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) DeleteValidatorSet(ctx context.Context, height uint64) error {
	return nil
}

// StoreElectionResults is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) StoreElectionResults(ctx context.Context, election types.Election) error {
	return nil
}

// GetElection is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetElection(ctx context.Context, electionID string) (types.Election, bool, error) {
	return types.Election{}, false, nil
}

// DeleteElections is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) DeleteElections(ctx context.Context, height uint64) error {
	return nil
}

// StoreABCIChain is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) StoreABCIChain(ctx context.Context, chain types.ABCIChain) error {
	return nil
}

// GetLatestABCIChain is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) GetLatestABCIChain(ctx context.Context) (types.ABCIChain, bool, error) {
	return types.ABCIChain{}, false, nil
}

// DeleteABCIChain is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) DeleteABCIChain(ctx context.Context, height uint64) error {
	return nil
}

// TextSearch is part of ledgerdb.LedgerDb
func (db *dummyLedgerDb) TextSearch(ctx context.Context, search string, opts ledgerdb.TextSearchOptions) <-chan ledgerdb.TextSearchRow {
	return ledgerdb.Empty[ledgerdb.TextSearchRow]()
}
