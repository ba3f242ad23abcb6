package ledgerdb

import (
	"context"
	"errors"

	"github.com/ledgerkit/ledgerdb/types"
)

// ErrDuplicateKey is returned when an insert violates a unique key. Only
// StoreTransactions surfaces it, every other insert treats a duplicate as
// already applied.
var ErrDuplicateKey = errors.New("duplicate key")

// ErrBatchTooLarge is returned when a bulk write that must be applied
// atomically does not fit in one storage transaction. Callers can split the
// batch and retry.
var ErrBatchTooLarge = errors.New("batch too large")

// ErrUnsupportedLanguage is returned by TextSearch for an unknown language.
var ErrUnsupportedLanguage = errors.New("unsupported text search language")

// ErrNotSearchable is returned by TextSearch for a collection without a
// text index.
var ErrNotSearchable = errors.New("collection is not text searchable")

// TxnRow is one transaction of a transaction query.
type TxnRow struct {
	Txn types.Transaction

	// Error indicates that there was an internal problem processing the expected transaction.
	Error error
}

// MetadataRow is one metadata record of a metadata query.
type MetadataRow struct {
	Metadata types.Metadata
	Error    error
}

// AssetRow is one asset of an asset query.
type AssetRow struct {
	Asset types.Asset
	Error error
}

// TxidRow is one transaction id.
type TxidRow struct {
	Txid  string
	Error error
}

// BlockRefRow is the height of a block containing a transaction.
type BlockRefRow struct {
	Height uint64
	Error  error
}

// UnspentOutputRow is one unspent output.
type UnspentOutputRow struct {
	Output types.UnspentOutput
	Error  error
}

// TextSearchRow is one text search hit. Score is only set when the search
// asked for it.
type TextSearchRow struct {
	Document map[string]interface{}
	Score    *float64
	Error    error
}

// TxidFilter selects transactions related to an asset.
type TxidFilter struct {
	AssetID string

	// Operation restricts the result to the CREATE or to the TRANSFER
	// transactions of the asset. Empty means both.
	Operation types.Operation

	// LastTx returns only the most recently stored match.
	LastTx bool
}

// UnspentOutputQuery filters unspent outputs. Nil fields match anything.
type UnspentOutputQuery struct {
	TransactionID *string
	OutputIndex   *uint64
	AssetID       *string
	ConditionURI  *string
}

// Matches reports whether the output satisfies the query.
func (q *UnspentOutputQuery) Matches(u types.UnspentOutput) bool {
	if q == nil {
		return true
	}
	if q.TransactionID != nil && *q.TransactionID != u.TransactionID {
		return false
	}
	if q.OutputIndex != nil && *q.OutputIndex != u.OutputIndex {
		return false
	}
	if q.AssetID != nil && *q.AssetID != u.AssetID {
		return false
	}
	if q.ConditionURI != nil && *q.ConditionURI != u.ConditionURI {
		return false
	}
	return true
}

// LedgerDb is the storage capability set of a ledger node. The consensus
// layer writes through it after validating a batch, the query layer reads
// through it. Every operation is a single request to the backing store, so
// implementations hold no locks and no caches across calls.
//
// Queries returning a channel produce a finite, non-restartable stream. The
// channel is closed when the results are exhausted, when a row carries an
// error, or when ctx is done.
type LedgerDb interface {
	// Close all connections to the database. Should be called when LedgerDb is
	// no longer needed.
	Close()

	Health(ctx context.Context) (Health, error)

	// Transactions.
	// StoreTransactions writes the batch atomically. A backend with a bounded
	// transaction size returns ErrBatchTooLarge for a batch past that bound.
	StoreTransactions(ctx context.Context, txns []types.Transaction) (BulkInsertResult, error)
	GetTransaction(ctx context.Context, id string) (types.Transaction, bool, error)
	GetTransactions(ctx context.Context, ids []string) <-chan TxnRow
	StoreMetadatas(ctx context.Context, metadatas []types.Metadata) (BulkInsertResult, error)
	GetMetadata(ctx context.Context, ids []string) <-chan MetadataRow
	GetSpent(ctx context.Context, transactionID string, outputIndex uint64) <-chan TxnRow
	GetTxidsFiltered(ctx context.Context, filter TxidFilter) <-chan TxidRow
	GetOwnedIDs(ctx context.Context, owner string) <-chan TxnRow
	GetSpendingTransactions(ctx context.Context, links []types.TransactionLink) <-chan TxnRow
	GetAssetTokensForPublicKey(ctx context.Context, assetID string, publicKey string) <-chan TxnRow
	DeleteTransactions(ctx context.Context, ids []string) error

	// Assets.
	StoreAsset(ctx context.Context, asset types.Asset) (InsertResult, error)
	StoreAssets(ctx context.Context, assets []types.Asset) (BulkInsertResult, error)
	GetAsset(ctx context.Context, id string) (map[string]interface{}, bool, error)
	GetAssets(ctx context.Context, ids []string) <-chan AssetRow

	// Blocks.
	StoreBlock(ctx context.Context, block types.Block) (InsertResult, error)
	GetLatestBlock(ctx context.Context) (types.Block, bool, error)
	GetBlock(ctx context.Context, height uint64) (types.Block, bool, error)
	GetBlockWithTransaction(ctx context.Context, txid string) <-chan BlockRefRow

	// Unspent outputs.
	StoreUnspentOutputs(ctx context.Context, outputs ...types.UnspentOutput) (BulkInsertResult, error)
	DeleteUnspentOutputs(ctx context.Context, links ...types.TransactionLink) (int64, error)
	GetUnspentOutputs(ctx context.Context, query *UnspentOutputQuery) <-chan UnspentOutputRow

	// Pre-commit state.
	StorePreCommitState(ctx context.Context, state types.PreCommitState) error
	GetPreCommitState(ctx context.Context, commitID string) (types.PreCommitState, bool, error)

	// Validators, elections and chains.
	StoreValidatorSet(ctx context.Context, set types.ValidatorSet) error
	// GetValidatorSet returns the set in effect at height, or the latest set
	// when height is nil.
	GetValidatorSet(ctx context.Context, height *uint64) (types.ValidatorSet, bool, error)
	DeleteValidatorSet(ctx context.Context, height uint64) error
	StoreElectionResults(ctx context.Context, election types.Election) error
	GetElection(ctx context.Context, electionID string) (types.Election, bool, error)
	DeleteElections(ctx context.Context, height uint64) error
	StoreABCIChain(ctx context.Context, chain types.ABCIChain) error
	GetLatestABCIChain(ctx context.Context) (types.ABCIChain, bool, error)
	DeleteABCIChain(ctx context.Context, height uint64) error

	// Text search.
	TextSearch(ctx context.Context, search string, opts TextSearchOptions) <-chan TextSearchRow
}

// LedgerDbOptions are the options common to all ledger backends.
type LedgerDbOptions struct {
	ReadOnly bool
	// Maximum connection number for connection pool
	// This means the total number of active queries that can be running
	// concurrently can never be more than this
	MaxConn uint32
	// InMemory asks embedded backends to keep everything in memory.
	InMemory bool
}

// Health is the response object that LedgerDb objects need to return from the Health method.
type Health struct {
	Data        *map[string]interface{} `json:"data,omitempty"`
	Height      uint64                  `json:"height"`
	DBAvailable bool                    `json:"db-available"`
	Error       string                  `json:"error"`
}
