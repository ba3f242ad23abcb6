package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"

	"github.com/ledgerkit/ledgerdb/internal/encoding"
	"github.com/ledgerkit/ledgerdb/ledgerdb"
	pgutil "github.com/ledgerkit/ledgerdb/ledgerdb/postgres/internal/util"
	"github.com/ledgerkit/ledgerdb/types"
)

func txnErrRow(err error) ledgerdb.TxnRow {
	return ledgerdb.TxnRow{Error: err}
}

func scanTxn(rows pgx.Rows) (ledgerdb.TxnRow, error) {
	txn, err := scanDoc[types.Transaction](rows)
	return ledgerdb.TxnRow{Txn: txn}, err
}

// StoreTransactions is part of ledgerdb.LedgerDb. The batch is a single
// insert, a duplicate id fails all of it.
func (db *LedgerDb) StoreTransactions(ctx context.Context, txns []types.Transaction) (ledgerdb.BulkInsertResult, error) {
	if len(txns) == 0 {
		return ledgerdb.BulkInsertResult{}, nil
	}

	ids := make([]string, len(txns))
	operations := make([]string, len(txns))
	assetIDs := make([]string, len(txns))
	docs := make([]string, len(txns))
	for i, txn := range txns {
		ids[i] = txn.ID
		operations[i] = string(txn.Operation)
		assetIDs[i] = txn.AssetID()
		docs[i] = string(encoding.EncodeJSON(txn))
	}

	cmd, err := db.db.Exec(ctx, insertTransactionsQuery, ids, operations, assetIDs, docs)
	if pgutil.IsUniqueViolation(err) {
		return ledgerdb.BulkInsertResult{}, fmt.Errorf("StoreTransactions() err: %w: %w", ledgerdb.ErrDuplicateKey, err)
	}
	if err != nil {
		return ledgerdb.BulkInsertResult{}, fmt.Errorf("StoreTransactions() err: %w", err)
	}
	return ledgerdb.BulkInsertResult{Inserted: int(cmd.RowsAffected())}, nil
}

// GetTransaction is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetTransaction(ctx context.Context, id string) (types.Transaction, bool, error) {
	var txn types.Transaction
	found, err := db.queryDoc(ctx, &txn, getTransactionQuery, id)
	if err != nil {
		return types.Transaction{}, false, fmt.Errorf("GetTransaction() err: %w", err)
	}
	return txn, found, nil
}

// GetTransactions is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetTransactions(ctx context.Context, ids []string) <-chan ledgerdb.TxnRow {
	if len(ids) == 0 {
		return ledgerdb.Empty[ledgerdb.TxnRow]()
	}
	return yield(ctx, db, txnErrRow, scanTxn, getTransactionsQuery, ids)
}

// GetSpent is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetSpent(ctx context.Context, transactionID string, outputIndex uint64) <-chan ledgerdb.TxnRow {
	contains := map[string]interface{}{
		"inputs": []interface{}{
			map[string]interface{}{
				"fulfills": types.TransactionLink{TransactionID: transactionID, OutputIndex: outputIndex},
			},
		},
	}
	return yield(ctx, db, txnErrRow, scanTxn, getContainingTransactionsQuery, string(encoding.EncodeJSON(contains)))
}

// GetOwnedIDs is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetOwnedIDs(ctx context.Context, owner string) <-chan ledgerdb.TxnRow {
	contains := map[string]interface{}{
		"outputs": []interface{}{
			map[string]interface{}{"public_keys": []string{owner}},
		},
	}
	return yield(ctx, db, txnErrRow, scanTxn, getContainingTransactionsQuery, string(encoding.EncodeJSON(contains)))
}

// GetSpendingTransactions is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetSpendingTransactions(ctx context.Context, links []types.TransactionLink) <-chan ledgerdb.TxnRow {
	if len(links) == 0 {
		return ledgerdb.Empty[ledgerdb.TxnRow]()
	}
	return yield(ctx, db, txnErrRow, scanTxn, getSpendingTransactionsQuery, string(encoding.EncodeJSON(links)))
}

// GetAssetTokensForPublicKey is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetAssetTokensForPublicKey(ctx context.Context, assetID string, publicKey string) <-chan ledgerdb.TxnRow {
	contains := map[string]interface{}{
		"asset": map[string]interface{}{"id": assetID},
	}
	return yield(ctx, db, txnErrRow, scanTxn, getAssetTokensQuery,
		string(encoding.EncodeJSON(contains)), string(encoding.EncodeJSON([]string{publicKey})))
}

// GetTxidsFiltered is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetTxidsFiltered(ctx context.Context, filter ledgerdb.TxidFilter) <-chan ledgerdb.TxidRow {
	operations := []string{string(types.OperationCreate), string(types.OperationTransfer)}
	if filter.Operation != "" {
		operations = []string{string(filter.Operation)}
	}
	query := getTxidsQuery
	if filter.LastTx {
		query = getLastTxidQuery
	}
	errRow := func(err error) ledgerdb.TxidRow { return ledgerdb.TxidRow{Error: err} }
	scan := func(rows pgx.Rows) (ledgerdb.TxidRow, error) {
		var id string
		err := rows.Scan(&id)
		return ledgerdb.TxidRow{Txid: id}, err
	}
	return yield(ctx, db, errRow, scan, query, filter.AssetID, operations)
}

// DeleteTransactions is part of ledgerdb.LedgerDb. Assets and metadata are
// removed before the transactions, in one serializable transaction.
func (db *LedgerDb) DeleteTransactions(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	deleteTxns := func(tx pgx.Tx) error {
		defer tx.Rollback(ctx)

		var deleted [3]int64
		for i, query := range []string{deleteAssetsQuery, deleteMetadataQuery, deleteTransactionsQuery} {
			cmd, err := tx.Exec(ctx, query, ids)
			if err != nil {
				return fmt.Errorf("deleteTxns(): %w", err)
			}
			deleted[i] = cmd.RowsAffected()
		}
		db.log.Debugf("deleteTxns(): %d assets, %d metadata, %d transactions deleted", deleted[0], deleted[1], deleted[2])
		return tx.Commit(ctx)
	}
	err := db.txWithRetry(ctx, serializable, deleteTxns)
	if err != nil {
		return fmt.Errorf("DeleteTransactions() err: %w", err)
	}
	return nil
}
