package badger

import (
	"context"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/types"
)

// storedTxn is the value under a transaction key. Seq orders transactions by
// insertion.
type storedTxn struct {
	Seq uint64            `codec:"seq"`
	Txn types.Transaction `codec:"txn"`
}

func txnErrRow(err error) ledgerdb.TxnRow {
	return ledgerdb.TxnRow{Error: err}
}

func owners(txn types.Transaction) []string {
	seen := make(map[string]bool)
	var out []string
	for _, o := range txn.Outputs {
		for _, pk := range o.PublicKeys {
			if !seen[pk] {
				seen[pk] = true
				out = append(out, pk)
			}
		}
	}
	return out
}

func putTxn(txn *badgerdb.Txn, seq uint64, t types.Transaction) error {
	if err := set(txn, txnKey(t.ID), storedTxn{Seq: seq, Txn: t}); err != nil {
		return err
	}
	if err := txn.Set(txnSeqKey(seq), []byte(t.ID)); err != nil {
		return err
	}
	if assetID := t.AssetID(); assetID != "" {
		if err := txn.Set(assetIndexKey(assetID, seq), []byte(t.ID)); err != nil {
			return err
		}
	}
	for _, pk := range owners(t) {
		if err := txn.Set(ownerIndexKey(pk, t.ID), nil); err != nil {
			return err
		}
	}
	for _, link := range t.SpentOutputs() {
		if err := txn.Set(spentIndexKey(link, t.ID), nil); err != nil {
			return err
		}
	}
	return nil
}

func deleteTxn(txn *badgerdb.Txn, id string) error {
	var stored storedTxn
	found, err := get(txn, txnKey(id), &stored)
	if err != nil || !found {
		return err
	}
	t := stored.Txn
	keys := [][]byte{txnKey(id), txnSeqKey(stored.Seq)}
	if assetID := t.AssetID(); assetID != "" {
		keys = append(keys, assetIndexKey(assetID, stored.Seq))
	}
	for _, pk := range owners(t) {
		keys = append(keys, ownerIndexKey(pk, id))
	}
	for _, link := range t.SpentOutputs() {
		keys = append(keys, spentIndexKey(link, id))
	}
	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// StoreTransactions is part of ledgerdb.LedgerDb. The batch is written in one
// transaction, a duplicate id aborts all of it. A batch past badger's
// transaction size limit (about 15% of the memtable size) fails with
// ledgerdb.ErrBatchTooLarge and nothing is written.
func (db *LedgerDb) StoreTransactions(ctx context.Context, txns []types.Transaction) (ledgerdb.BulkInsertResult, error) {
	if len(txns) == 0 {
		return ledgerdb.BulkInsertResult{}, nil
	}
	seqs, err := db.nextSeq(len(txns))
	if err != nil {
		return ledgerdb.BulkInsertResult{}, fmt.Errorf("StoreTransactions() err: %w", err)
	}

	err = db.update(func(txn *badgerdb.Txn) error {
		seen := make(map[string]bool, len(txns))
		for i, t := range txns {
			dup := seen[t.ID]
			if !dup {
				var err error
				dup, err = exists(txn, txnKey(t.ID))
				if err != nil {
					return err
				}
			}
			if dup {
				return fmt.Errorf("%w: transaction %s", ledgerdb.ErrDuplicateKey, t.ID)
			}
			seen[t.ID] = true
			if err := putTxn(txn, seqs[i], t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ledgerdb.BulkInsertResult{}, fmt.Errorf("StoreTransactions() err: %w", err)
	}
	return ledgerdb.BulkInsertResult{Inserted: len(txns)}, nil
}

// GetTransaction is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetTransaction(ctx context.Context, id string) (types.Transaction, bool, error) {
	var stored storedTxn
	var found bool
	err := db.db.View(func(txn *badgerdb.Txn) error {
		var err error
		found, err = get(txn, txnKey(id), &stored)
		return err
	})
	if err != nil {
		return types.Transaction{}, false, fmt.Errorf("GetTransaction() err: %w", err)
	}
	return stored.Txn, found, nil
}

// emitTxns loads and emits the transactions in ids order, skipping ids that
// are not stored.
func emitTxns(txn *badgerdb.Txn, ids []string, emit func(ledgerdb.TxnRow) bool) error {
	for _, id := range ids {
		var stored storedTxn
		found, err := get(txn, txnKey(id), &stored)
		if err != nil {
			return err
		}
		if found && !emit(ledgerdb.TxnRow{Txn: stored.Txn}) {
			return nil
		}
	}
	return nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// GetTransactions is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetTransactions(ctx context.Context, ids []string) <-chan ledgerdb.TxnRow {
	if len(ids) == 0 {
		return ledgerdb.Empty[ledgerdb.TxnRow]()
	}
	ids = uniqueStrings(ids)
	return stream(ctx, db, txnErrRow, func(txn *badgerdb.Txn, emit func(ledgerdb.TxnRow) bool) error {
		return emitTxns(txn, ids, emit)
	})
}

// spenders lists the ids of the transactions spending link.
func spenders(txn *badgerdb.Txn, link types.TransactionLink) ([]string, error) {
	prefix := spentIndexPrefix(link)
	var ids []string
	err := scan(txn, prefix, false, true, func(item *badgerdb.Item) (bool, error) {
		ids = append(ids, string(item.Key()[len(prefix):]))
		return true, nil
	})
	return ids, err
}

// GetSpent is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetSpent(ctx context.Context, transactionID string, outputIndex uint64) <-chan ledgerdb.TxnRow {
	link := types.TransactionLink{TransactionID: transactionID, OutputIndex: outputIndex}
	return stream(ctx, db, txnErrRow, func(txn *badgerdb.Txn, emit func(ledgerdb.TxnRow) bool) error {
		ids, err := spenders(txn, link)
		if err != nil {
			return err
		}
		return emitTxns(txn, ids, emit)
	})
}

// GetSpendingTransactions is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetSpendingTransactions(ctx context.Context, links []types.TransactionLink) <-chan ledgerdb.TxnRow {
	if len(links) == 0 {
		return ledgerdb.Empty[ledgerdb.TxnRow]()
	}
	return stream(ctx, db, txnErrRow, func(txn *badgerdb.Txn, emit func(ledgerdb.TxnRow) bool) error {
		var ids []string
		for _, link := range links {
			spent, err := spenders(txn, link)
			if err != nil {
				return err
			}
			ids = append(ids, spent...)
		}
		return emitTxns(txn, uniqueStrings(ids), emit)
	})
}

// GetOwnedIDs is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetOwnedIDs(ctx context.Context, owner string) <-chan ledgerdb.TxnRow {
	return stream(ctx, db, txnErrRow, func(txn *badgerdb.Txn, emit func(ledgerdb.TxnRow) bool) error {
		prefix := makePrefix(prefixOwnerIndex, []byte(owner))
		var ids []string
		err := scan(txn, prefix, false, true, func(item *badgerdb.Item) (bool, error) {
			ids = append(ids, string(item.Key()[len(prefix):]))
			return true, nil
		})
		if err != nil {
			return err
		}
		return emitTxns(txn, ids, emit)
	})
}

// assetTxns walks the transactions of an asset in insertion order, or in
// reverse.
func assetTxns(txn *badgerdb.Txn, assetID string, reverse bool, fn func(t types.Transaction) (bool, error)) error {
	prefix := makePrefix(prefixAssetIndex, []byte(assetID))
	return scan(txn, prefix, reverse, false, func(item *badgerdb.Item) (bool, error) {
		id, err := item.ValueCopy(nil)
		if err != nil {
			return false, err
		}
		var stored storedTxn
		found, err := get(txn, txnKey(string(id)), &stored)
		if err != nil {
			return false, err
		}
		if !found {
			return false, fmt.Errorf("asset index %s points at missing transaction %s", assetID, id)
		}
		return fn(stored.Txn)
	})
}

func matchesFilter(t types.Transaction, filter ledgerdb.TxidFilter) bool {
	isCreate := t.Operation == types.OperationCreate && t.ID == filter.AssetID
	isTransfer := t.Operation == types.OperationTransfer && t.Asset != nil && t.Asset.ID == filter.AssetID
	switch filter.Operation {
	case types.OperationCreate:
		return isCreate
	case types.OperationTransfer:
		return isTransfer
	case "":
		return isCreate || isTransfer
	default:
		return false
	}
}

// GetTxidsFiltered is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetTxidsFiltered(ctx context.Context, filter ledgerdb.TxidFilter) <-chan ledgerdb.TxidRow {
	errRow := func(err error) ledgerdb.TxidRow { return ledgerdb.TxidRow{Error: err} }
	return stream(ctx, db, errRow, func(txn *badgerdb.Txn, emit func(ledgerdb.TxidRow) bool) error {
		return assetTxns(txn, filter.AssetID, filter.LastTx, func(t types.Transaction) (bool, error) {
			if !matchesFilter(t, filter) {
				return true, nil
			}
			if !emit(ledgerdb.TxidRow{Txid: t.ID}) {
				return false, nil
			}
			return !filter.LastTx, nil
		})
	})
}

func ownedExactly(t types.Transaction, publicKey string) bool {
	for _, o := range t.Outputs {
		if len(o.PublicKeys) == 1 && o.PublicKeys[0] == publicKey {
			return true
		}
	}
	return false
}

// GetAssetTokensForPublicKey is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetAssetTokensForPublicKey(ctx context.Context, assetID string, publicKey string) <-chan ledgerdb.TxnRow {
	return stream(ctx, db, txnErrRow, func(txn *badgerdb.Txn, emit func(ledgerdb.TxnRow) bool) error {
		return assetTxns(txn, assetID, false, func(t types.Transaction) (bool, error) {
			if t.Asset == nil || t.Asset.ID != assetID || !ownedExactly(t, publicKey) {
				return true, nil
			}
			return emit(ledgerdb.TxnRow{Txn: t}), nil
		})
	})
}

// DeleteTransactions is part of ledgerdb.LedgerDb. Assets and metadata go
// first, all in one write transaction.
func (db *LedgerDb) DeleteTransactions(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := db.update(func(txn *badgerdb.Txn) error {
		for _, id := range ids {
			if err := txn.Delete(assetKey(id)); err != nil {
				return err
			}
		}
		for _, id := range ids {
			if err := txn.Delete(metadataKey(id)); err != nil {
				return err
			}
		}
		for _, id := range ids {
			if err := deleteTxn(txn, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("DeleteTransactions() err: %w", err)
	}
	db.log.Debugf("DeleteTransactions() removed %d ids", len(ids))
	return nil
}
