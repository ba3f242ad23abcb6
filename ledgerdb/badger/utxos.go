package badger

import (
	"context"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/ledgerkit/ledgerdb/internal/encoding"
	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/types"
)

// StoreUnspentOutputs is part of ledgerdb.LedgerDb.
func (db *LedgerDb) StoreUnspentOutputs(ctx context.Context, outputs ...types.UnspentOutput) (ledgerdb.BulkInsertResult, error) {
	if len(outputs) == 0 {
		return ledgerdb.BulkInsertResult{}, nil
	}
	keys := make([][]byte, len(outputs))
	values := make([]interface{}, len(outputs))
	for i, o := range outputs {
		keys[i] = utxoKey(o.Link())
		values[i] = o
	}
	inserted, err := db.insertNew(keys, values)
	if err != nil {
		return ledgerdb.BulkInsertResult{}, fmt.Errorf("StoreUnspentOutputs() err: %w", err)
	}
	return ledgerdb.MakeBulkInsertResult(len(outputs), inserted), nil
}

// DeleteUnspentOutputs is part of ledgerdb.LedgerDb.
func (db *LedgerDb) DeleteUnspentOutputs(ctx context.Context, links ...types.TransactionLink) (int64, error) {
	if len(links) == 0 {
		return 0, nil
	}
	var deleted int64
	err := db.update(func(txn *badgerdb.Txn) error {
		deleted = 0
		seen := make(map[types.TransactionLink]bool, len(links))
		for _, link := range links {
			if seen[link] {
				continue
			}
			seen[link] = true
			key := utxoKey(link)
			found, err := exists(txn, key)
			if err != nil {
				return err
			}
			if !found {
				continue
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("DeleteUnspentOutputs() err: %w", err)
	}
	return deleted, nil
}

// GetUnspentOutputs is part of ledgerdb.LedgerDb. A transaction id in the
// query narrows the scan to that transaction's outputs.
func (db *LedgerDb) GetUnspentOutputs(ctx context.Context, query *ledgerdb.UnspentOutputQuery) <-chan ledgerdb.UnspentOutputRow {
	prefix := prefixUTXO
	if query != nil && query.TransactionID != nil {
		prefix = makePrefix(prefixUTXO, []byte(*query.TransactionID))
	}
	errRow := func(err error) ledgerdb.UnspentOutputRow { return ledgerdb.UnspentOutputRow{Error: err} }
	return stream(ctx, db, errRow, func(txn *badgerdb.Txn, emit func(ledgerdb.UnspentOutputRow) bool) error {
		return scan(txn, prefix, false, false, func(item *badgerdb.Item) (bool, error) {
			var o types.UnspentOutput
			err := item.Value(func(val []byte) error {
				return encoding.DecodeJSON(val, &o)
			})
			if err != nil {
				return false, err
			}
			if !query.Matches(o) {
				return true, nil
			}
			return emit(ledgerdb.UnspentOutputRow{Output: o}), nil
		})
	})
}
