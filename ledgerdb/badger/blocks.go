package badger

import (
	"context"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/types"
)

// StoreBlock is part of ledgerdb.LedgerDb. The block membership index of
// every transaction is written with the block.
func (db *LedgerDb) StoreBlock(ctx context.Context, block types.Block) (ledgerdb.InsertResult, error) {
	result := ledgerdb.Inserted
	err := db.update(func(txn *badgerdb.Txn) error {
		result = ledgerdb.Inserted
		found, err := exists(txn, blockKey(block.Height))
		if err != nil {
			return err
		}
		if found {
			result = ledgerdb.AlreadyExists
			return nil
		}
		if err := set(txn, blockKey(block.Height), block); err != nil {
			return err
		}
		for _, txid := range block.Transactions {
			if err := txn.Set(blockIndexKey(txid, block.Height), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ledgerdb.AlreadyExists, fmt.Errorf("StoreBlock() err: %w", err)
	}
	return result, nil
}

// GetLatestBlock is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetLatestBlock(ctx context.Context) (types.Block, bool, error) {
	var block types.Block
	var found bool
	err := db.db.View(func(txn *badgerdb.Txn) error {
		var err error
		found, err = latest(txn, prefixBlock, nil, &block)
		return err
	})
	if err != nil {
		return types.Block{}, false, fmt.Errorf("GetLatestBlock() err: %w", err)
	}
	return block, found, nil
}

// GetBlock is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetBlock(ctx context.Context, height uint64) (types.Block, bool, error) {
	var block types.Block
	var found bool
	err := db.db.View(func(txn *badgerdb.Txn) error {
		var err error
		found, err = get(txn, blockKey(height), &block)
		return err
	})
	if err != nil {
		return types.Block{}, false, fmt.Errorf("GetBlock() err: %w", err)
	}
	return block, found, nil
}

// GetBlockWithTransaction is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetBlockWithTransaction(ctx context.Context, txid string) <-chan ledgerdb.BlockRefRow {
	errRow := func(err error) ledgerdb.BlockRefRow { return ledgerdb.BlockRefRow{Error: err} }
	return stream(ctx, db, errRow, func(txn *badgerdb.Txn, emit func(ledgerdb.BlockRefRow) bool) error {
		prefix := makePrefix(prefixBlockIndex, []byte(txid))
		return scan(txn, prefix, false, true, func(item *badgerdb.Item) (bool, error) {
			return emit(ledgerdb.BlockRefRow{Height: lastUint64(item.Key())}), nil
		})
	})
}
