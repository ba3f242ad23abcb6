package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"

	"github.com/ledgerkit/ledgerdb/internal/encoding"
	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/types"
)

// StoreBlock is part of ledgerdb.LedgerDb.
func (db *LedgerDb) StoreBlock(ctx context.Context, block types.Block) (ledgerdb.InsertResult, error) {
	cmd, err := db.db.Exec(ctx, insertBlockQuery, block.Height, string(encoding.EncodeJSON(block)))
	if err != nil {
		return ledgerdb.AlreadyExists, fmt.Errorf("StoreBlock() err: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ledgerdb.AlreadyExists, nil
	}
	return ledgerdb.Inserted, nil
}

// GetLatestBlock is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetLatestBlock(ctx context.Context) (types.Block, bool, error) {
	var block types.Block
	found, err := db.queryDoc(ctx, &block, getLatestBlockQuery)
	if err != nil {
		return types.Block{}, false, fmt.Errorf("GetLatestBlock() err: %w", err)
	}
	return block, found, nil
}

// GetBlock is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetBlock(ctx context.Context, height uint64) (types.Block, bool, error) {
	var block types.Block
	found, err := db.queryDoc(ctx, &block, getBlockQuery, height)
	if err != nil {
		return types.Block{}, false, fmt.Errorf("GetBlock() err: %w", err)
	}
	return block, found, nil
}

// GetBlockWithTransaction is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetBlockWithTransaction(ctx context.Context, txid string) <-chan ledgerdb.BlockRefRow {
	errRow := func(err error) ledgerdb.BlockRefRow { return ledgerdb.BlockRefRow{Error: err} }
	scan := func(rows pgx.Rows) (ledgerdb.BlockRefRow, error) {
		var height int64
		err := rows.Scan(&height)
		return ledgerdb.BlockRefRow{Height: uint64(height)}, err
	}
	return yield(ctx, db, errRow, scan, getBlocksWithTransactionQuery, string(encoding.EncodeJSON([]string{txid})))
}
