package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"

	"github.com/ledgerkit/ledgerdb/internal/encoding"
	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/types"
)

// StoreUnspentOutputs is part of ledgerdb.LedgerDb.
func (db *LedgerDb) StoreUnspentOutputs(ctx context.Context, outputs ...types.UnspentOutput) (ledgerdb.BulkInsertResult, error) {
	if len(outputs) == 0 {
		return ledgerdb.BulkInsertResult{}, nil
	}
	cmd, err := db.db.Exec(ctx, insertUnspentOutputsQuery, string(encoding.EncodeJSON(outputs)))
	if err != nil {
		return ledgerdb.BulkInsertResult{}, fmt.Errorf("StoreUnspentOutputs() err: %w", err)
	}
	return ledgerdb.MakeBulkInsertResult(len(outputs), cmd.RowsAffected()), nil
}

// DeleteUnspentOutputs is part of ledgerdb.LedgerDb. No statement is issued
// for an empty key list.
func (db *LedgerDb) DeleteUnspentOutputs(ctx context.Context, links ...types.TransactionLink) (int64, error) {
	if len(links) == 0 {
		return 0, nil
	}
	txids := make([]string, len(links))
	indexes := make([]int64, len(links))
	for i, link := range links {
		txids[i] = link.TransactionID
		indexes[i] = int64(link.OutputIndex)
	}
	cmd, err := db.db.Exec(ctx, deleteUnspentOutputsQuery, txids, indexes)
	if err != nil {
		return 0, fmt.Errorf("DeleteUnspentOutputs() err: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func buildUnspentOutputsQuery(query *ledgerdb.UnspentOutputQuery) (string, []interface{}) {
	const maxWhereParts = 4
	whereParts := make([]string, 0, maxWhereParts)
	whereArgs := make([]interface{}, 0, maxWhereParts)
	partNumber := 1

	if query != nil {
		if query.TransactionID != nil {
			whereParts = append(whereParts, fmt.Sprintf("transaction_id = $%d", partNumber))
			whereArgs = append(whereArgs, *query.TransactionID)
			partNumber++
		}
		if query.OutputIndex != nil {
			whereParts = append(whereParts, fmt.Sprintf("output_index = $%d", partNumber))
			whereArgs = append(whereArgs, int64(*query.OutputIndex))
			partNumber++
		}
		if query.AssetID != nil {
			whereParts = append(whereParts, fmt.Sprintf("asset_id = $%d", partNumber))
			whereArgs = append(whereArgs, *query.AssetID)
			partNumber++
		}
		if query.ConditionURI != nil {
			whereParts = append(whereParts, fmt.Sprintf("condition_uri = $%d", partNumber))
			whereArgs = append(whereArgs, *query.ConditionURI)
			partNumber++
		}
	}

	sql := "SELECT doc FROM utxos"
	if len(whereParts) > 0 {
		sql += " WHERE " + strings.Join(whereParts, " AND ")
	}
	sql += " ORDER BY transaction_id, output_index"
	return sql, whereArgs
}

// GetUnspentOutputs is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetUnspentOutputs(ctx context.Context, query *ledgerdb.UnspentOutputQuery) <-chan ledgerdb.UnspentOutputRow {
	errRow := func(err error) ledgerdb.UnspentOutputRow { return ledgerdb.UnspentOutputRow{Error: err} }
	scan := func(rows pgx.Rows) (ledgerdb.UnspentOutputRow, error) {
		output, err := scanDoc[types.UnspentOutput](rows)
		return ledgerdb.UnspentOutputRow{Output: output}, err
	}
	sql, whereArgs := buildUnspentOutputsQuery(query)
	return yield(ctx, db, errRow, scan, sql, whereArgs...)
}
