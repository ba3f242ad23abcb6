package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"

	"github.com/ledgerkit/ledgerdb/internal/encoding"
	"github.com/ledgerkit/ledgerdb/internal/textindex"
	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/types"
)

// searchRow is one asset or metadata row with its search columns.
type searchRow struct {
	ID          string                 `codec:"id"`
	Doc         map[string]interface{} `codec:"doc"`
	SearchText  string                 `codec:"search_text"`
	TokensRaw   []string               `codec:"tokens_raw"`
	TokensCased []string               `codec:"tokens_cased"`
	TokensLower []string               `codec:"tokens_lower"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func makeSearchRow(id string, doc map[string]interface{}) searchRow {
	text := textindex.Index(doc)
	return searchRow{
		ID:          id,
		Doc:         doc,
		SearchText:  text.Folded,
		TokensRaw:   nonNil(text.Tokens(textindex.VariantRaw)),
		TokensCased: nonNil(text.Tokens(textindex.VariantCased)),
		TokensLower: nonNil(text.Tokens(textindex.VariantLower)),
	}
}

func (db *LedgerDb) insertSearchRows(ctx context.Context, query string, rows []searchRow) (int64, error) {
	cmd, err := db.db.Exec(ctx, query, string(encoding.EncodeJSON(rows)))
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// StoreAsset is part of ledgerdb.LedgerDb.
func (db *LedgerDb) StoreAsset(ctx context.Context, asset types.Asset) (ledgerdb.InsertResult, error) {
	inserted, err := db.insertSearchRows(ctx, insertAssetsQuery, []searchRow{makeSearchRow(asset.ID, asset.Data)})
	if err != nil {
		return ledgerdb.AlreadyExists, fmt.Errorf("StoreAsset() err: %w", err)
	}
	if inserted == 0 {
		return ledgerdb.AlreadyExists, nil
	}
	return ledgerdb.Inserted, nil
}

// StoreAssets is part of ledgerdb.LedgerDb.
func (db *LedgerDb) StoreAssets(ctx context.Context, assets []types.Asset) (ledgerdb.BulkInsertResult, error) {
	if len(assets) == 0 {
		return ledgerdb.BulkInsertResult{}, nil
	}
	rows := make([]searchRow, 0, len(assets))
	for _, asset := range assets {
		rows = append(rows, makeSearchRow(asset.ID, asset.Data))
	}
	inserted, err := db.insertSearchRows(ctx, insertAssetsQuery, rows)
	if err != nil {
		return ledgerdb.BulkInsertResult{}, fmt.Errorf("StoreAssets() err: %w", err)
	}
	return ledgerdb.MakeBulkInsertResult(len(assets), inserted), nil
}

// GetAsset is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetAsset(ctx context.Context, id string) (map[string]interface{}, bool, error) {
	var data map[string]interface{}
	found, err := db.queryDoc(ctx, &data, getAssetQuery, id)
	if err != nil {
		return nil, false, fmt.Errorf("GetAsset() err: %w", err)
	}
	return data, found, nil
}

// scanIDDoc reads an (id, jsonb) row.
func scanIDDoc(rows pgx.Rows) (string, map[string]interface{}, error) {
	var id string
	var doc []byte
	if err := rows.Scan(&id, &doc); err != nil {
		return "", nil, err
	}
	var data map[string]interface{}
	if err := encoding.DecodeJSON(doc, &data); err != nil {
		return "", nil, fmt.Errorf("decoding '%s' err: %w", doc, err)
	}
	return id, data, nil
}

// GetAssets is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetAssets(ctx context.Context, ids []string) <-chan ledgerdb.AssetRow {
	if len(ids) == 0 {
		return ledgerdb.Empty[ledgerdb.AssetRow]()
	}
	errRow := func(err error) ledgerdb.AssetRow { return ledgerdb.AssetRow{Error: err} }
	scan := func(rows pgx.Rows) (ledgerdb.AssetRow, error) {
		id, data, err := scanIDDoc(rows)
		return ledgerdb.AssetRow{Asset: types.Asset{ID: id, Data: data}}, err
	}
	return yield(ctx, db, errRow, scan, getAssetsQuery, ids)
}

// StoreMetadatas is part of ledgerdb.LedgerDb.
func (db *LedgerDb) StoreMetadatas(ctx context.Context, metadatas []types.Metadata) (ledgerdb.BulkInsertResult, error) {
	if len(metadatas) == 0 {
		return ledgerdb.BulkInsertResult{}, nil
	}
	rows := make([]searchRow, 0, len(metadatas))
	for _, m := range metadatas {
		rows = append(rows, makeSearchRow(m.ID, m.Metadata))
	}
	inserted, err := db.insertSearchRows(ctx, insertMetadataQuery, rows)
	if err != nil {
		return ledgerdb.BulkInsertResult{}, fmt.Errorf("StoreMetadatas() err: %w", err)
	}
	return ledgerdb.MakeBulkInsertResult(len(metadatas), inserted), nil
}

// GetMetadata is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetMetadata(ctx context.Context, ids []string) <-chan ledgerdb.MetadataRow {
	if len(ids) == 0 {
		return ledgerdb.Empty[ledgerdb.MetadataRow]()
	}
	errRow := func(err error) ledgerdb.MetadataRow { return ledgerdb.MetadataRow{Error: err} }
	scan := func(rows pgx.Rows) (ledgerdb.MetadataRow, error) {
		id, metadata, err := scanIDDoc(rows)
		return ledgerdb.MetadataRow{Metadata: types.Metadata{ID: id, Metadata: metadata}}, err
	}
	return yield(ctx, db, errRow, scan, getMetadataQuery, ids)
}

// buildTextSearchQuery ranks the documents matching any folded term. A case
// or diacritic sensitive search also requires one of the terms to appear
// verbatim in the matching token column.
func buildTextSearchQuery(query textindex.Query, opts ledgerdb.TextSearchOptions) (string, []interface{}) {
	table, column := "assets", "data"
	if opts.Collection == ledgerdb.CollectionMetadata {
		table, column = "metadata", "metadata"
	}
	config, _ := ledgerdb.TextSearchConfig(opts.Language)

	whereArgs := []interface{}{config, strings.Join(query.Folded, " | ")}
	sql := fmt.Sprintf(`SELECT id, %s, ts_rank(to_tsvector($1::regconfig, search_text), q) AS score
		FROM %s, to_tsquery($1::regconfig, $2) q
		WHERE to_tsvector($1::regconfig, search_text) @@ q`, column, table)

	var tokens string
	switch query.Variant() {
	case textindex.VariantRaw:
		tokens = "tokens_raw"
	case textindex.VariantCased:
		tokens = "tokens_cased"
	case textindex.VariantLower:
		tokens = "tokens_lower"
	}
	if tokens != "" {
		sql += fmt.Sprintf(" AND %s ?| $3::text[]", tokens)
		whereArgs = append(whereArgs, query.SensitiveTerms())
	}

	sql += " ORDER BY score DESC, id"
	if opts.Limit != 0 {
		sql += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	return sql, whereArgs
}

// TextSearch is part of ledgerdb.LedgerDb.
func (db *LedgerDb) TextSearch(ctx context.Context, search string, opts ledgerdb.TextSearchOptions) <-chan ledgerdb.TextSearchRow {
	errRow := func(err error) ledgerdb.TextSearchRow { return ledgerdb.TextSearchRow{Error: err} }
	opts, err := opts.Normalize()
	if err != nil {
		return ledgerdb.ErrorRow(errRow(fmt.Errorf("TextSearch() err: %w", err)))
	}
	query := textindex.ParseQuery(search, opts.CaseSensitive, opts.DiacriticSensitive).DropStopwords(opts.Language)
	if query.Empty() {
		return ledgerdb.Empty[ledgerdb.TextSearchRow]()
	}

	field := "data"
	if opts.Collection == ledgerdb.CollectionMetadata {
		field = "metadata"
	}
	scan := func(rows pgx.Rows) (ledgerdb.TextSearchRow, error) {
		var id string
		var doc []byte
		var score float32
		if err := rows.Scan(&id, &doc, &score); err != nil {
			return ledgerdb.TextSearchRow{}, err
		}
		var data map[string]interface{}
		if err := encoding.DecodeJSON(doc, &data); err != nil {
			return ledgerdb.TextSearchRow{}, fmt.Errorf("decoding '%s' err: %w", doc, err)
		}
		row := ledgerdb.TextSearchRow{Document: map[string]interface{}{"id": id, field: data}}
		if opts.TextScore {
			s := float64(score)
			row.Score = &s
		}
		return row, nil
	}

	sql, whereArgs := buildTextSearchQuery(query, opts)
	return yield(ctx, db, errRow, scan, sql, whereArgs...)
}
