package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/ledgerkit/ledgerdb/internal/encoding"
	"github.com/ledgerkit/ledgerdb/internal/textindex"
	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/types"
)

// insertNew writes every key that is not stored yet and counts them. A batch
// too large for one badger transaction is split in halves, each key is
// idempotent so partial progress is safe.
func (db *LedgerDb) insertNew(keys [][]byte, values []interface{}) (int64, error) {
	inserted, err := db.insertNewTxn(keys, values)
	if errors.Is(err, ledgerdb.ErrBatchTooLarge) && len(keys) > 1 {
		half := len(keys) / 2
		db.log.Debugf("insertNew() splitting %d keys", len(keys))
		first, err := db.insertNew(keys[:half], values[:half])
		if err != nil {
			return first, err
		}
		second, err := db.insertNew(keys[half:], values[half:])
		return first + second, err
	}
	return inserted, err
}

func (db *LedgerDb) insertNewTxn(keys [][]byte, values []interface{}) (int64, error) {
	var inserted int64
	err := db.update(func(txn *badgerdb.Txn) error {
		inserted = 0
		seen := make(map[string]bool, len(keys))
		for i, key := range keys {
			if seen[string(key)] {
				continue
			}
			seen[string(key)] = true
			found, err := exists(txn, key)
			if err != nil {
				return err
			}
			if found {
				continue
			}
			if err := set(txn, key, values[i]); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	return inserted, err
}

// StoreAsset is part of ledgerdb.LedgerDb.
func (db *LedgerDb) StoreAsset(ctx context.Context, asset types.Asset) (ledgerdb.InsertResult, error) {
	inserted, err := db.insertNew([][]byte{assetKey(asset.ID)}, []interface{}{asset})
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
	keys := make([][]byte, len(assets))
	values := make([]interface{}, len(assets))
	for i, a := range assets {
		keys[i] = assetKey(a.ID)
		values[i] = a
	}
	inserted, err := db.insertNew(keys, values)
	if err != nil {
		return ledgerdb.BulkInsertResult{}, fmt.Errorf("StoreAssets() err: %w", err)
	}
	return ledgerdb.MakeBulkInsertResult(len(assets), inserted), nil
}

// GetAsset is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetAsset(ctx context.Context, id string) (map[string]interface{}, bool, error) {
	var asset types.Asset
	var found bool
	err := db.db.View(func(txn *badgerdb.Txn) error {
		var err error
		found, err = get(txn, assetKey(id), &asset)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("GetAsset() err: %w", err)
	}
	return asset.Data, found, nil
}

// GetAssets is part of ledgerdb.LedgerDb.
func (db *LedgerDb) GetAssets(ctx context.Context, ids []string) <-chan ledgerdb.AssetRow {
	if len(ids) == 0 {
		return ledgerdb.Empty[ledgerdb.AssetRow]()
	}
	ids = uniqueStrings(ids)
	errRow := func(err error) ledgerdb.AssetRow { return ledgerdb.AssetRow{Error: err} }
	return stream(ctx, db, errRow, func(txn *badgerdb.Txn, emit func(ledgerdb.AssetRow) bool) error {
		for _, id := range ids {
			var asset types.Asset
			found, err := get(txn, assetKey(id), &asset)
			if err != nil {
				return err
			}
			if found && !emit(ledgerdb.AssetRow{Asset: asset}) {
				return nil
			}
		}
		return nil
	})
}

// StoreMetadatas is part of ledgerdb.LedgerDb.
func (db *LedgerDb) StoreMetadatas(ctx context.Context, metadatas []types.Metadata) (ledgerdb.BulkInsertResult, error) {
	if len(metadatas) == 0 {
		return ledgerdb.BulkInsertResult{}, nil
	}
	keys := make([][]byte, len(metadatas))
	values := make([]interface{}, len(metadatas))
	for i, m := range metadatas {
		keys[i] = metadataKey(m.ID)
		values[i] = m
	}
	inserted, err := db.insertNew(keys, values)
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
	ids = uniqueStrings(ids)
	errRow := func(err error) ledgerdb.MetadataRow { return ledgerdb.MetadataRow{Error: err} }
	return stream(ctx, db, errRow, func(txn *badgerdb.Txn, emit func(ledgerdb.MetadataRow) bool) error {
		for _, id := range ids {
			var m types.Metadata
			found, err := get(txn, metadataKey(id), &m)
			if err != nil {
				return err
			}
			if found && !emit(ledgerdb.MetadataRow{Metadata: m}) {
				return nil
			}
		}
		return nil
	})
}

type searchHit struct {
	doc   map[string]interface{}
	score float64
}

// TextSearch is part of ledgerdb.LedgerDb. Every document of the collection
// is scored in memory; there is no stemming.
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

	prefix, field := prefixAsset, "data"
	if opts.Collection == ledgerdb.CollectionMetadata {
		prefix, field = prefixMetadata, "metadata"
	}

	return stream(ctx, db, errRow, func(txn *badgerdb.Txn, emit func(ledgerdb.TextSearchRow) bool) error {
		var hits []searchHit
		err := scan(txn, prefix, false, false, func(item *badgerdb.Item) (bool, error) {
			var doc map[string]interface{}
			err := item.Value(func(val []byte) error {
				var err error
				doc, err = encoding.DecodeDocument(val)
				return err
			})
			if err != nil {
				return false, err
			}
			if score, ok := query.Match(textindex.Index(doc[field])); ok {
				hits = append(hits, searchHit{doc: doc, score: score})
			}
			return ctx.Err() == nil, nil
		})
		if err != nil {
			return err
		}

		sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
		if opts.Limit != 0 && uint64(len(hits)) > opts.Limit {
			hits = hits[:opts.Limit]
		}
		for _, hit := range hits {
			row := ledgerdb.TextSearchRow{Document: hit.doc}
			if opts.TextScore {
				score := hit.score
				row.Score = &score
			}
			if !emit(row) {
				return nil
			}
		}
		return nil
	})
}
