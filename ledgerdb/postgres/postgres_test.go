package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledgerdb/internal/textindex"
	"github.com/ledgerkit/ledgerdb/ledgerdb"
)

func strPtr(s string) *string { return &s }

func uint64Ptr(x uint64) *uint64 { return &x }

func TestBuildUnspentOutputsQuery(t *testing.T) {
	sql, args := buildUnspentOutputsQuery(nil)
	assert.Equal(t, "SELECT doc FROM utxos ORDER BY transaction_id, output_index", sql)
	assert.Empty(t, args)

	sql, args = buildUnspentOutputsQuery(&ledgerdb.UnspentOutputQuery{
		TransactionID: strPtr("t1"),
		ConditionURI:  strPtr("ni:///sha-256;abc"),
	})
	assert.Equal(t, "SELECT doc FROM utxos WHERE transaction_id = $1 AND condition_uri = $2 ORDER BY transaction_id, output_index", sql)
	assert.Equal(t, []interface{}{"t1", "ni:///sha-256;abc"}, args)

	sql, args = buildUnspentOutputsQuery(&ledgerdb.UnspentOutputQuery{
		OutputIndex: uint64Ptr(3),
		AssetID:     strPtr("a1"),
	})
	assert.Contains(t, sql, "WHERE output_index = $1 AND asset_id = $2")
	assert.Equal(t, []interface{}{int64(3), "a1"}, args)
}

func TestBuildTextSearchQuery(t *testing.T) {
	tests := []struct {
		name          string
		opts          ledgerdb.TextSearchOptions
		caseSensitive bool
		diacritics    bool
		table         string
		tokens        string
	}{
		{name: "insensitive", table: "FROM assets"},
		{name: "metadata", opts: ledgerdb.TextSearchOptions{Collection: ledgerdb.CollectionMetadata}, table: "FROM metadata"},
		{name: "case", caseSensitive: true, table: "FROM assets", tokens: "tokens_cased ?| $3::text[]"},
		{name: "diacritic", diacritics: true, table: "FROM assets", tokens: "tokens_lower ?| $3::text[]"},
		{name: "both", caseSensitive: true, diacritics: true, table: "FROM assets", tokens: "tokens_raw ?| $3::text[]"},
		{name: "limit", opts: ledgerdb.TextSearchOptions{Limit: 5}, table: "FROM assets"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := tc.opts.Normalize()
			require.NoError(t, err)
			query := textindex.ParseQuery("Crème Kayak", tc.caseSensitive, tc.diacritics)

			sql, args := buildTextSearchQuery(query, opts)
			assert.Contains(t, sql, tc.table)
			assert.Equal(t, "english", args[0])
			assert.Equal(t, "creme | kayak", args[1])
			if tc.tokens == "" {
				assert.NotContains(t, sql, "?|")
				assert.Len(t, args, 2)
			} else {
				assert.Contains(t, sql, tc.tokens)
				assert.Equal(t, query.SensitiveTerms(), args[2])
			}
			if opts.Limit != 0 {
				assert.Contains(t, sql, "LIMIT 5")
			} else {
				assert.NotContains(t, sql, "LIMIT")
			}
		})
	}
}

// Empty key lists never reach the database.
func TestEmptyWritesIssueNoQuery(t *testing.T) {
	db := &LedgerDb{}
	ctx := context.Background()

	deleted, err := db.DeleteUnspentOutputs(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	result, err := db.StoreUnspentOutputs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total())

	result, err = db.StoreTransactions(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total())

	require.NoError(t, db.DeleteTransactions(ctx, nil))

	_, ok := <-db.GetTransactions(ctx, nil)
	assert.False(t, ok)
}
