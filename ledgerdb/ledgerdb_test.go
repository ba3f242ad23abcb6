package ledgerdb_test

import (
	"errors"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/types"
)

func TestInsertResultString(t *testing.T) {
	assert.Equal(t, "inserted", ledgerdb.Inserted.String())
	assert.Equal(t, "already-exists", ledgerdb.AlreadyExists.String())
	assert.Equal(t, "unknown", ledgerdb.InsertResult(9).String())
}

func TestMakeBulkInsertResult(t *testing.T) {
	res := ledgerdb.MakeBulkInsertResult(5, 3)
	assert.Equal(t, ledgerdb.BulkInsertResult{Inserted: 3, AlreadyExisted: 2}, res)
	assert.Equal(t, 5, res.Total())
}

func TestParseCollection(t *testing.T) {
	for _, c := range ledgerdb.Collections() {
		parsed, err := ledgerdb.ParseCollection(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	_, err := ledgerdb.ParseCollection("accounts")
	assert.Error(t, err)
}

func TestSearchable(t *testing.T) {
	var searchable []ledgerdb.Collection
	for _, c := range ledgerdb.Collections() {
		if c.Searchable() {
			searchable = append(searchable, c)
		}
	}
	assert.Equal(t, []ledgerdb.Collection{ledgerdb.CollectionAssets, ledgerdb.CollectionMetadata}, searchable)
}

func TestTextSearchOptionsNormalize(t *testing.T) {
	opts, err := ledgerdb.TextSearchOptions{}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "english", opts.Language)
	assert.Equal(t, ledgerdb.CollectionAssets, opts.Collection)

	opts, err = ledgerdb.TextSearchOptions{Language: "None", Collection: ledgerdb.CollectionMetadata}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "none", opts.Language)
	cfg, ok := ledgerdb.TextSearchConfig(opts.Language)
	assert.True(t, ok)
	assert.Equal(t, "simple", cfg)

	_, err = ledgerdb.TextSearchOptions{Language: "klingon"}.Normalize()
	assert.True(t, errors.Is(err, ledgerdb.ErrUnsupportedLanguage))

	_, err = ledgerdb.TextSearchOptions{Collection: ledgerdb.CollectionBlocks}.Normalize()
	assert.True(t, errors.Is(err, ledgerdb.ErrNotSearchable))
}

func TestUnspentOutputQueryMatches(t *testing.T) {
	u := types.UnspentOutput{TransactionID: "t1", OutputIndex: 1, AssetID: "a1", ConditionURI: "ni:///x"}
	txid := "t1"
	other := "t2"
	idx := uint64(1)
	asset := "a1"

	var nilQuery *ledgerdb.UnspentOutputQuery
	assert.True(t, nilQuery.Matches(u))
	assert.True(t, (&ledgerdb.UnspentOutputQuery{}).Matches(u))
	assert.True(t, (&ledgerdb.UnspentOutputQuery{TransactionID: &txid, OutputIndex: &idx, AssetID: &asset}).Matches(u))
	assert.False(t, (&ledgerdb.UnspentOutputQuery{TransactionID: &other}).Matches(u))
}

func TestCollectStopsAtError(t *testing.T) {
	rows := make(chan ledgerdb.TxidRow, 3)
	rows <- ledgerdb.TxidRow{Txid: "a"}
	rows <- ledgerdb.TxidRow{Error: errors.New("boom")}
	close(rows)

	ids, err := ledgerdb.CollectTxids(rows)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"a"}, ids)
}

func TestEmptyAndErrorRow(t *testing.T) {
	ids, err := ledgerdb.CollectTxids(ledgerdb.Empty[ledgerdb.TxidRow]())
	assert.NoError(t, err)
	assert.Empty(t, ids)

	_, err = ledgerdb.CollectTransactions(ledgerdb.ErrorRow(ledgerdb.TxnRow{Error: ledgerdb.ErrNotSearchable}))
	assert.ErrorIs(t, err, ledgerdb.ErrNotSearchable)
}

type testFactory struct{}

func (testFactory) Name() string { return "test-factory" }

func (testFactory) Build(arg string, opts ledgerdb.LedgerDbOptions, log *log.Logger) (ledgerdb.LedgerDb, chan struct{}, error) {
	ch := make(chan struct{})
	close(ch)
	return nil, ch, nil
}

func TestFactoryRegistry(t *testing.T) {
	ledgerdb.RegisterFactory("test-factory", testFactory{})
	assert.Contains(t, ledgerdb.FactoryNames(), "test-factory")

	_, ch, err := ledgerdb.LedgerDbByName("test-factory", "", ledgerdb.LedgerDbOptions{}, log.New())
	require.NoError(t, err)
	<-ch

	_, _, err = ledgerdb.LedgerDbByName("missing", "", ledgerdb.LedgerDbOptions{}, log.New())
	assert.EqualError(t, err, "no LedgerDb factory for missing")
}
