package dummy

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/types"
)

func TestDummyFindsNothing(t *testing.T) {
	logger, _ := test.NewNullLogger()
	db, ch, err := ledgerdb.LedgerDbByName("dummy", "", ledgerdb.LedgerDbOptions{}, logger)
	require.NoError(t, err)
	<-ch
	ctx := context.Background()

	res, err := db.StoreTransactions(ctx, []types.Transaction{{ID: "t1"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)

	_, found, err := db.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, found)

	txns, err := ledgerdb.CollectTransactions(db.GetTransactions(ctx, []string{"t1"}))
	require.NoError(t, err)
	assert.Empty(t, txns)

	health, err := db.Health(ctx)
	require.NoError(t, err)
	assert.True(t, health.DBAvailable)
}
