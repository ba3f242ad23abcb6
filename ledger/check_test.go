package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/ledgerdb/mocks"
	"github.com/ledgerkit/ledgerdb/types"
	testutil "github.com/ledgerkit/ledgerdb/util/test"
)

func TestCheckUnspentOutputs(t *testing.T) {
	l, _ := setupLedger(t)
	ctx := context.Background()
	create, transfer := makeTxns()
	require.NoError(t, l.Commit(ctx, CommitRequest{Height: 1, Transactions: []types.Transaction{create}}))
	require.NoError(t, l.Commit(ctx, CommitRequest{Height: 2, Transactions: []types.Transaction{transfer}}))

	result, err := l.CheckUnspentOutputs(ctx, 4)
	require.NoError(t, err)
	assert.True(t, result.Consistent())
	assert.Equal(t, 2, result.Checked)

	// Put the spent output back and spend t2:0 twice.
	_, err = l.DB().StoreUnspentOutputs(ctx, create.UnspentOutputs()...)
	require.NoError(t, err)
	double1 := testutil.MakeTransferTxn("t3", "t1", []types.TransactionLink{testutil.Link("t2", 0)}, testutil.MakeOutput("4", testutil.AccountC))
	double2 := testutil.MakeTransferTxn("t4", "t1", []types.TransactionLink{testutil.Link("t2", 0)}, testutil.MakeOutput("4", testutil.AccountD))
	_, err = l.StoreBulkTransactions(ctx, []types.Transaction{double1, double2})
	require.NoError(t, err)

	result, err = l.CheckUnspentOutputs(ctx, 2)
	require.NoError(t, err)
	assert.False(t, result.Consistent())
	assert.Equal(t, 3, result.Checked)
	assert.Equal(t, []types.TransactionLink{testutil.Link("t1", 0)}, result.Spent)
	assert.Equal(t, []types.TransactionLink{testutil.Link("t2", 0)}, result.DoubleSpent)
}

func TestCheckUnspentOutputsEmpty(t *testing.T) {
	l, _ := setupLedger(t)

	result, err := l.CheckUnspentOutputs(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, result.Consistent())
	assert.Zero(t, result.Checked)
}

func TestCheckUnspentOutputsRowError(t *testing.T) {
	logger, _ := test.NewNullLogger()
	db := &mocks.LedgerDb{}
	boom := errors.New("boom")
	db.On("GetUnspentOutputs", mock.Anything, mock.Anything).
		Return(ledgerdb.ErrorRow(ledgerdb.UnspentOutputRow{Error: boom}))

	l := MakeLedger(db, nil, logger)
	_, err := l.CheckUnspentOutputs(context.Background(), 3)
	assert.ErrorIs(t, err, boom)
}
