package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeTransfer() Transaction {
	return Transaction{
		ID:        "t2",
		Operation: OperationTransfer,
		Asset:     &AssetRef{ID: "t1"},
		Inputs: []Input{
			{OwnersBefore: []string{"alice"}, Fulfills: &TransactionLink{TransactionID: "t1", OutputIndex: 0}},
			{OwnersBefore: []string{"alice"}, Fulfills: &TransactionLink{TransactionID: "t1", OutputIndex: 2}},
		},
		Outputs: []Output{
			{PublicKeys: []string{"bob"}, Amount: "3", Condition: Condition{URI: "ni:///sha-256;bob"}},
			{PublicKeys: []string{"alice", "carol"}, Amount: "1", Condition: Condition{URI: "ni:///sha-256;multi"}},
		},
	}
}

func TestAssetID(t *testing.T) {
	create := Transaction{ID: "t1", Operation: OperationCreate, Asset: &AssetRef{Data: map[string]interface{}{"k": "v"}}}
	assert.Equal(t, "t1", create.AssetID())
	assert.Equal(t, "t1", makeTransfer().AssetID())
	assert.Equal(t, "", Transaction{ID: "x", Operation: "VALIDATOR_ELECTION"}.AssetID())
}

func TestSpentOutputs(t *testing.T) {
	create := Transaction{ID: "t1", Operation: OperationCreate, Inputs: []Input{{OwnersBefore: []string{"alice"}}}}
	assert.Empty(t, create.SpentOutputs())

	assert.Equal(t, []TransactionLink{
		{TransactionID: "t1", OutputIndex: 0},
		{TransactionID: "t1", OutputIndex: 2},
	}, makeTransfer().SpentOutputs())
}

func TestUnspentOutputs(t *testing.T) {
	utxos := makeTransfer().UnspentOutputs()
	assert.Equal(t, []UnspentOutput{
		{TransactionID: "t2", OutputIndex: 0, Amount: "3", AssetID: "t1", ConditionURI: "ni:///sha-256;bob"},
		{TransactionID: "t2", OutputIndex: 1, Amount: "1", AssetID: "t1", ConditionURI: "ni:///sha-256;multi"},
	}, utxos)
	assert.Equal(t, TransactionLink{TransactionID: "t2", OutputIndex: 1}, utxos[1].Link())
}

func TestHasOwner(t *testing.T) {
	txn := makeTransfer()
	assert.True(t, txn.HasOwner("bob"))
	assert.True(t, txn.HasOwner("carol"))
	assert.False(t, txn.HasOwner("dave"))
}

func TestMakeABCIChain(t *testing.T) {
	chain := MakeABCIChain(7, "chain-A")
	assert.Equal(t, ABCIChain{Height: 7, ChainID: "chain-A", IsSynced: true}, chain)
}
