package test

import (
	"github.com/ledgerkit/ledgerdb/types"
)

var (
	// AccountA is a premade public key for use in tests.
	AccountA = "4K9H6TznYvyzNmNYbYJ4kFgkxYSF5BFqZhLUBRBSyn3r"
	// AccountB is a premade public key for use in tests.
	AccountB = "9vDqGg6s8Vks2YVZ9mrPaQK3UMUzBFkjGeYhMLiSQ9sc"
	// AccountC is a premade public key for use in tests.
	AccountC = "J7V1n1sS1xEbXDqkP9LfrYCbdiEwaTCj5ZMQsv1CQqmw"
	// AccountD is a premade public key for use in tests.
	AccountD = "3nLrQ8xYJHBKh2WZp3tF6KtdtRqDiEi2vrTNCD5CvVtk"
)

// ConditionURI is the condition uri used by the premade outputs.
const ConditionURI = "ni:///sha-256;pGSAIDE5i63cn4X8T8N1sZ2mGkJD5lNRnBM4PZgI_zvzbr-cgUNAgQ?fpt=ed25519-sha-256&cost=131072"

// MakeCreateTxn creates a CREATE transaction minting amount tokens for owner.
func MakeCreateTxn(id string, owner string, amount string, data map[string]interface{}) types.Transaction {
	return types.Transaction{
		ID:        id,
		Version:   "2.0",
		Operation: types.OperationCreate,
		Asset:     &types.AssetRef{Data: data},
		Inputs: []types.Input{
			{OwnersBefore: []string{owner}, Fulfillment: "pGSAI" + id},
		},
		Outputs: []types.Output{MakeOutput(amount, owner)},
	}
}

// MakeTransferTxn creates a TRANSFER transaction of assetID spending the
// given outputs. Each entry of outputs becomes one output owned by the listed
// keys.
func MakeTransferTxn(id string, assetID string, spends []types.TransactionLink, outputs ...types.Output) types.Transaction {
	txn := types.Transaction{
		ID:        id,
		Version:   "2.0",
		Operation: types.OperationTransfer,
		Asset:     &types.AssetRef{ID: assetID},
		Outputs:   outputs,
	}
	for i := range spends {
		link := spends[i]
		txn.Inputs = append(txn.Inputs, types.Input{
			OwnersBefore: []string{AccountA},
			Fulfills:     &link,
			Fulfillment:  "pGSAI" + id,
		})
	}
	return txn
}

// MakeOutput creates an output owned by the given keys.
func MakeOutput(amount string, owners ...string) types.Output {
	return types.Output{
		PublicKeys: owners,
		Amount:     amount,
		Condition:  types.Condition{URI: ConditionURI},
	}
}

// Link is shorthand for a TransactionLink.
func Link(txid string, index uint64) types.TransactionLink {
	return types.TransactionLink{TransactionID: txid, OutputIndex: index}
}
