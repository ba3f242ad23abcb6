package types

// Block is a finalized block. Only transaction ids are kept, the bodies live
// in the transaction collection.
type Block struct {
	Height       uint64   `codec:"height" json:"height"`
	AppHash      string   `codec:"app_hash" json:"app_hash"`
	Transactions []string `codec:"transactions" json:"transactions"`
}

// UnspentOutput is an output that no stored transaction spends yet.
type UnspentOutput struct {
	TransactionID string `codec:"transaction_id" json:"transaction_id"`
	OutputIndex   uint64 `codec:"output_index" json:"output_index"`
	Amount        string `codec:"amount,omitempty" json:"amount,omitempty"`
	AssetID       string `codec:"asset_id,omitempty" json:"asset_id,omitempty"`
	ConditionURI  string `codec:"condition_uri,omitempty" json:"condition_uri,omitempty"`
}

// Link returns the (transaction_id, output_index) key of the output.
func (u UnspentOutput) Link() TransactionLink {
	return TransactionLink{TransactionID: u.TransactionID, OutputIndex: u.OutputIndex}
}

// PreCommitState is the in-flight record written before a block is
// finalized. It is read once at startup to recover from a crash mid-commit.
type PreCommitState struct {
	CommitID     string   `codec:"commit_id" json:"commit_id"`
	Height       uint64   `codec:"height" json:"height"`
	Round        uint64   `codec:"round,omitempty" json:"round,omitempty"`
	Transactions []string `codec:"transactions" json:"transactions"`
}

// PublicKey is a typed validator key.
type PublicKey struct {
	Type  string `codec:"type" json:"type"`
	Value string `codec:"value" json:"value"`
}

// Validator is one member of a validator set.
type Validator struct {
	PublicKey   PublicKey `codec:"public_key" json:"public_key"`
	VotingPower uint64    `codec:"voting_power" json:"voting_power"`
}

// ValidatorSet is the validator set in effect from Height onwards.
type ValidatorSet struct {
	Height     uint64      `codec:"height" json:"height"`
	Validators []Validator `codec:"validators" json:"validators"`
}

// Election records the outcome of an election at a height.
type Election struct {
	ElectionID  string `codec:"election_id" json:"election_id"`
	Height      uint64 `codec:"height" json:"height"`
	IsConcluded bool   `codec:"is_concluded" json:"is_concluded"`
}

// ABCIChain records which chain the node follows from Height onwards.
type ABCIChain struct {
	Height   uint64 `codec:"height" json:"height"`
	ChainID  string `codec:"chain_id" json:"chain_id"`
	IsSynced bool   `codec:"is_synced" json:"is_synced"`
}

// MakeABCIChain returns a synced chain record.
func MakeABCIChain(height uint64, chainID string) ABCIChain {
	return ABCIChain{Height: height, ChainID: chainID, IsSynced: true}
}
