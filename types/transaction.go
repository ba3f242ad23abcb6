package types

// Operation is the kind of a transaction.
type Operation string

// Known operations. Other operations (e.g. elections) are stored verbatim.
const (
	OperationCreate   Operation = "CREATE"
	OperationTransfer Operation = "TRANSFER"
)

// TransactionLink points at one output of a stored transaction. It is the
// `fulfills` reference of an input and the key of an unspent output.
type TransactionLink struct {
	TransactionID string `codec:"transaction_id" json:"transaction_id"`
	OutputIndex   uint64 `codec:"output_index" json:"output_index"`
}

// Input spends a previous output, or nothing for a CREATE.
type Input struct {
	OwnersBefore []string         `codec:"owners_before" json:"owners_before"`
	Fulfills     *TransactionLink `codec:"fulfills" json:"fulfills"`
	Fulfillment  string           `codec:"fulfillment" json:"fulfillment"`
}

// Condition is the crypto-condition locking an output.
type Condition struct {
	URI     string                 `codec:"uri" json:"uri"`
	Details map[string]interface{} `codec:"details,omitempty" json:"details,omitempty"`
}

// Output is a spendable amount owned by a set of public keys.
type Output struct {
	PublicKeys []string  `codec:"public_keys" json:"public_keys"`
	Amount     string    `codec:"amount" json:"amount"`
	Condition  Condition `codec:"condition" json:"condition"`
}

// AssetRef is the asset field of a transaction. A CREATE carries the payload
// in Data, a TRANSFER references the CREATE transaction with ID.
type AssetRef struct {
	ID   string                 `codec:"id,omitempty" json:"id,omitempty"`
	Data map[string]interface{} `codec:"data,omitempty" json:"data,omitempty"`
}

// Transaction is a signed, validated ledger transaction. The ID is the
// content hash computed by the validation layer.
type Transaction struct {
	ID        string                 `codec:"id" json:"id"`
	Version   string                 `codec:"version,omitempty" json:"version,omitempty"`
	Operation Operation              `codec:"operation" json:"operation"`
	Asset     *AssetRef              `codec:"asset,omitempty" json:"asset,omitempty"`
	Inputs    []Input                `codec:"inputs" json:"inputs"`
	Outputs   []Output               `codec:"outputs" json:"outputs"`
	Metadata  map[string]interface{} `codec:"metadata,omitempty" json:"metadata,omitempty"`
}

// AssetID returns the id of the asset this transaction moves. For a CREATE
// that is the transaction id itself.
func (t Transaction) AssetID() string {
	if t.Operation == OperationCreate {
		return t.ID
	}
	if t.Asset != nil {
		return t.Asset.ID
	}
	return ""
}

// SpentOutputs lists the outputs consumed by the transaction's inputs.
func (t Transaction) SpentOutputs() []TransactionLink {
	var links []TransactionLink
	for _, in := range t.Inputs {
		if in.Fulfills != nil {
			links = append(links, *in.Fulfills)
		}
	}
	return links
}

// UnspentOutputs lists the outputs created by the transaction.
func (t Transaction) UnspentOutputs() []UnspentOutput {
	assetID := t.AssetID()
	utxos := make([]UnspentOutput, 0, len(t.Outputs))
	for i, out := range t.Outputs {
		utxos = append(utxos, UnspentOutput{
			TransactionID: t.ID,
			OutputIndex:   uint64(i),
			Amount:        out.Amount,
			AssetID:       assetID,
			ConditionURI:  out.Condition.URI,
		})
	}
	return utxos
}

// HasOwner reports whether any output lists the public key.
func (t Transaction) HasOwner(publicKey string) bool {
	for _, out := range t.Outputs {
		for _, pk := range out.PublicKeys {
			if pk == publicKey {
				return true
			}
		}
	}
	return false
}

// Metadata is the metadata of a transaction, kept apart from the transaction
// body so it can be indexed on its own.
type Metadata struct {
	ID       string                 `codec:"id" json:"id"`
	Metadata map[string]interface{} `codec:"metadata" json:"metadata"`
}

// Asset is the payload minted by a CREATE transaction.
type Asset struct {
	ID   string                 `codec:"id" json:"id"`
	Data map[string]interface{} `codec:"data" json:"data"`
}
