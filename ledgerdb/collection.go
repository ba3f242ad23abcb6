package ledgerdb

import "fmt"

// Collection names a document collection of the ledger.
type Collection string

// The collections of a ledger store.
const (
	CollectionTransactions Collection = "transactions"
	CollectionAssets       Collection = "assets"
	CollectionMetadata     Collection = "metadata"
	CollectionBlocks       Collection = "blocks"
	CollectionUTXOs        Collection = "utxos"
	CollectionValidators   Collection = "validators"
	CollectionElections    Collection = "elections"
	CollectionPreCommit    Collection = "pre_commit"
	CollectionABCIChains   Collection = "abci_chains"
)

var collections = []Collection{
	CollectionTransactions,
	CollectionAssets,
	CollectionMetadata,
	CollectionBlocks,
	CollectionUTXOs,
	CollectionValidators,
	CollectionElections,
	CollectionPreCommit,
	CollectionABCIChains,
}

// Collections returns every collection in a fixed order.
func Collections() []Collection {
	out := make([]Collection, len(collections))
	copy(out, collections)
	return out
}

// ParseCollection validates a collection name.
func ParseCollection(name string) (Collection, error) {
	for _, c := range collections {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("ParseCollection() unknown collection %q", name)
}

// Searchable reports whether the collection has a text index.
func (c Collection) Searchable() bool {
	return c == CollectionAssets || c == CollectionMetadata
}

func (c Collection) String() string {
	return string(c)
}
