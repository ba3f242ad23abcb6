package ledgerdb

import (
	"github.com/ledgerkit/ledgerdb/types"
)

// CollectTransactions drains a transaction stream.
func CollectTransactions(rows <-chan TxnRow) ([]types.Transaction, error) {
	var out []types.Transaction
	for row := range rows {
		if row.Error != nil {
			return out, row.Error
		}
		out = append(out, row.Txn)
	}
	return out, nil
}

// CollectTxids drains a transaction id stream.
func CollectTxids(rows <-chan TxidRow) ([]string, error) {
	var out []string
	for row := range rows {
		if row.Error != nil {
			return out, row.Error
		}
		out = append(out, row.Txid)
	}
	return out, nil
}

// CollectMetadata drains a metadata stream.
func CollectMetadata(rows <-chan MetadataRow) ([]types.Metadata, error) {
	var out []types.Metadata
	for row := range rows {
		if row.Error != nil {
			return out, row.Error
		}
		out = append(out, row.Metadata)
	}
	return out, nil
}

// CollectAssets drains an asset stream.
func CollectAssets(rows <-chan AssetRow) ([]types.Asset, error) {
	var out []types.Asset
	for row := range rows {
		if row.Error != nil {
			return out, row.Error
		}
		out = append(out, row.Asset)
	}
	return out, nil
}

// CollectBlockRefs drains a block height stream.
func CollectBlockRefs(rows <-chan BlockRefRow) ([]uint64, error) {
	var out []uint64
	for row := range rows {
		if row.Error != nil {
			return out, row.Error
		}
		out = append(out, row.Height)
	}
	return out, nil
}

// CollectUnspentOutputs drains an unspent output stream.
func CollectUnspentOutputs(rows <-chan UnspentOutputRow) ([]types.UnspentOutput, error) {
	var out []types.UnspentOutput
	for row := range rows {
		if row.Error != nil {
			return out, row.Error
		}
		out = append(out, row.Output)
	}
	return out, nil
}

// CollectTextSearch drains a text search stream.
func CollectTextSearch(rows <-chan TextSearchRow) ([]TextSearchRow, error) {
	var out []TextSearchRow
	for row := range rows {
		if row.Error != nil {
			return out, row.Error
		}
		out = append(out, row)
	}
	return out, nil
}

// Drain discards whatever is left in a stream so the producer can exit.
func Drain[T any](rows <-chan T) {
	for range rows {
	}
}

// ErrorRow is a stream holding a single error row.
func ErrorRow[T any](row T) <-chan T {
	out := make(chan T, 1)
	out <- row
	close(out)
	return out
}

// Empty is a closed stream with no rows.
func Empty[T any]() <-chan T {
	out := make(chan T)
	close(out)
	return out
}
