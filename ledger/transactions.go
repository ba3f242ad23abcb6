package ledger

import (
	"context"
	"fmt"

	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/types"
	"github.com/ledgerkit/ledgerdb/util/metrics"
)

// split moves the asset payload of a CREATE and the metadata of every
// transaction out of the transaction bodies.
func split(txns []types.Transaction) ([]types.Transaction, []types.Asset, []types.Metadata) {
	bodies := make([]types.Transaction, 0, len(txns))
	var assets []types.Asset
	var metadatas []types.Metadata
	for _, txn := range txns {
		if txn.Operation == types.OperationCreate && txn.Asset != nil {
			assets = append(assets, types.Asset{ID: txn.ID, Data: txn.Asset.Data})
			txn.Asset = nil
		}
		if txn.Metadata != nil {
			metadatas = append(metadatas, types.Metadata{ID: txn.ID, Metadata: txn.Metadata})
			txn.Metadata = nil
		}
		bodies = append(bodies, txn)
	}
	return bodies, assets, metadatas
}

// StoreBulkTransactions stores the transactions with their assets and
// metadata in the collections they belong to. Assets and metadata are
// idempotent, a transaction that is already stored fails the call with
// ledgerdb.ErrDuplicateKey.
func (l *Ledger) StoreBulkTransactions(ctx context.Context, txns []types.Transaction) (ledgerdb.BulkInsertResult, error) {
	if len(txns) == 0 {
		return ledgerdb.BulkInsertResult{}, nil
	}
	bodies, assets, metadatas := split(txns)

	res, err := l.db.StoreAssets(ctx, assets)
	if err != nil {
		return ledgerdb.BulkInsertResult{}, fmt.Errorf("StoreBulkTransactions() err: %w", err)
	}
	l.countAlreadyStored(ledgerdb.CollectionAssets, res)

	res, err = l.db.StoreMetadatas(ctx, metadatas)
	if err != nil {
		return ledgerdb.BulkInsertResult{}, fmt.Errorf("StoreBulkTransactions() err: %w", err)
	}
	l.countAlreadyStored(ledgerdb.CollectionMetadata, res)

	res, err = l.db.StoreTransactions(ctx, bodies)
	if err != nil {
		return ledgerdb.BulkInsertResult{}, fmt.Errorf("StoreBulkTransactions() err: %w", err)
	}
	return res, nil
}

func (l *Ledger) countAlreadyStored(collection ledgerdb.Collection, res ledgerdb.BulkInsertResult) {
	if res.AlreadyExisted > 0 {
		metrics.AlreadyStoredCounter.WithLabelValues(collection.String()).Add(float64(res.AlreadyExisted))
		l.log.Debugf("%d %s already stored", res.AlreadyExisted, collection)
	}
}

// GetTransaction returns the transaction with its asset payload and metadata
// put back.
func (l *Ledger) GetTransaction(ctx context.Context, id string) (types.Transaction, bool, error) {
	txn, found, err := l.db.GetTransaction(ctx, id)
	if err != nil || !found {
		return types.Transaction{}, found, err
	}
	txns, err := l.reassemble(ctx, []types.Transaction{txn})
	if err != nil {
		return types.Transaction{}, false, fmt.Errorf("GetTransaction() err: %w", err)
	}
	return txns[0], true, nil
}

// GetTransactions is GetTransaction for many ids. Missing ids are skipped.
func (l *Ledger) GetTransactions(ctx context.Context, ids []string) ([]types.Transaction, error) {
	txns, err := ledgerdb.CollectTransactions(l.db.GetTransactions(ctx, ids))
	if err != nil {
		return nil, fmt.Errorf("GetTransactions() err: %w", err)
	}
	txns, err = l.reassemble(ctx, txns)
	if err != nil {
		return nil, fmt.Errorf("GetTransactions() err: %w", err)
	}
	return txns, nil
}

func (l *Ledger) reassemble(ctx context.Context, txns []types.Transaction) ([]types.Transaction, error) {
	if len(txns) == 0 {
		return txns, nil
	}
	var createIDs []string
	ids := make([]string, 0, len(txns))
	for _, txn := range txns {
		ids = append(ids, txn.ID)
		if txn.Operation == types.OperationCreate {
			createIDs = append(createIDs, txn.ID)
		}
	}

	assets, err := ledgerdb.CollectAssets(l.db.GetAssets(ctx, createIDs))
	if err != nil {
		return nil, err
	}
	assetByID := make(map[string]types.Asset, len(assets))
	for _, asset := range assets {
		assetByID[asset.ID] = asset
	}

	metadatas, err := ledgerdb.CollectMetadata(l.db.GetMetadata(ctx, ids))
	if err != nil {
		return nil, err
	}
	metadataByID := make(map[string]types.Metadata, len(metadatas))
	for _, m := range metadatas {
		metadataByID[m.ID] = m
	}

	for i := range txns {
		if asset, ok := assetByID[txns[i].ID]; ok && txns[i].Operation == types.OperationCreate {
			txns[i].Asset = &types.AssetRef{Data: asset.Data}
		}
		if m, ok := metadataByID[txns[i].ID]; ok {
			txns[i].Metadata = m.Metadata
		}
	}
	return txns, nil
}

// UpdateUTXOSet removes the outputs txn spends and adds the ones it
// creates.
func (l *Ledger) UpdateUTXOSet(ctx context.Context, txn types.Transaction) error {
	if _, err := l.db.DeleteUnspentOutputs(ctx, txn.SpentOutputs()...); err != nil {
		return fmt.Errorf("UpdateUTXOSet() err: %w", err)
	}
	res, err := l.db.StoreUnspentOutputs(ctx, txn.UnspentOutputs()...)
	if err != nil {
		return fmt.Errorf("UpdateUTXOSet() err: %w", err)
	}
	l.countAlreadyStored(ledgerdb.CollectionUTXOs, res)
	return nil
}

// GetSpender returns the transaction spending the output. More than one
// spender is reported as ErrDoubleSpend.
func (l *Ledger) GetSpender(ctx context.Context, link types.TransactionLink) (types.Transaction, bool, error) {
	spenders, err := ledgerdb.CollectTransactions(l.db.GetSpent(ctx, link.TransactionID, link.OutputIndex))
	if err != nil {
		return types.Transaction{}, false, fmt.Errorf("GetSpender() err: %w", err)
	}
	switch len(spenders) {
	case 0:
		return types.Transaction{}, false, nil
	case 1:
		return spenders[0], true, nil
	default:
		l.log.Errorf("GetSpender() %d transactions spend %s:%d", len(spenders), link.TransactionID, link.OutputIndex)
		return types.Transaction{}, false, fmt.Errorf("GetSpender() %s:%d err: %w", link.TransactionID, link.OutputIndex, ErrDoubleSpend)
	}
}

// GetOutputsFiltered returns the outputs owned by publicKey. A nil spent
// returns all of them, otherwise only the spent or the unspent ones.
func (l *Ledger) GetOutputsFiltered(ctx context.Context, publicKey string, spent *bool) ([]types.TransactionLink, error) {
	owned, err := ledgerdb.CollectTransactions(l.db.GetOwnedIDs(ctx, publicKey))
	if err != nil {
		return nil, fmt.Errorf("GetOutputsFiltered() err: %w", err)
	}

	var links []types.TransactionLink
	for _, txn := range owned {
		for i, out := range txn.Outputs {
			for _, pk := range out.PublicKeys {
				if pk == publicKey {
					links = append(links, types.TransactionLink{TransactionID: txn.ID, OutputIndex: uint64(i)})
					break
				}
			}
		}
	}
	if spent == nil || len(links) == 0 {
		return links, nil
	}

	spenders, err := ledgerdb.CollectTransactions(l.db.GetSpendingTransactions(ctx, links))
	if err != nil {
		return nil, fmt.Errorf("GetOutputsFiltered() err: %w", err)
	}
	spentLinks := make(map[types.TransactionLink]bool)
	for _, txn := range spenders {
		for _, link := range txn.SpentOutputs() {
			spentLinks[link] = true
		}
	}

	filtered := make([]types.TransactionLink, 0, len(links))
	for _, link := range links {
		if spentLinks[link] == *spent {
			filtered = append(filtered, link)
		}
	}
	return filtered, nil
}
