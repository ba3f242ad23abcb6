// Package ledger is the consensus-facing side of the store. It splits
// transactions into the collections they are stored in, applies a committed
// block in order, and recovers from a commit that was interrupted.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/algorand/go-deadlock"
	log "github.com/sirupsen/logrus"

	"github.com/ledgerkit/ledgerdb/events"
	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/types"
	"github.com/ledgerkit/ledgerdb/util/metrics"
)

// PreCommitID is the commit id of the single pre-commit record.
const PreCommitID = "pre_commit"

// ErrDoubleSpend is returned when more than one stored transaction spends
// the same output.
var ErrDoubleSpend = errors.New("output spent more than once")

// Ledger wraps a LedgerDb with the multi-collection operations of a node.
type Ledger struct {
	db        ledgerdb.LedgerDb
	publisher events.Publisher
	log       *log.Logger

	// Commits and rollbacks are applied one at a time.
	commitLock deadlock.Mutex
}

// MakeLedger creates a Ledger. publisher may be nil.
func MakeLedger(db ledgerdb.LedgerDb, publisher events.Publisher, logger *log.Logger) *Ledger {
	return &Ledger{
		db:        db,
		publisher: publisher,
		log:       logger,
	}
}

// DB returns the underlying store.
func (l *Ledger) DB() ledgerdb.LedgerDb {
	return l.db
}

// CommitRequest is everything that becomes durable with one block.
type CommitRequest struct {
	Height       uint64
	AppHash      string
	Transactions []types.Transaction

	// Optional records decided in the same block.
	ValidatorSet *types.ValidatorSet
	Elections    []types.Election
	ABCIChain    *types.ABCIChain
}

func (req CommitRequest) txids() []string {
	ids := make([]string, 0, len(req.Transactions))
	for _, txn := range req.Transactions {
		ids = append(ids, txn.ID)
	}
	return ids
}

// Commit stores a validated block. The pre-commit record naming the height
// and its transaction ids is written first, so Rollback can undo any later
// write that a crash leaves behind. The transactions, unspent outputs and
// block follow, then the optional validator set, elections and chain.
// Committing a height whose block is already stored is a no-op.
func (l *Ledger) Commit(ctx context.Context, req CommitRequest) error {
	l.commitLock.Lock()
	defer l.commitLock.Unlock()

	start := time.Now()
	txids := req.txids()

	_, found, err := l.db.GetBlock(ctx, req.Height)
	if err != nil {
		return fmt.Errorf("Commit() height %d err: %w", req.Height, err)
	}
	if found {
		metrics.AlreadyStoredCounter.WithLabelValues(ledgerdb.CollectionBlocks.String()).Inc()
		l.log.Warnf("Commit() block %d was already stored", req.Height)
		return nil
	}

	preCommit := types.PreCommitState{CommitID: PreCommitID, Height: req.Height, Transactions: txids}
	if err := l.db.StorePreCommitState(ctx, preCommit); err != nil {
		return fmt.Errorf("Commit() height %d err: %w", req.Height, err)
	}

	if _, err := l.StoreBulkTransactions(ctx, req.Transactions); err != nil {
		return fmt.Errorf("Commit() height %d err: %w", req.Height, err)
	}
	for _, txn := range req.Transactions {
		if err := l.UpdateUTXOSet(ctx, txn); err != nil {
			return fmt.Errorf("Commit() height %d err: %w", req.Height, err)
		}
	}

	block := types.Block{Height: req.Height, AppHash: req.AppHash, Transactions: txids}
	res, err := l.db.StoreBlock(ctx, block)
	if err != nil {
		return fmt.Errorf("Commit() height %d err: %w", req.Height, err)
	}
	if res == ledgerdb.AlreadyExists {
		metrics.AlreadyStoredCounter.WithLabelValues(ledgerdb.CollectionBlocks.String()).Inc()
		l.log.Warnf("Commit() block %d was already stored", req.Height)
	}

	if req.ValidatorSet != nil {
		if err := l.db.StoreValidatorSet(ctx, *req.ValidatorSet); err != nil {
			return fmt.Errorf("Commit() height %d err: %w", req.Height, err)
		}
	}
	for _, election := range req.Elections {
		if err := l.db.StoreElectionResults(ctx, election); err != nil {
			return fmt.Errorf("Commit() height %d err: %w", req.Height, err)
		}
	}
	if req.ABCIChain != nil {
		if err := l.db.StoreABCIChain(ctx, *req.ABCIChain); err != nil {
			return fmt.Errorf("Commit() height %d err: %w", req.Height, err)
		}
	}

	dt := time.Since(start)
	metrics.CommitTimeSeconds.Observe(dt.Seconds())
	metrics.CumulativeCommitTime.Add(dt.Seconds())
	metrics.CommittedTxnsPerBlock.Observe(float64(len(txids)))
	metrics.CumulativeTxns.Add(float64(len(txids)))
	metrics.CurrentHeightGauge.Set(float64(req.Height))

	l.log.WithFields(log.Fields{
		"height":       req.Height,
		"transactions": len(txids),
		"duration":     dt,
	}).Info("block committed")

	if l.publisher != nil {
		event := events.Event{Type: events.BlockCommitted, Height: req.Height, Transactions: txids}
		if err := l.publisher.Publish(ctx, event); err != nil {
			// The block is durable, a lost event is not a failed commit.
			l.log.WithError(err).Errorf("Commit() publishing block %d", req.Height)
		}
	}
	return nil
}

// RollbackResult reports what Rollback undid.
type RollbackResult struct {
	RolledBack   bool   `codec:"rolled-back"`
	Height       uint64 `codec:"height"`
	Transactions int    `codec:"transactions"`
}

// Rollback undoes a commit that stopped after its pre-commit record but
// before its block. Whatever part of the block's transactions and unspent
// outputs reached the store is removed. It is a no-op when the pre-commit
// record is not ahead of the latest block.
func (l *Ledger) Rollback(ctx context.Context) (RollbackResult, error) {
	l.commitLock.Lock()
	defer l.commitLock.Unlock()

	preCommit, found, err := l.db.GetPreCommitState(ctx, PreCommitID)
	if err != nil {
		return RollbackResult{}, fmt.Errorf("Rollback() err: %w", err)
	}
	if !found {
		return RollbackResult{}, nil
	}
	latest, found, err := l.db.GetLatestBlock(ctx)
	if err != nil {
		return RollbackResult{}, fmt.Errorf("Rollback() err: %w", err)
	}
	if found && preCommit.Height <= latest.Height {
		return RollbackResult{}, nil
	}
	if found && preCommit.Height > latest.Height+1 {
		return RollbackResult{}, fmt.Errorf("Rollback() err: %w", types.MakeConsistencyError(
			fmt.Sprintf("pre-commit height %d is more than one block past %d", preCommit.Height, latest.Height)))
	}

	txns, err := ledgerdb.CollectTransactions(l.db.GetTransactions(ctx, preCommit.Transactions))
	if err != nil {
		return RollbackResult{}, fmt.Errorf("Rollback() err: %w", err)
	}

	// Restore what the in-flight transactions consumed and drop what they
	// created.
	var created []types.TransactionLink
	for _, txn := range txns {
		if err := l.restoreSpent(ctx, txn); err != nil {
			return RollbackResult{}, fmt.Errorf("Rollback() err: %w", err)
		}
		for _, utxo := range txn.UnspentOutputs() {
			created = append(created, utxo.Link())
		}
	}
	if _, err := l.db.DeleteUnspentOutputs(ctx, created...); err != nil {
		return RollbackResult{}, fmt.Errorf("Rollback() err: %w", err)
	}
	if err := l.db.DeleteTransactions(ctx, preCommit.Transactions); err != nil {
		return RollbackResult{}, fmt.Errorf("Rollback() err: %w", err)
	}
	if err := l.db.DeleteValidatorSet(ctx, preCommit.Height); err != nil {
		return RollbackResult{}, fmt.Errorf("Rollback() err: %w", err)
	}
	if err := l.db.DeleteElections(ctx, preCommit.Height); err != nil {
		return RollbackResult{}, fmt.Errorf("Rollback() err: %w", err)
	}
	if err := l.db.DeleteABCIChain(ctx, preCommit.Height); err != nil {
		return RollbackResult{}, fmt.Errorf("Rollback() err: %w", err)
	}

	metrics.RollbackCounter.Inc()
	l.log.WithFields(log.Fields{
		"height":       preCommit.Height,
		"transactions": len(txns),
	}).Warn("rolled back interrupted commit")

	return RollbackResult{RolledBack: true, Height: preCommit.Height, Transactions: len(txns)}, nil
}

// restoreSpent puts the outputs consumed by txn back into the unspent set.
func (l *Ledger) restoreSpent(ctx context.Context, txn types.Transaction) error {
	spent := txn.SpentOutputs()
	if len(spent) == 0 {
		return nil
	}
	ids := make([]string, 0, len(spent))
	for _, link := range spent {
		ids = append(ids, link.TransactionID)
	}
	parents, err := ledgerdb.CollectTransactions(l.db.GetTransactions(ctx, ids))
	if err != nil {
		return err
	}

	wanted := make(map[types.TransactionLink]bool, len(spent))
	for _, link := range spent {
		wanted[link] = true
	}
	var restore []types.UnspentOutput
	for _, parent := range parents {
		for _, utxo := range parent.UnspentOutputs() {
			if wanted[utxo.Link()] {
				restore = append(restore, utxo)
			}
		}
	}
	_, err = l.db.StoreUnspentOutputs(ctx, restore...)
	return err
}
