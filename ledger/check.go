package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/types"
	"github.com/ledgerkit/ledgerdb/util/workpool"
)

// CheckResult lists the unspent outputs that disagree with the stored
// transactions.
type CheckResult struct {
	Checked int `codec:"checked"`
	// Spent outputs are still in the unspent set but have a spender.
	Spent []types.TransactionLink `codec:"spent"`
	// DoubleSpent outputs have more than one spender.
	DoubleSpent []types.TransactionLink `codec:"double-spent"`
}

// Consistent is true when no output was reported.
func (r CheckResult) Consistent() bool {
	return len(r.Spent) == 0 && len(r.DoubleSpent) == 0
}

func sortLinks(links []types.TransactionLink) {
	sort.Slice(links, func(i, j int) bool {
		if links[i].TransactionID != links[j].TransactionID {
			return links[i].TransactionID < links[j].TransactionID
		}
		return links[i].OutputIndex < links[j].OutputIndex
	})
}

// CheckUnspentOutputs looks up the spender of every unspent output with the
// given number of workers.
func (l *Ledger) CheckUnspentOutputs(ctx context.Context, workers int) (CheckResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rows := l.db.GetUnspentOutputs(ctx, nil)

	var result CheckResult
	var firstErr error
	var lock sync.Mutex
	fail := func(err error) {
		lock.Lock()
		defer lock.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	check := func(ctx context.Context) bool {
		var row ledgerdb.UnspentOutputRow
		var ok bool
		select {
		case row, ok = <-rows:
		case <-ctx.Done():
			return false
		}
		if !ok {
			return false
		}
		if row.Error != nil {
			fail(row.Error)
			return false
		}

		link := row.Output.Link()
		_, found, err := l.GetSpender(ctx, link)
		if err != nil && !errors.Is(err, ErrDoubleSpend) {
			fail(err)
			return false
		}

		lock.Lock()
		defer lock.Unlock()
		result.Checked++
		switch {
		case err != nil:
			result.DoubleSpent = append(result.DoubleSpent, link)
		case found:
			result.Spent = append(result.Spent, link)
		}
		return true
	}
	workpool.New(workers, check).Run(ctx)

	if firstErr != nil {
		return CheckResult{}, fmt.Errorf("CheckUnspentOutputs() err: %w", firstErr)
	}
	if err := ctx.Err(); err != nil {
		return CheckResult{}, fmt.Errorf("CheckUnspentOutputs() err: %w", err)
	}
	sortLinks(result.Spent)
	sortLinks(result.DoubleSpent)

	l.log.WithFields(log.Fields{
		"checked":     result.Checked,
		"spent":       len(result.Spent),
		"doubleSpent": len(result.DoubleSpent),
	}).Info("checked unspent outputs")
	return result, nil
}
