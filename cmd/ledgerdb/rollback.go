package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerkit/ledgerdb/config"
	"github.com/ledgerkit/ledgerdb/internal/encoding"
	"github.com/ledgerkit/ledgerdb/ledger"
	"github.com/ledgerkit/ledgerdb/ledgerdb"
)

// openLedger opens the database selected by the flags, waits for it and
// wraps it without an event publisher.
func openLedger(ctx context.Context, opts ledgerdb.LedgerDbOptions) (*ledger.Ledger, error) {
	db, availableCh, err := ledgerDbFromFlags(opts)
	if err != nil {
		return nil, err
	}
	select {
	case <-availableCh:
	case <-ctx.Done():
		db.Close()
		return nil, ctx.Err()
	}
	return ledger.MakeLedger(db, nil, logger), nil
}

// RollbackCmd undoes a commit that was interrupted before its block was stored.
func RollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "roll back an interrupted commit",
		Long:  "roll back the transactions, outputs and validator records of a commit that was interrupted before its block was stored. Prints the result as JSON.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			config.BindFlagSet(cmd.Flags())
			err := configureLogger()
			maybeFail(err, "failed to configure logger")
			err = runRollback(context.Background(), os.Stdout)
			maybeFail(err, "rollback failed")
		},
	}
}

func runRollback(ctx context.Context, out io.Writer) error {
	l, err := openLedger(ctx, ledgerdb.LedgerDbOptions{})
	if err != nil {
		return err
	}
	defer l.DB().Close()

	res, err := l.Rollback(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(encoding.EncodeJSON(res)))
	return err
}

var checkWorkers int

// CheckCmd verifies the unspent outputs against the stored transactions.
func CheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "check the unspent outputs",
		Long:  "look up the spender of every unspent output and report outputs that are spent or spent more than once. Exits with 1 when the set is inconsistent.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			config.BindFlagSet(cmd.Flags())
			err := configureLogger()
			maybeFail(err, "failed to configure logger")
			consistent, err := runCheck(context.Background(), os.Stdout, checkWorkers)
			maybeFail(err, "check failed")
			if !consistent {
				panic(exit{1})
			}
		},
	}
	cmd.Flags().IntVarP(&checkWorkers, "workers", "w", 4, "number of outputs checked concurrently")
	return cmd
}

func runCheck(ctx context.Context, out io.Writer, workers int) (bool, error) {
	l, err := openLedger(ctx, ledgerdb.LedgerDbOptions{ReadOnly: true})
	if err != nil {
		return false, err
	}
	defer l.DB().Close()

	res, err := l.CheckUnspentOutputs(ctx, workers)
	if err != nil {
		return false, err
	}
	if _, err := fmt.Fprintln(out, string(encoding.EncodeJSON(res))); err != nil {
		return false, err
	}
	return res.Consistent(), nil
}
