package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerkit/ledgerdb/config"
	"github.com/ledgerkit/ledgerdb/internal/encoding"
	"github.com/ledgerkit/ledgerdb/ledgerdb"
)

// SetupCmd creates the schema of a new database.
func SetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "set up the database schema",
		Long:  "open the database, creating the schema when it does not exist yet, and print its health as JSON. An existing schema of another version is an error.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			config.BindFlagSet(cmd.Flags())
			err := configureLogger()
			maybeFail(err, "failed to configure logger")
			err = runSetup(context.Background(), os.Stdout)
			maybeFail(err, "setup failed")
		},
	}
}

func runSetup(ctx context.Context, out io.Writer) error {
	db, availableCh, err := ledgerDbFromFlags(ledgerdb.LedgerDbOptions{})
	if err != nil {
		return err
	}
	defer db.Close()
	<-availableCh

	health, err := db.Health(ctx)
	if err != nil {
		return err
	}
	if health.Error != "" {
		return fmt.Errorf("database is not healthy: %s", health.Error)
	}
	_, err = fmt.Fprintln(out, string(encoding.EncodeJSON(health)))
	return err
}
