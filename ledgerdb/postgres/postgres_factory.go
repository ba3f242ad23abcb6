package postgres

import (
	log "github.com/sirupsen/logrus"

	"github.com/ledgerkit/ledgerdb/ledgerdb"
)

type postgresFactory struct {
}

func (df postgresFactory) Name() string {
	return "postgres"
}

func (df postgresFactory) Build(arg string, opts ledgerdb.LedgerDbOptions, log *log.Logger) (ledgerdb.LedgerDb, chan struct{}, error) {
	return OpenPostgres(arg, opts, log)
}

func init() {
	ledgerdb.RegisterFactory("postgres", &postgresFactory{})
}
