package badger

import (
	log "github.com/sirupsen/logrus"

	"github.com/ledgerkit/ledgerdb/ledgerdb"
)

type badgerFactory struct {
}

func (df badgerFactory) Name() string {
	return "badger"
}

func (df badgerFactory) Build(arg string, opts ledgerdb.LedgerDbOptions, log *log.Logger) (ledgerdb.LedgerDb, chan struct{}, error) {
	return OpenBadger(arg, opts, log)
}

func init() {
	ledgerdb.RegisterFactory("badger", &badgerFactory{})
}
