package dummy

import (
	log "github.com/sirupsen/logrus"

	"github.com/ledgerkit/ledgerdb/ledgerdb"
)

type dummyFactory struct {
}

// Name is part of the LedgerDbFactory interface.
func (df dummyFactory) Name() string {
	return "dummy"
}

// Build is part of the LedgerDbFactory interface.
func (df dummyFactory) Build(arg string, opts ledgerdb.LedgerDbOptions, log *log.Logger) (ledgerdb.LedgerDb, chan struct{}, error) {
	ch := make(chan struct{})
	close(ch)
	return LedgerDb(log), ch, nil
}

func init() {
	ledgerdb.RegisterFactory("dummy", &dummyFactory{})
}
