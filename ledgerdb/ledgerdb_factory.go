package ledgerdb

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
)

// LedgerDbFactory is used to install a LedgerDb implementation.
type LedgerDbFactory interface {
	Name() string
	Build(arg string, opts LedgerDbOptions, log *log.Logger) (LedgerDb, chan struct{}, error)
}

// This layer of indirection allows for different backends to be compiled in or compiled out by `go build --tags ...`
var ledgerFactories map[string]LedgerDbFactory

// RegisterFactory is used by LedgerDb implementations to register their implementations. This mechanism allows
// for loose coupling between the configuration and the implementation. It is extremely similar to the way sql.DB
// driver's are configured and used.
func RegisterFactory(name string, factory LedgerDbFactory) {
	ledgerFactories[name] = factory
}

// LedgerDbByName is used to construct a LedgerDb object by name.
// Returns a LedgerDb object, an availability channel that closes when the database
// becomes available, and an error object.
func LedgerDbByName(name, arg string, opts LedgerDbOptions, log *log.Logger) (LedgerDb, chan struct{}, error) {
	if val, ok := ledgerFactories[name]; ok {
		return val.Build(arg, opts, log)
	}
	return nil, nil, fmt.Errorf("no LedgerDb factory for %s", name)
}

// FactoryNames lists the registered backends.
func FactoryNames() []string {
	names := make([]string, 0, len(ledgerFactories))
	for name := range ledgerFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	ledgerFactories = make(map[string]LedgerDbFactory)
}
