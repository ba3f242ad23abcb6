// Package badger is an embedded LedgerDb backed by BadgerDB. Documents are
// stored as canonical JSON under a per-collection key prefix and queried
// through secondary index keys maintained in the same write transaction.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"

	badgerdb "github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"

	"github.com/ledgerkit/ledgerdb/internal/encoding"
	"github.com/ledgerkit/ledgerdb/ledgerdb"
)

// maxRetries is the number of times a write transaction is retried on conflict.
const maxRetries = 10

// sequenceBandwidth is the number of transaction sequence numbers leased at once.
const sequenceBandwidth = 1000

// InMemoryPath opens an in-memory store when passed as the path.
const InMemoryPath = ":memory:"

// LedgerDb is a ledgerdb.LedgerDb implementation on top of BadgerDB.
type LedgerDb struct {
	readonly bool
	inMemory bool
	log      *log.Logger

	db  *badgerdb.DB
	seq *badgerdb.Sequence
}

// OpenBadger opens the store at path. An empty path, InMemoryPath or
// opts.InMemory keep everything in memory.
// Returns a channel that is already closed, the store is available as soon
// as it is open.
func OpenBadger(path string, opts ledgerdb.LedgerDbOptions, logger *log.Logger) (*LedgerDb, chan struct{}, error) {
	if logger == nil {
		logger = log.New()
		logger.SetFormatter(&log.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(log.InfoLevel)
	}

	inMemory := opts.InMemory || path == "" || path == InMemoryPath
	var bopts badgerdb.Options
	if inMemory {
		bopts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		bopts = badgerdb.DefaultOptions(path).WithReadOnly(opts.ReadOnly)
	}
	bopts = bopts.WithLogger(logger)

	logger.WithFields(log.Fields{"path": path, "inMemory": inMemory}).Info("opening badger")
	db, err := badgerdb.Open(bopts)
	if err != nil {
		return nil, nil, fmt.Errorf("OpenBadger() err: %w", err)
	}

	ldb := &LedgerDb{
		readonly: opts.ReadOnly && !inMemory,
		inMemory: inMemory,
		log:      logger,
		db:       db,
	}
	if !ldb.readonly {
		ldb.seq, err = db.GetSequence(txnSequenceKey, sequenceBandwidth)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("OpenBadger() sequence err: %w", err)
		}
	}

	ch := make(chan struct{})
	close(ch)
	return ldb, ch, nil
}

// Close is part of ledgerdb.LedgerDb.
func (db *LedgerDb) Close() {
	if db.seq != nil {
		if err := db.seq.Release(); err != nil {
			db.log.WithError(err).Warn("Close() releasing sequence")
		}
	}
	if err := db.db.Close(); err != nil {
		db.log.WithError(err).Warn("Close() closing badger")
	}
}

// update wraps db.Update with retry logic for transaction conflicts.
func (db *LedgerDb) update(fn func(txn *badgerdb.Txn) error) error {
	if db.readonly {
		return fmt.Errorf("update() err: %w", badgerdb.ErrReadOnlyTxn)
	}
	for i := 0; i < maxRetries; i++ {
		err := db.db.Update(fn)
		if err == nil {
			return nil
		}
		if errors.Is(err, badgerdb.ErrConflict) {
			db.log.Debugf("update() conflict, attempt %d", i+1)
			continue
		}
		if errors.Is(err, badgerdb.ErrTxnTooBig) {
			return fmt.Errorf("%w: %w", ledgerdb.ErrBatchTooLarge, err)
		}
		return err
	}
	return badgerdb.ErrConflict
}

// nextSeq leases n consecutive sequence numbers.
func (db *LedgerDb) nextSeq(n int) ([]uint64, error) {
	if db.seq == nil {
		return nil, badgerdb.ErrReadOnlyTxn
	}
	out := make([]uint64, n)
	for i := range out {
		v, err := db.seq.Next()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// stream runs fn inside a read transaction on its own goroutine. fn hands
// rows to emit, which returns false once ctx is done. Errors become a final
// row built with errRow.
func stream[T any](ctx context.Context, db *LedgerDb, errRow func(error) T, fn func(txn *badgerdb.Txn, emit func(T) bool) error) <-chan T {
	out := make(chan T, 1)
	go func() {
		defer close(out)
		if err := ctx.Err(); err != nil {
			out <- errRow(err)
			return
		}
		err := db.db.View(func(txn *badgerdb.Txn) error {
			return fn(txn, func(row T) bool {
				select {
				case out <- row:
					return true
				case <-ctx.Done():
					return false
				}
			})
		})
		if err != nil && ctx.Err() == nil {
			out <- errRow(err)
		}
	}()
	return out
}

// get decodes the value at key into objptr.
func get(txn *badgerdb.Txn, key []byte, objptr interface{}) (bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = item.Value(func(val []byte) error {
		return encoding.DecodeJSON(val, objptr)
	})
	if err != nil {
		return false, fmt.Errorf("decoding %q err: %w", key, err)
	}
	return true, nil
}

func exists(txn *badgerdb.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func set(txn *badgerdb.Txn, key []byte, obj interface{}) error {
	return txn.Set(key, encoding.EncodeJSON(obj))
}

// scan iterates the keys under prefix, in reverse when reverse is set. fn
// returns false to stop.
func scan(txn *badgerdb.Txn, prefix []byte, reverse bool, keysOnly bool, fn func(item *badgerdb.Item) (bool, error)) error {
	opts := badgerdb.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.Reverse = reverse
	opts.PrefetchValues = !keysOnly
	it := txn.NewIterator(opts)
	defer it.Close()

	start := prefix
	if reverse {
		start = append(append([]byte{}, prefix...), 0xFF)
	}
	for it.Seek(start); it.ValidForPrefix(prefix); it.Next() {
		more, err := fn(it.Item())
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

// latest decodes the value with the greatest key under prefix that is not
// greater than seek. A nil seek means the greatest key overall.
func latest(txn *badgerdb.Txn, prefix []byte, seek []byte, objptr interface{}) (bool, error) {
	opts := badgerdb.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.Reverse = true
	opts.PrefetchSize = 1
	it := txn.NewIterator(opts)
	defer it.Close()

	if seek == nil {
		seek = append(append([]byte{}, prefix...), 0xFF)
	}
	it.Seek(seek)
	if !it.ValidForPrefix(prefix) {
		return false, nil
	}
	err := it.Item().Value(func(val []byte) error {
		return encoding.DecodeJSON(val, objptr)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Health is part of ledgerdb.LedgerDb.
func (db *LedgerDb) Health(ctx context.Context) (ledgerdb.Health, error) {
	data := make(map[string]interface{})
	if db.readonly {
		data["read-only-mode"] = true
	}
	data["in-memory"] = db.inMemory
	lsm, vlog := db.db.Size()
	data["lsm-size"] = lsm
	data["vlog-size"] = vlog

	block, _, err := db.GetLatestBlock(ctx)
	if err != nil {
		return ledgerdb.Health{Data: &data, Error: err.Error()}, err
	}
	return ledgerdb.Health{
		Data:        &data,
		Height:      block.Height,
		DBAvailable: !db.db.IsClosed(),
	}, nil
}
