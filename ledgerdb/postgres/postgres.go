package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/ledgerkit/ledgerdb/internal/encoding"
	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/ledgerdb/postgres/internal/schema"
	pgutil "github.com/ledgerkit/ledgerdb/ledgerdb/postgres/internal/util"
)

var serializable = pgx.TxOptions{IsoLevel: pgx.Serializable} // be a real ACID database

// OpenPostgres is available for creating test instances of postgres.LedgerDb
// Returns an error object and a channel that gets closed when the schema is
// ready.
func OpenPostgres(connection string, opts ledgerdb.LedgerDbOptions, log *log.Logger) (*LedgerDb, chan struct{}, error) {

	postgresConfig, err := pgxpool.ParseConfig(connection)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't parse config: %v", err)
	}

	if opts.MaxConn != 0 {
		postgresConfig.MaxConns = int32(opts.MaxConn)
	}

	db, err := pgxpool.ConnectConfig(context.Background(), postgresConfig)

	if err != nil {
		return nil, nil, fmt.Errorf("connecting to postgres: %v", err)
	}

	if strings.Contains(connection, "readonly") {
		opts.ReadOnly = true
	}

	return openPostgres(db, opts, log)
}

// Allow tests to inject a DB
func openPostgres(db *pgxpool.Pool, opts ledgerdb.LedgerDbOptions, logger *log.Logger) (*LedgerDb, chan struct{}, error) {
	ldb := &LedgerDb{
		readonly: opts.ReadOnly,
		log:      logger,
		db:       db,
	}

	if ldb.log == nil {
		ldb.log = log.New()
		ldb.log.SetFormatter(&log.JSONFormatter{})
		ldb.log.SetOutput(os.Stdout)
		ldb.log.SetLevel(log.TraceLevel)
	}

	// e.g. a user named "readonly" is in the connection string
	if !opts.ReadOnly {
		if err := ldb.init(); err != nil {
			return nil, nil, fmt.Errorf("initializing postgres: %v", err)
		}
	}

	ch := make(chan struct{})
	close(ch)
	return ldb, ch, nil
}

// LedgerDb is a ledgerdb.LedgerDb implementation
type LedgerDb struct {
	readonly bool
	log      *log.Logger

	db *pgxpool.Pool
}

// Close is part of ledgerdb.LedgerDb.
func (db *LedgerDb) Close() {
	db.db.Close()
}

// txWithRetry is a helper function that retries the function `f` in case the database
// transaction in it fails due to a serialization error. `f` is provided
// a transaction created using `opts`. If `f` experiences a database error, this error
// must be included in `f`'s return error's chain, so that a serialization error can be
// detected.
func (db *LedgerDb) txWithRetry(ctx context.Context, opts pgx.TxOptions, f func(pgx.Tx) error) error {
	return pgutil.TxWithRetry(ctx, db.db, opts, f, db.log)
}

func (db *LedgerDb) isSetup() (bool, error) {
	query := `SELECT 0 FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_NAME = 'metastate'`
	row := db.db.QueryRow(context.Background(), query)

	var tmp int
	err := row.Scan(&tmp)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("isSetup() err: %w", err)
	}
	return true, nil
}

func (db *LedgerDb) init() error {
	setup, err := db.isSetup()
	if err != nil {
		return fmt.Errorf("init() err: %w", err)
	}
	if setup {
		state, err := db.getSchemaState(context.Background())
		if err != nil {
			return fmt.Errorf("init() err: %w", err)
		}
		if state.Version != schema.SchemaVersion {
			return fmt.Errorf("init() schema version %d, expected %d", state.Version, schema.SchemaVersion)
		}
		return nil
	}

	// new database, run setup
	db.log.Info("init() setting up ledger schema")
	_, err = db.db.Exec(context.Background(), schema.SetupPostgresSql)
	if err != nil {
		return fmt.Errorf("unable to setup postgres: %v", err)
	}
	state := schema.SchemaState{Version: schema.SchemaVersion}
	err = pgutil.SetMetastate(context.Background(), db.db, nil, schema.SchemaMetastateKey, string(encoding.EncodeJSON(state)))
	if err != nil {
		return fmt.Errorf("unable to record schema version: %v", err)
	}
	return nil
}

func (db *LedgerDb) getSchemaState(ctx context.Context) (schema.SchemaState, error) {
	value, err := pgutil.GetMetastate(ctx, db.db, nil, schema.SchemaMetastateKey)
	if err != nil {
		return schema.SchemaState{}, fmt.Errorf("getSchemaState() err: %w", err)
	}
	var state schema.SchemaState
	err = encoding.DecodeJSON([]byte(value), &state)
	if err != nil {
		return schema.SchemaState{}, fmt.Errorf("getSchemaState() problem decoding '%s' err: %w", value, err)
	}
	return state, nil
}

// queryDoc decodes the single jsonb column of the first row into objptr.
func (db *LedgerDb) queryDoc(ctx context.Context, objptr interface{}, query string, args ...interface{}) (bool, error) {
	var doc []byte
	err := db.db.QueryRow(ctx, query, args...).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := encoding.DecodeJSON(doc, objptr); err != nil {
		return false, fmt.Errorf("decoding '%s' err: %w", doc, err)
	}
	return true, nil
}

// yield runs the query and streams the rows converted by scan. Rows are
// closed before the channel is.
func yield[T any](ctx context.Context, db *LedgerDb, errRow func(error) T, scan func(pgx.Rows) (T, error), query string, args ...interface{}) <-chan T {
	rows, err := db.db.Query(ctx, query, args...)
	if err != nil {
		return ledgerdb.ErrorRow(errRow(fmt.Errorf("query %#v err: %w", query, err)))
	}

	out := make(chan T, 1)
	go func() {
		defer close(out)
		defer rows.Close()

		for rows.Next() {
			row, err := scan(rows)
			if err != nil {
				out <- errRow(err)
				return
			}
			select {
			case out <- row:
			case <-ctx.Done():
				return
			}
		}
		if err := rows.Err(); err != nil {
			out <- errRow(err)
		}
	}()
	return out
}

// scanDoc decodes a single jsonb column.
func scanDoc[T any](rows pgx.Rows) (T, error) {
	var obj T
	var doc []byte
	if err := rows.Scan(&doc); err != nil {
		return obj, err
	}
	if err := encoding.DecodeJSON(doc, &obj); err != nil {
		return obj, fmt.Errorf("decoding '%s' err: %w", doc, err)
	}
	return obj, nil
}

// Health is part of ledgerdb.LedgerDb.
func (db *LedgerDb) Health(ctx context.Context) (ledgerdb.Health, error) {
	var data = make(map[string]interface{})

	if db.readonly {
		data["read-only-mode"] = true
	}
	stat := db.db.Stat()
	data["total-connections"] = stat.TotalConns()
	data["idle-connections"] = stat.IdleConns()

	setup, err := db.isSetup()
	if err != nil {
		return ledgerdb.Health{Data: &data, Error: err.Error()}, err
	}
	if !setup {
		return ledgerdb.Health{Data: &data, Error: "schema not initialized"}, nil
	}

	state, err := db.getSchemaState(ctx)
	if errors.Is(err, pgutil.ErrorNotInitialized) {
		return ledgerdb.Health{Data: &data, Error: "schema not initialized"}, nil
	}
	if err != nil {
		return ledgerdb.Health{Data: &data, Error: err.Error()}, err
	}
	data["schema-version"] = state.Version

	block, _, err := db.GetLatestBlock(ctx)
	if err != nil {
		return ledgerdb.Health{Data: &data, Error: err.Error()}, err
	}

	return ledgerdb.Health{
		Data:        &data,
		Height:      block.Height,
		DBAvailable: true,
	}, nil
}
