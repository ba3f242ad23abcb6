package schema

// SetupPostgresSql creates one table per ledger collection. Documents are
// kept whole in jsonb, the columns next to them are the unique keys and the
// fields queries filter on.
const SetupPostgresSql = `
CREATE TABLE IF NOT EXISTS transactions (
  seq bigserial NOT NULL,
  id text PRIMARY KEY,
  operation text NOT NULL,
  asset_id text NOT NULL, -- the transaction's own id for a CREATE, asset.id otherwise
  doc jsonb NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS transactions_seq ON transactions (seq);
CREATE INDEX IF NOT EXISTS transactions_asset ON transactions (asset_id, seq);
-- inputs.fulfills, outputs.public_keys and asset.id containment
CREATE INDEX IF NOT EXISTS transactions_doc ON transactions USING gin (doc jsonb_path_ops);

CREATE TABLE IF NOT EXISTS assets (
  id text PRIMARY KEY,
  data jsonb,
  search_text text NOT NULL, -- lower case, diacritics removed
  tokens_raw jsonb NOT NULL,
  tokens_cased jsonb NOT NULL,
  tokens_lower jsonb NOT NULL
);

CREATE INDEX IF NOT EXISTS assets_search ON assets USING gin (to_tsvector('english', search_text));

CREATE TABLE IF NOT EXISTS metadata (
  id text PRIMARY KEY,
  metadata jsonb,
  search_text text NOT NULL,
  tokens_raw jsonb NOT NULL,
  tokens_cased jsonb NOT NULL,
  tokens_lower jsonb NOT NULL
);

CREATE INDEX IF NOT EXISTS metadata_search ON metadata USING gin (to_tsvector('english', search_text));

CREATE TABLE IF NOT EXISTS blocks (
  height bigint PRIMARY KEY,
  doc jsonb NOT NULL
);

CREATE INDEX IF NOT EXISTS blocks_transactions ON blocks USING gin ((doc->'transactions') jsonb_path_ops);

CREATE TABLE IF NOT EXISTS utxos (
  transaction_id text NOT NULL,
  output_index bigint NOT NULL,
  asset_id text NOT NULL,
  condition_uri text NOT NULL,
  doc jsonb NOT NULL,
  PRIMARY KEY ( transaction_id, output_index )
);

CREATE INDEX IF NOT EXISTS utxos_asset ON utxos (asset_id);

CREATE TABLE IF NOT EXISTS pre_commit (
  commit_id text PRIMARY KEY,
  doc jsonb NOT NULL
);

CREATE TABLE IF NOT EXISTS validators (
  height bigint PRIMARY KEY,
  doc jsonb NOT NULL
);

CREATE TABLE IF NOT EXISTS elections (
  height bigint PRIMARY KEY,
  election_id text NOT NULL,
  doc jsonb NOT NULL
);

CREATE INDEX IF NOT EXISTS elections_id ON elections (election_id, height);

CREATE TABLE IF NOT EXISTS abci_chains (
  height bigint PRIMARY KEY,
  chain_id text NOT NULL,
  is_synced boolean NOT NULL,
  doc jsonb NOT NULL
);

-- For private state, e.g. the schema version
CREATE TABLE IF NOT EXISTS metastate (
  k text primary key,
  v jsonb
);
`
