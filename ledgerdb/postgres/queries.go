package postgres

// Bulk writes receive their rows as one json array and expand it server
// side, so a batch of any size is a single statement.

const insertTransactionsQuery = `
	INSERT INTO transactions (id, operation, asset_id, doc)
	SELECT t.id, t.operation, t.asset_id, t.doc::jsonb
	FROM unnest($1::text[], $2::text[], $3::text[], $4::text[]) WITH ORDINALITY AS t(id, operation, asset_id, doc, ord)
	ORDER BY t.ord`

const getTransactionQuery = `SELECT doc FROM transactions WHERE id = $1`

const getTransactionsQuery = `SELECT doc FROM transactions WHERE id = ANY($1) ORDER BY seq`

// $1 is a containment document, e.g. {"inputs":[{"fulfills":{...}}]}.
const getContainingTransactionsQuery = `SELECT doc FROM transactions WHERE doc @> $1::jsonb ORDER BY seq`

// $1 is a json array of transaction links.
const getSpendingTransactionsQuery = `
	SELECT doc FROM transactions
	WHERE doc @> ANY (ARRAY(
		SELECT jsonb_build_object('inputs', jsonb_build_array(jsonb_build_object('fulfills', f)))
		FROM jsonb_array_elements($1::jsonb) f))
	ORDER BY seq`

const getAssetTokensQuery = `
	SELECT doc FROM transactions
	WHERE doc @> $1::jsonb
	AND EXISTS (SELECT 1 FROM jsonb_array_elements(doc->'outputs') o WHERE o->'public_keys' = $2::jsonb)
	ORDER BY seq`

const getTxidsQuery = `SELECT id FROM transactions WHERE asset_id = $1 AND operation = ANY($2) ORDER BY seq`

const getLastTxidQuery = `SELECT id FROM transactions WHERE asset_id = $1 AND operation = ANY($2) ORDER BY seq DESC LIMIT 1`

// Asset and metadata rows carry their search columns, see searchRow.
const insertAssetsQuery = `
	INSERT INTO assets (id, data, search_text, tokens_raw, tokens_cased, tokens_lower)
	SELECT r->>'id', r->'doc', r->>'search_text', r->'tokens_raw', r->'tokens_cased', r->'tokens_lower'
	FROM jsonb_array_elements($1::jsonb) r
	ON CONFLICT (id) DO NOTHING`

const insertMetadataQuery = `
	INSERT INTO metadata (id, metadata, search_text, tokens_raw, tokens_cased, tokens_lower)
	SELECT r->>'id', r->'doc', r->>'search_text', r->'tokens_raw', r->'tokens_cased', r->'tokens_lower'
	FROM jsonb_array_elements($1::jsonb) r
	ON CONFLICT (id) DO NOTHING`

const getAssetQuery = `SELECT data FROM assets WHERE id = $1`

const getAssetsQuery = `SELECT id, data FROM assets WHERE id = ANY($1) ORDER BY id`

const getMetadataQuery = `SELECT id, metadata FROM metadata WHERE id = ANY($1) ORDER BY id`

const deleteAssetsQuery = `DELETE FROM assets WHERE id = ANY($1)`

const deleteMetadataQuery = `DELETE FROM metadata WHERE id = ANY($1)`

const deleteTransactionsQuery = `DELETE FROM transactions WHERE id = ANY($1)`

const insertBlockQuery = `INSERT INTO blocks (height, doc) VALUES ($1, $2) ON CONFLICT (height) DO NOTHING`

const getLatestBlockQuery = `SELECT doc FROM blocks ORDER BY height DESC LIMIT 1`

const getBlockQuery = `SELECT doc FROM blocks WHERE height = $1`

const getBlocksWithTransactionQuery = `SELECT height FROM blocks WHERE doc->'transactions' @> $1::jsonb ORDER BY height`

const insertUnspentOutputsQuery = `
	INSERT INTO utxos (transaction_id, output_index, asset_id, condition_uri, doc)
	SELECT u->>'transaction_id', (u->>'output_index')::bigint,
		coalesce(u->>'asset_id', ''), coalesce(u->>'condition_uri', ''), u
	FROM jsonb_array_elements($1::jsonb) u
	ON CONFLICT (transaction_id, output_index) DO NOTHING`

// The keys are matched as pairs, never field by field.
const deleteUnspentOutputsQuery = `
	DELETE FROM utxos
	WHERE (transaction_id, output_index) IN (SELECT * FROM unnest($1::text[], $2::bigint[]))`

const upsertPreCommitQuery = `
	INSERT INTO pre_commit (commit_id, doc) VALUES ($1, $2)
	ON CONFLICT (commit_id) DO UPDATE SET doc = EXCLUDED.doc`

const getPreCommitQuery = `SELECT doc FROM pre_commit WHERE commit_id = $1`

const upsertValidatorSetQuery = `
	INSERT INTO validators (height, doc) VALUES ($1, $2)
	ON CONFLICT (height) DO UPDATE SET doc = EXCLUDED.doc`

const getValidatorSetAtQuery = `SELECT doc FROM validators WHERE height <= $1 ORDER BY height DESC LIMIT 1`

const getLatestValidatorSetQuery = `SELECT doc FROM validators ORDER BY height DESC LIMIT 1`

const deleteValidatorSetQuery = `DELETE FROM validators WHERE height = $1`

const upsertElectionQuery = `
	INSERT INTO elections (height, election_id, doc) VALUES ($1, $2, $3)
	ON CONFLICT (height) DO UPDATE SET election_id = EXCLUDED.election_id, doc = EXCLUDED.doc`

const getElectionQuery = `SELECT doc FROM elections WHERE election_id = $1 ORDER BY height DESC LIMIT 1`

const deleteElectionsQuery = `DELETE FROM elections WHERE height = $1`

const upsertABCIChainQuery = `
	INSERT INTO abci_chains (height, chain_id, is_synced, doc) VALUES ($1, $2, $3, $4)
	ON CONFLICT (height) DO UPDATE SET chain_id = EXCLUDED.chain_id, is_synced = EXCLUDED.is_synced, doc = EXCLUDED.doc`

const getLatestABCIChainQuery = `SELECT doc FROM abci_chains ORDER BY height DESC LIMIT 1`

const deleteABCIChainQuery = `DELETE FROM abci_chains WHERE height = $1`
