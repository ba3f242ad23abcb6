package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/ledgerkit/ledgerdb/ledger"
	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/types"
	"github.com/ledgerkit/ledgerdb/version"
)

const (
	defaultSearchLimit = 100
	maxSearchLimit     = 1000
)

// ServerImplementation implements the query handlers.
type ServerImplementation struct {
	ledger *ledger.Ledger
	db     ledgerdb.LedgerDb

	timeout time.Duration

	log *log.Logger
}

// RegisterHandlers adds the routes. The middleware applies to everything but
// /health.
func RegisterHandlers(e *echo.Echo, si *ServerImplementation, middleware ...echo.MiddlewareFunc) {
	e.GET("/health", si.MakeHealthCheck)

	v1 := e.Group("/v1", middleware...)
	v1.GET("/transactions", si.SearchForTransactions)
	v1.GET("/transactions/:id", si.LookupTransaction)
	v1.GET("/outputs", si.LookupOutputs)
	v1.GET("/assets", si.SearchForAssets)
	v1.GET("/assets/:id", si.LookupAsset)
	v1.GET("/metadata", si.SearchForMetadata)
	v1.GET("/blocks", si.SearchForBlocks)
	v1.GET("/blocks/latest", si.LookupLatestBlock)
	v1.GET("/blocks/:height", si.LookupBlock)
	v1.GET("/validators", si.LookupValidatorSet)
	v1.GET("/elections/:id", si.LookupElection)
}

// MakeHealthCheck reports the store's health.
// (GET /health)
func (si *ServerImplementation) MakeHealthCheck(ctx echo.Context) error {
	var health ledgerdb.Health
	err := callWithTimeout(ctx.Request().Context(), si.log, si.timeout, func(ctx context.Context) error {
		var err error
		health, err = si.db.Health(ctx)
		return err
	})
	if err != nil {
		return ledgerError(ctx, fmt.Errorf("%s: %w", errFailedLookingUpHealth, err))
	}

	var errors []string
	if health.Error != "" {
		errors = append(errors, fmt.Sprintf("database error: %s", health.Error))
	}

	return ctx.JSON(http.StatusOK, HealthCheckResponse{
		Version:     version.Version(),
		Data:        health.Data,
		Height:      health.Height,
		DBAvailable: health.DBAvailable,
		Message:     strconv.FormatUint(health.Height, 10),
		Errors:      errors,
	})
}

// LookupTransaction returns one transaction with its asset and metadata.
// (GET /v1/transactions/{id})
func (si *ServerImplementation) LookupTransaction(ctx echo.Context) error {
	id := ctx.Param("id")
	var txn types.Transaction
	var found bool
	err := callWithTimeout(ctx.Request().Context(), si.log, si.timeout, func(ctx context.Context) error {
		var err error
		txn, found, err = si.ledger.GetTransaction(ctx, id)
		return err
	})
	if err != nil {
		return ledgerError(ctx, fmt.Errorf("%s: %w", errFailedLookingUpTransaction, err))
	}
	if !found {
		return notFound(ctx, fmt.Sprintf("%s: %s", errNoTransactionFound, id))
	}
	return ctx.JSON(http.StatusOK, txn)
}

// SearchForTransactions lists the transactions of an asset.
// (GET /v1/transactions?asset_id&operation&last_tx)
func (si *ServerImplementation) SearchForTransactions(ctx echo.Context) error {
	filter := ledgerdb.TxidFilter{AssetID: ctx.QueryParam("asset_id")}
	if filter.AssetID == "" {
		return badRequest(ctx, errMissingAssetID)
	}
	switch op := types.Operation(strings.ToUpper(ctx.QueryParam("operation"))); op {
	case "", types.OperationCreate, types.OperationTransfer:
		filter.Operation = op
	default:
		return badRequest(ctx, errUnknownOperation)
	}
	lastTx, err := queryBool(ctx, "last_tx")
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	filter.LastTx = boolOrDefault(lastTx)

	var txns []types.Transaction
	err = callWithTimeout(ctx.Request().Context(), si.log, si.timeout, func(ctx context.Context) error {
		ids, err := ledgerdb.CollectTxids(si.db.GetTxidsFiltered(ctx, filter))
		if err != nil {
			return err
		}
		txns, err = si.ledger.GetTransactions(ctx, ids)
		return err
	})
	if err != nil {
		return ledgerError(ctx, fmt.Errorf("%s: %w", errFailedSearchingTxids, err))
	}
	if txns == nil {
		txns = []types.Transaction{}
	}
	return ctx.JSON(http.StatusOK, TransactionsResponse{Transactions: txns})
}

// LookupOutputs lists the outputs owned by a public key.
// (GET /v1/outputs?public_key&spent)
func (si *ServerImplementation) LookupOutputs(ctx echo.Context) error {
	publicKey := ctx.QueryParam("public_key")
	if publicKey == "" {
		return badRequest(ctx, errMissingPublicKey)
	}
	spent, err := queryBool(ctx, "spent")
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var links []types.TransactionLink
	err = callWithTimeout(ctx.Request().Context(), si.log, si.timeout, func(ctx context.Context) error {
		var err error
		links, err = si.ledger.GetOutputsFiltered(ctx, publicKey, spent)
		return err
	})
	if err != nil {
		return ledgerError(ctx, fmt.Errorf("%s: %w", errFailedLookingUpOutputs, err))
	}
	if links == nil {
		links = []types.TransactionLink{}
	}
	return ctx.JSON(http.StatusOK, OutputsResponse{Outputs: links})
}

// LookupAsset returns the payload of an asset.
// (GET /v1/assets/{id})
func (si *ServerImplementation) LookupAsset(ctx echo.Context) error {
	id := ctx.Param("id")
	var data map[string]interface{}
	var found bool
	err := callWithTimeout(ctx.Request().Context(), si.log, si.timeout, func(ctx context.Context) error {
		var err error
		data, found, err = si.db.GetAsset(ctx, id)
		return err
	})
	if err != nil {
		return ledgerError(ctx, fmt.Errorf("%s: %w", errFailedLookingUpAsset, err))
	}
	if !found {
		return notFound(ctx, fmt.Sprintf("%s: %s", errNoAssetFound, id))
	}
	return ctx.JSON(http.StatusOK, types.Asset{ID: id, Data: data})
}

// SearchForAssets runs a text search over asset payloads.
// (GET /v1/assets?search&limit)
func (si *ServerImplementation) SearchForAssets(ctx echo.Context) error {
	return si.textSearch(ctx, ledgerdb.CollectionAssets)
}

// SearchForMetadata runs a text search over transaction metadata.
// (GET /v1/metadata?search&limit)
func (si *ServerImplementation) SearchForMetadata(ctx echo.Context) error {
	return si.textSearch(ctx, ledgerdb.CollectionMetadata)
}

func (si *ServerImplementation) textSearch(ctx echo.Context, collection ledgerdb.Collection) error {
	search := ctx.QueryParam("search")
	if strings.TrimSpace(search) == "" {
		return badRequest(ctx, errMissingSearch)
	}
	limit, err := queryUint(ctx, "limit")
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	// The store reads 0 as unlimited.
	if limit != nil && *limit == 0 {
		return badRequest(ctx, errZeroLimit)
	}
	opts := ledgerdb.TextSearchOptions{
		Language:   ctx.QueryParam("language"),
		Limit:      min(uintOrDefault(limit, defaultSearchLimit), maxSearchLimit),
		Collection: collection,
	}
	flags := []struct {
		name string
		dst  *bool
	}{
		{"case_sensitive", &opts.CaseSensitive},
		{"diacritic_sensitive", &opts.DiacriticSensitive},
		{"text_score", &opts.TextScore},
	}
	for _, flag := range flags {
		v, err := queryBool(ctx, flag.name)
		if err != nil {
			return badRequest(ctx, err.Error())
		}
		*flag.dst = boolOrDefault(v)
	}
	if _, err := opts.Normalize(); err != nil {
		return badRequest(ctx, err.Error())
	}

	var rows []ledgerdb.TextSearchRow
	err = callWithTimeout(ctx.Request().Context(), si.log, si.timeout, func(ctx context.Context) error {
		var err error
		rows, err = ledgerdb.CollectTextSearch(si.db.TextSearch(ctx, search, opts))
		return err
	})
	if err != nil {
		return ledgerError(ctx, fmt.Errorf("%s: %w", errFailedSearchingText, err))
	}

	results := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		result := row.Document
		if row.Score != nil {
			result = make(map[string]interface{}, len(row.Document)+1)
			for k, v := range row.Document {
				result[k] = v
			}
			result["score"] = *row.Score
		}
		results = append(results, result)
	}
	return ctx.JSON(http.StatusOK, SearchResponse{Results: results})
}

// LookupLatestBlock returns the most recent block.
// (GET /v1/blocks/latest)
func (si *ServerImplementation) LookupLatestBlock(ctx echo.Context) error {
	return si.lookupBlock(ctx, nil)
}

// LookupBlock returns the block at a height.
// (GET /v1/blocks/{height})
func (si *ServerImplementation) LookupBlock(ctx echo.Context) error {
	height, err := strconv.ParseUint(ctx.Param("height"), 10, 64)
	if err != nil {
		return badRequest(ctx, fmt.Sprintf("%s height: '%s'", errBadUint, ctx.Param("height")))
	}
	return si.lookupBlock(ctx, &height)
}

func (si *ServerImplementation) lookupBlock(ctx echo.Context, height *uint64) error {
	var block types.Block
	var found bool
	err := callWithTimeout(ctx.Request().Context(), si.log, si.timeout, func(ctx context.Context) error {
		var err error
		if height == nil {
			block, found, err = si.db.GetLatestBlock(ctx)
		} else {
			block, found, err = si.db.GetBlock(ctx, *height)
		}
		return err
	})
	if err != nil {
		return ledgerError(ctx, fmt.Errorf("%s: %w", errFailedLookingUpBlock, err))
	}
	if !found {
		return notFound(ctx, errNoBlockFound)
	}
	return ctx.JSON(http.StatusOK, block)
}

// SearchForBlocks lists the heights of the blocks holding a transaction.
// (GET /v1/blocks?transaction_id)
func (si *ServerImplementation) SearchForBlocks(ctx echo.Context) error {
	txid := ctx.QueryParam("transaction_id")
	if txid == "" {
		return badRequest(ctx, "transaction_id is required")
	}
	var heights []uint64
	err := callWithTimeout(ctx.Request().Context(), si.log, si.timeout, func(ctx context.Context) error {
		var err error
		heights, err = ledgerdb.CollectBlockRefs(si.db.GetBlockWithTransaction(ctx, txid))
		return err
	})
	if err != nil {
		return ledgerError(ctx, fmt.Errorf("%s: %w", errFailedLookingUpBlock, err))
	}
	if heights == nil {
		heights = []uint64{}
	}
	return ctx.JSON(http.StatusOK, BlockHeightsResponse{Heights: heights})
}

// LookupValidatorSet returns the validator set in effect at a height, or the
// latest one.
// (GET /v1/validators?height)
func (si *ServerImplementation) LookupValidatorSet(ctx echo.Context) error {
	height, err := queryUint(ctx, "height")
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	var vs types.ValidatorSet
	var found bool
	err = callWithTimeout(ctx.Request().Context(), si.log, si.timeout, func(ctx context.Context) error {
		var err error
		vs, found, err = si.db.GetValidatorSet(ctx, height)
		return err
	})
	if err != nil {
		return ledgerError(ctx, fmt.Errorf("%s: %w", errFailedLookingUpValidators, err))
	}
	if !found {
		return notFound(ctx, errNoValidatorSetFound)
	}
	return ctx.JSON(http.StatusOK, vs)
}

// LookupElection returns the outcome of an election.
// (GET /v1/elections/{id})
func (si *ServerImplementation) LookupElection(ctx echo.Context) error {
	id := ctx.Param("id")
	var election types.Election
	var found bool
	err := callWithTimeout(ctx.Request().Context(), si.log, si.timeout, func(ctx context.Context) error {
		var err error
		election, found, err = si.db.GetElection(ctx, id)
		return err
	})
	if err != nil {
		return ledgerError(ctx, fmt.Errorf("%s: %w", errFailedLookingUpElection, err))
	}
	if !found {
		return notFound(ctx, fmt.Sprintf("%s: %s", errNoElectionFound, id))
	}
	return ctx.JSON(http.StatusOK, election)
}

///////////////////////////////
// Error reporting functions //
///////////////////////////////

// return a 400
func badRequest(ctx echo.Context, err string) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Message: err,
	})
}

// return a 503
func timeoutError(ctx echo.Context, err string) error {
	return ctx.JSON(http.StatusServiceUnavailable, ErrorResponse{
		Message: err,
	})
}

// return a 500, or 503 if it is a timeout error
func ledgerError(ctx echo.Context, err error) error {
	if isTimeoutError(err) {
		return timeoutError(ctx, err.Error())
	}

	return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
		Message: err.Error(),
	})
}

// return a 404
func notFound(ctx echo.Context, err string) error {
	return ctx.JSON(http.StatusNotFound, ErrorResponse{
		Message: err,
	})
}
