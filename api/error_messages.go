package api

const (
	errFailedLookingUpHealth      = "failed retrieving health"
	errFailedLookingUpTransaction = "failed looking up transaction"
	errFailedSearchingTxids       = "failed searching transactions"
	errFailedLookingUpOutputs     = "failed looking up outputs"
	errFailedLookingUpAsset       = "failed looking up asset"
	errFailedSearchingText        = "failed text search"
	errFailedLookingUpBlock       = "failed looking up block"
	errFailedLookingUpValidators  = "failed looking up validator set"
	errFailedLookingUpElection    = "failed looking up election"

	errNoTransactionFound  = "no transaction found for id"
	errNoAssetFound        = "no asset found for id"
	errNoBlockFound        = "no block found"
	errNoValidatorSetFound = "no validator set found"
	errNoElectionFound     = "no election found for id"

	errMissingAssetID   = "asset_id is required"
	errMissingPublicKey = "public_key is required"
	errMissingSearch    = "search is required"
	errUnknownOperation = "operation must be CREATE or TRANSFER"
	errZeroLimit        = "limit must be greater than 0"
	errBadBool          = "unable to parse boolean"
	errBadUint          = "unable to parse unsigned integer"
)
