package api

import (
	"github.com/ledgerkit/ledgerdb/types"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// HealthCheckResponse is returned by /health.
type HealthCheckResponse struct {
	Version     string                  `json:"version"`
	Data        *map[string]interface{} `json:"data,omitempty"`
	Height      uint64                  `json:"height"`
	DBAvailable bool                    `json:"db-available"`
	Message     string                  `json:"message"`
	Errors      []string                `json:"errors,omitempty"`
}

// TransactionsResponse lists transactions.
type TransactionsResponse struct {
	Transactions []types.Transaction `json:"transactions"`
}

// OutputsResponse lists outputs by their links.
type OutputsResponse struct {
	Outputs []types.TransactionLink `json:"outputs"`
}

// SearchResponse lists text search hits. Score is present when requested.
type SearchResponse struct {
	Results []map[string]interface{} `json:"results"`
}

// BlockHeightsResponse lists the heights of the blocks holding a
// transaction.
type BlockHeightsResponse struct {
	Heights []uint64 `json:"heights"`
}
