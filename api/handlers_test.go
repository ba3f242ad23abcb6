package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledgerdb/ledger"
	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/ledgerdb/badger"
	"github.com/ledgerkit/ledgerdb/ledgerdb/mocks"
	"github.com/ledgerkit/ledgerdb/types"
	testutil "github.com/ledgerkit/ledgerdb/util/test"
)

// setupServer commits two blocks to an in-memory store: t1 mints a kayak
// for A, t2 moves it to B and C.
func setupServer(t *testing.T, options ExtraOptions) *echo.Echo {
	logger, _ := test.NewNullLogger()
	db, ch, err := badger.OpenBadger("", ledgerdb.LedgerDbOptions{InMemory: true}, logger)
	require.NoError(t, err)
	<-ch
	t.Cleanup(db.Close)

	l := ledger.MakeLedger(db, nil, logger)
	ctx := context.Background()

	create := testutil.MakeCreateTxn("t1", testutil.AccountA, "10", map[string]interface{}{"name": "green kayak"})
	create.Metadata = map[string]interface{}{"note": "kayak minted"}
	transfer := testutil.MakeTransferTxn("t2", "t1", []types.TransactionLink{testutil.Link("t1", 0)},
		testutil.MakeOutput("4", testutil.AccountB), testutil.MakeOutput("6", testutil.AccountC))

	require.NoError(t, l.Commit(ctx, ledger.CommitRequest{Height: 1, Transactions: []types.Transaction{create}}))
	vs := types.ValidatorSet{Height: 2, Validators: []types.Validator{{PublicKey: types.PublicKey{Type: "ed25519-base64", Value: "v1"}, VotingPower: 10}}}
	require.NoError(t, l.Commit(ctx, ledger.CommitRequest{
		Height:       2,
		Transactions: []types.Transaction{transfer},
		ValidatorSet: &vs,
		Elections:    []types.Election{{ElectionID: "e1", Height: 2, IsConcluded: true}},
	}))

	return newServer(l, logger, options)
}

func get(t *testing.T, e *echo.Echo, target string) (int, map[string]interface{}) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func TestHandlers(t *testing.T) {
	e := setupServer(t, ExtraOptions{})

	tests := []struct {
		name   string
		target string
		status int
		check  func(t *testing.T, body map[string]interface{})
	}{
		{
			name: "health", target: "/health", status: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, float64(2), body["height"])
				assert.Equal(t, true, body["db-available"])
			},
		},
		{
			name: "transaction", target: "/v1/transactions/t1", status: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "t1", body["id"])
				assert.Equal(t, map[string]interface{}{"data": map[string]interface{}{"name": "green kayak"}}, body["asset"])
				assert.Equal(t, map[string]interface{}{"note": "kayak minted"}, body["metadata"])
			},
		},
		{name: "missing transaction", target: "/v1/transactions/nope", status: http.StatusNotFound},
		{
			name: "asset transactions", target: "/v1/transactions?asset_id=t1", status: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Len(t, body["transactions"], 2)
			},
		},
		{
			name: "last transfer", target: "/v1/transactions?asset_id=t1&operation=transfer&last_tx=true", status: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				txns := body["transactions"].([]interface{})
				require.Len(t, txns, 1)
				assert.Equal(t, "t2", txns[0].(map[string]interface{})["id"])
			},
		},
		{name: "no asset id", target: "/v1/transactions", status: http.StatusBadRequest},
		{name: "bad operation", target: "/v1/transactions?asset_id=t1&operation=BURN", status: http.StatusBadRequest},
		{name: "bad last_tx", target: "/v1/transactions?asset_id=t1&last_tx=often", status: http.StatusBadRequest},
		{
			name: "unspent outputs", target: "/v1/outputs?public_key=" + testutil.AccountB + "&spent=false", status: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, []interface{}{map[string]interface{}{"transaction_id": "t2", "output_index": float64(0)}}, body["outputs"])
			},
		},
		{
			name: "spent outputs", target: "/v1/outputs?public_key=" + testutil.AccountA + "&spent=true", status: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Len(t, body["outputs"], 1)
			},
		},
		{name: "no public key", target: "/v1/outputs", status: http.StatusBadRequest},
		{
			name: "asset", target: "/v1/assets/t1", status: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, map[string]interface{}{"id": "t1", "data": map[string]interface{}{"name": "green kayak"}}, body)
			},
		},
		{name: "missing asset", target: "/v1/assets/t2", status: http.StatusNotFound},
		{
			name: "asset search", target: "/v1/assets?search=kayak", status: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				results := body["results"].([]interface{})
				require.Len(t, results, 1)
				_, hasScore := results[0].(map[string]interface{})["score"]
				assert.False(t, hasScore)
			},
		},
		{
			name: "asset search with score", target: "/v1/assets?search=kayak&text_score=true", status: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				results := body["results"].([]interface{})
				require.Len(t, results, 1)
				assert.Greater(t, results[0].(map[string]interface{})["score"], 0.0)
			},
		},
		{
			name: "metadata search", target: "/v1/metadata?search=minted&limit=5", status: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Len(t, body["results"], 1)
			},
		},
		{name: "no search", target: "/v1/assets?search=", status: http.StatusBadRequest},
		{name: "bad language", target: "/v1/assets?search=kayak&language=klingon", status: http.StatusBadRequest},
		{name: "bad limit", target: "/v1/metadata?search=kayak&limit=-3", status: http.StatusBadRequest},
		{
			name: "zero limit", target: "/v1/assets?search=kayak&limit=0", status: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, errZeroLimit, body["message"])
			},
		},
		{
			name: "limit above cap", target: "/v1/assets?search=kayak&limit=5000", status: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Len(t, body["results"], 1)
			},
		},
		{
			name: "latest block", target: "/v1/blocks/latest", status: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, float64(2), body["height"])
				assert.Equal(t, []interface{}{"t2"}, body["transactions"])
			},
		},
		{
			name: "block", target: "/v1/blocks/1", status: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, []interface{}{"t1"}, body["transactions"])
			},
		},
		{name: "missing block", target: "/v1/blocks/9", status: http.StatusNotFound},
		{name: "bad height", target: "/v1/blocks/tall", status: http.StatusBadRequest},
		{
			name: "blocks with transaction", target: "/v1/blocks?transaction_id=t2", status: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, []interface{}{float64(2)}, body["heights"])
			},
		},
		{
			name: "validators", target: "/v1/validators?height=5", status: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, float64(2), body["height"])
			},
		},
		{name: "no validators yet", target: "/v1/validators?height=1", status: http.StatusNotFound},
		{
			name: "election", target: "/v1/elections/e1", status: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, true, body["is_concluded"])
			},
		},
		{name: "missing election", target: "/v1/elections/e9", status: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := get(t, e, tc.target)
			require.Equal(t, tc.status, status, body)
			if tc.status != http.StatusOK {
				assert.NotEmpty(t, body["message"])
			}
			if tc.check != nil {
				tc.check(t, body)
			}
		})
	}
}

func TestAuthTokens(t *testing.T) {
	e := setupServer(t, ExtraOptions{Tokens: []string{"secret"}})

	status, _ := get(t, e, "/v1/blocks/latest")
	assert.Equal(t, http.StatusUnauthorized, status)

	// Health stays open.
	status, _ = get(t, e, "/health")
	assert.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest(http.MethodGet, "/v1/blocks/latest", nil)
	req.Header.Set("X-Ledger-API-Token", "secret")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func mockServer(db *mocks.LedgerDb, timeout time.Duration) *echo.Echo {
	logger, _ := test.NewNullLogger()
	return newServer(ledger.MakeLedger(db, nil, logger), logger, ExtraOptions{Timeout: timeout})
}

func TestBackendErrors(t *testing.T) {
	db := &mocks.LedgerDb{}
	boom := errors.New("connection refused")
	db.On("GetLatestBlock", mock.Anything).Return(types.Block{}, false, boom)
	db.On("GetBlockWithTransaction", mock.Anything, "t1").Return(ledgerdb.ErrorRow(ledgerdb.BlockRefRow{Error: boom}))
	db.On("Health", mock.Anything).Return(ledgerdb.Health{}, boom)

	e := mockServer(db, 0)
	for _, target := range []string{"/v1/blocks/latest", "/v1/blocks?transaction_id=t1", "/health"} {
		status, body := get(t, e, target)
		assert.Equal(t, http.StatusInternalServerError, status, target)
		assert.Contains(t, body["message"], "connection refused")
	}
}

func TestBackendTimeout(t *testing.T) {
	db := &mocks.LedgerDb{}
	release := make(chan struct{})
	defer close(release)
	db.On("GetBlock", mock.Anything, uint64(1)).
		Run(func(mock.Arguments) { <-release }).
		Return(types.Block{}, false, nil)

	e := mockServer(db, 10*time.Millisecond)
	status, body := get(t, e, "/v1/blocks/1")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body["message"], errTimeout.Error())
}

func TestHealthReportsDatabaseError(t *testing.T) {
	db := &mocks.LedgerDb{}
	db.On("Health", mock.Anything).Return(ledgerdb.Health{Error: "schema not initialized"}, nil)

	status, body := get(t, mockServer(db, 0), "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"database error: schema not initialized"}, body["errors"])
	assert.Equal(t, false, body["db-available"])
}
