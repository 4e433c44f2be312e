package xrpl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rpcServer(t *testing.T, handler func(method string, params map[string]any) any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string           `json:"method"`
			Params []map[string]any `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Params, 1)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": handler(req.Method, req.Params[0]),
		})
	}))
}

func TestTx(t *testing.T) {
	srv := rpcServer(t, func(method string, params map[string]any) any {
		assert.Equal(t, "tx", method)
		assert.Equal(t, "ABC123", params["transaction"])
		return map[string]any{
			"TransactionType": "Payment",
			"Account":         "rDEBTOR123",
			"Destination":     "rCREDITOR456",
			"Amount":          "15000000",
			"hash":            "ABC123",
			"validated":       true,
		}
	})
	defer srv.Close()

	tx, err := NewClient(srv.URL).Tx(context.Background(), "ABC123")
	require.NoError(t, err)

	assert.Equal(t, "Payment", tx.TransactionType)
	assert.Equal(t, "ABC123", tx.Hash)
	assert.Equal(t, json.RawMessage(`"15000000"`), tx.Amount)
}

func TestTxNotFound(t *testing.T) {
	srv := rpcServer(t, func(method string, params map[string]any) any {
		return map[string]any{"error": "txnNotFound", "error_message": "Transaction not found."}
	})
	defer srv.Close()

	_, err := NewClient(srv.URL).Tx(context.Background(), "MISSING")
	assert.True(t, errors.Is(err, ErrTransactionNotFound))
}

func TestTxLedgerError(t *testing.T) {
	srv := rpcServer(t, func(method string, params map[string]any) any {
		return map[string]any{"error": "invalidParams", "error_message": "bad request"}
	})
	defer srv.Close()

	_, err := NewClient(srv.URL).Tx(context.Background(), "X")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalidParams")
}

func TestAccountTx(t *testing.T) {
	srv := rpcServer(t, func(method string, params map[string]any) any {
		assert.Equal(t, "account_tx", method)
		assert.Equal(t, "rDEBTOR123", params["account"])
		return map[string]any{
			"transactions": []any{
				map[string]any{"tx": map[string]any{
					"TransactionType": "Payment",
					"hash":            "HASH-A",
				}},
				map[string]any{"tx": map[string]any{
					"TransactionType": "OfferCreate",
					"hash":            "HASH-B",
				}},
			},
		}
	})
	defer srv.Close()

	txs, err := NewClient(srv.URL).AccountTx(context.Background(), "rDEBTOR123", 25)
	require.NoError(t, err)

	require.Len(t, txs, 2)
	assert.Equal(t, "HASH-A", txs[0].Hash)
	assert.Equal(t, "OfferCreate", txs[1].TransactionType)
}

func TestCallHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Tx(context.Background(), "X")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
