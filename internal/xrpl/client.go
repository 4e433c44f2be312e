package xrpl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrTransactionNotFound is returned when the ledger does not know the hash.
var ErrTransactionNotFound = errors.New("transaction not found")

const defaultRequestTimeout = 15 * time.Second

// Client is a minimal XRPL JSON-RPC client covering the two lookups the
// gateway needs: fetch-by-hash and list-by-account.
type Client struct {
	url    string
	client *http.Client
}

// NewClient creates a client for the given JSON-RPC endpoint.
func NewClient(url string) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: defaultRequestTimeout},
	}
}

type rpcRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

type rpcError struct {
	Error        string `json:"error"`
	ErrorMessage string `json:"error_message"`
}

// Tx fetches a single validated transaction by hash.
func (c *Client) Tx(ctx context.Context, hash string) (*Transaction, error) {
	var result struct {
		rpcError
		Transaction
		Validated bool `json:"validated"`
	}

	params := map[string]any{"transaction": hash, "binary": false}
	if err := c.call(ctx, "tx", params, &result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		if result.Error == "txnNotFound" {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("ledger error %s: %s", result.Error, result.ErrorMessage)
	}

	tx := result.Transaction
	return &tx, nil
}

// AccountTx lists the most recent transactions touching an account.
func (c *Client) AccountTx(ctx context.Context, account string, limit int) ([]*Transaction, error) {
	var result struct {
		rpcError
		Transactions []struct {
			Tx *Transaction `json:"tx"`
		} `json:"transactions"`
	}

	params := map[string]any{"account": account, "limit": limit}
	if err := c.call(ctx, "account_tx", params, &result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, fmt.Errorf("ledger error %s: %s", result.Error, result.ErrorMessage)
	}

	txs := make([]*Transaction, 0, len(result.Transactions))
	for _, wrapper := range result.Transactions {
		if wrapper.Tx != nil {
			txs = append(txs, wrapper.Tx)
		}
	}
	return txs, nil
}

// call performs one JSON-RPC request and decodes the "result" object into out.
func (c *Client) call(ctx context.Context, method string, params map[string]any, out any) error {
	body, err := json.Marshal(rpcRequest{Method: method, Params: []any{params}})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ledger request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ledger returned status %d", resp.StatusCode)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}

	return nil
}
