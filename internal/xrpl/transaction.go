package xrpl

import "encoding/json"

// Transaction is a raw ledger transaction as returned by the XRPL JSON-RPC
// API. It is externally owned and treated as immutable once fetched.
type Transaction struct {
	TransactionType string          `json:"TransactionType"`
	Account         string          `json:"Account"`
	Destination     string          `json:"Destination"`
	Amount          json.RawMessage `json:"Amount,omitempty"`
	Hash            string          `json:"hash"`
	Memos           []MemoWrapper   `json:"Memos,omitempty"`
}

// MemoWrapper matches the XRPL STArray envelope around each memo.
type MemoWrapper struct {
	Memo Memo `json:"Memo"`
}

// Memo carries hex-encoded payload fields.
type Memo struct {
	MemoData   string `json:"MemoData,omitempty"`
	MemoType   string `json:"MemoType,omitempty"`
	MemoFormat string `json:"MemoFormat,omitempty"`
}

// IssuedAmount is the object form of an XRPL amount: an issued-currency
// triple. The string form (drops of the native currency) is handled
// separately by the mapper.
type IssuedAmount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
	Issuer   string `json:"issuer,omitempty"`
}
