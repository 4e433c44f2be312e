package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/example/iso-gateway/internal/iso20022"
	"github.com/example/iso-gateway/internal/security"
	"github.com/example/iso-gateway/internal/store"
	"github.com/example/iso-gateway/internal/validation"
	"github.com/example/iso-gateway/internal/xrpl"
)

type convertRequest struct {
	TxHash      string `json:"tx_hash"`
	MessageType string `json:"message_type"`
}

type convertRawRequest struct {
	Transaction *xrpl.Transaction `json:"transaction"`
	MessageType string            `json:"message_type"`
}

type convertResponse struct {
	CorrelationID string                           `json:"correlation_id"`
	MessageID     string                           `json:"message_id,omitempty"`
	Record        *iso20022.CanonicalPaymentRecord `json:"record"`
	XML           string                           `json:"xml"`
	Validation    *validation.Result               `json:"validation"`
}

type listMessagesResponse struct {
	CorrelationID string           `json:"correlation_id"`
	Messages      []*store.Message `json:"messages"`
}

func handleConvert(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Ledger == nil {
			security.WriteJSONError(w, r, http.StatusServiceUnavailable, "ledger_unavailable")
			return
		}

		var req convertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TxHash == "" {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_request")
			return
		}

		mt := iso20022.MessageType(req.MessageType)
		if !mt.Supported() {
			security.WriteJSONError(w, r, http.StatusBadRequest, "unsupported_message_type")
			return
		}

		tx, err := deps.Ledger.Tx(r.Context(), req.TxHash)
		if err != nil {
			if errors.Is(err, xrpl.ErrTransactionNotFound) {
				security.WriteJSONError(w, r, http.StatusNotFound, "transaction_not_found")
				return
			}
			deps.Logger.Error("ledger_fetch_failed", "tx_hash", req.TxHash, "error", err)
			security.WriteJSONError(w, r, http.StatusBadGateway, "ledger_error")
			return
		}

		writeConversion(w, r, deps, tx, mt)
	}
}

func handleConvertRaw(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req convertRawRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Transaction == nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_request")
			return
		}

		mt := iso20022.MessageType(req.MessageType)
		if !mt.Supported() {
			security.WriteJSONError(w, r, http.StatusBadRequest, "unsupported_message_type")
			return
		}

		writeConversion(w, r, deps, req.Transaction, mt)
	}
}

func writeConversion(w http.ResponseWriter, r *http.Request, deps Dependencies, tx *xrpl.Transaction, mt iso20022.MessageType) {
	result, err := deps.Converter.Process(r.Context(), tx, mt)
	if err != nil {
		var malformed *iso20022.MalformedAmountError
		var memoErr *iso20022.MemoDecodeError
		if errors.As(err, &malformed) || errors.As(err, &memoErr) {
			security.WriteJSONError(w, r, http.StatusUnprocessableEntity, "unmappable_transaction")
			return
		}
		deps.Logger.Error("conversion_failed", "tx_hash", tx.Hash, "error", err)
		security.WriteJSONError(w, r, http.StatusInternalServerError, "conversion_failed")
		return
	}

	resp := convertResponse{
		CorrelationID: security.CorrelationIDFromContext(r.Context()),
		Record:        result.Record,
		XML:           result.XML,
		Validation:    result.Validation,
	}
	if result.Stored != nil {
		resp.MessageID = result.Stored.ID
	}

	writeJSON(w, r, http.StatusOK, resp)
}

func handleGetMessage(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Messages == nil {
			security.WriteJSONError(w, r, http.StatusServiceUnavailable, "store_unavailable")
			return
		}

		msg, err := deps.Messages.GetMessage(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, store.ErrMessageNotFound) {
				security.WriteJSONError(w, r, http.StatusNotFound, "message_not_found")
				return
			}
			deps.Logger.Error("message_lookup_failed", "error", err)
			security.WriteJSONError(w, r, http.StatusInternalServerError, "store_error")
			return
		}

		writeJSON(w, r, http.StatusOK, msg)
	}
}

func handleListMessages(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Messages == nil {
			security.WriteJSONError(w, r, http.StatusServiceUnavailable, "store_unavailable")
			return
		}

		limit, offset := 0, 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				limit = i
			}
		}
		if v := r.URL.Query().Get("offset"); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				offset = i
			}
		}

		msgs, err := deps.Messages.ListMessages(r.Context(), limit, offset)
		if err != nil {
			deps.Logger.Error("message_list_failed", "error", err)
			security.WriteJSONError(w, r, http.StatusInternalServerError, "store_error")
			return
		}

		writeJSON(w, r, http.StatusOK, listMessagesResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Messages:      msgs,
		})
	}
}
