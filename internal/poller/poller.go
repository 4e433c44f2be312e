package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/iso-gateway/internal/iso20022"
	"github.com/example/iso-gateway/internal/pipeline"
	"github.com/example/iso-gateway/internal/store"
	"github.com/example/iso-gateway/internal/xrpl"
)

const fetchLimit = 25

// LedgerLister lists recent transactions for an account.
type LedgerLister interface {
	AccountTx(ctx context.Context, account string, limit int) ([]*xrpl.Transaction, error)
}

// Converter runs the conversion pipeline for one transaction.
type Converter interface {
	Process(ctx context.Context, tx *xrpl.Transaction, mt iso20022.MessageType) (*pipeline.Result, error)
}

// Poller periodically lists an account's recent ledger transactions and
// converts the ones not seen before. One failed transaction does not stop
// the sweep.
type Poller struct {
	ledger      LedgerLister
	converter   Converter
	messages    store.MessageStore
	account     string
	messageType iso20022.MessageType
	interval    time.Duration
	logger      *slog.Logger
}

// New creates a poller for one account and message type.
func New(ledger LedgerLister, converter Converter, messages store.MessageStore,
	account string, mt iso20022.MessageType, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		ledger:      ledger,
		converter:   converter,
		messages:    messages,
		account:     account,
		messageType: mt,
		interval:    interval,
		logger:      logger,
	}
}

// Run sweeps immediately, then on every interval tick until the context is
// cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller_stopped", "account", p.account)
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *Poller) sweep(ctx context.Context) {
	txs, err := p.ledger.AccountTx(ctx, p.account, fetchLimit)
	if err != nil {
		p.logger.Error("account_fetch_failed", "account", p.account, "error", err)
		return
	}

	converted := 0
	for _, tx := range txs {
		if tx.TransactionType != "Payment" || tx.Hash == "" {
			continue
		}

		seen, err := p.messages.HasTransaction(ctx, tx.Hash, string(p.messageType))
		if err != nil {
			p.logger.Error("dedup_check_failed", "tx_hash", tx.Hash, "error", err)
			continue
		}
		if seen {
			continue
		}

		if _, err := p.converter.Process(ctx, tx, p.messageType); err != nil {
			p.logger.Error("conversion_failed", "tx_hash", tx.Hash, "error", err)
			continue
		}
		converted++
	}

	p.logger.Info("sweep_complete", "account", p.account, "fetched", len(txs), "converted", converted)
}
