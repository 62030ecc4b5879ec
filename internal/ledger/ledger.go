package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/niiodoi/venda/internal/network"
)

// Status is the terminal outcome a webhook delivery was recorded with.
type Status string

const (
	StatusSuccess           Status = "success"
	StatusPaymentUnverified Status = "payment_unverified"
	StatusNoBundleMatch     Status = "no_bundle_match"
	StatusProviderError     Status = "provider_error"
	StatusUnknown           Status = "unknown"
)

// Record is one processed webhook delivery. Records are append-only: once
// written they are never updated. Profit is AmountPaid minus WholesaleCost
// and is only non-zero for StatusSuccess.
type Record struct {
	ID            int64           `json:"id"`
	Reference     string          `json:"reference"`
	Phone         string          `json:"phone"`
	Network       network.Network `json:"network"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	WholesaleCost decimal.Decimal `json:"wholesale_cost"`
	Profit        decimal.Decimal `json:"profit"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Summary aggregates the ledger for the admin surface.
type Summary struct {
	TotalTransactions int             `json:"total_transactions"`
	TotalProfit       decimal.Decimal `json:"total_profit"`
	Transactions      []Record        `json:"transactions"`
}

// Store owns the transaction records for the life of the process. Append
// must be safe for concurrent callers.
type Store interface {
	Append(ctx context.Context, rec *Record) error
	Summary(ctx context.Context) (*Summary, error)
}
