package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the purchase request sent to Bytewave. Reference is forwarded
// verbatim so the provider can deduplicate retried orders on its side.
type Order struct {
	Network    string `json:"network"`
	Reference  string `json:"reference"`
	MSISDN     string `json:"msisdn"`
	CapacityGB int    `json:"capacity"`
}

// OrderAck is Bytewave's response envelope for POST /order.
type OrderAck struct {
	Status  string `json:"status"`
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

// OrderAccepted is the Bytewave status value for an accepted order.
const OrderAccepted = "success"

// TransactionRecordedEvent is the payload relayed to Kafka after a webhook
// delivery is recorded in the ledger.
type TransactionRecordedEvent struct {
	Reference     string          `json:"reference"`
	Phone         string          `json:"phone"`
	Network       string          `json:"network"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	WholesaleCost decimal.Decimal `json:"wholesale_cost"`
	Profit        decimal.Decimal `json:"profit"`
	Status        string          `json:"status"`
	RecordedAt    time.Time       `json:"recorded_at"`
}
