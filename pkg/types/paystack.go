package types

import "time"

// PaystackWebhookEvent is the inbound webhook delivery shape. Only the
// fields venda consumes are modeled.
type PaystackWebhookEvent struct {
	Event string              `json:"event"`
	Data  PaystackWebhookData `json:"data"`
}

type PaystackWebhookData struct {
	ID              int64            `json:"id"`
	Status          string           `json:"status"`
	Reference       string           `json:"reference" validate:"required"`
	Amount          int64            `json:"amount" validate:"required,gt=0"`
	GatewayResponse string           `json:"gateway_response"`
	PaidAt          *time.Time       `json:"paid_at"`
	Channel         string           `json:"channel"`
	Currency        string           `json:"currency"`
	Customer        PaystackCustomer `json:"customer"`
}

type PaystackCustomer struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone" validate:"required"`
}

// VerifyTransactionResponse is Paystack's GET /transaction/verify/{reference}
// envelope. Data.Status carries the literal "success" marker; nothing else
// counts as proof of payment.
type VerifyTransactionResponse struct {
	Status  bool                  `json:"status"`
	Message string                `json:"message"`
	Data    VerifyTransactionData `json:"data"`
}

type VerifyTransactionData struct {
	ID              int64  `json:"id"`
	Status          string `json:"status"`
	Reference       string `json:"reference"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	GatewayResponse string `json:"gateway_response"`
}

// PaymentVerified is the only Data.Status value Paystack documents as a
// settled charge.
const PaymentVerified = "success"

// ChargeSuccess is the webhook event tag that triggers order derivation.
const ChargeSuccess = "charge.success"
