package types

// ChargeRequest describes one charge against a stored payment method.
// Amounts are in minor units (cents).
type ChargeRequest struct {
	CustomerRef    string `json:"customer_ref"`
	CardRef        string `json:"card_ref"`
	AmountCents    int64  `json:"amount_cents"`
	Memo           string `json:"memo"`
	IdempotencyKey string `json:"idempotency_key"`
}

// ChargeResult is the gateway's answer. PaymentRef is set on success,
// FailureReason on decline.
type ChargeResult struct {
	Success       bool   `json:"success"`
	PaymentRef    string `json:"payment_ref"`
	FailureReason string `json:"failure_reason"`
}
