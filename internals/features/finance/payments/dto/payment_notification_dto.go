package dto

// MidtransNotification is the HTTP notification body Midtrans posts after a status change.
// Unknown fields are ignored.
type MidtransNotification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"` // capture, settlement, pending, deny, cancel, expire, refund, partial_refund, failure
	TransactionID     string `json:"transaction_id"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"` // accept / challenge / deny
	SettlementTime    string `json:"settlement_time"`
}

type WebhookResult struct {
	Status            string  `json:"status"`
	Reason            string  `json:"reason,omitempty"`
	RegistrationID    string  `json:"registration_id,omitempty"`
	PaymentStatus     string  `json:"payment_status,omitempty"`
	TransactionStatus string  `json:"transaction_status"`
	FraudStatus       string  `json:"fraud_status,omitempty"`
	TransactionID     *string `json:"transaction_id,omitempty"`
}
