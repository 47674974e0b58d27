package dto

import "github.com/google/uuid"

type CheckoutRequest struct {
	SessionId uuid.UUID `json:"session_id" validate:"required"`
}

type CheckoutResponse struct {
	SessionId       uuid.UUID `json:"session_id"`
	SnapToken       string    `json:"snap_token"`
	SnapRedirectUrl string    `json:"snap_redirect_url"`
}

// MidtransWebhookRequest is the notification payload Midtrans POSTs to us.
type MidtransWebhookRequest struct {
	OrderId           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	TransactionId     string `json:"transaction_id"`
	PaymentType       string `json:"payment_type"`
}

type VerifyPaymentResponse struct {
	SessionId     uuid.UUID `json:"session_id"`
	SessionStatus string    `json:"session_status"`
	PaymentStatus string    `json:"payment_status"`
}
