package payment

// TransactionState is the provider-agnostic interpretation of a payment's
// status. Only Paid may advance a session to confirmed.
type TransactionState string

const (
	StatePaid    TransactionState = "paid"
	StateFailed  TransactionState = "failed"
	StatePending TransactionState = "pending"
	StateUnknown TransactionState = "unknown"
)

type CheckoutRequest struct {
	OrderID       string
	GrossAmount   int64
	ItemID        string
	ItemName      string
	CustomerName  string
	CustomerEmail string
	FinishURL     string
}

type Checkout struct {
	Token       string
	RedirectURL string
}

// Gateway fronts the payment provider. The session lifecycle only ever
// learns payment outcomes through it.
type Gateway interface {
	// CreateCheckout opens a hosted checkout page for the order.
	CreateCheckout(req *CheckoutRequest) (*Checkout, error)
	// CheckTransaction asks the provider for the authoritative state of an
	// order. This is the verification call backing confirmPayment.
	CheckTransaction(orderID string) (TransactionState, error)
	// VerifySignature validates a webhook notification's signature.
	VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool
}
