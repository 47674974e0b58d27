package payment

import (
	"crypto/sha512"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

type MidtransGateway struct {
	snapClient snap.Client
	coreClient coreapi.Client
	serverKey  string
}

func NewMidtransGateway(serverKey string, production bool) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	g := &MidtransGateway{serverKey: serverKey}
	g.snapClient.New(serverKey, env)
	g.coreClient.New(serverKey, env)
	return g
}

func (g *MidtransGateway) CreateCheckout(req *CheckoutRequest) (*Checkout, error) {
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.GrossAmount,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: req.FinishURL,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    req.ItemID,
				Price: req.GrossAmount,
				Qty:   1,
				Name:  req.ItemName,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	resp, midErr := g.snapClient.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %v", midErr.GetMessage())
	}

	return &Checkout{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

func (g *MidtransGateway) CheckTransaction(orderID string) (TransactionState, error) {
	resp, midErr := g.coreClient.CheckTransaction(orderID)
	if midErr != nil {
		return StateUnknown, fmt.Errorf("midtrans status check error: %v", midErr.GetMessage())
	}
	return MapTransactionStatus(resp.TransactionStatus), nil
}

// VerifySignature checks the Midtrans webhook signature:
// SHA512(order_id + status_code + gross_amount + server_key).
func (g *MidtransGateway) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	input := orderID + statusCode + grossAmount + g.serverKey
	expected := fmt.Sprintf("%x", sha512.Sum512([]byte(input)))
	return signatureKey == expected
}

// MapTransactionStatus folds Midtrans transaction statuses into the
// provider-agnostic states.
func MapTransactionStatus(status string) TransactionState {
	switch status {
	case "capture", "settlement":
		return StatePaid
	case "deny", "cancel", "expire", "failure":
		return StateFailed
	case "pending", "authorize":
		return StatePending
	default:
		return StateUnknown
	}
}
