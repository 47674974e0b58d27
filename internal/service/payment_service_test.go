package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorlink-be/internal/dto"
	"tutorlink-be/internal/entity"
	"tutorlink-be/internal/pkg/apperrors"
	"tutorlink-be/pkg/payment"
)

type fakeGateway struct {
	state         payment.TransactionState
	checkErr      error
	checkout      *payment.Checkout
	checkoutErr   error
	validSig      bool
	lastCheckout  *payment.CheckoutRequest
	checkedOrders []string
}

func (g *fakeGateway) CreateCheckout(req *payment.CheckoutRequest) (*payment.Checkout, error) {
	g.lastCheckout = req
	if g.checkoutErr != nil {
		return nil, g.checkoutErr
	}
	if g.checkout != nil {
		return g.checkout, nil
	}
	return &payment.Checkout{Token: "tok", RedirectURL: "https://pay.example/" + req.OrderID}, nil
}

func (g *fakeGateway) CheckTransaction(orderID string) (payment.TransactionState, error) {
	g.checkedOrders = append(g.checkedOrders, orderID)
	return g.state, g.checkErr
}

func (g *fakeGateway) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	return g.validSig
}

type paymentFixture struct {
	*sessionFixture
	gateway *fakeGateway
	service IPaymentService
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	sf := newSessionFixture(t)
	gw := &fakeGateway{validSig: true}
	return &paymentFixture{
		sessionFixture: sf,
		gateway:        gw,
		service:        NewPaymentService(sf.factory, gw, sf.service, nopLogger{}),
	}
}

func TestCreateCheckout(t *testing.T) {
	f := newPaymentFixture(t)
	booked := f.book(t)

	res, err := f.service.CreateCheckout(context.Background(), f.studentId, &dto.CheckoutRequest{SessionId: booked.Id})
	require.NoError(t, err)

	assert.Equal(t, "tok", res.SnapToken)
	require.NotNil(t, f.gateway.lastCheckout)
	assert.Equal(t, booked.Id.String(), f.gateway.lastCheckout.OrderID)
	assert.Equal(t, int64(45), f.gateway.lastCheckout.GrossAmount)
}

func TestCreateCheckoutOnlyStudent(t *testing.T) {
	f := newPaymentFixture(t)
	booked := f.book(t)

	_, err := f.service.CreateCheckout(context.Background(), f.tutorId, &dto.CheckoutRequest{SessionId: booked.Id})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCreateCheckoutRejectsConfirmedSession(t *testing.T) {
	f := newPaymentFixture(t)
	booked := f.book(t)

	_, err := f.sessionFixture.service.ConfirmPaid(context.Background(), booked.Id, "")
	require.NoError(t, err)

	_, err = f.service.CreateCheckout(context.Background(), f.studentId, &dto.CheckoutRequest{SessionId: booked.Id})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateCheckoutGatewayFailure(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.checkoutErr = errors.New("midtrans unavailable")
	booked := f.book(t)

	_, err := f.service.CreateCheckout(context.Background(), f.studentId, &dto.CheckoutRequest{SessionId: booked.Id})
	assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)
}

func TestWebhookSettlementConfirmsSession(t *testing.T) {
	f := newPaymentFixture(t)
	booked := f.book(t)

	err := f.service.HandleWebhook(context.Background(), &dto.MidtransWebhookRequest{
		OrderId:           booked.Id.String(),
		TransactionStatus: "settlement",
		SignatureKey:      "sig",
	})
	require.NoError(t, err)

	stored := f.factory.store.sessions[booked.Id]
	assert.Equal(t, entity.SessionStatusConfirmed, stored.Status)
	assert.Equal(t, entity.PaymentStatusPaid, stored.PaymentStatus)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.validSig = false
	booked := f.book(t)

	err := f.service.HandleWebhook(context.Background(), &dto.MidtransWebhookRequest{
		OrderId:           booked.Id.String(),
		TransactionStatus: "settlement",
		SignatureKey:      "forged",
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// A forged settlement never touches the session.
	stored := f.factory.store.sessions[booked.Id]
	assert.Equal(t, entity.SessionStatusPendingPayment, stored.Status)
	assert.Equal(t, entity.PaymentStatusPending, stored.PaymentStatus)
}

func TestWebhookDenyMarksPaymentFailed(t *testing.T) {
	f := newPaymentFixture(t)
	booked := f.book(t)

	err := f.service.HandleWebhook(context.Background(), &dto.MidtransWebhookRequest{
		OrderId:           booked.Id.String(),
		TransactionStatus: "deny",
		SignatureKey:      "sig",
	})
	require.NoError(t, err)

	stored := f.factory.store.sessions[booked.Id]
	assert.Equal(t, entity.SessionStatusPendingPayment, stored.Status)
	assert.Equal(t, entity.PaymentStatusFailed, stored.PaymentStatus)
}

func TestWebhookPendingIsNoop(t *testing.T) {
	f := newPaymentFixture(t)
	booked := f.book(t)

	err := f.service.HandleWebhook(context.Background(), &dto.MidtransWebhookRequest{
		OrderId:           booked.Id.String(),
		TransactionStatus: "pending",
		SignatureKey:      "sig",
	})
	require.NoError(t, err)

	stored := f.factory.store.sessions[booked.Id]
	assert.Equal(t, entity.SessionStatusPendingPayment, stored.Status)
	assert.Equal(t, entity.PaymentStatusPending, stored.PaymentStatus)
}

func TestWebhookRedeliveryIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t)
	booked := f.book(t)

	notif := &dto.MidtransWebhookRequest{
		OrderId:           booked.Id.String(),
		TransactionStatus: "settlement",
		SignatureKey:      "sig",
	}
	require.NoError(t, f.service.HandleWebhook(context.Background(), notif))
	require.NoError(t, f.service.HandleWebhook(context.Background(), notif))

	assert.Len(t, f.mailer.confirmations, 1)
}

func TestVerifyPaymentPolls(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.state = payment.StatePaid
	booked := f.book(t)

	res, err := f.service.VerifyPayment(context.Background(), booked.Id, f.studentId)
	require.NoError(t, err)

	assert.Equal(t, string(entity.SessionStatusConfirmed), res.SessionStatus)
	assert.Equal(t, string(entity.PaymentStatusPaid), res.PaymentStatus)
	require.Len(t, f.gateway.checkedOrders, 1)
	assert.Equal(t, booked.Id.String(), f.gateway.checkedOrders[0])
}

func TestVerifyPaymentUnpaidLeavesSessionAlone(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.state = payment.StatePending
	booked := f.book(t)

	res, err := f.service.VerifyPayment(context.Background(), booked.Id, f.studentId)
	require.NoError(t, err)

	assert.Equal(t, string(entity.SessionStatusPendingPayment), res.SessionStatus)
	assert.Equal(t, string(entity.PaymentStatusPending), res.PaymentStatus)
}

func TestVerifyPaymentProviderError(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.checkErr = errors.New("timeout")
	booked := f.book(t)

	_, err := f.service.VerifyPayment(context.Background(), booked.Id, f.studentId)
	assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)

	// An unreachable provider must not change local state.
	stored := f.factory.store.sessions[booked.Id]
	assert.Equal(t, entity.PaymentStatusPending, stored.PaymentStatus)
}

func TestVerifyPaymentRejectsOutsider(t *testing.T) {
	f := newPaymentFixture(t)
	booked := f.book(t)
	stranger := seedUser(f.factory.store, "stranger")

	_, err := f.service.VerifyPayment(context.Background(), booked.Id, stranger)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestFreeSessionHasNoCheckout(t *testing.T) {
	f := newPaymentFixture(t)
	freeSubject := seedSubject(f.factory.store, "mentoring")
	seedOffering(f.factory.store, f.tutorId, freeSubject, 0)

	res, err := f.sessionFixture.service.CreateSession(context.Background(), f.studentId, &dto.CreateSessionRequest{
		TutorId:         f.tutorId,
		SubjectId:       freeSubject,
		ScheduledAt:     time.Now().Add(time.Hour),
		DurationMinutes: 30,
	})
	require.NoError(t, err)

	_, err = f.service.CreateCheckout(context.Background(), f.studentId, &dto.CheckoutRequest{SessionId: res.Id})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
