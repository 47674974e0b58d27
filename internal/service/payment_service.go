package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tutorlink-be/internal/dto"
	"tutorlink-be/internal/entity"
	"tutorlink-be/internal/pkg/apperrors"
	"tutorlink-be/internal/pkg/logger"
	"tutorlink-be/internal/repository/specification"
	"tutorlink-be/internal/repository/unitofwork"
	"tutorlink-be/pkg/payment"
)

type IPaymentService interface {
	// CreateCheckout opens a hosted payment page for a pending session.
	CreateCheckout(ctx context.Context, actorId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	// HandleWebhook processes an asynchronous provider notification.
	HandleWebhook(ctx context.Context, req *dto.MidtransWebhookRequest) error
	// VerifyPayment polls the provider for the authoritative transaction
	// state and reconciles the session with it. Unlike the webhook it is
	// student-initiated, typically right after returning from checkout.
	VerifyPayment(ctx context.Context, sessionId, actorId uuid.UUID) (*dto.VerifyPaymentResponse, error)
}

type paymentService struct {
	uowFactory     unitofwork.RepositoryFactory
	gateway        payment.Gateway
	sessionService ISessionService
	logger         logger.ILogger
}

func NewPaymentService(
	uowFactory unitofwork.RepositoryFactory,
	gateway payment.Gateway,
	sessionService ISessionService,
	log logger.ILogger,
) IPaymentService {
	return &paymentService{
		uowFactory:     uowFactory,
		gateway:        gateway,
		sessionService: sessionService,
		logger:         log,
	}
}

func (s *paymentService) CreateCheckout(ctx context.Context, actorId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: req.SessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NotFound("session")
	}
	if session.StudentId != actorId {
		return nil, apperrors.Forbidden("only the student may pay for a session")
	}
	if session.Status != entity.SessionStatusPendingPayment {
		return nil, apperrors.Validation("session is not awaiting payment")
	}
	if session.TotalAmount <= 0 {
		return nil, apperrors.Validation("session has no amount due")
	}

	student, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: session.StudentId})
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, apperrors.NotFound("student")
	}

	itemName := "Tutoring session"
	if subject, serr := uow.SubjectRepository().FindOne(ctx, specification.ByID{ID: session.SubjectId}); serr == nil && subject != nil {
		itemName = fmt.Sprintf("Tutoring session: %s", subject.Name)
	}

	orderId := session.Id.String()
	if session.ProviderOrderId != nil {
		orderId = *session.ProviderOrderId
	}

	checkout, err := s.gateway.CreateCheckout(&payment.CheckoutRequest{
		OrderID:       orderId,
		GrossAmount:   int64(session.TotalAmount),
		ItemID:        session.Id.String(),
		ItemName:      itemName,
		CustomerName:  student.DisplayName(),
		CustomerEmail: student.Email,
	})
	if err != nil {
		s.logger.Error("PaymentService", "checkout creation failed", map[string]interface{}{
			"session_id": session.Id, "error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPaymentFailed, err)
	}

	return &dto.CheckoutResponse{
		SessionId:       session.Id,
		SnapToken:       checkout.Token,
		SnapRedirectUrl: checkout.RedirectURL,
	}, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	if !s.gateway.VerifySignature(req.OrderId, req.StatusCode, req.GrossAmount, req.SignatureKey) {
		s.logger.Warn("PaymentService", "webhook signature mismatch", map[string]interface{}{
			"order_id": req.OrderId,
		})
		return apperrors.Forbidden("invalid webhook signature")
	}

	sessionId, err := s.resolveSession(ctx, req.OrderId)
	if err != nil {
		return err
	}

	state := payment.MapTransactionStatus(req.TransactionStatus)
	return s.applyState(ctx, sessionId, req.OrderId, state)
}

func (s *paymentService) VerifyPayment(ctx context.Context, sessionId, actorId uuid.UUID) (*dto.VerifyPaymentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NotFound("session")
	}
	if !session.IsParticipant(actorId) {
		return nil, apperrors.Forbidden("not a participant of this session")
	}

	orderId := session.Id.String()
	if session.ProviderOrderId != nil {
		orderId = *session.ProviderOrderId
	}

	// The provider is the source of truth; the local payment_status is only
	// ever updated to match what it reports.
	state, err := s.gateway.CheckTransaction(orderId)
	if err != nil {
		s.logger.Error("PaymentService", "transaction check failed", map[string]interface{}{
			"session_id": session.Id, "error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPaymentFailed, err)
	}

	if err := s.applyState(ctx, session.Id, orderId, state); err != nil {
		return nil, err
	}

	// Re-read to report post-reconciliation state.
	session, err = uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	return &dto.VerifyPaymentResponse{
		SessionId:     session.Id,
		SessionStatus: string(session.Status),
		PaymentStatus: string(session.PaymentStatus),
	}, nil
}

// applyState routes a provider-reported state into the narrow session
// mutation paths. Pending and unknown states change nothing.
func (s *paymentService) applyState(ctx context.Context, sessionId uuid.UUID, orderId string, state payment.TransactionState) error {
	switch state {
	case payment.StatePaid:
		_, err := s.sessionService.ConfirmPaid(ctx, sessionId, orderId)
		return err
	case payment.StateFailed:
		_, err := s.sessionService.MarkPaymentFailed(ctx, sessionId)
		return err
	default:
		return nil
	}
}

func (s *paymentService) resolveSession(ctx context.Context, orderId string) (uuid.UUID, error) {
	// Order ids are session ids; fall back to a lookup for safety in case
	// an older order used a detached reference.
	if id, err := uuid.Parse(orderId); err == nil {
		return id, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByProviderOrderId{OrderID: orderId})
	if err != nil {
		return uuid.Nil, err
	}
	if session == nil {
		return uuid.Nil, apperrors.NotFound("session for order")
	}
	return session.Id, nil
}
