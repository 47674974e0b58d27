package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tutorlink-be/internal/dto"
	"tutorlink-be/internal/entity"
	"tutorlink-be/internal/pkg/apperrors"
	"tutorlink-be/internal/pkg/logger"
	"tutorlink-be/internal/pkg/mailer"
	"tutorlink-be/internal/repository/specification"
	"tutorlink-be/internal/repository/unitofwork"
	"tutorlink-be/pkg/events"
	pktNats "tutorlink-be/pkg/nats"
)

type ISessionService interface {
	CreateSession(ctx context.Context, studentId uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, sessionId, actorId uuid.UUID) (*dto.SessionResponse, error)
	ListSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SessionResponse, error)
	UpdateStatus(ctx context.Context, sessionId, actorId uuid.UUID, newStatus entity.SessionStatus) (*dto.SessionResponse, error)
	CancelSession(ctx context.Context, sessionId, actorId uuid.UUID) (*dto.SessionResponse, error)
	RateSession(ctx context.Context, sessionId, actorId uuid.UUID, rating int) (*dto.SessionResponse, error)

	// ConfirmPaid is the single mutation path that may set
	// payment_status=paid and advance the session to confirmed. Only the
	// payment verification flow calls it.
	ConfirmPaid(ctx context.Context, sessionId uuid.UUID, providerRef string) (*entity.Session, error)
	// MarkPaymentFailed records a failed charge; the session stays in
	// pending_payment so the student can retry checkout.
	MarkPaymentFailed(ctx context.Context, sessionId uuid.UUID) (*entity.Session, error)
}

type sessionService struct {
	uowFactory     unitofwork.RepositoryFactory
	emailService   mailer.IEmailService
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		uowFactory:     uowFactory,
		emailService:   emailService,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, studentId uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	if req.TutorId == studentId {
		return nil, apperrors.Validation("cannot book a session with yourself")
	}
	if !req.ScheduledAt.After(time.Now()) {
		return nil, apperrors.Validation("scheduled time must be in the future")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	tutor, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: req.TutorId})
	if err != nil {
		return nil, err
	}
	if tutor == nil || tutor.Status != entity.UserStatusActive {
		return nil, apperrors.NotFound("tutor")
	}

	offering, err := uow.SubjectRepository().FindTutorSubject(ctx, req.TutorId, req.SubjectId)
	if err != nil {
		return nil, err
	}
	if offering == nil {
		return nil, apperrors.Validation("tutor does not offer this subject")
	}

	location := req.Location
	if location == "" {
		location = "Online"
	}

	total := offering.HourlyRate * float64(req.DurationMinutes) / 60.0

	sessionId := uuid.New()
	orderRef := sessionId.String()
	session := &entity.Session{
		Id:              sessionId,
		StudentId:       studentId,
		TutorId:         req.TutorId,
		SubjectId:       req.SubjectId,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		TotalAmount:     total,
		Status:          entity.SessionStatusPendingPayment,
		PaymentStatus:   entity.PaymentStatusPending,
		Location:        location,
		Notes:           req.Notes,
		ProviderOrderId: &orderRef,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeSessionBooked, session, session.TutorId)

	return s.toResponse(ctx, uow, session)
}

func (s *sessionService) GetSession(ctx context.Context, sessionId, actorId uuid.UUID) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findParticipantSession(ctx, uow, sessionId, actorId)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, uow, session)
}

func (s *sessionService) ListSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.ParticipantOf{UserID: userId},
		specification.OrderBy{Field: "scheduled_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		r, err := s.toResponse(ctx, uow, session)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, nil
}

// UpdateStatus validates the actor and the transition, then applies it.
// payment_status is untouched here: confirming a priced session must go
// through ConfirmPaid, never through this general path.
func (s *sessionService) UpdateStatus(ctx context.Context, sessionId, actorId uuid.UUID, newStatus entity.SessionStatus) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findParticipantSession(ctx, uow, sessionId, actorId)
	if err != nil {
		return nil, err
	}

	if !entity.CanTransition(session.Status, newStatus) {
		return nil, apperrors.InvalidTransition(string(session.Status), string(newStatus))
	}

	switch newStatus {
	case entity.SessionStatusConfirmed:
		// Manual confirmation is the tutor's free-session shortcut.
		if actorId != session.TutorId {
			return nil, apperrors.Forbidden("only the tutor may confirm a session")
		}
		if session.TotalAmount > 0 {
			return nil, apperrors.Forbidden("paid sessions are confirmed by payment verification")
		}
	case entity.SessionStatusInProgress:
		if actorId != session.TutorId {
			return nil, apperrors.Forbidden("only the tutor may start a session")
		}
		if session.ScheduledAt.After(time.Now()) {
			return nil, apperrors.Validation("session has not reached its scheduled time")
		}
	case entity.SessionStatusCompleted:
		if actorId != session.TutorId {
			return nil, apperrors.Forbidden("only the tutor may complete a session")
		}
	case entity.SessionStatusCancelled:
		// Either participant, any time before in_progress (per the table).
	}

	session.Status = newStatus
	session.UpdatedAt = time.Now()

	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	switch newStatus {
	case entity.SessionStatusConfirmed:
		s.publishEvent(ctx, events.TypeSessionConfirmed, session, session.StudentId)
	case entity.SessionStatusInProgress:
		s.publishEvent(ctx, events.TypeSessionStarted, session, session.StudentId)
	case entity.SessionStatusCompleted:
		s.publishEvent(ctx, events.TypeSessionCompleted, session, session.StudentId)
	case entity.SessionStatusCancelled:
		other := session.StudentId
		if actorId == session.StudentId {
			other = session.TutorId
		}
		s.publishEvent(ctx, events.TypeSessionCancelled, session, other)
		s.sendCancellationEmail(ctx, uow, session)
	}

	return s.toResponse(ctx, uow, session)
}

func (s *sessionService) CancelSession(ctx context.Context, sessionId, actorId uuid.UUID) (*dto.SessionResponse, error) {
	return s.UpdateStatus(ctx, sessionId, actorId, entity.SessionStatusCancelled)
}

func (s *sessionService) RateSession(ctx context.Context, sessionId, actorId uuid.UUID, rating int) (*dto.SessionResponse, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.Validation("rating must be between 1 and 5")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findParticipantSession(ctx, uow, sessionId, actorId)
	if err != nil {
		return nil, err
	}
	if session.Status != entity.SessionStatusCompleted {
		return nil, apperrors.Validation("only completed sessions can be rated")
	}

	// Each role rates the other side once.
	if actorId == session.StudentId {
		if session.StudentRating != nil {
			return nil, apperrors.Validation("session already rated")
		}
		session.StudentRating = &rating
	} else {
		if session.TutorRating != nil {
			return nil, apperrors.Validation("session already rated")
		}
		session.TutorRating = &rating
	}
	session.UpdatedAt = time.Now()

	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, uow, session)
}

func (s *sessionService) ConfirmPaid(ctx context.Context, sessionId uuid.UUID, providerRef string) (*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NotFound("session")
	}

	// Idempotent: a re-delivered settlement notification is a no-op.
	if session.PaymentStatus == entity.PaymentStatusPaid && session.Status == entity.SessionStatusConfirmed {
		return session, nil
	}

	if !entity.CanTransition(session.Status, entity.SessionStatusConfirmed) {
		return nil, apperrors.InvalidTransition(string(session.Status), string(entity.SessionStatusConfirmed))
	}

	session.PaymentStatus = entity.PaymentStatusPaid
	session.Status = entity.SessionStatusConfirmed
	if providerRef != "" {
		session.ProviderOrderId = &providerRef
	}
	session.UpdatedAt = time.Now()

	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	// Side effects are best-effort: the state transition is already durable
	// and is never rolled back for a failed email or event publish.
	s.publishEvent(ctx, events.TypeSessionConfirmed, session, session.TutorId)
	s.sendConfirmationEmail(ctx, uow, session)

	return session, nil
}

func (s *sessionService) MarkPaymentFailed(ctx context.Context, sessionId uuid.UUID) (*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NotFound("session")
	}
	if session.Status != entity.SessionStatusPendingPayment {
		// A charge outcome arriving after confirmation/cancellation never
		// rewinds the lifecycle.
		return session, nil
	}

	session.PaymentStatus = entity.PaymentStatusFailed
	session.UpdatedAt = time.Now()

	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypePaymentFailed, session, session.StudentId)
	return session, nil
}

func (s *sessionService) findParticipantSession(ctx context.Context, uow unitofwork.UnitOfWork, sessionId, actorId uuid.UUID) (*entity.Session, error) {
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
	return session, nil
}

func (s *sessionService) publishEvent(ctx context.Context, eventType string, session *entity.Session, recipientId uuid.UUID) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.New(eventType, map[string]interface{}{
		"session_id":   session.Id.String(),
		"student_id":   session.StudentId.String(),
		"tutor_id":     session.TutorId.String(),
		"recipient_id": recipientId.String(),
		"status":       string(session.Status),
		"amount":       session.TotalAmount,
		"scheduled_at": session.ScheduledAt,
	})
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("SessionService", "failed to publish event", map[string]interface{}{
			"event": eventType, "session_id": session.Id, "error": err.Error(),
		})
	}
}

func (s *sessionService) sendConfirmationEmail(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.Session) {
	email, err := s.buildBookingEmail(ctx, uow, session)
	if err != nil {
		s.logger.Warn("SessionService", "skipping confirmation email", map[string]interface{}{
			"session_id": session.Id, "error": err.Error(),
		})
		return
	}
	if err := s.emailService.SendBookingConfirmation(email); err != nil {
		s.logger.Warn("SessionService", "confirmation email failed", map[string]interface{}{
			"session_id": session.Id, "error": err.Error(),
		})
	}
}

func (s *sessionService) sendCancellationEmail(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.Session) {
	email, err := s.buildBookingEmail(ctx, uow, session)
	if err != nil {
		s.logger.Warn("SessionService", "skipping cancellation email", map[string]interface{}{
			"session_id": session.Id, "error": err.Error(),
		})
		return
	}
	if err := s.emailService.SendBookingCancelled(email); err != nil {
		s.logger.Warn("SessionService", "cancellation email failed", map[string]interface{}{
			"session_id": session.Id, "error": err.Error(),
		})
	}
}

func (s *sessionService) buildBookingEmail(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.Session) (*mailer.BookingEmail, error) {
	student, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: session.StudentId})
	if err != nil {
		return nil, err
	}
	tutor, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: session.TutorId})
	if err != nil {
		return nil, err
	}
	if student == nil || tutor == nil {
		return nil, apperrors.NotFound("session participants")
	}

	subjectName := ""
	subject, err := uow.SubjectRepository().FindOne(ctx, specification.ByID{ID: session.SubjectId})
	if err == nil && subject != nil {
		subjectName = subject.Name
	}

	return &mailer.BookingEmail{
		ToEmail:         student.Email,
		RecipientName:   student.DisplayName(),
		CounterpartName: tutor.DisplayName(),
		Subject:         subjectName,
		ScheduledAt:     session.ScheduledAt,
		DurationMinutes: session.DurationMinutes,
		Location:        session.Location,
		TotalAmount:     session.TotalAmount,
	}, nil
}

func (s *sessionService) toResponse(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.Session) (*dto.SessionResponse, error) {
	res := &dto.SessionResponse{
		Id:              session.Id,
		SubjectId:       session.SubjectId,
		ScheduledAt:     session.ScheduledAt,
		DurationMinutes: session.DurationMinutes,
		TotalAmount:     session.TotalAmount,
		Status:          string(session.Status),
		PaymentStatus:   string(session.PaymentStatus),
		Location:        session.Location,
		Notes:           session.Notes,
		StudentRating:   session.StudentRating,
		TutorRating:     session.TutorRating,
		CreatedAt:       session.CreatedAt,
	}

	// Dual self-referencing foreign keys into users resolve as two
	// independent lookups rather than one relational join.
	student, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: session.StudentId})
	if err != nil {
		return nil, err
	}
	tutor, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: session.TutorId})
	if err != nil {
		return nil, err
	}
	res.Student = profileFromUser(student, false)
	res.Tutor = profileFromUser(tutor, false)

	if subject, err := uow.SubjectRepository().FindOne(ctx, specification.ByID{ID: session.SubjectId}); err == nil && subject != nil {
		res.SubjectName = subject.Name
	}
	return res, nil
}
