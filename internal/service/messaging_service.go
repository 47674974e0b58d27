package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"tutorlink-be/internal/dto"
	"tutorlink-be/internal/entity"
	"tutorlink-be/internal/pkg/apperrors"
	"tutorlink-be/internal/pkg/logger"
	"tutorlink-be/internal/repository/contract"
	"tutorlink-be/internal/repository/specification"
	"tutorlink-be/internal/repository/unitofwork"
	"tutorlink-be/pkg/events"
	pktNats "tutorlink-be/pkg/nats"
	"tutorlink-be/pkg/stream"
)

type IMessagingService interface {
	// OpenConversation finds or creates the single conversation for the
	// (actor, other) pair. Opening an existing one returns it unchanged.
	OpenConversation(ctx context.Context, actorId uuid.UUID, req *dto.OpenConversationRequest) (*dto.ConversationResponse, error)
	ListConversations(ctx context.Context, actorId uuid.UUID) ([]*dto.ConversationResponse, error)
	UpdateConversationStatus(ctx context.Context, conversationId, actorId uuid.UUID, status entity.ConversationStatus) (*dto.ConversationResponse, error)
	SendMessage(ctx context.Context, conversationId, senderId uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	GetMessages(ctx context.Context, conversationId, actorId uuid.UUID, after *time.Time, limit int) ([]*dto.MessageResponse, error)
	// StreamMessages opens a live change-feed subscription on a conversation
	// after verifying the actor may read it.
	StreamMessages(ctx context.Context, conversationId, actorId uuid.UUID) (*stream.Subscription, error)
}

type messagingService struct {
	uowFactory     unitofwork.RepositoryFactory
	feed           *stream.Feed
	eventPublisher *pktNats.Publisher
	profileCache   *cache.Cache
	logger         logger.ILogger
}

func NewMessagingService(
	uowFactory unitofwork.RepositoryFactory,
	feed *stream.Feed,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IMessagingService {
	return &messagingService{
		uowFactory:     uowFactory,
		feed:           feed,
		eventPublisher: eventPublisher,
		profileCache:   cache.New(5*time.Minute, 10*time.Minute),
		logger:         log,
	}
}

func (s *messagingService) OpenConversation(ctx context.Context, actorId uuid.UUID, req *dto.OpenConversationRequest) (*dto.ConversationResponse, error) {
	if req.OtherUserId == actorId {
		return nil, apperrors.Validation("cannot open a conversation with yourself")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	other, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: req.OtherUserId})
	if err != nil {
		return nil, err
	}
	if other == nil || other.Status != entity.UserStatusActive {
		return nil, apperrors.NotFound("user")
	}

	a, b := entity.CanonicalPair(actorId, req.OtherUserId)

	existing, err := uow.ConversationRepository().FindOne(ctx, specification.ByCanonicalPair{ParticipantA: a, ParticipantB: b})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.toConversationResponse(ctx, uow, existing, actorId)
	}

	conversation := &entity.Conversation{
		Id:            uuid.New(),
		ParticipantA:  a,
		ParticipantB:  b,
		Status:        entity.ConversationStatusPending,
		InitiatorId:   actorId,
		LastMessageAt: time.Now(),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	err = uow.ConversationRepository().Create(ctx, conversation)
	if errors.Is(err, contract.ErrDuplicatePair) {
		// Lost the race to a concurrent first contact; the winner's row is
		// the conversation.
		conversation, err = uow.ConversationRepository().FindOne(ctx, specification.ByCanonicalPair{ParticipantA: a, ParticipantB: b})
		if err != nil {
			return nil, err
		}
		if conversation == nil {
			return nil, errors.New("conversation vanished after duplicate pair conflict")
		}
	} else if err != nil {
		return nil, err
	}

	return s.toConversationResponse(ctx, uow, conversation, actorId)
}

func (s *messagingService) ListConversations(ctx context.Context, actorId uuid.UUID) ([]*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.ByParticipant{UserID: actorId},
		specification.OrderBy{Field: "last_message_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ConversationResponse, 0, len(conversations))
	for _, conversation := range conversations {
		r, err := s.toConversationResponse(ctx, uow, conversation, actorId)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, nil
}

func (s *messagingService) UpdateConversationStatus(ctx context.Context, conversationId, actorId uuid.UUID, status entity.ConversationStatus) (*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := s.findParticipantConversation(ctx, uow, conversationId, actorId)
	if err != nil {
		return nil, err
	}

	switch status {
	case entity.ConversationStatusAccepted, entity.ConversationStatusDeclined:
		// Accept/decline is the recipient's answer to first contact.
		if actorId == conversation.InitiatorId {
			return nil, apperrors.Forbidden("initiator cannot answer their own contact request")
		}
		if conversation.Status != entity.ConversationStatusPending {
			return nil, apperrors.Validation("conversation is not awaiting a response")
		}
	case entity.ConversationStatusBlocked:
		// Either side may block at any time.
	default:
		return nil, apperrors.Validation("unsupported conversation status")
	}

	conversation.Status = status
	conversation.UpdatedAt = time.Now()

	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		return nil, err
	}
	return s.toConversationResponse(ctx, uow, conversation, actorId)
}

func (s *messagingService) SendMessage(ctx context.Context, conversationId, senderId uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := s.findParticipantConversation(ctx, uow, conversationId, senderId)
	if err != nil {
		return nil, err
	}

	switch conversation.Status {
	case entity.ConversationStatusBlocked:
		return nil, apperrors.Forbidden("conversation is blocked")
	case entity.ConversationStatusDeclined:
		return nil, apperrors.Forbidden("conversation was declined")
	case entity.ConversationStatusPending:
		// The recipient replying to first contact implicitly accepts.
		if senderId != conversation.InitiatorId {
			conversation.Status = entity.ConversationStatusAccepted
		}
	}

	message := &entity.ConversationMessage{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		SenderId:       senderId,
		Content:        req.Content,
		CreatedAt:      time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	if err := uow.MessageRepository().Create(ctx, message); err != nil {
		_ = uow.Rollback()
		return nil, err
	}
	if conversation.Status == entity.ConversationStatusAccepted {
		conversation.UpdatedAt = time.Now()
		if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
			_ = uow.Rollback()
			return nil, err
		}
	}
	if err := uow.ConversationRepository().TouchLastMessageAt(ctx, conversation.Id, message.CreatedAt); err != nil {
		_ = uow.Rollback()
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// The durable write is done; feed and bus delivery are best-effort.
	if s.feed != nil {
		if err := s.feed.Publish(stream.MessageEvent{
			ID:             message.Id,
			ConversationID: message.ConversationId,
			SenderID:       message.SenderId,
			Content:        message.Content,
			CreatedAt:      message.CreatedAt,
		}); err != nil {
			s.logger.Warn("MessagingService", "feed publish failed", map[string]interface{}{
				"message_id": message.Id, "error": err.Error(),
			})
		}
	}
	if s.eventPublisher != nil {
		evt := events.New(events.TypeMessageCreated, map[string]interface{}{
			"message_id":      message.Id.String(),
			"conversation_id": conversation.Id.String(),
			"sender_id":       senderId.String(),
			"recipient_id":    conversation.OtherParticipant(senderId).String(),
			"preview":         preview(message.Content),
		})
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("MessagingService", "failed to publish event", map[string]interface{}{
				"message_id": message.Id, "error": err.Error(),
			})
		}
	}

	return toMessageResponse(message), nil
}

func (s *messagingService) GetMessages(ctx context.Context, conversationId, actorId uuid.UUID, after *time.Time, limit int) ([]*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.findParticipantConversation(ctx, uow, conversationId, actorId); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	specs := []specification.Specification{
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: false},
		specification.Pagination{Limit: limit},
	}
	if after != nil {
		specs = append(specs, specification.CreatedAfter{After: *after})
	}

	messages, err := uow.MessageRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		res = append(res, toMessageResponse(m))
	}
	return res, nil
}

func (s *messagingService) StreamMessages(ctx context.Context, conversationId, actorId uuid.UUID) (*stream.Subscription, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := s.findParticipantConversation(ctx, uow, conversationId, actorId)
	if err != nil {
		return nil, err
	}
	if conversation.Status == entity.ConversationStatusBlocked {
		return nil, apperrors.Forbidden("conversation is blocked")
	}
	return s.feed.Subscribe(ctx, conversationId)
}

func (s *messagingService) findParticipantConversation(ctx context.Context, uow unitofwork.UnitOfWork, conversationId, actorId uuid.UUID) (*entity.Conversation, error) {
	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperrors.NotFound("conversation")
	}
	if !conversation.HasParticipant(actorId) {
		return nil, apperrors.Forbidden("not a participant of this conversation")
	}
	return conversation, nil
}

func (s *messagingService) toConversationResponse(ctx context.Context, uow unitofwork.UnitOfWork, conversation *entity.Conversation, viewerId uuid.UUID) (*dto.ConversationResponse, error) {
	otherId := conversation.OtherParticipant(viewerId)

	other, err := s.resolveProfile(ctx, uow, otherId)
	if err != nil {
		return nil, err
	}

	return &dto.ConversationResponse{
		Id:            conversation.Id,
		Other:         other,
		Status:        string(conversation.Status),
		InitiatorId:   conversation.InitiatorId,
		LastMessageAt: conversation.LastMessageAt,
		CreatedAt:     conversation.CreatedAt,
	}, nil
}

// resolveProfile memoizes counterpart profiles; conversation lists hit the
// same handful of users repeatedly.
func (s *messagingService) resolveProfile(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*dto.UserProfile, error) {
	key := userId.String()
	if cached, ok := s.profileCache.Get(key); ok {
		return cached.(*dto.UserProfile), nil
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}

	profile := profileFromUser(user, false)
	if profile != nil {
		s.profileCache.Set(key, profile, cache.DefaultExpiration)
	}
	return profile, nil
}

func toMessageResponse(m *entity.ConversationMessage) *dto.MessageResponse {
	return &dto.MessageResponse{
		Id:             m.Id,
		ConversationId: m.ConversationId,
		SenderId:       m.SenderId,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= 80 {
		return content
	}
	return string(runes[:80]) + "..."
}
