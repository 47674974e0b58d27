package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"tutorlink-be/internal/model"
	"tutorlink-be/internal/pkg/logger"
	"tutorlink-be/internal/repository"
	"tutorlink-be/pkg/events"
	pktNats "tutorlink-be/pkg/nats"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
}

// notificationTemplate drives rendering per event type. Placeholders in
// Template are "{key}" against the event payload.
type notificationTemplate struct {
	Title      string
	Template   string
	EntityType string
}

var notificationTemplates = map[string]notificationTemplate{
	events.TypeSessionBooked:    {Title: "New booking request", Template: "A student booked a session with you for {scheduled_at}.", EntityType: "session"},
	events.TypeSessionConfirmed: {Title: "Session confirmed", Template: "Your session is confirmed for {scheduled_at}.", EntityType: "session"},
	events.TypeSessionStarted:   {Title: "Session started", Template: "Your session is now in progress.", EntityType: "session"},
	events.TypeSessionCompleted: {Title: "Session completed", Template: "Your session is complete. Leave a rating!", EntityType: "session"},
	events.TypeSessionCancelled: {Title: "Session cancelled", Template: "Your session for {scheduled_at} was cancelled.", EntityType: "session"},
	events.TypePaymentFailed:    {Title: "Payment failed", Template: "Your payment did not go through. Please try again.", EntityType: "session"},
	events.TypeMessageCreated:   {Title: "New message", Template: "{preview}", EntityType: "conversation"},
}

type NotificationService struct {
	repo       repository.NotificationRepository
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(repo repository.NotificationRepository, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		repo:       repo,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	tmpl, ok := notificationTemplates[typeCode]
	if !ok {
		s.logger.Warn("NotificationService", fmt.Sprintf("No template for event code '%s'", typeCode), nil)
		return nil
	}

	recipientId, ok := recipientFromPayload(event.Payload())
	if !ok {
		s.logger.Warn("NotificationService", fmt.Sprintf("No recipient_id in payload for event %s", typeCode), nil)
		return nil
	}

	notif := s.buildNotification(recipientId, typeCode, tmpl, event)

	if err := s.repo.CreateNotification(ctx, &notif); err != nil {
		s.logger.Error("NotificationService", fmt.Sprintf("Error saving notification for user %s", recipientId), map[string]interface{}{"error": err})
		// Returning the error lets the bus redeliver.
		return err
	}

	if s.delivery != nil {
		s.delivery.Send(recipientId, notif)
	}
	return nil
}

func recipientFromPayload(payload map[string]interface{}) (uuid.UUID, bool) {
	raw, ok := payload["recipient_id"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (s *NotificationService) buildNotification(userID uuid.UUID, typeCode string, tmpl notificationTemplate, event events.Event) model.Notification {
	payload := event.Payload()

	msg := tmpl.Template
	for k, v := range payload {
		placeholder := fmt.Sprintf("{%s}", k)
		msg = strings.ReplaceAll(msg, placeholder, fmt.Sprintf("%v", v))
	}

	var actorID *uuid.UUID
	if actorStr, ok := payload["sender_id"].(string); ok {
		if aid, err := uuid.Parse(actorStr); err == nil {
			actorID = &aid
		}
	}

	var entityID *uuid.UUID
	entityKey := tmpl.EntityType + "_id"
	if eidStr, ok := payload[entityKey].(string); ok {
		if eid, err := uuid.Parse(eidStr); err == nil {
			entityID = &eid
		}
	}

	// Metadata carries the raw payload plus a deep link for the client.
	metaMap := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		metaMap[k] = v
	}
	if entityID != nil {
		metaMap["action_url"] = fmt.Sprintf("/%ss/%s", tmpl.EntityType, entityID.String())
	}
	metaJSON, _ := json.Marshal(metaMap)

	return model.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		ActorID:    actorID,
		TypeCode:   typeCode,
		Title:      tmpl.Title,
		Message:    msg,
		Metadata:   datatypes.JSON(metaJSON),
		EntityType: tmpl.EntityType,
		EntityID:   entityID,
		CreatedAt:  time.Now(),
		IsRead:     false,
	}
}

// GetNotifications fetches notifications for a user.
func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return s.repo.GetNotificationsByUserID(ctx, userID, limit, offset)
}

// GetUnreadCount fetches unread count.
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// MarkAsRead marks a notification as read.
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
