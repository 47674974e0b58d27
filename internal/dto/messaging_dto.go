package dto

import (
	"time"

	"github.com/google/uuid"
)

type OpenConversationRequest struct {
	OtherUserId uuid.UUID `json:"other_user_id" validate:"required"`
}

type UpdateConversationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted declined blocked"`
}

type ConversationResponse struct {
	Id            uuid.UUID    `json:"id"`
	Other         *UserProfile `json:"other_participant"`
	Status        string       `json:"status"`
	InitiatorId   uuid.UUID    `json:"initiator_id"`
	LastMessageAt time.Time    `json:"last_message_at"`
	CreatedAt     time.Time    `json:"created_at"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

type MessageResponse struct {
	Id             uuid.UUID `json:"id"`
	ConversationId uuid.UUID `json:"conversation_id"`
	SenderId       uuid.UUID `json:"sender_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
