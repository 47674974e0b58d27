package model

import (
	"time"

	"github.com/google/uuid"
)

// Conversation stores the participant pair in canonical order. The unique
// index on (participant_a, participant_b) is what makes get-or-create safe
// under concurrent first contact.
type Conversation struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ParticipantA  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_conversation_pair,priority:1;index"`
	ParticipantB  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_conversation_pair,priority:2;index"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending'"`
	InitiatorId   uuid.UUID `gorm:"type:uuid;not null"`
	LastMessageAt time.Time `gorm:"not null;index"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}

type ConversationMessage struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_conversation_created,priority:1"`
	SenderId       uuid.UUID `gorm:"type:uuid;not null"`
	Content        string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index:idx_messages_conversation_created,priority:2"`
}

func (ConversationMessage) TableName() string {
	return "conversation_messages"
}
