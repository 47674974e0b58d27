package entity

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

type ConversationStatus string

const (
	ConversationStatusPending  ConversationStatus = "pending"
	ConversationStatusAccepted ConversationStatus = "accepted"
	ConversationStatusDeclined ConversationStatus = "declined"
	ConversationStatusBlocked  ConversationStatus = "blocked"
)

// Conversation is a two-party thread. ParticipantA/ParticipantB are stored in
// canonical order (A < B bytewise) so the pair carries a unique index and
// concurrent first contact resolves to a single row: the insert conflict is
// the success path, not an error.
type Conversation struct {
	Id            uuid.UUID
	ParticipantA  uuid.UUID
	ParticipantB  uuid.UUID
	Status        ConversationStatus
	InitiatorId   uuid.UUID
	LastMessageAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanonicalPair orders two participant ids into the stored (A, B) form.
func CanonicalPair(x, y uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(x[:], y[:]) <= 0 {
		return x, y
	}
	return y, x
}

func (c *Conversation) HasParticipant(userId uuid.UUID) bool {
	return c.ParticipantA == userId || c.ParticipantB == userId
}

// OtherParticipant returns the counterpart of userId in the pair.
func (c *Conversation) OtherParticipant(userId uuid.UUID) uuid.UUID {
	if c.ParticipantA == userId {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// ConversationMessage is immutable once created. Ordering within a
// conversation is by CreatedAt ascending.
type ConversationMessage struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	SenderId       uuid.UUID
	Content        string
	CreatedAt      time.Time
}
