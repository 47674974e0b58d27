package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByParticipant matches conversations the user takes part in.
type ByParticipant struct {
	UserID uuid.UUID
}

func (s ByParticipant) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("participant_a = ? OR participant_b = ?", s.UserID, s.UserID)
}

// ByCanonicalPair matches the single conversation for a participant pair.
// Callers must pass the pair already in canonical (A <= B) order.
type ByCanonicalPair struct {
	ParticipantA uuid.UUID
	ParticipantB uuid.UUID
}

func (s ByCanonicalPair) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("participant_a = ? AND participant_b = ?", s.ParticipantA, s.ParticipantB)
}

// ByConversationID filters messages of one conversation.
type ByConversationID struct {
	ConversationID uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

// CreatedAfter filters messages newer than a cursor timestamp.
type CreatedAfter struct {
	After interface{}
}

func (s CreatedAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at > ?", s.After)
}
