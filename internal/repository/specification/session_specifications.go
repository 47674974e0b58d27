package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutorlink-be/internal/entity"
)

// ParticipantOf matches sessions where the user is student or tutor.
type ParticipantOf struct {
	UserID uuid.UUID
}

func (s ParticipantOf) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("student_id = ? OR tutor_id = ?", s.UserID, s.UserID)
}

// ByStudent filters sessions booked by the user.
type ByStudent struct {
	StudentID uuid.UUID
}

func (s ByStudent) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("student_id = ?", s.StudentID)
}

// ByTutor filters sessions taught by the user.
type ByTutor struct {
	TutorID uuid.UUID
}

func (s ByTutor) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("tutor_id = ?", s.TutorID)
}

// BySessionStatus filters by lifecycle status.
type BySessionStatus struct {
	Status entity.SessionStatus
}

func (s BySessionStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

// ByProviderOrderId filters by the payment provider order reference.
type ByProviderOrderId struct {
	OrderID string
}

func (s ByProviderOrderId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("provider_order_id = ?", s.OrderID)
}
