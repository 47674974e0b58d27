package model

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StudentId       uuid.UUID `gorm:"type:uuid;not null;index"`
	TutorId         uuid.UUID `gorm:"type:uuid;not null;index"`
	SubjectId       uuid.UUID `gorm:"type:uuid;not null"`
	ScheduledAt     time.Time `gorm:"not null;index"`
	DurationMinutes int       `gorm:"not null"`
	TotalAmount     float64   `gorm:"type:numeric(10,2);not null"`
	Status          string    `gorm:"type:varchar(20);not null;default:'pending_payment';index"`
	PaymentStatus   string    `gorm:"type:varchar(20);not null;default:'pending'"`
	Location        string    `gorm:"type:varchar(255);not null;default:'Online'"`
	Notes           *string   `gorm:"type:text"`
	ProviderOrderId *string   `gorm:"type:varchar(255);index"`
	StudentRating   *int      `gorm:"type:smallint"`
	TutorRating     *int      `gorm:"type:smallint"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`

	Student User    `gorm:"foreignKey:StudentId"`
	Tutor   User    `gorm:"foreignKey:TutorId"`
	Subject Subject `gorm:"foreignKey:SubjectId"`
}

func (Session) TableName() string {
	return "sessions"
}
