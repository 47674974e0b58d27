package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	TutorId         uuid.UUID `json:"tutor_id" validate:"required"`
	SubjectId       uuid.UUID `json:"subject_id" validate:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=15,max=480"`
	Location        string    `json:"location,omitempty" validate:"omitempty,max=255"`
	Notes           *string   `json:"notes,omitempty"`
}

type UpdateSessionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed in_progress completed cancelled"`
}

type RateSessionRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

type SessionResponse struct {
	Id              uuid.UUID    `json:"id"`
	Student         *UserProfile `json:"student,omitempty"`
	Tutor           *UserProfile `json:"tutor,omitempty"`
	SubjectId       uuid.UUID    `json:"subject_id"`
	SubjectName     string       `json:"subject_name,omitempty"`
	ScheduledAt     time.Time    `json:"scheduled_at"`
	DurationMinutes int          `json:"duration_minutes"`
	TotalAmount     float64      `json:"total_amount"`
	Status          string       `json:"status"`
	PaymentStatus   string       `json:"payment_status"`
	Location        string       `json:"location"`
	Notes           *string      `json:"notes,omitempty"`
	StudentRating   *int         `json:"student_rating,omitempty"`
	TutorRating     *int         `json:"tutor_rating,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}
