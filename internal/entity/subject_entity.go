package entity

import (
	"time"

	"github.com/google/uuid"
)

type Subject struct {
	Id        uuid.UUID
	Name      string
	Slug      string
	CreatedAt time.Time
}

// TutorSubject links a tutor to a subject they teach with their hourly rate.
// Session pricing is derived from this row at booking time.
type TutorSubject struct {
	Id         uuid.UUID
	TutorId    uuid.UUID
	SubjectId  uuid.UUID
	HourlyRate float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
