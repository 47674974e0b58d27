package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserProfile struct {
	Id        uuid.UUID `json:"id"`
	Email     string    `json:"email,omitempty"`
	FullName  string    `json:"full_name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Headline  *string   `json:"headline,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=120"`
	Headline *string `json:"headline,omitempty" validate:"omitempty,max=160"`
	Bio      *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

type SubjectResponse struct {
	Id   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type SetTutorSubjectRequest struct {
	SubjectId  uuid.UUID `json:"subject_id" validate:"required"`
	HourlyRate float64   `json:"hourly_rate" validate:"required,gt=0"`
}

type TutorListing struct {
	Tutor      *UserProfile `json:"tutor"`
	SubjectId  uuid.UUID    `json:"subject_id"`
	HourlyRate float64      `json:"hourly_rate"`
}
