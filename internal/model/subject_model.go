package model

import (
	"time"

	"github.com/google/uuid"
)

type Subject struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Slug      string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Subject) TableName() string {
	return "subjects"
}

type TutorSubject struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TutorId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_tutor_subject,priority:1"`
	SubjectId  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_tutor_subject,priority:2"`
	HourlyRate float64   `gorm:"type:numeric(10,2);not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`

	Tutor   User    `gorm:"foreignKey:TutorId"`
	Subject Subject `gorm:"foreignKey:SubjectId"`
}

func (TutorSubject) TableName() string {
	return "tutor_subjects"
}
