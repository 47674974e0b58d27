package mapper

import (
	"tutorlink-be/internal/entity"
	"tutorlink-be/internal/model"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}
	return &entity.Session{
		Id:              s.Id,
		StudentId:       s.StudentId,
		TutorId:         s.TutorId,
		SubjectId:       s.SubjectId,
		ScheduledAt:     s.ScheduledAt,
		DurationMinutes: s.DurationMinutes,
		TotalAmount:     s.TotalAmount,
		Status:          entity.SessionStatus(s.Status),
		PaymentStatus:   entity.PaymentStatus(s.PaymentStatus),
		Location:        s.Location,
		Notes:           s.Notes,
		ProviderOrderId: s.ProviderOrderId,
		StudentRating:   s.StudentRating,
		TutorRating:     s.TutorRating,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (m *SessionMapper) ToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}
	return &model.Session{
		Id:              s.Id,
		StudentId:       s.StudentId,
		TutorId:         s.TutorId,
		SubjectId:       s.SubjectId,
		ScheduledAt:     s.ScheduledAt,
		DurationMinutes: s.DurationMinutes,
		TotalAmount:     s.TotalAmount,
		Status:          string(s.Status),
		PaymentStatus:   string(s.PaymentStatus),
		Location:        s.Location,
		Notes:           s.Notes,
		ProviderOrderId: s.ProviderOrderId,
		StudentRating:   s.StudentRating,
		TutorRating:     s.TutorRating,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
