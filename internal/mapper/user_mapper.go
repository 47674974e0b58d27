package mapper

import (
	"tutorlink-be/internal/entity"
	"tutorlink-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:           u.Id,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Role:         entity.UserRole(u.Role),
		Status:       entity.UserStatus(u.Status),
		AvatarURL:    u.AvatarURL,
		Headline:     u.Headline,
		Bio:          u.Bio,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:           u.Id,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Role:         string(u.Role),
		Status:       string(u.Status),
		AvatarURL:    u.AvatarURL,
		Headline:     u.Headline,
		Bio:          u.Bio,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m *UserMapper) SubjectToEntity(s *model.Subject) *entity.Subject {
	if s == nil {
		return nil
	}
	return &entity.Subject{
		Id:        s.Id,
		Name:      s.Name,
		Slug:      s.Slug,
		CreatedAt: s.CreatedAt,
	}
}

func (m *UserMapper) SubjectToModel(s *entity.Subject) *model.Subject {
	if s == nil {
		return nil
	}
	return &model.Subject{
		Id:        s.Id,
		Name:      s.Name,
		Slug:      s.Slug,
		CreatedAt: s.CreatedAt,
	}
}

func (m *UserMapper) TutorSubjectToEntity(ts *model.TutorSubject) *entity.TutorSubject {
	if ts == nil {
		return nil
	}
	return &entity.TutorSubject{
		Id:         ts.Id,
		TutorId:    ts.TutorId,
		SubjectId:  ts.SubjectId,
		HourlyRate: ts.HourlyRate,
		CreatedAt:  ts.CreatedAt,
		UpdatedAt:  ts.UpdatedAt,
	}
}

func (m *UserMapper) TutorSubjectToModel(ts *entity.TutorSubject) *model.TutorSubject {
	if ts == nil {
		return nil
	}
	return &model.TutorSubject{
		Id:         ts.Id,
		TutorId:    ts.TutorId,
		SubjectId:  ts.SubjectId,
		HourlyRate: ts.HourlyRate,
		CreatedAt:  ts.CreatedAt,
		UpdatedAt:  ts.UpdatedAt,
	}
}
