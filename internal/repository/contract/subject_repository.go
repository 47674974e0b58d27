package contract

import (
	"context"

	"github.com/google/uuid"

	"tutorlink-be/internal/entity"
	"tutorlink-be/internal/repository/specification"
)

type SubjectRepository interface {
	Create(ctx context.Context, subject *entity.Subject) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subject, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subject, error)

	UpsertTutorSubject(ctx context.Context, ts *entity.TutorSubject) error
	FindTutorSubject(ctx context.Context, tutorId, subjectId uuid.UUID) (*entity.TutorSubject, error)
	FindTutorSubjects(ctx context.Context, specs ...specification.Specification) ([]*entity.TutorSubject, error)
	DeleteTutorSubject(ctx context.Context, tutorId, subjectId uuid.UUID) error
}
