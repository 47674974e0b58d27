package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tutorlink-be/internal/entity"
	"tutorlink-be/internal/mapper"
	"tutorlink-be/internal/model"
	"tutorlink-be/internal/repository/contract"
	"tutorlink-be/internal/repository/specification"
)

type SubjectRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewSubjectRepository(db *gorm.DB) contract.SubjectRepository {
	return &SubjectRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *SubjectRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SubjectRepositoryImpl) Create(ctx context.Context, subject *entity.Subject) error {
	m := r.mapper.SubjectToModel(subject)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*subject = *r.mapper.SubjectToEntity(m)
	return nil
}

func (r *SubjectRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subject, error) {
	var m model.Subject
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SubjectToEntity(&m), nil
}

func (r *SubjectRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subject, error) {
	var models []*model.Subject
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Subject, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SubjectToEntity(m)
	}
	return entities, nil
}

// UpsertTutorSubject creates or updates the tutor's rate for a subject.
func (r *SubjectRepositoryImpl) UpsertTutorSubject(ctx context.Context, ts *entity.TutorSubject) error {
	m := r.mapper.TutorSubjectToModel(ts)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tutor_id"}, {Name: "subject_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"hourly_rate", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*ts = *r.mapper.TutorSubjectToEntity(m)
	return nil
}

func (r *SubjectRepositoryImpl) FindTutorSubject(ctx context.Context, tutorId, subjectId uuid.UUID) (*entity.TutorSubject, error) {
	var m model.TutorSubject
	err := r.db.WithContext(ctx).
		Where("tutor_id = ? AND subject_id = ?", tutorId, subjectId).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TutorSubjectToEntity(&m), nil
}

func (r *SubjectRepositoryImpl) FindTutorSubjects(ctx context.Context, specs ...specification.Specification) ([]*entity.TutorSubject, error) {
	var models []*model.TutorSubject
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.TutorSubject, len(models))
	for i, m := range models {
		entities[i] = r.mapper.TutorSubjectToEntity(m)
	}
	return entities, nil
}

func (r *SubjectRepositoryImpl) DeleteTutorSubject(ctx context.Context, tutorId, subjectId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tutor_id = ? AND subject_id = ?", tutorId, subjectId).
		Delete(&model.TutorSubject{}).Error
}
