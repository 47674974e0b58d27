package service

import (
	"context"

	"github.com/google/uuid"

	"tutorlink-be/internal/dto"
	"tutorlink-be/internal/entity"
	"tutorlink-be/internal/pkg/apperrors"
	"tutorlink-be/internal/repository/specification"
	"tutorlink-be/internal/repository/unitofwork"
)

type IUserService interface {
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfile, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserProfile, error)
	ListSubjects(ctx context.Context) ([]*dto.SubjectResponse, error)
	SetTutorSubject(ctx context.Context, tutorId uuid.UUID, req *dto.SetTutorSubjectRequest) error
	RemoveTutorSubject(ctx context.Context, tutorId, subjectId uuid.UUID) error
	ListTutorsBySubject(ctx context.Context, subjectId uuid.UUID) ([]*dto.TutorListing, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{uowFactory: uowFactory}
}

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfile, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user")
	}
	return profileFromUser(user, false), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserProfile, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user")
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Headline != nil {
		user.Headline = req.Headline
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}

	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}
	return profileFromUser(user, true), nil
}

func (s *userService) ListSubjects(ctx context.Context) ([]*dto.SubjectResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	subjects, err := uow.SubjectRepository().FindAll(ctx, specification.OrderBy{Field: "name"})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SubjectResponse, len(subjects))
	for i, sub := range subjects {
		res[i] = &dto.SubjectResponse{Id: sub.Id, Name: sub.Name, Slug: sub.Slug}
	}
	return res, nil
}

func (s *userService) SetTutorSubject(ctx context.Context, tutorId uuid.UUID, req *dto.SetTutorSubjectRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	subject, err := uow.SubjectRepository().FindOne(ctx, specification.ByID{ID: req.SubjectId})
	if err != nil {
		return err
	}
	if subject == nil {
		return apperrors.NotFound("subject")
	}

	return uow.SubjectRepository().UpsertTutorSubject(ctx, &entity.TutorSubject{
		Id:         uuid.New(),
		TutorId:    tutorId,
		SubjectId:  req.SubjectId,
		HourlyRate: req.HourlyRate,
	})
}

func (s *userService) RemoveTutorSubject(ctx context.Context, tutorId, subjectId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SubjectRepository().DeleteTutorSubject(ctx, tutorId, subjectId)
}

func (s *userService) ListTutorsBySubject(ctx context.Context, subjectId uuid.UUID) ([]*dto.TutorListing, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	offerings, err := uow.SubjectRepository().FindTutorSubjects(ctx,
		specification.Filter("subject_id", subjectId),
		specification.OrderBy{Field: "hourly_rate"},
	)
	if err != nil {
		return nil, err
	}
	if len(offerings) == 0 {
		return []*dto.TutorListing{}, nil
	}

	tutorIds := make([]uuid.UUID, len(offerings))
	for i, o := range offerings {
		tutorIds[i] = o.TutorId
	}

	tutors, err := uow.UserRepository().FindAll(ctx, specification.ByIDs{IDs: tutorIds})
	if err != nil {
		return nil, err
	}
	byId := make(map[uuid.UUID]*entity.User, len(tutors))
	for _, t := range tutors {
		byId[t.Id] = t
	}

	listings := make([]*dto.TutorListing, 0, len(offerings))
	for _, o := range offerings {
		tutor, ok := byId[o.TutorId]
		if !ok || tutor.Status != entity.UserStatusActive {
			continue
		}
		listings = append(listings, &dto.TutorListing{
			Tutor:      profileFromUser(tutor, false),
			SubjectId:  o.SubjectId,
			HourlyRate: o.HourlyRate,
		})
	}
	return listings, nil
}
