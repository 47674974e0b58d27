package unitofwork

import (
	"context"

	"tutorlink-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	SubjectRepository() contract.SubjectRepository
	SessionRepository() contract.SessionRepository
	ConversationRepository() contract.ConversationRepository
	MessageRepository() contract.MessageRepository
}
