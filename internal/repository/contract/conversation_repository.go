package contract

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"tutorlink-be/internal/entity"
	"tutorlink-be/internal/repository/specification"
)

// ErrDuplicatePair signals the unique index on the canonical participant pair
// fired. For get-or-create this is the success path.
var ErrDuplicatePair = errors.New("conversation already exists for participant pair")

type ConversationRepository interface {
	// Create inserts the conversation. A unique violation on the canonical
	// participant pair is returned as ErrDuplicatePair so callers can treat
	// the conflict as "already exists" rather than a failure.
	Create(ctx context.Context, conversation *entity.Conversation) error
	Update(ctx context.Context, conversation *entity.Conversation) error
	TouchLastMessageAt(ctx context.Context, id uuid.UUID, at time.Time) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *entity.ConversationMessage) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
