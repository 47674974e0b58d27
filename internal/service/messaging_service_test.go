package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorlink-be/internal/dto"
	"tutorlink-be/internal/entity"
	"tutorlink-be/internal/pkg/apperrors"
	"tutorlink-be/internal/repository/contract"
	"tutorlink-be/internal/repository/specification"
	"tutorlink-be/internal/repository/unitofwork"
	"tutorlink-be/pkg/stream"
)

type messagingFixture struct {
	factory *memFactory
	feed    *stream.Feed
	service IMessagingService
	alice   uuid.UUID
	bob     uuid.UUID
}

func newMessagingFixture(t *testing.T) *messagingFixture {
	t.Helper()
	factory := newMemFactory()
	feed := stream.NewFeed()
	t.Cleanup(func() { feed.Close() })

	f := &messagingFixture{
		factory: factory,
		feed:    feed,
		service: NewMessagingService(factory, feed, nil, nopLogger{}),
	}
	f.alice = seedUser(factory.store, "alice")
	f.bob = seedUser(factory.store, "bob")
	return f
}

func (f *messagingFixture) open(t *testing.T, initiator, other uuid.UUID) *dto.ConversationResponse {
	t.Helper()
	res, err := f.service.OpenConversation(context.Background(), initiator, &dto.OpenConversationRequest{OtherUserId: other})
	require.NoError(t, err)
	return res
}

func TestOpenConversation(t *testing.T) {
	f := newMessagingFixture(t)

	res := f.open(t, f.alice, f.bob)

	assert.Equal(t, string(entity.ConversationStatusPending), res.Status)
	assert.Equal(t, f.alice, res.InitiatorId)
	require.NotNil(t, res.Other)
	assert.Equal(t, f.bob, res.Other.Id)
}

func TestOpenConversationIsIdempotentAcrossDirections(t *testing.T) {
	f := newMessagingFixture(t)

	first := f.open(t, f.alice, f.bob)
	// Opening from the other side finds the same thread.
	second := f.open(t, f.bob, f.alice)

	assert.Equal(t, first.Id, second.Id)
	// The initiator of the original thread is preserved.
	assert.Equal(t, f.alice, second.InitiatorId)
	// The counterpart flips with the viewer.
	assert.Equal(t, f.alice, second.Other.Id)
}

func TestOpenConversationRejectsSelf(t *testing.T) {
	f := newMessagingFixture(t)

	_, err := f.service.OpenConversation(context.Background(), f.alice, &dto.OpenConversationRequest{OtherUserId: f.alice})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestOpenConversationRecoversFromInsertRace(t *testing.T) {
	f := newMessagingFixture(t)

	// A concurrent first contact already inserted the canonical row.
	a, b := entity.CanonicalPair(f.alice, f.bob)
	existing := &entity.Conversation{
		Id:           uuid.New(),
		ParticipantA: a,
		ParticipantB: b,
		Status:       entity.ConversationStatusPending,
		InitiatorId:  f.bob,
		CreatedAt:    time.Now(),
	}
	f.factory.store.conversations[existing.Id] = existing

	res := f.open(t, f.alice, f.bob)
	assert.Equal(t, existing.Id, res.Id)
}

// raceUoW hides the conversation row from the first pair lookup so the
// service's insert collides, exercising the duplicate-pair recovery path.
type raceUoW struct {
	*memUnitOfWork
	hidden *bool
}

func (u *raceUoW) ConversationRepository() contract.ConversationRepository {
	return &raceConversationRepo{
		ConversationRepository: u.memUnitOfWork.ConversationRepository(),
		hidden:                 u.hidden,
	}
}

type raceConversationRepo struct {
	contract.ConversationRepository
	hidden *bool
}

func (r *raceConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	if *r.hidden {
		*r.hidden = false
		return nil, nil
	}
	return r.ConversationRepository.FindOne(ctx, specs...)
}

type raceFactory struct {
	inner  *memFactory
	hidden bool
}

func (f *raceFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &raceUoW{
		memUnitOfWork: f.inner.NewUnitOfWork(ctx).(*memUnitOfWork),
		hidden:        &f.hidden,
	}
}

func TestOpenConversationLosesInsertRace(t *testing.T) {
	inner := newMemFactory()
	factory := &raceFactory{inner: inner, hidden: true}
	feed := stream.NewFeed()
	t.Cleanup(func() { feed.Close() })
	svc := NewMessagingService(factory, feed, nil, nopLogger{})

	alice := seedUser(inner.store, "alice")
	bob := seedUser(inner.store, "bob")

	// The winner's row exists, but the loser's pre-insert lookup misses it.
	a, b := entity.CanonicalPair(alice, bob)
	existing := &entity.Conversation{
		Id:           uuid.New(),
		ParticipantA: a,
		ParticipantB: b,
		Status:       entity.ConversationStatusPending,
		InitiatorId:  bob,
		CreatedAt:    time.Now(),
	}
	inner.store.conversations[existing.Id] = existing

	res, err := svc.OpenConversation(context.Background(), alice, &dto.OpenConversationRequest{OtherUserId: bob})
	require.NoError(t, err)
	assert.Equal(t, existing.Id, res.Id)
}

func TestSendMessage(t *testing.T) {
	f := newMessagingFixture(t)
	conv := f.open(t, f.alice, f.bob)

	msg, err := f.service.SendMessage(context.Background(), conv.Id, f.alice, &dto.SendMessageRequest{Content: "hi Bob"})
	require.NoError(t, err)
	assert.Equal(t, "hi Bob", msg.Content)
	assert.Equal(t, f.alice, msg.SenderId)

	// last_message_at follows the newest message.
	stored := f.factory.store.conversations[conv.Id]
	assert.Equal(t, msg.CreatedAt, stored.LastMessageAt)
}

func TestRecipientReplyAcceptsConversation(t *testing.T) {
	f := newMessagingFixture(t)
	conv := f.open(t, f.alice, f.bob)

	_, err := f.service.SendMessage(context.Background(), conv.Id, f.bob, &dto.SendMessageRequest{Content: "hi Alice"})
	require.NoError(t, err)

	stored := f.factory.store.conversations[conv.Id]
	assert.Equal(t, entity.ConversationStatusAccepted, stored.Status)
}

func TestSendMessageBlockedAndDeclined(t *testing.T) {
	f := newMessagingFixture(t)

	conv := f.open(t, f.alice, f.bob)
	_, err := f.service.UpdateConversationStatus(context.Background(), conv.Id, f.bob, entity.ConversationStatusDeclined)
	require.NoError(t, err)
	_, err = f.service.SendMessage(context.Background(), conv.Id, f.alice, &dto.SendMessageRequest{Content: "please"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	carol := seedUser(f.factory.store, "carol")
	conv2 := f.open(t, f.alice, carol)
	_, err = f.service.UpdateConversationStatus(context.Background(), conv2.Id, carol, entity.ConversationStatusBlocked)
	require.NoError(t, err)
	_, err = f.service.SendMessage(context.Background(), conv2.Id, f.alice, &dto.SendMessageRequest{Content: "hello?"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestSendMessageRejectsOutsider(t *testing.T) {
	f := newMessagingFixture(t)
	conv := f.open(t, f.alice, f.bob)
	stranger := seedUser(f.factory.store, "stranger")

	_, err := f.service.SendMessage(context.Background(), conv.Id, stranger, &dto.SendMessageRequest{Content: "hey"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpdateConversationStatusGuards(t *testing.T) {
	f := newMessagingFixture(t)
	conv := f.open(t, f.alice, f.bob)

	// The initiator cannot answer their own request.
	_, err := f.service.UpdateConversationStatus(context.Background(), conv.Id, f.alice, entity.ConversationStatusAccepted)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// The recipient accepts.
	res, err := f.service.UpdateConversationStatus(context.Background(), conv.Id, f.bob, entity.ConversationStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, string(entity.ConversationStatusAccepted), res.Status)

	// Accepting twice: no longer pending.
	_, err = f.service.UpdateConversationStatus(context.Background(), conv.Id, f.bob, entity.ConversationStatusAccepted)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Either side can still block.
	res, err = f.service.UpdateConversationStatus(context.Background(), conv.Id, f.alice, entity.ConversationStatusBlocked)
	require.NoError(t, err)
	assert.Equal(t, string(entity.ConversationStatusBlocked), res.Status)
}

func TestGetMessagesAfterCursor(t *testing.T) {
	f := newMessagingFixture(t)
	conv := f.open(t, f.alice, f.bob)

	first, err := f.service.SendMessage(context.Background(), conv.Id, f.alice, &dto.SendMessageRequest{Content: "one"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = f.service.SendMessage(context.Background(), conv.Id, f.alice, &dto.SendMessageRequest{Content: "two"})
	require.NoError(t, err)

	all, err := f.service.GetMessages(context.Background(), conv.Id, f.bob, nil, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "one", all[0].Content)
	assert.Equal(t, "two", all[1].Content)

	after := first.CreatedAt
	newer, err := f.service.GetMessages(context.Background(), conv.Id, f.bob, &after, 0)
	require.NoError(t, err)
	require.Len(t, newer, 1)
	assert.Equal(t, "two", newer[0].Content)
}

func TestListConversationsOrderedByActivity(t *testing.T) {
	f := newMessagingFixture(t)
	carol := seedUser(f.factory.store, "carol")

	convBob := f.open(t, f.alice, f.bob)
	convCarol := f.open(t, f.alice, carol)

	_, err := f.service.SendMessage(context.Background(), convBob.Id, f.alice, &dto.SendMessageRequest{Content: "x"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = f.service.SendMessage(context.Background(), convCarol.Id, f.alice, &dto.SendMessageRequest{Content: "y"})
	require.NoError(t, err)

	list, err := f.service.ListConversations(context.Background(), f.alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, convCarol.Id, list[0].Id)
	assert.Equal(t, convBob.Id, list[1].Id)
}

func TestStreamMessagesDeliversFeedEvents(t *testing.T) {
	f := newMessagingFixture(t)
	conv := f.open(t, f.alice, f.bob)

	sub, err := f.service.StreamMessages(context.Background(), conv.Id, f.bob)
	require.NoError(t, err)
	defer sub.Close()

	sent, err := f.service.SendMessage(context.Background(), conv.Id, f.alice, &dto.SendMessageRequest{Content: "live"})
	require.NoError(t, err)

	select {
	case event := <-sub.C:
		assert.Equal(t, sent.Id, event.ID)
		assert.Equal(t, "live", event.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed event")
	}
}

func TestStreamMessagesRejectsOutsider(t *testing.T) {
	f := newMessagingFixture(t)
	conv := f.open(t, f.alice, f.bob)
	stranger := seedUser(f.factory.store, "stranger")

	_, err := f.service.StreamMessages(context.Background(), conv.Id, stranger)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
