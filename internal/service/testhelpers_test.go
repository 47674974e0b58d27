package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"tutorlink-be/internal/entity"
	"tutorlink-be/internal/pkg/mailer"
	"tutorlink-be/internal/repository/contract"
	"tutorlink-be/internal/repository/specification"
	"tutorlink-be/internal/repository/unitofwork"
)

// memStore is shared in-memory state backing the fake repositories. All fakes
// created from one memFactory see the same data, mirroring a shared database.
type memStore struct {
	users         map[uuid.UUID]*entity.User
	subjects      map[uuid.UUID]*entity.Subject
	tutorSubjects []*entity.TutorSubject
	sessions      map[uuid.UUID]*entity.Session
	conversations map[uuid.UUID]*entity.Conversation
	messages      []*entity.ConversationMessage
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[uuid.UUID]*entity.User),
		subjects:      make(map[uuid.UUID]*entity.Subject),
		sessions:      make(map[uuid.UUID]*entity.Session),
		conversations: make(map[uuid.UUID]*entity.Conversation),
	}
}

type memFactory struct {
	store *memStore
}

func newMemFactory() *memFactory {
	return &memFactory{store: newMemStore()}
}

func (f *memFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUnitOfWork{store: f.store}
}

type memUnitOfWork struct {
	store *memStore
}

func (u *memUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *memUnitOfWork) Commit() error                   { return nil }
func (u *memUnitOfWork) Rollback() error                 { return nil }

func (u *memUnitOfWork) UserRepository() contract.UserRepository {
	return &memUserRepo{store: u.store}
}
func (u *memUnitOfWork) SubjectRepository() contract.SubjectRepository {
	return &memSubjectRepo{store: u.store}
}
func (u *memUnitOfWork) SessionRepository() contract.SessionRepository {
	return &memSessionRepo{store: u.store}
}
func (u *memUnitOfWork) ConversationRepository() contract.ConversationRepository {
	return &memConversationRepo{store: u.store}
}
func (u *memUnitOfWork) MessageRepository() contract.MessageRepository {
	return &memMessageRepo{store: u.store}
}

// --- users ---

type memUserRepo struct {
	store *memStore
}

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	cp := *user
	r.store.users[user.Id] = &cp
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, user *entity.User) error {
	cp := *user
	r.store.users[user.Id] = &cp
	return nil
}

func (r *memUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *memUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.store.users {
		if matchUser(u, specs) {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func matchUser(u *entity.User, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if u.Id != sp.ID {
				return false
			}
		case specification.ByIDs:
			found := false
			for _, id := range sp.IDs {
				if u.Id == id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case specification.ByEmail:
			if u.Email != sp.Email {
				return false
			}
		}
	}
	return true
}

// --- subjects ---

type memSubjectRepo struct {
	store *memStore
}

func (r *memSubjectRepo) Create(ctx context.Context, subject *entity.Subject) error {
	cp := *subject
	r.store.subjects[subject.Id] = &cp
	return nil
}

func (r *memSubjectRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subject, error) {
	for _, s := range r.store.subjects {
		if matchSubject(s, specs) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memSubjectRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subject, error) {
	var out []*entity.Subject
	for _, s := range r.store.subjects {
		if matchSubject(s, specs) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func matchSubject(s *entity.Subject, specs []specification.Specification) bool {
	for _, sp := range specs {
		if byID, ok := sp.(specification.ByID); ok && s.Id != byID.ID {
			return false
		}
	}
	return true
}

func (r *memSubjectRepo) UpsertTutorSubject(ctx context.Context, ts *entity.TutorSubject) error {
	for i, existing := range r.store.tutorSubjects {
		if existing.TutorId == ts.TutorId && existing.SubjectId == ts.SubjectId {
			cp := *ts
			r.store.tutorSubjects[i] = &cp
			return nil
		}
	}
	cp := *ts
	r.store.tutorSubjects = append(r.store.tutorSubjects, &cp)
	return nil
}

func (r *memSubjectRepo) FindTutorSubject(ctx context.Context, tutorId, subjectId uuid.UUID) (*entity.TutorSubject, error) {
	for _, ts := range r.store.tutorSubjects {
		if ts.TutorId == tutorId && ts.SubjectId == subjectId {
			cp := *ts
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memSubjectRepo) FindTutorSubjects(ctx context.Context, specs ...specification.Specification) ([]*entity.TutorSubject, error) {
	out := make([]*entity.TutorSubject, 0, len(r.store.tutorSubjects))
	for _, ts := range r.store.tutorSubjects {
		cp := *ts
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memSubjectRepo) DeleteTutorSubject(ctx context.Context, tutorId, subjectId uuid.UUID) error {
	for i, ts := range r.store.tutorSubjects {
		if ts.TutorId == tutorId && ts.SubjectId == subjectId {
			r.store.tutorSubjects = append(r.store.tutorSubjects[:i], r.store.tutorSubjects[i+1:]...)
			return nil
		}
	}
	return nil
}

// --- sessions ---

type memSessionRepo struct {
	store *memStore
}

func (r *memSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	cp := *session
	r.store.sessions[session.Id] = &cp
	return nil
}

func (r *memSessionRepo) Update(ctx context.Context, session *entity.Session) error {
	cp := *session
	r.store.sessions[session.Id] = &cp
	return nil
}

func (r *memSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *memSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	var out []*entity.Session
	for _, s := range r.store.sessions {
		if matchSession(s, specs) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func matchSession(s *entity.Session, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch spec := sp.(type) {
		case specification.ByID:
			if s.Id != spec.ID {
				return false
			}
		case specification.ParticipantOf:
			if s.StudentId != spec.UserID && s.TutorId != spec.UserID {
				return false
			}
		case specification.ByStudent:
			if s.StudentId != spec.StudentID {
				return false
			}
		case specification.ByTutor:
			if s.TutorId != spec.TutorID {
				return false
			}
		case specification.ByProviderOrderId:
			if s.ProviderOrderId == nil || *s.ProviderOrderId != spec.OrderID {
				return false
			}
		}
	}
	return true
}

// --- conversations ---

type memConversationRepo struct {
	store *memStore
}

func (r *memConversationRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	for _, existing := range r.store.conversations {
		if existing.ParticipantA == conversation.ParticipantA && existing.ParticipantB == conversation.ParticipantB {
			return contract.ErrDuplicatePair
		}
	}
	cp := *conversation
	r.store.conversations[conversation.Id] = &cp
	return nil
}

func (r *memConversationRepo) Update(ctx context.Context, conversation *entity.Conversation) error {
	cp := *conversation
	r.store.conversations[conversation.Id] = &cp
	return nil
}

func (r *memConversationRepo) TouchLastMessageAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	if c, ok := r.store.conversations[id]; ok {
		c.LastMessageAt = at
	}
	return nil
}

func (r *memConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *memConversationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	var out []*entity.Conversation
	for _, c := range r.store.conversations {
		if matchConversation(c, specs) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageAt.After(out[j].LastMessageAt) })
	return out, nil
}

func matchConversation(c *entity.Conversation, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch spec := sp.(type) {
		case specification.ByID:
			if c.Id != spec.ID {
				return false
			}
		case specification.ByParticipant:
			if c.ParticipantA != spec.UserID && c.ParticipantB != spec.UserID {
				return false
			}
		case specification.ByCanonicalPair:
			if c.ParticipantA != spec.ParticipantA || c.ParticipantB != spec.ParticipantB {
				return false
			}
		}
	}
	return true
}

// --- messages ---

type memMessageRepo struct {
	store *memStore
}

func (r *memMessageRepo) Create(ctx context.Context, message *entity.ConversationMessage) error {
	cp := *message
	r.store.messages = append(r.store.messages, &cp)
	return nil
}

func (r *memMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationMessage, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *memMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationMessage, error) {
	var out []*entity.ConversationMessage
	for _, m := range r.store.messages {
		if matchMessage(m, specs) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func matchMessage(m *entity.ConversationMessage, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch spec := sp.(type) {
		case specification.ByConversationID:
			if m.ConversationId != spec.ConversationID {
				return false
			}
		case specification.CreatedAfter:
			after, ok := spec.After.(time.Time)
			if ok && !m.CreatedAt.After(after) {
				return false
			}
		}
	}
	return true
}

// --- test doubles for outbound dependencies ---

type fakeMailer struct {
	confirmations []*mailer.BookingEmail
	cancellations []*mailer.BookingEmail
	fail          error
}

func (f *fakeMailer) SendBookingConfirmation(b *mailer.BookingEmail) error {
	if f.fail != nil {
		return f.fail
	}
	f.confirmations = append(f.confirmations, b)
	return nil
}

func (f *fakeMailer) SendBookingCancelled(b *mailer.BookingEmail) error {
	if f.fail != nil {
		return f.fail
	}
	f.cancellations = append(f.cancellations, b)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// seedUser inserts an active user and returns its id.
func seedUser(store *memStore, name string) uuid.UUID {
	id := uuid.New()
	store.users[id] = &entity.User{
		Id:        id,
		Email:     name + "@example.com",
		FullName:  name,
		Role:      entity.UserRoleUser,
		Status:    entity.UserStatusActive,
		CreatedAt: time.Now(),
	}
	return id
}

func seedSubject(store *memStore, name string) uuid.UUID {
	id := uuid.New()
	store.subjects[id] = &entity.Subject{Id: id, Name: name, Slug: name, CreatedAt: time.Now()}
	return id
}

func seedOffering(store *memStore, tutorId, subjectId uuid.UUID, rate float64) {
	store.tutorSubjects = append(store.tutorSubjects, &entity.TutorSubject{
		Id:         uuid.New(),
		TutorId:    tutorId,
		SubjectId:  subjectId,
		HourlyRate: rate,
	})
}
