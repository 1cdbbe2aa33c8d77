package memory

import (
	"context"
	"time"

	"github.com/ErlanBelekov/diary-service/internal/domain"
)

type userRow struct {
	email        string
	passwordHash string
	createdAt    time.Time
	updatedAt    time.Time
}

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(_ context.Context, email, passwordHash string) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[email]; ok {
		return nil, domain.ErrEmailTaken
	}

	now := s.now()
	id := s.id()
	s.users[id] = &userRow{email: email, passwordHash: passwordHash, createdAt: now, updatedAt: now}
	s.emails[email] = id
	return toUser(id, s.users[id]), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return toUser(id, s.users[id]), nil
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return toUser(id, u), nil
}

// Delete removes the user and every diary they own.
func (r *UserRepository) Delete(_ context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	for diaryID, d := range s.diaries {
		if d.userID == id {
			delete(s.diaries, diaryID)
		}
	}
	delete(s.emails, u.email)
	delete(s.users, id)
	return nil
}

func toUser(id int64, u *userRow) *domain.User {
	return &domain.User{
		ID:           id,
		Email:        u.email,
		PasswordHash: u.passwordHash,
		CreatedAt:    u.createdAt,
		UpdatedAt:    u.updatedAt,
	}
}
