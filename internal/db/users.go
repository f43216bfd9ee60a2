// In-memory stores backing the service layer.
//
// Records live for the lifetime of the process. Each store guards its own
// collection with a single lock; no operation spans both stores.

package db

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/studyhub/backend/internal/model"
)

var (
	ErrNoRows    = errors.New("no rows in result set")
	ErrDuplicate = errors.New("duplicate key")
)

type UserStore struct {
	mu    sync.RWMutex
	users []model.User
}

func NewUserStore() *UserStore {
	return &UserStore{}
}

// CreateUser appends the user unless its username or email is already taken.
// Matching is exact and case-sensitive.
func (s *UserStore) CreateUser(ctx context.Context, username, email, passwordHash string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(username, email) >= 0 {
		return nil, ErrDuplicate
	}

	user := model.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.users = append(s.users, user)
	return &user, nil
}

// UserExists reports whether the username or the email is already registered.
func (s *UserStore) UserExists(ctx context.Context, username, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(username, email) >= 0, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].Email == email {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, ErrNoRows
}

func (s *UserStore) CountUsers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *UserStore) findLocked(username, email string) int {
	for i := range s.users {
		if s.users[i].Username == username || s.users[i].Email == email {
			return i
		}
	}
	return -1
}

func IsNoRows(err error) bool {
	return errors.Is(err, ErrNoRows)
}

func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
