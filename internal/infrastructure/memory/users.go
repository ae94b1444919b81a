// Package memory holds map-backed stores with the same contracts as the
// MySQL repositories. They serve tests and the memory storage driver.
package memory

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type UserStore struct {
	mu sync.RWMutex

	usersByID map[string]domain.User
	idByEmail map[string]string
}

func NewUserStore() *UserStore {
	return &UserStore{
		usersByID: make(map[string]domain.User),
		idByEmail: make(map[string]string),
	}
}

func (s *UserStore) Insert(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.idByEmail[user.Email]; exists {
		return apperrors.NewCodedValidationError(apperrors.CodeDuplicateContact, "email is already registered")
	}
	s.usersByID[user.ID] = user
	s.idByEmail[user.Email] = user.ID
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.idByEmail[email]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with email %s not found", email))
	}
	user := s.usersByID[id]
	return &user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.usersByID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
	}
	return &user, nil
}

func (s *UserStore) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []domain.User
	for _, id := range ids {
		if user, ok := s.usersByID[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

// Update keeps the stored email and role, matching the MySQL repository.
func (s *UserStore) Update(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.usersByID[user.ID]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", user.ID))
	}
	user.Email = current.Email
	user.Role = current.Role
	user.CreatedAt = current.CreatedAt
	s.usersByID[user.ID] = user
	return nil
}

// Count is used by tests to check that a rejected write stored nothing.
func (s *UserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.usersByID)
}
