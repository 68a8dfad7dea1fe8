package memory

import (
	"context"
	"strings"

	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, existing := range r.s.users {
		if existing.Email == email {
			return &domain.ConflictError{
				Message:      "a user with this email already exists",
				ResourceType: "user",
				ResourceID:   existing.ID,
			}
		}
	}

	if user.ID == "" {
		user.ID = newID()
	}
	if _, exists := r.s.users[user.ID]; exists {
		return &domain.ConflictError{Message: "user already exists", ResourceType: "user", ResourceID: user.ID}
	}

	user.Email = email
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	remember(ctx, r.s.users, user.ID)
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, domain.NewNotFound("user", id)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, user := range r.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, domain.NewNotFound("user", email)
}

func (r *userRepository) Ensure(ctx context.Context, user *models.User) error {
	r.s.mu.RLock()
	_, exists := r.s.users[user.ID]
	r.s.mu.RUnlock()
	if exists {
		return nil
	}

	err := r.Create(ctx, user)
	if err != nil {
		// Lost a race with another Ensure for the same ID
		r.s.mu.RLock()
		_, exists = r.s.users[user.ID]
		r.s.mu.RUnlock()
		if exists {
			return nil
		}
	}
	return err
}
