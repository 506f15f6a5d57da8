package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	domainRepo "github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/pkg/pagination"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if !softDeleted(existing.DeletedAt) && strings.EqualFold(existing.Username, user.Username) {
			return domainRepo.ErrDuplicateKey
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Roles == nil {
		user.Roles = enum.RoleSet{}
	}
	now := r.s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok || softDeleted(user.DeletedAt) {
		return nil, nil
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if !softDeleted(user.DeletedAt) && strings.EqualFold(user.Username, username) {
			return &user, nil
		}
	}
	return nil, nil
}

func (r *userRepository) List(_ context.Context, params *pagination.PaginationParams, search string) ([]entity.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []entity.User
	for _, user := range r.s.users {
		if softDeleted(user.DeletedAt) {
			continue
		}
		if search != "" && !containsFold(user.Username, search) && !containsFold(user.Name, search) {
			continue
		}
		matched = append(matched, user)
	}

	slices.SortFunc(matched, func(a, b entity.User) int {
		return strings.Compare(a.Username, b.Username)
	})

	total := int64(len(matched))
	if params != nil {
		matched = pagination.Window(matched, params)
	}
	return matched, total, nil
}

func (r *userRepository) UpdateRoles(_ context.Context, id uuid.UUID, roles enum.RoleSet) (bool, error) {
	return r.update(id, func(u *entity.User) { u.Roles = roles })
}

func (r *userRepository) UpdatePassword(_ context.Context, id uuid.UUID, hashedPassword string) (bool, error) {
	return r.update(id, func(u *entity.User) { u.Password = hashedPassword })
}

func (r *userRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	deletedAt := r.s.deletedAt()
	return r.update(id, func(u *entity.User) { u.DeletedAt = deletedAt })
}

func (r *userRepository) update(id uuid.UUID, mutate func(*entity.User)) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok || softDeleted(user.DeletedAt) {
		return false, nil
	}
	mutate(&user)
	user.UpdatedAt = r.s.now()
	r.s.users[id] = user
	return true, nil
}
