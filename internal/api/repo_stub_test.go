package api

import (
	"accounts/internal/entity"
	"accounts/internal/model"
	"context"
	"strings"
	"sync"

	"gorm.io/gorm"
)

// stubRepo is an in-memory Repository backing the HTTP tests. It keeps the
// store contract: gorm.ErrRecordNotFound for absent rows, gorm.ErrDuplicatedKey
// for unique-index violations, and the role catalog seeded up front.
type stubRepo struct {
	mu       sync.Mutex
	users    map[uint]*entity.DbUser
	roles    map[uint]entity.DbRole
	nextUser uint
	nextRole uint
}

func newStubRepo() *stubRepo {
	repo := &stubRepo{
		users: make(map[uint]*entity.DbUser),
		roles: make(map[uint]entity.DbRole),
	}
	for _, name := range entity.AllRoleNames() {
		repo.nextRole++
		repo.roles[repo.nextRole] = entity.DbRole{ID: repo.nextRole, Name: name}
	}
	return repo
}

func cloneUser(u *entity.DbUser) *entity.DbUser {
	out := *u
	out.Roles = append([]entity.DbRole(nil), u.Roles...)
	return &out
}

func (s *stubRepo) CreateUser(_ context.Context, user *entity.DbUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username || strings.EqualFold(existing.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	s.nextUser++
	user.ID = s.nextUser
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *stubRepo) UpdateUser(_ context.Context, id uint, updates map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for column, value := range updates {
		text, _ := value.(string)
		switch column {
		case "email":
			for otherID, other := range s.users {
				if otherID != id && strings.EqualFold(other.Email, text) {
					return gorm.ErrDuplicatedKey
				}
			}
			user.Email = text
		case "display_name":
			user.DisplayName = text
		case "password_hash":
			user.PasswordHash = text
		}
	}
	return nil
}

func (s *stubRepo) ReplaceUserRoles(_ context.Context, user *entity.DbUser, roles []entity.DbRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[user.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Roles = append([]entity.DbRole(nil), roles...)
	return nil
}

func (s *stubRepo) GetUserByUsername(_ context.Context, username string) (*entity.DbUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == strings.TrimSpace(username) {
			return cloneUser(user), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) GetUserByEmail(_ context.Context, email string) (*entity.DbUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, strings.TrimSpace(email)) {
			return cloneUser(user), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) GetUserByID(_ context.Context, id uint) (*entity.DbUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneUser(user), nil
}

func (s *stubRepo) ListUsers(_ context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.DbUser, 0, len(s.users))
	for id := uint(1); id <= s.nextUser; id++ {
		user, ok := s.users[id]
		if !ok {
			continue
		}
		if params != nil && params.Role != "" && !user.HasRole(params.Role) {
			continue
		}
		out = append(out, *cloneUser(user))
	}
	meta := &entity.Meta{Total: int64(len(out)), Page: 1, PageSize: int64(len(out))}
	return out, meta, nil
}

func (s *stubRepo) DeleteUser(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *stubRepo) CountUsers(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

func (s *stubRepo) CreateRole(_ context.Context, role *entity.DbRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.roles {
		if existing.Name == role.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	s.nextRole++
	role.ID = s.nextRole
	s.roles[role.ID] = *role
	return nil
}

func (s *stubRepo) GetRoleByName(_ context.Context, name string) (*entity.DbRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, role := range s.roles {
		if role.Name == strings.TrimSpace(name) {
			out := role
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) GetRoleByID(_ context.Context, id uint) (*entity.DbRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := role
	return &out, nil
}

func (s *stubRepo) FindRolesByIDs(_ context.Context, ids []uint) ([]entity.DbRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.DbRole, 0, len(ids))
	for _, id := range ids {
		if role, ok := s.roles[id]; ok {
			out = append(out, role)
		}
	}
	return out, nil
}

func (s *stubRepo) ListRoles(_ context.Context) ([]entity.DbRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.DbRole, 0, len(s.roles))
	for id := uint(1); id <= s.nextRole; id++ {
		if role, ok := s.roles[id]; ok {
			out = append(out, role)
		}
	}
	return out, nil
}

var _ model.Repository = (*stubRepo)(nil)
