package service

import (
	"accounts/internal/entity"
	"accounts/internal/model"
	"context"
	"strings"
	"sync"

	"gorm.io/gorm"
)

// memRepo is an in-memory Repository used by the service tests. It mimics
// the store contract: gorm.ErrRecordNotFound for absent rows and
// gorm.ErrDuplicatedKey for unique-index violations.
type memRepo struct {
	mu       sync.Mutex
	users    map[uint]*entity.DbUser
	roles    map[uint]entity.DbRole
	nextUser uint
	nextRole uint
}

func newMemRepo() *memRepo {
	return &memRepo{
		users: make(map[uint]*entity.DbUser),
		roles: make(map[uint]entity.DbRole),
	}
}

// newSeededRepo returns a repo with the fixed role catalog in place.
func newSeededRepo() *memRepo {
	repo := newMemRepo()
	for _, name := range entity.AllRoleNames() {
		repo.nextRole++
		repo.roles[repo.nextRole] = entity.DbRole{ID: repo.nextRole, Name: name}
	}
	return repo
}

func (m *memRepo) roleIDByName(name string) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, role := range m.roles {
		if role.Name == name {
			return id
		}
	}
	return 0
}

func copyUser(u *entity.DbUser) *entity.DbUser {
	out := *u
	out.Roles = append([]entity.DbRole(nil), u.Roles...)
	return &out
}

func (m *memRepo) CreateUser(_ context.Context, user *entity.DbUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == user.Username || strings.EqualFold(existing.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextUser++
	user.ID = m.nextUser
	m.users[user.ID] = copyUser(user)
	return nil
}

func (m *memRepo) UpdateUser(_ context.Context, id uint, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for column, value := range updates {
		text, _ := value.(string)
		switch column {
		case "email":
			for otherID, other := range m.users {
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

func (m *memRepo) ReplaceUserRoles(_ context.Context, user *entity.DbUser, roles []entity.DbRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.users[user.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Roles = append([]entity.DbRole(nil), roles...)
	return nil
}

func (m *memRepo) GetUserByUsername(_ context.Context, username string) (*entity.DbUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == strings.TrimSpace(username) {
			return copyUser(user), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memRepo) GetUserByEmail(_ context.Context, email string) (*entity.DbUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if strings.EqualFold(user.Email, strings.TrimSpace(email)) {
			return copyUser(user), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memRepo) GetUserByID(_ context.Context, id uint) (*entity.DbUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyUser(user), nil
}

func (m *memRepo) ListUsers(_ context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.DbUser, 0, len(m.users))
	for _, user := range m.users {
		if params != nil && params.Role != "" {
			match := false
			for _, role := range user.Roles {
				if role.Name == params.Role {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *copyUser(user))
	}
	meta := &entity.Meta{Total: int64(len(out)), Page: 1, PageSize: int64(len(out))}
	return out, meta, nil
}

func (m *memRepo) DeleteUser(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memRepo) CountUsers(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *memRepo) CreateRole(_ context.Context, role *entity.DbRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.roles {
		if existing.Name == role.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextRole++
	role.ID = m.nextRole
	m.roles[role.ID] = *role
	return nil
}

func (m *memRepo) GetRoleByName(_ context.Context, name string) (*entity.DbRole, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, role := range m.roles {
		if role.Name == strings.TrimSpace(name) {
			out := role
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memRepo) GetRoleByID(_ context.Context, id uint) (*entity.DbRole, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.roles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := role
	return &out, nil
}

func (m *memRepo) FindRolesByIDs(_ context.Context, ids []uint) ([]entity.DbRole, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.DbRole, 0, len(ids))
	for _, id := range ids {
		if role, ok := m.roles[id]; ok {
			out = append(out, role)
		}
	}
	return out, nil
}

func (m *memRepo) ListRoles(_ context.Context) ([]entity.DbRole, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.DbRole, 0, len(m.roles))
	for id := uint(1); id <= m.nextRole; id++ {
		if role, ok := m.roles[id]; ok {
			out = append(out, role)
		}
	}
	return out, nil
}

var _ model.Repository = (*memRepo)(nil)
