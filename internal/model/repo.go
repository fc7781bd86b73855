package model

import (
	"accounts/internal/entity"
	"context"
)

// Repository defines the persistence contract for users and roles. Lookups
// return gorm.ErrRecordNotFound for absent rows; callers translate that into
// their own error kinds.
type Repository interface {
	// Users
	CreateUser(ctx context.Context, user *entity.DbUser) error
	UpdateUser(ctx context.Context, id uint, updates map[string]interface{}) error
	ReplaceUserRoles(ctx context.Context, user *entity.DbUser, roles []entity.DbRole) error
	GetUserByUsername(ctx context.Context, username string) (*entity.DbUser, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error)
	DeleteUser(ctx context.Context, id uint) error
	CountUsers(ctx context.Context) (int64, error)

	// Roles
	CreateRole(ctx context.Context, role *entity.DbRole) error
	GetRoleByName(ctx context.Context, name string) (*entity.DbRole, error)
	GetRoleByID(ctx context.Context, id uint) (*entity.DbRole, error)
	FindRolesByIDs(ctx context.Context, ids []uint) ([]entity.DbRole, error)
	ListRoles(ctx context.Context) ([]entity.DbRole, error)
}
