package model

import (
	"accounts/internal/auth"
	"accounts/internal/config"
	"accounts/internal/entity"
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SeedRoles creates any missing rows of the fixed role catalog. Existing
// rows are left untouched; the catalog is never edited at runtime.
func SeedRoles(ctx context.Context, repo Repository) error {
	if repo == nil {
		return nil
	}

	for _, name := range entity.AllRoleNames() {
		_, err := repo.GetRoleByName(ctx, name)
		switch {
		case err == nil:
			continue
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := repo.CreateRole(ctx, &entity.DbRole{Name: name}); err != nil {
				return err
			}
			logrus.WithField("role", name).Info("seeded role")
		default:
			return err
		}
	}
	return nil
}

// SeedAdminUser creates the bootstrap administrator account if no user with
// the configured admin email exists yet.
func SeedAdminUser(ctx context.Context, repo Repository, cfg config.Config) error {
	if repo == nil {
		return nil
	}

	email := strings.TrimSpace(cfg.AdminEmail)
	password := strings.TrimSpace(cfg.AdminPassword)
	if email == "" || password == "" {
		return nil
	}

	_, err := repo.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	adminRole, err := repo.GetRoleByName(ctx, entity.RoleAdmin)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	adminUser := &entity.DbUser{
		Username:     cfg.AdminUsername,
		Email:        email,
		DisplayName:  cfg.AdminUsername,
		PasswordHash: hash,
		Roles:        []entity.DbRole{*adminRole},
	}
	if err := repo.CreateUser(ctx, adminUser); err != nil {
		return err
	}

	logrus.WithField("username", cfg.AdminUsername).Info("seeded admin user")
	return nil
}
