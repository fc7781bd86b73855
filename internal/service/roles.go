package service

import (
	"accounts/internal/entity"
	"accounts/internal/model"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// RoleResolver maps role references onto the fixed role catalog.
type RoleResolver struct {
	repo model.Repository
}

// NewRoleResolver creates a resolver backed by the given repository.
func NewRoleResolver(repo model.Repository) *RoleResolver {
	return &RoleResolver{repo: repo}
}

// ResolveByName looks up a role by one of the known name constants. It fails
// with ErrRoleNotFound if the backing record is missing.
func (r *RoleResolver) ResolveByName(ctx context.Context, name string) (*entity.DbRole, error) {
	role, err := r.repo.GetRoleByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, name)
		}
		return nil, err
	}
	return role, nil
}

// ResolveByNameString parses raw into the closed role enumeration and then
// resolves it. The parse is case-sensitive: an unknown spelling fails with
// ErrInvalidRole, a known spelling without a backing record fails with
// ErrRoleNotFound.
func (r *RoleResolver) ResolveByNameString(ctx context.Context, raw string) (*entity.DbRole, error) {
	if !entity.IsValidRoleName(raw) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, raw)
	}
	return r.ResolveByName(ctx, raw)
}

// ResolveRolesOrDefault applies the lenient-filter policy for registration
// and updates: role ids that are zero or do not resolve are silently
// dropped, and if nothing survives the default USER role is assigned. Input
// order is preserved for the survivors.
func (r *RoleResolver) ResolveRolesOrDefault(ctx context.Context, ids []uint) ([]entity.DbRole, error) {
	resolved := make([]entity.DbRole, 0, len(ids))

	if len(ids) > 0 {
		wanted := make([]uint, 0, len(ids))
		for _, id := range ids {
			if id != 0 {
				wanted = append(wanted, id)
			}
		}
		found, err := r.repo.FindRolesByIDs(ctx, wanted)
		if err != nil {
			return nil, err
		}
		byID := make(map[uint]entity.DbRole, len(found))
		for _, role := range found {
			byID[role.ID] = role
		}
		seen := make(map[uint]struct{}, len(wanted))
		for _, id := range wanted {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if role, ok := byID[id]; ok {
				resolved = append(resolved, role)
			}
		}
	}

	if len(resolved) == 0 {
		defaultRole, err := r.ResolveByName(ctx, entity.RoleUser)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, *defaultRole)
	}

	return resolved, nil
}
