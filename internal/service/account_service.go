package service

import (
	"accounts/internal/auth"
	"accounts/internal/entity"
	"accounts/internal/model"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthResult bundles the outcome of a successful sign-in or registration.
type AuthResult struct {
	User      *entity.DbUser
	Token     string
	ExpiresAt time.Time
}

// AccountService orchestrates credential verification, token issuance, and
// account management on top of the repository. It is stateless apart from
// the injected collaborators and safe for concurrent use.
type AccountService struct {
	repo   model.Repository
	tokens *auth.Manager
	roles  *RoleResolver
}

// NewAccountService creates the account service.
func NewAccountService(repo model.Repository, tokens *auth.Manager) *AccountService {
	return &AccountService{
		repo:   repo,
		tokens: tokens,
		roles:  NewRoleResolver(repo),
	}
}

// Roles exposes the role resolver, e.g. for the role catalog endpoint.
func (s *AccountService) Roles() *RoleResolver {
	return s.roles
}

// Signin verifies the credentials and issues a session token carrying the
// user's current role names. Unknown username and wrong password are
// indistinguishable to the caller.
func (s *AccountService) Signin(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		logrus.WithField("username", username).Warn("signin for unknown username")
		return nil, ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		logrus.WithField("username", username).Warn("signin with wrong password")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.Username, user.RoleNames())
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Register validates the request, resolves roles, hashes the password,
// persists the user, and issues a session token. Every check runs before
// the single insert, so a failed registration writes nothing.
func (s *AccountService) Register(ctx context.Context, req entity.RegisterRequest) (*AuthResult, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	password := strings.TrimSpace(req.Password)
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	// Username first, then email; the unique indexes catch the race between
	// two concurrent registrations.
	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	roles, err := s.roles.ResolveRolesOrDefault(ctx, req.RoleIDs)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &entity.DbUser{
		Username:     username,
		Email:        email,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: hash,
		Roles:        roles,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race after the pre-checks. Tell the caller which
			// unique index actually fired.
			if _, lookupErr := s.repo.GetUserByUsername(ctx, username); lookupErr == nil {
				return nil, ErrUsernameTaken
			}
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(user.Username, user.RoleNames())
	if err != nil {
		return nil, err
	}

	logrus.WithField("username", username).Info("registered user")
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Update applies the non-nil fields of the patch to the named user. Email
// and password blanks are ignored rather than clearing the field; a roles
// slice is re-resolved through the lenient policy.
func (s *AccountService) Update(ctx context.Context, username string, patch entity.UserUpdateRequest) (*entity.DbUser, error) {
	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if patch.Email != nil {
		if email := strings.TrimSpace(*patch.Email); email != "" {
			updates["email"] = email
		}
	}
	if patch.DisplayName != nil {
		if name := strings.TrimSpace(*patch.DisplayName); name != "" {
			updates["display_name"] = name
		}
	}
	if patch.Password != nil {
		if password := strings.TrimSpace(*patch.Password); password != "" {
			hash, err := auth.HashPassword(password)
			if err != nil {
				return nil, err
			}
			updates["password_hash"] = hash
		}
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateUser(ctx, user.ID, updates); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrEmailTaken
			}
			return nil, err
		}
	}

	if patch.RoleIDs != nil {
		roles, err := s.roles.ResolveRolesOrDefault(ctx, *patch.RoleIDs)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceUserRoles(ctx, user, roles); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the named user.
func (s *AccountService) Delete(ctx context.Context, username string) error {
	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	logrus.WithField("username", username).Info("deleted user")
	return nil
}

// ChangePassword hashes and stores a new password for the named user. A
// blank password is rejected before any lookup or write.
func (s *AccountService) ChangePassword(ctx context.Context, username, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return ErrPasswordRequired
	}

	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdateUser(ctx, user.ID, map[string]interface{}{"password_hash": hash})
}

// Get returns the named user.
func (s *AccountService) Get(ctx context.Context, username string) (*entity.DbUser, error) {
	return s.findByUsername(ctx, username)
}

// List returns paginated users.
func (s *AccountService) List(ctx context.Context, query *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error) {
	return s.repo.ListUsers(ctx, query)
}

func (s *AccountService) findByUsername(ctx context.Context, username string) (*entity.DbUser, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
