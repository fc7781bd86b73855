package api

import (
	"accounts/internal/entity"
	"accounts/internal/service"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Signin authenticates username/password and returns a session token. The
// failure response never reveals whether the username or the password was
// wrong.
func (h *HTTPHandler) Signin(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "user repository not available")
		return
	}

	var req entity.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result, err := h.accounts.Signin(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			ErrorResponse(c, http.StatusForbidden, ErrCodeInvalidCredentials, "invalid username or password")
			return
		}
		logrus.WithError(err).Error("signin failed")
		InternalError(c, "failed to sign in")
		return
	}

	c.JSON(http.StatusOK, makeAuthResponse(result))
}

// Register creates a new account and signs it in.
func (h *HTTPHandler) Register(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "user repository not available")
		return
	}

	var req entity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result, err := h.accounts.Register(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			BadRequest(c, ErrCodeMissingField, "username, email and password are required")
		case errors.Is(err, service.ErrUsernameTaken):
			BadRequest(c, ErrCodeUsernameExists, "username already exists")
		case errors.Is(err, service.ErrEmailTaken):
			BadRequest(c, ErrCodeEmailExists, "email already registered")
		case errors.Is(err, service.ErrRoleNotFound):
			InternalError(c, "role catalog not initialised")
		default:
			logrus.WithError(err).Error("failed to register user")
			InternalError(c, "failed to register user")
		}
		return
	}

	c.JSON(http.StatusCreated, makeAuthResponse(result))
}

// Me returns the principal resolved from the bearer token.
func (h *HTTPHandler) Me(c *gin.Context) {
	principal := CurrentPrincipal(c)
	if principal == nil {
		Unauthorized(c, "authentication required")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username": principal.Username,
		"roles":    principal.Roles,
	})
}

func makeAuthResponse(result *service.AuthResult) entity.AuthResponse {
	if result == nil || result.User == nil {
		return entity.AuthResponse{}
	}
	return entity.AuthResponse{
		ID:        result.User.ID,
		Email:     result.User.Email,
		Roles:     result.User.RoleNames(),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	}
}

func makeUserSummary(user *entity.DbUser) entity.UserSummary {
	if user == nil {
		return entity.UserSummary{}
	}
	return entity.UserSummary{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Roles:       user.RoleNames(),
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
