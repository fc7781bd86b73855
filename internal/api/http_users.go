package api

import (
	"accounts/internal/entity"
	"accounts/internal/service"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func (h *HTTPHandler) ListUsers(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "user repository not available")
		return
	}

	var query entity.UserQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}
	if query.PageSize > 100 {
		query.PageSize = 100
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	users, meta, err := h.accounts.List(ctx, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list users")
		InternalError(c, "failed to load users")
		return
	}

	response := entity.UserListResponse{
		Users: make([]entity.UserSummary, 0, len(users)),
		Meta:  meta,
	}
	for idx := range users {
		response.Users = append(response.Users, makeUserSummary(&users[idx]))
	}

	c.JSON(http.StatusOK, response)
}

func (h *HTTPHandler) GetUser(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		BadRequest(c, ErrCodeInvalidRequest, "invalid username")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.accounts.Get(ctx, username)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			NotFound(c, ErrCodeUserNotFound, "user not found")
			return
		}
		logrus.WithError(err).WithField("username", username).Error("failed to load user")
		InternalError(c, "failed to load user")
		return
	}

	c.JSON(http.StatusOK, makeUserSummary(user))
}

func (h *HTTPHandler) UpdateUser(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		BadRequest(c, ErrCodeInvalidRequest, "invalid username")
		return
	}

	var req entity.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	updated, err := h.accounts.Update(ctx, username, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			NotFound(c, ErrCodeUserNotFound, "user not found")
		case errors.Is(err, service.ErrEmailTaken):
			BadRequest(c, ErrCodeEmailExists, "email already registered")
		case errors.Is(err, service.ErrRoleNotFound):
			InternalError(c, "role catalog not initialised")
		default:
			logrus.WithError(err).WithField("username", username).Error("failed to update user")
			InternalError(c, "failed to update user")
		}
		return
	}

	c.JSON(http.StatusOK, makeUserSummary(updated))
}

func (h *HTTPHandler) DeleteUser(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		BadRequest(c, ErrCodeInvalidRequest, "invalid username")
		return
	}

	principal := CurrentPrincipal(c)
	if principal != nil && principal.Username == username {
		BadRequest(c, ErrCodeInvalidRequest, "cannot delete current user")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.accounts.Delete(ctx, username); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			NotFound(c, ErrCodeUserNotFound, "user not found")
			return
		}
		logrus.WithError(err).WithField("username", username).Error("failed to delete user")
		InternalError(c, "failed to delete user")
		return
	}

	c.Status(http.StatusNoContent)
}

// ChangePassword sets a new password for the named user. A user may change
// their own password; changing anyone else's requires the ADMIN role.
func (h *HTTPHandler) ChangePassword(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		BadRequest(c, ErrCodeInvalidRequest, "invalid username")
		return
	}

	principal := CurrentPrincipal(c)
	if principal == nil || (principal.Username != username && !principal.HasRole(entity.RoleAdmin)) {
		Forbidden(c, "cannot change another user's password")
		return
	}

	var req entity.PasswordUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.accounts.ChangePassword(ctx, username, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordRequired):
			MissingField(c, "password")
		case errors.Is(err, service.ErrUserNotFound):
			NotFound(c, ErrCodeUserNotFound, "user not found")
		default:
			logrus.WithError(err).WithField("username", username).Error("failed to change password")
			InternalError(c, "failed to change password")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "password updated"})
}
