package api

import (
	"context"
	"net/http"
	"time"

	"accounts/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ListRoles returns the fixed role catalog.
func (h *HTTPHandler) ListRoles(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "role repository not available")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	roles, err := h.repo.ListRoles(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to list roles")
		InternalError(c, "failed to load roles")
		return
	}

	c.JSON(http.StatusOK, entity.RoleListResponse{Roles: roles})
}
