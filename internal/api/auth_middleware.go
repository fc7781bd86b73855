package api

import (
	"net/http"
	"strings"

	"accounts/internal/auth"
	"accounts/internal/entity"

	"github.com/gin-gonic/gin"
)

const currentPrincipalContextKey = "current-principal"

// AuthMiddleware resolves the bearer token into a request principal. A
// missing or misshapen Authorization header is 401; a header that carries a
// token which fails validation is 403. The principal's roles come from the
// token payload and are not re-checked against the store, so a revoked role
// stays effective until the token expires.
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "missing authorization header",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "invalid authorization header format",
			})
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "missing bearer token",
			})
			return
		}

		principal, status := h.tokens.Validate(tokenString)
		switch status {
		case auth.TokenValid:
		case auth.TokenExpired:
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeSessionExpired,
				Message: "token expired",
			})
			return
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeInvalidToken,
				Message: "token invalid",
			})
			return
		}

		c.Set(currentPrincipalContextKey, principal)
		c.Next()
	}
}

// RequireAdmin guards admin-only routes.
func (h *HTTPHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := CurrentPrincipal(c)
		if principal == nil || !principal.HasRole(entity.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeForbidden,
				Message: "admin privileges required",
			})
			return
		}
		c.Next()
	}
}

// CurrentPrincipal returns the authenticated principal from the request
// context, or nil outside AuthMiddleware.
func CurrentPrincipal(c *gin.Context) *auth.Principal {
	value, exists := c.Get(currentPrincipalContextKey)
	if !exists {
		return nil
	}
	principal, ok := value.(*auth.Principal)
	if !ok {
		return nil
	}
	return principal
}
