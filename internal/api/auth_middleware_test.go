package api

import (
	"accounts/internal/auth"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	_, r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/api/users/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
	if apiErr := decodeAPIError(t, w); apiErr.Code != ErrCodeUnauthorized {
		t.Fatalf("expected %s, got %s", ErrCodeUnauthorized, apiErr.Code)
	}
}

func TestAuthMiddlewareRejectsNonBearerScheme(t *testing.T) {
	_, r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Token abcdef")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-bearer scheme, got %d", w.Code)
	}
}

func TestAuthMiddlewareRejectsEmptyBearer(t *testing.T) {
	_, r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer   ")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for empty bearer token, got %d", w.Code)
	}
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	_, r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/api/users/me", "not-a-real-token", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for invalid token, got %d: %s", w.Code, w.Body.String())
	}
	if apiErr := decodeAPIError(t, w); apiErr.Code != ErrCodeInvalidToken {
		t.Fatalf("expected %s, got %s", ErrCodeInvalidToken, apiErr.Code)
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	_, r, _ := newTestServer(t)

	// Same signing key as the handler, lifetime short enough to be expired
	// by the time the request is served.
	shortLived, err := auth.NewManager("test-secret", "test", time.Nanosecond)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}
	token, _, err := shortLived.Issue("alice", []string{"USER"})
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	w := doJSON(t, r, http.MethodGet, "/api/users/me", token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for expired token, got %d: %s", w.Code, w.Body.String())
	}
	if apiErr := decodeAPIError(t, w); apiErr.Code != ErrCodeSessionExpired {
		t.Fatalf("expected %s, got %s", ErrCodeSessionExpired, apiErr.Code)
	}
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	_, r, _ := newTestServer(t)
	token := signupAndSignin(t, r, "alice", "a@x.com", "pw123", nil)

	w := doJSON(t, r, http.MethodGet, "/api/users/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var me struct {
		Username string   `json:"username"`
		Roles    []string `json:"roles"`
	}
	decodeBody(t, w, &me)
	if me.Username != "alice" {
		t.Fatalf("expected alice, got %s", me.Username)
	}
	if len(me.Roles) != 1 || me.Roles[0] != "USER" {
		t.Fatalf("expected roles [USER], got %v", me.Roles)
	}
}

func TestRequireAdminRejectsPlainUser(t *testing.T) {
	_, r, _ := newTestServer(t)
	token := signupAndSignin(t, r, "alice", "a@x.com", "pw123", nil)

	w := doJSON(t, r, http.MethodGet, "/api/users", token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d: %s", w.Code, w.Body.String())
	}
	if apiErr := decodeAPIError(t, w); apiErr.Code != ErrCodeForbidden {
		t.Fatalf("expected %s, got %s", ErrCodeForbidden, apiErr.Code)
	}
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	_, r, repo := newTestServer(t)
	adminRole, err := repo.GetRoleByName(context.Background(), "ADMIN")
	if err != nil {
		t.Fatalf("unexpected error loading ADMIN role: %v", err)
	}
	token := signupAndSignin(t, r, "root", "root@x.com", "pw123", []uint{adminRole.ID})

	w := doJSON(t, r, http.MethodGet, "/api/users", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", w.Code, w.Body.String())
	}
}
