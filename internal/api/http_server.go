package api

import (
	"accounts/internal/auth"
	"accounts/internal/config"
	"accounts/internal/model"
	"accounts/internal/service"
	"accounts/internal/storage"
	"strings"
	"time"
)

// HTTPHandler bundles the collaborators behind the HTTP surface.
type HTTPHandler struct {
	cfg               config.Config
	repo              model.Repository
	storage           storage.Storage
	storagePublicBase string
	tokens            *auth.Manager

	accounts *service.AccountService
}

// NewHTTPHandler creates the HTTP handler and its token manager.
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage) (*HTTPHandler, error) {
	lifetime := time.Duration(cfg.JWTExpirationMinutes) * time.Minute
	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, lifetime)
	if err != nil {
		return nil, err
	}

	return &HTTPHandler{
		cfg:               cfg,
		repo:              repo,
		storage:           store,
		storagePublicBase: normalisePublicBase(cfg.StoragePublicBaseURL),
		tokens:            tokens,
		accounts:          service.NewAccountService(repo, tokens),
	}, nil
}

func normalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/files"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}
