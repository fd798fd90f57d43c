package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
	"github.com/custodia-labs/lectern/internal/runtime"
)

// Ensure adminService implements AdminService
var _ driving.AdminService = (*adminService)(nil)

// adminService implements the AdminService interface
type adminService struct {
	authAdapter driven.AuthAdapter
	keyHash     string
	cache       driven.Cache
	services    *runtime.Services
	factory     driven.BackendFactory
	tokenTTL    time.Duration
	logger      *slog.Logger
}

// NewAdminService creates a new AdminService.
// An empty keyHash disables token issuance.
func NewAdminService(
	authAdapter driven.AuthAdapter,
	keyHash string,
	cache driven.Cache,
	services *runtime.Services,
	factory driven.BackendFactory,
	logger *slog.Logger,
) driving.AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &adminService{
		authAdapter: authAdapter,
		keyHash:     keyHash,
		cache:       cache,
		services:    services,
		factory:     factory,
		tokenTTL:    domain.AdminTokenTTL,
		logger:      logger,
	}
}

// IssueToken verifies the admin key and signs a short lived token
func (s *adminService) IssueToken(ctx context.Context, req domain.TokenRequest) (*domain.TokenResponse, error) {
	if req.Key == "" {
		return nil, fmt.Errorf("%w: key is required", domain.ErrInvalidInput)
	}

	if s.keyHash == "" || !s.authAdapter.VerifyKey(req.Key, s.keyHash) {
		s.logger.Warn("admin token rejected")
		return nil, domain.ErrUnauthorized
	}

	now := time.Now().UTC().Truncate(time.Second)
	claims := &domain.AdminClaims{
		Subject:   domain.RoleAdmin,
		Role:      domain.RoleAdmin,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.tokenTTL),
	}

	token, err := s.authAdapter.GenerateToken(claims)
	if err != nil {
		return nil, fmt.Errorf("sign admin token: %w", err)
	}

	return &domain.TokenResponse{Token: token, ExpiresAt: claims.ExpiresAt}, nil
}

// ValidateToken parses a token and requires the admin role
func (s *adminService) ValidateToken(ctx context.Context, token string) (*domain.AdminClaims, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	claims, err := s.authAdapter.ParseToken(token)
	if err != nil {
		return nil, err
	}

	if claims.IsExpired() {
		return nil, domain.ErrTokenExpired
	}
	if !claims.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// ClearCache removes every cached search, book and summary response
func (s *adminService) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	s.logger.Info("cache cleared")
	return nil
}

// SwitchBackend builds, pings and installs a new summarization backend.
// The current backend stays active when the new one is unreachable.
func (s *adminService) SwitchBackend(ctx context.Context, settings domain.BackendSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	backend, err := s.factory.Create(&settings)
	if err != nil {
		return err
	}

	if err := s.services.ValidateAndSetBackend(ctx, settings.Provider, backend); err != nil {
		s.logger.Warn("backend switch rejected", "provider", settings.Provider, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}

	s.logger.Info("summarization backend switched",
		"provider", settings.Provider,
		"model", backend.Model(),
	)
	return nil
}
