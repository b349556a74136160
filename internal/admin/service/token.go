package service

import (
	"context"

	"github.com/attendly/attendance-backend/internal/admin/repository"
	"github.com/attendly/attendance-backend/pkg/httputil"
	"github.com/attendly/attendance-backend/pkg/logger"
)

// StoreTokenRequest registers a device for push notifications
type StoreTokenRequest struct {
	UserID string `json:"userId" validate:"required"`
	Token  string `json:"token" validate:"required"`
}

// TokenService stores device tokens
type TokenService struct {
	tokenRepo *repository.DeviceTokenRepository
	logger    *logger.Logger
}

// NewTokenService creates a new token service
func NewTokenService(tokenRepo *repository.DeviceTokenRepository, log *logger.Logger) *TokenService {
	return &TokenService{
		tokenRepo: tokenRepo,
		logger:    log,
	}
}

// Store replaces the user's token
func (s *TokenService) Store(ctx context.Context, req *StoreTokenRequest) error {
	if err := httputil.Validate(req); err != nil {
		return err
	}

	if err := s.tokenRepo.Store(ctx, req.UserID, req.Token); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", req.UserID).Msg("device token stored")
	return nil
}
