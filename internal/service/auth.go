package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"foodgram/internal/config"
	"foodgram/internal/model"
	"foodgram/internal/repository"
)

// AuthService issues access tokens and rotates refresh tokens with reuse detection.
type AuthService struct {
	refreshTokenRepo repository.RefreshTokenRepository
	config           *config.Config
	now              func() time.Time
}

func NewAuthService(refreshTokenRepo repository.RefreshTokenRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		refreshTokenRepo: refreshTokenRepo,
		config:           cfg,
		now:              time.Now,
	}
}

// GenerateTokenPair issues a new access token and persists a refresh token.
func (s *AuthService) GenerateTokenPair(ctx context.Context, userID, deviceInfo, ipAddress string) (*model.TokenPair, error) {
	return s.issue(ctx, uuid.NewString(), userID, deviceInfo, ipAddress)
}

// issue stores a refresh token under tokenID and signs a matching access token.
func (s *AuthService) issue(ctx context.Context, tokenID, userID, deviceInfo, ipAddress string) (*model.TokenPair, error) {
	accessToken, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshTokenRaw := uuid.NewString()
	refreshToken := &model.RefreshToken{
		ID:        tokenID,
		UserID:    userID,
		TokenHash: hashToken(refreshTokenRaw),
		ExpiresAt: s.now().Add(time.Duration(s.config.RefreshTokenMaxAge) * time.Second),
	}
	if deviceInfo != "" {
		refreshToken.DeviceInfo = &deviceInfo
	}
	if ipAddress != "" {
		refreshToken.IPAddress = &ipAddress
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenRaw,
		ExpiresIn:    s.config.AccessTokenMaxAge,
	}, nil
}

// RefreshTokens exchanges a refresh token for a new pair and returns the owner.
// The old token is revoked before the new one exists; presenting a token that
// is already revoked, or losing a concurrent rotation of it, revokes every
// token of its owner.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshTokenRaw, deviceInfo, ipAddress string) (*model.TokenPair, string, error) {
	token, err := s.refreshTokenRepo.FindByTokenHash(ctx, hashToken(refreshTokenRaw))
	if err != nil {
		if errors.Is(err, model.ErrRefreshTokenNotFound) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("find refresh token: %w", err)
	}

	if token.ExpiredAt(s.now()) {
		return nil, "", model.ErrRefreshTokenExpired
	}

	nextID := uuid.NewString()
	rotated := false
	if !token.IsRevoked() {
		rotated, err = s.refreshTokenRepo.Revoke(ctx, token.ID, &nextID)
		if err != nil {
			return nil, "", fmt.Errorf("rotate refresh token: %w", err)
		}
	}
	if !rotated {
		if err := s.refreshTokenRepo.RevokeAllForUser(ctx, token.UserID); err != nil {
			log.Printf("[AuthService] Failed to revoke token family: user=%s err=%v", token.UserID, err)
		} else {
			log.Printf("[AuthService] Refresh token reuse detected, revoked all tokens: user=%s", token.UserID)
		}
		return nil, "", model.ErrRefreshTokenReused
	}

	pair, err := s.issue(ctx, nextID, token.UserID, deviceInfo, ipAddress)
	if err != nil {
		return nil, "", err
	}
	return pair, token.UserID, nil
}

// RevokeRefreshToken revokes one refresh token (logout on this device).
func (s *AuthService) RevokeRefreshToken(ctx context.Context, refreshTokenRaw string) error {
	token, err := s.refreshTokenRepo.FindByTokenHash(ctx, hashToken(refreshTokenRaw))
	if err != nil {
		return err
	}
	_, err = s.refreshTokenRepo.Revoke(ctx, token.ID, nil)
	return err
}

// RevokeAllUserTokens revokes every refresh token of userID (logout everywhere).
func (s *AuthService) RevokeAllUserTokens(ctx context.Context, userID string) error {
	return s.refreshTokenRepo.RevokeAllForUser(ctx, userID)
}

func (s *AuthService) generateAccessToken(userID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
