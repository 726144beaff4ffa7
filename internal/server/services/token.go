// Package services contains server-side business logic. This file
// implements TokenService: minting, validating, and revoking session
// tokens. A token is only valid while its exact string is present in the
// account's active-token table, so issuance and revocation are persisted
// mutations, not just signing operations.
package services

import (
	"database/sql"
	"errors"
	"time"

	"context"

	"github.com/dmitrijs2005/taskit/internal/common"
	"github.com/dmitrijs2005/taskit/internal/server/auth"
	"github.com/dmitrijs2005/taskit/internal/server/config"
	"github.com/dmitrijs2005/taskit/internal/server/models"
	"github.com/dmitrijs2005/taskit/internal/server/repositories/repomanager"
)

// TokenService issues and validates session tokens. Multiple tokens per
// account are supported (one per device/session).
type TokenService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
}

// NewTokenService constructs a TokenService using repositories and server config.
func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *TokenService {
	return &TokenService{
		db:            db,
		repomanager:   m,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
	}
}

// Issue signs a new token for userID and appends it to the account's
// active list. The append is part of issuance: a signed-but-unsaved token
// would never validate.
func (s *TokenService) Issue(ctx context.Context, userID string) (string, error) {
	token, err := auth.GenerateToken(userID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", common.ErrorInternal
	}

	repo := s.repomanager.SessionTokens(s.db)
	if err := repo.Add(ctx, userID, token); err != nil {
		return "", common.ErrorInternal
	}

	return token, nil
}

// Validate checks the signature, loads the referenced account, and
// confirms the token string is still active for it. All three must hold.
// A forged token, a revoked token, and a token signed for a deleted
// account fail identically with common.ErrInvalidToken.
func (s *TokenService) Validate(ctx context.Context, token string) (*models.User, error) {
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}

	active, err := s.repomanager.SessionTokens(s.db).Exists(ctx, userID, token)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !active {
		return nil, common.ErrInvalidToken
	}

	return user, nil
}

// Revoke logs out a single session by removing exactly the matching token.
func (s *TokenService) Revoke(ctx context.Context, userID, token string) error {
	if err := s.repomanager.SessionTokens(s.db).Delete(ctx, userID, token); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// RevokeAll logs out every session of the account.
func (s *TokenService) RevokeAll(ctx context.Context, userID string) error {
	if err := s.repomanager.SessionTokens(s.db).DeleteAllForUser(ctx, userID); err != nil {
		return common.ErrorInternal
	}
	return nil
}
