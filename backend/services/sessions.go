package services

import (
	"context"
	"errors"

	"coursehub/backend/config"
	"coursehub/backend/models"
	"coursehub/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Session is a freshly signed token together with its claims.
type Session struct {
	Token  string
	Claims *utils.Claims
}

type SessionService struct {
	db  *gorm.DB
	cfg *config.Config
	now Clock
}

func NewSessionService(db *gorm.DB, cfg *config.Config) *SessionService {
	return &SessionService{db: db, cfg: cfg, now: systemClock}
}

func (s *SessionService) Issue(user *models.User) (*Session, error) {
	token, claims, err := utils.GenerateJWTToken(user.ID, user.Role, s.cfg, s.now())
	if err != nil {
		return nil, utils.Internal("Could not generate token", err)
	}
	return &Session{Token: token, Claims: claims}, nil
}

// Verify checks signature, expiry and the revocation list.
func (s *SessionService) Verify(ctx context.Context, token string) (*utils.Claims, error) {
	claims, err := utils.ParseJWTToken(token, s.cfg, s.now())
	if err != nil {
		return nil, err
	}

	var revoked models.RevokedToken
	err = s.db.WithContext(ctx).Select("id").Where("id = ?", claims.TokenID()).Take(&revoked).Error
	switch {
	case err == nil:
		return nil, utils.Unauthenticated("Token has been revoked")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return claims, nil
	default:
		return nil, utils.Internal("Could not query database", err)
	}
}

// Revoke keeps the token id on the revocation list until the token would expire anyway.
func (s *SessionService) Revoke(ctx context.Context, claims *utils.Claims) error {
	entry := models.RevokedToken{
		ID:        claims.TokenID(),
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAtTime().UTC(),
		CreatedAt: s.now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
	if err != nil {
		return utils.Internal("Could not revoke token", err)
	}
	return nil
}

func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.RevokedToken{})
	return res.RowsAffected, res.Error
}
