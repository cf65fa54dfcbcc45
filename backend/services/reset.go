package services

import (
	"context"
	"errors"
	"strings"

	"coursehub/backend/mailer"
	"coursehub/backend/models"
	"coursehub/backend/utils"

	"gorm.io/gorm"
)

// RequestPasswordReset stores a hashed one-time token and mails the plaintext
// link. Unknown emails return nil so callers cannot probe for accounts.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	email = models.NormalizeEmail(email)
	if email == "" {
		return utils.Validation("Email is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.InfoContext(ctx, "password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return utils.Internal("Could not query database", err)
	}

	plain, hash, err := utils.NewResetToken()
	if err != nil {
		return utils.Internal("Could not generate reset token", err)
	}
	expires := s.now().Add(s.cfg.ResetTokenTTL)

	err = s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"reset_token_hash":    hash,
		"reset_token_expires": expires,
	}).Error
	if err != nil {
		return utils.Internal("Could not store reset token", err)
	}

	resetURL := strings.TrimRight(s.cfg.ClientURL, "/") + "/resetpassword/" + plain
	if err := s.mail.Send(ctx, mailer.PasswordResetEmail(user.Email, resetURL)); err != nil {
		s.clearResetToken(ctx, user.ID)
		return utils.Upstream("Email could not be sent", err)
	}

	s.logger.InfoContext(ctx, "password reset mail sent", "user_id", user.ID)
	return nil
}

// CompletePasswordReset redeems a token that has not yet expired and clears it.
func (s *UserService) CompletePasswordReset(ctx context.Context, token string, in ResetPasswordInput) error {
	if err := utils.ValidateStruct(in); err != nil {
		return err
	}
	if token == "" {
		return utils.NewError(utils.ErrInvalidOrExpiredToken, msgInvalidReset)
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("reset_token_hash = ? AND reset_token_expires > ?", utils.HashResetToken(token), s.now()).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NewError(utils.ErrInvalidOrExpiredToken, msgInvalidReset)
	}
	if err != nil {
		return utils.Internal("Could not query database", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return utils.Internal("Could not hash password", err)
	}

	err = s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"password_hash":       hash,
		"reset_token_hash":    "",
		"reset_token_expires": nil,
	}).Error
	if err != nil {
		return utils.Internal("Could not reset password", err)
	}

	s.logger.InfoContext(ctx, "password reset completed", "user_id", user.ID)
	return nil
}

// PurgeExpiredResetTokens clears reset material whose window has passed.
func (s *UserService) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("reset_token_expires IS NOT NULL AND reset_token_expires <= ?", s.now()).
		Updates(map[string]interface{}{
			"reset_token_hash":    "",
			"reset_token_expires": nil,
		})
	return res.RowsAffected, res.Error
}

func (s *UserService) clearResetToken(ctx context.Context, userID uint) {
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"reset_token_hash":    "",
		"reset_token_expires": nil,
	}).Error
	if err != nil {
		s.logger.WarnContext(ctx, "could not clear reset token", "user_id", userID, "error", err)
	}
}
