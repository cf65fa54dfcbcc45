package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"coursehub/backend/config"
	"coursehub/backend/mailer"
	"coursehub/backend/models"
	"coursehub/backend/storage"
	"coursehub/backend/utils"

	"gorm.io/gorm"
)

const (
	msgUserExists      = "User already exists"
	msgInvalidLogin    = "Invalid email or password"
	msgAccountInactive = "Your account is inactive. Please contact support."
	msgUserNotFound    = "User not found"
	msgInvalidReset    = "Invalid token or token expired"
)

// Identity is the authenticated caller as seen by the access control gate.
// Role is the stored role at request time, not the one baked into the token.
type Identity struct {
	UserID uint
	Role   string
	Claims *utils.Claims
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin student"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"omitempty,min=6"`
}

type UpdateProfileInput struct {
	Username string `json:"username" form:"username" validate:"omitempty,min=3,max=50"`
	Email    string `json:"email" form:"email" validate:"omitempty,email"`
	Password string `json:"password" form:"password" validate:"omitempty,min=6"`
}

type ResetPasswordInput struct {
	Password string `json:"password" validate:"required,min=6"`
}

type UserService struct {
	db     *gorm.DB
	cfg    *config.Config
	mail   mailer.Mailer
	assets storage.AssetStore
	logger *slog.Logger
	now    Clock
}

func NewUserService(db *gorm.DB, cfg *config.Config, mail mailer.Mailer, assets storage.AssetStore, logger *slog.Logger) *UserService {
	return &UserService{
		db:     db,
		cfg:    cfg,
		mail:   mail,
		assets: assets,
		logger: logger,
		now:    systemClock,
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = models.NormalizeEmail(in.Email)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR username = ?", in.Email, in.Username).
		Count(&count).Error; err != nil {
		return nil, utils.Internal("Could not query database", err)
	}
	if count > 0 {
		return nil, utils.Conflict(msgUserExists)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, utils.Internal("Could not hash password", err)
	}

	role := in.Role
	if role == "" {
		role = models.RoleStudent
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		Avatar:       models.DefaultAvatar(),
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, utils.Conflict(msgUserExists)
		}
		return nil, utils.Internal("Could not create user", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	user.EnrolledCourses = []uint{}
	return user, nil
}

// Authenticate checks the credentials; an unknown email and a wrong password are indistinguishable.
func (s *UserService) Authenticate(ctx context.Context, in LoginInput) (*models.User, error) {
	email := models.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, utils.Validation("Please provide email and password")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewError(utils.ErrInvalidCredential, msgInvalidLogin)
	}
	if err != nil {
		return nil, utils.Internal("Could not query database", err)
	}

	if !utils.CheckPassword(user.PasswordHash, in.Password) {
		return nil, utils.NewError(utils.ErrInvalidCredential, msgInvalidLogin)
	}
	if !user.IsActive {
		return nil, utils.ForbiddenError(msgAccountInactive)
	}

	return &user, nil
}

// GetByID loads a user with the enrolled course ids derived from the enrollments table.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, lookupError(err, msgUserNotFound)
	}

	courseIDs := []uint{}
	if err := s.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("user_id = ?", id).
		Order("course_id").
		Pluck("course_id", &courseIDs).Error; err != nil {
		return nil, utils.Internal("Could not query database", err)
	}
	user.EnrolledCourses = courseIDs

	return &user, nil
}

// ResolveIdentity re-reads the token's user so that deactivation and role
// changes take effect on the next request.
func (s *UserService) ResolveIdentity(ctx context.Context, claims *utils.Claims) (*Identity, error) {
	var user models.User
	err := s.db.WithContext(ctx).Select("id", "role", "is_active").First(&user, claims.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.Unauthenticated("Not authorized, user not found")
	}
	if err != nil {
		return nil, utils.Internal("Could not query database", err)
	}
	if !user.IsActive {
		return nil, utils.ForbiddenError(msgAccountInactive)
	}

	return &Identity{UserID: user.ID, Role: user.Role, Claims: claims}, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uint, in ChangePasswordInput) error {
	if in.CurrentPassword == "" || in.NewPassword == "" {
		return utils.Validation("Current password and new password are required")
	}
	if err := utils.ValidateStruct(in); err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return lookupError(err, msgUserNotFound)
	}

	if !utils.CheckPassword(user.PasswordHash, in.CurrentPassword) {
		return utils.NewError(utils.ErrInvalidCredential, "Current password is incorrect")
	}

	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return utils.Internal("Could not hash password", err)
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("password_hash", hash).Error; err != nil {
		return utils.Internal("Could not update password", err)
	}

	s.logger.InfoContext(ctx, "password changed", "user_id", userID)
	return nil
}

// UpdateProfile applies the non-empty fields and, when avatar is set, replaces the avatar.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput, avatar *storage.UploadInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = models.NormalizeEmail(in.Email)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, lookupError(err, msgUserNotFound)
	}

	if in.Email != "" && in.Email != user.Email {
		if taken, err := s.taken(ctx, "email", in.Email, userID); err != nil {
			return nil, err
		} else if taken {
			return nil, utils.Conflict("Email already in use")
		}
	}
	if in.Username != "" && in.Username != user.Username {
		if taken, err := s.taken(ctx, "username", in.Username, userID); err != nil {
			return nil, err
		} else if taken {
			return nil, utils.Conflict("Username already taken")
		}
	}

	updates := map[string]interface{}{}
	if in.Username != "" {
		updates["username"] = in.Username
	}
	if in.Email != "" {
		updates["email"] = in.Email
	}
	if in.Password != "" {
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, utils.Internal("Could not hash password", err)
		}
		updates["password_hash"] = hash
	}

	oldAvatar := user.Avatar
	var uploaded models.Asset
	if avatar != nil {
		avatar.Folder = storage.FolderAvatars
		asset, err := s.assets.Upload(ctx, *avatar)
		if err != nil {
			return nil, utils.Upstream("Error uploading avatar", err)
		}
		uploaded = asset
		updates["avatar_public_id"] = asset.PublicID
		updates["avatar_secure_url"] = asset.SecureURL
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			if !uploaded.IsZero() {
				discardAsset(ctx, s.assets, s.logger, uploaded.PublicID)
			}
			if utils.IsDuplicateKey(err) {
				return nil, utils.Conflict("Email already in use")
			}
			return nil, utils.Internal("Could not update profile", err)
		}
	}

	if !uploaded.IsZero() {
		s.dropAvatar(ctx, userID, oldAvatar)
	}

	return s.GetByID(ctx, userID)
}

// SetAvatar uploads a new avatar and removes the previous one unless it is the placeholder.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, upload storage.UploadInput) (models.Asset, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return models.Asset{}, lookupError(err, msgUserNotFound)
	}

	upload.Folder = storage.FolderAvatars
	asset, err := s.assets.Upload(ctx, upload)
	if err != nil {
		return models.Asset{}, utils.Upstream("Error uploading avatar", err)
	}

	oldAvatar := user.Avatar
	err = s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"avatar_public_id":  asset.PublicID,
		"avatar_secure_url": asset.SecureURL,
	}).Error
	if err != nil {
		discardAsset(ctx, s.assets, s.logger, asset.PublicID)
		return models.Asset{}, utils.Internal("Could not update avatar", err)
	}

	s.dropAvatar(ctx, userID, oldAvatar)
	return asset, nil
}

func (s *UserService) dropAvatar(ctx context.Context, userID uint, old models.Asset) {
	if !storage.IsManaged(old.PublicID) {
		return
	}
	if err := s.assets.Delete(ctx, old.PublicID); err != nil {
		s.logger.WarnContext(ctx, "could not delete previous avatar",
			"user_id", userID, "public_id", old.PublicID, "error", err)
	}
}

func (s *UserService) taken(ctx context.Context, column, value string, exceptID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where(column+" = ? AND id <> ?", value, exceptID).
		Count(&count).Error
	if err != nil {
		return false, utils.Internal("Could not query database", err)
	}
	return count > 0, nil
}
