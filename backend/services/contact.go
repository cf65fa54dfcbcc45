package services

import (
	"context"
	"log/slog"
	"strings"

	"coursehub/backend/models"
	"coursehub/backend/utils"

	"gorm.io/gorm"
)

type ContactInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

type ContactService struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewContactService(db *gorm.DB, logger *slog.Logger) *ContactService {
	return &ContactService{db: db, logger: logger}
}

func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = models.NormalizeEmail(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	msg := &models.ContactMessage{Name: in.Name, Email: in.Email, Message: in.Message}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, utils.Internal("Could not save contact message", err)
	}

	s.logger.InfoContext(ctx, "contact message received", "id", msg.ID, "name", msg.Name)
	return msg, nil
}
