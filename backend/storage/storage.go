// Package storage holds the asset store collaborator: the remote home of
// avatars, course thumbnails and lecture videos. Records only keep the
// (public id, url) pair returned by Upload.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"coursehub/backend/config"
	"coursehub/backend/models"

	"github.com/google/uuid"
)

const (
	FolderAvatars    = "avatars"
	FolderThumbnails = "course_thumbnails"
	FolderLectures   = "lectures"
)

type UploadInput struct {
	Folder      string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type AssetStore interface {
	Upload(ctx context.Context, in UploadInput) (models.Asset, error)
	Delete(ctx context.Context, publicID string) error
}

// New builds the store selected by ASSET_DRIVER.
func New(ctx context.Context, cfg *config.Config) (AssetStore, error) {
	switch cfg.AssetDriver {
	case "s3":
		return NewS3Store(ctx, cfg)
	case "local":
		return NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
	default:
		return nil, fmt.Errorf("unknown asset driver %q", cfg.AssetDriver)
	}
}

// objectKey builds folder/yyyy/mm/dd/<uuid><ext>.
func objectKey(folder, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%04d/%02d/%02d/%s%s", folder, now.Year(), now.Month(), now.Day(), uuid.New(), ext)
}

// IsManaged reports whether publicID points at a stored object rather than a placeholder.
func IsManaged(publicID string) bool {
	return publicID != "" && publicID != models.DefaultAvatarID
}
