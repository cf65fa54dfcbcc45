package middleware

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// UploadRule describes what a single multipart file field may contain.
type UploadRule struct {
	Field      string
	MaxSize    int64
	Extensions []string
	MIMETypes  []string
	Required   bool
	Rejection  string
}

var (
	AvatarUpload = UploadRule{
		Field:      "avatar",
		MaxSize:    10000000,
		Extensions: []string{".jpg", ".jpeg", ".png"},
		MIMETypes:  []string{"image/jpeg", "image/jpg", "image/png"},
		Rejection:  "Images only",
	}
	ThumbnailUpload = UploadRule{
		Field:      "thumbnail",
		MaxSize:    50000000,
		Extensions: []string{".jpg", ".jpeg", ".png", ".webp"},
		MIMETypes:  []string{"image/jpeg", "image/jpg", "image/png", "image/webp"},
		Rejection:  "Images only",
	}
	VideoUpload = UploadRule{
		Field:      "video",
		MaxSize:    500 << 20,
		Extensions: []string{".mp4", ".mkv", ".mov", ".avi"},
		MIMETypes: []string{
			"video/mp4",
			"video/x-matroska",
			"video/quicktime",
			"video/x-msvideo",
			"video/avi",
			"video/msvideo",
		},
		Rejection: "Videos only",
	}
)

// Require returns a copy of the rule that rejects requests without the file.
func (r UploadRule) Require() UploadRule {
	r.Required = true
	return r
}

// UploadMiddleware checks the rule's file field before the handler runs.
// An accepted file header is left in Locals for UploadedFile.
func UploadMiddleware(rule UploadRule) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile(rule.Field)
		if err != nil || fh == nil {
			if rule.Required {
				return utils.Validation("No file uploaded")
			}
			return c.Next()
		}

		if err := rule.check(fh); err != nil {
			return err
		}

		c.Locals(uploadKey(rule.Field), fh)
		return c.Next()
	}
}

// UploadedFile returns the file accepted by UploadMiddleware for field, or nil.
func UploadedFile(c *fiber.Ctx, field string) *multipart.FileHeader {
	fh, _ := c.Locals(uploadKey(field)).(*multipart.FileHeader)
	return fh
}

func (r UploadRule) check(fh *multipart.FileHeader) error {
	if fh.Size > r.MaxSize {
		return utils.Validation(fmt.Sprintf("File too large. Maximum size is %s", humanSize(r.MaxSize)))
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(fh.Header.Get(fiber.HeaderContentType), ";")[0]))
	if !contains(r.Extensions, ext) || !contains(r.MIMETypes, contentType) {
		return utils.Validation("Error: " + r.Rejection)
	}
	return nil
}

func uploadKey(field string) string {
	return "upload:" + field
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func humanSize(n int64) string {
	if n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	return fmt.Sprintf("%dMB", n/1000000)
}
