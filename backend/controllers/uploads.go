package controllers

import (
	"strconv"

	"coursehub/backend/middleware"
	"coursehub/backend/storage"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// openUpload opens the file accepted by the upload middleware. It returns a
// nil input when the field was not sent; release must always be called.
func openUpload(c *fiber.Ctx, field string) (in *storage.UploadInput, release func(), err error) {
	release = func() {}

	fh := middleware.UploadedFile(c, field)
	if fh == nil {
		return nil, release, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, release, utils.Internal("Could not read uploaded file", err)
	}

	in = &storage.UploadInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}
	return in, func() { _ = f.Close() }, nil
}

func courseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("courseId"), 10, 64)
	if err != nil || id == 0 {
		return 0, utils.Validation("Invalid course ID")
	}
	return uint(id), nil
}

func currentUserID(c *fiber.Ctx) (uint, error) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return 0, utils.Unauthenticated("Not authorized, no token")
	}
	return identity.UserID, nil
}
