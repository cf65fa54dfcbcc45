// Package services holds the credential store, session issuer, password reset
// flow and course/enrollment state manager behind the HTTP handlers.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"coursehub/backend/storage"
	"coursehub/backend/utils"

	"gorm.io/gorm"
)

type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

// lookupError turns a gorm miss into NotFound with msg and anything else into Internal.
func lookupError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFoundError(msg)
	}
	return utils.Internal("Could not query database", err)
}

// discardAsset removes an uploaded object whose record was never written.
func discardAsset(ctx context.Context, assets storage.AssetStore, logger *slog.Logger, publicID string) {
	if err := assets.Delete(ctx, publicID); err != nil {
		logger.WarnContext(ctx, "could not remove orphaned asset", "public_id", publicID, "error", err)
	}
}
