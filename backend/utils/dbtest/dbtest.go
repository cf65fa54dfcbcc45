// Package dbtest opens throwaway in-memory SQLite databases with the full schema.
package dbtest

import (
	"testing"
	"time"

	"coursehub/backend/config"
	"coursehub/backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Config returns a configuration pointing at a fresh in-memory database.
func Config() *config.Config {
	return &config.Config{
		AppEnv:        "test",
		DBDriver:      "sqlite",
		DatabaseURL:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
		ResetTokenTTL: 10 * time.Minute,
		ClientURL:     "http://localhost:5173",
		MailProvider:  "smtp",
		AssetDriver:   "local",
	}
}

// Open migrates a new database for cfg and closes it when the test ends.
func Open(t *testing.T, cfg *config.Config) *gorm.DB {
	t.Helper()

	db, err := utils.InitDB(cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}
