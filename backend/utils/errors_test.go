package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{nil, http.StatusOK},
		{Validation("bad"), http.StatusBadRequest},
		{Conflict("dup"), http.StatusBadRequest},
		{NewError(ErrInvalidCredential, "nope"), http.StatusBadRequest},
		{NewError(ErrInvalidOrExpiredToken, "nope"), http.StatusBadRequest},
		{Unauthenticated("who"), http.StatusUnauthorized},
		{NewError(ErrTokenExpired, "late"), http.StatusUnauthorized},
		{ForbiddenError("no"), http.StatusForbidden},
		{NewError(ErrRoleViolation, "no"), http.StatusForbidden},
		{NotFoundError("gone"), http.StatusNotFound},
		{Upstream("mail down", errors.New("dial tcp")), http.StatusInternalServerError},
		{Internal("boom", errors.New("sql")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFoundError("gone")), http.StatusNotFound},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, StatusFor(tt.err), "%v", tt.err)
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "Course not found", PublicMessage(NotFoundError("Course not found")))
	assert.Equal(t, "Email could not be sent", PublicMessage(Upstream("Email could not be sent", errors.New("535 auth failed"))))
	assert.Equal(t, "Internal server error", PublicMessage(Internal("Could not query database", errors.New("pq: relation missing"))))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("secret detail")))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("Could not save", cause)

	assert.True(t, errors.Is(err, ErrInternal))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "Could not save: disk full", err.Error())
	assert.Equal(t, "dup", Conflict("dup").Error())
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKey(errors.New("UNIQUE constraint failed: users.email")))
	assert.True(t, IsDuplicateKey(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`)))
	assert.False(t, IsDuplicateKey(errors.New("connection refused")))
}
