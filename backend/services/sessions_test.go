package services

import (
	"testing"
	"time"

	"coursehub/backend/models"
	"coursehub/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_IssueAndVerify(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice", models.RoleStudent)

	session, err := f.sessions.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, f.now.Add(time.Hour), session.Claims.ExpiresAtTime().UTC())

	claims, err := f.sessions.Verify(t.Context(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestSessionService_VerifyExpired(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice", models.RoleStudent)

	session, err := f.sessions.Issue(user)
	require.NoError(t, err)

	f.advance(61 * time.Minute)
	_, err = f.sessions.Verify(t.Context(), session.Token)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrTokenExpired)
	assert.NotErrorIs(t, err, utils.ErrUnauthenticated)
}

func TestSessionService_VerifyRejectsGarbage(t *testing.T) {
	f := newFixture(t)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := f.sessions.Verify(t.Context(), token)
		assert.ErrorIs(t, err, utils.ErrUnauthenticated, token)
	}
}

func TestSessionService_Revoke(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice", models.RoleStudent)

	session, err := f.sessions.Issue(user)
	require.NoError(t, err)
	other, err := f.sessions.Issue(user)
	require.NoError(t, err)

	require.NoError(t, f.sessions.Revoke(t.Context(), session.Claims))
	require.NoError(t, f.sessions.Revoke(t.Context(), session.Claims))

	_, err = f.sessions.Verify(t.Context(), session.Token)
	assert.ErrorIs(t, err, utils.ErrUnauthenticated)

	_, err = f.sessions.Verify(t.Context(), other.Token)
	assert.NoError(t, err)
}

func TestSessionService_PurgeExpired(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice", models.RoleStudent)

	session, err := f.sessions.Issue(user)
	require.NoError(t, err)
	require.NoError(t, f.sessions.Revoke(t.Context(), session.Claims))

	purged, err := f.sessions.PurgeExpired(t.Context())
	require.NoError(t, err)
	assert.Zero(t, purged)

	f.advance(2 * time.Hour)
	purged, err = f.sessions.PurgeExpired(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	var count int64
	require.NoError(t, f.db.Model(&models.RevokedToken{}).Count(&count).Error)
	assert.Zero(t, count)
}
