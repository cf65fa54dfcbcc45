package services

import (
	"strings"
	"testing"
	"time"

	"coursehub/backend/config"
	"coursehub/backend/mailer/mailertest"
	"coursehub/backend/models"
	"coursehub/backend/storage"
	"coursehub/backend/storage/storagetest"
	"coursehub/backend/utils"
	"coursehub/backend/utils/dbtest"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	cfg      *config.Config
	db       *gorm.DB
	store    *storagetest.MemoryStore
	mail     *mailertest.Recorder
	now      time.Time
	sessions *SessionService
	users    *UserService
	courses  *CourseService
	contact  *ContactService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := dbtest.Config()
	f := &fixture{
		cfg:   cfg,
		db:    dbtest.Open(t, cfg),
		store: storagetest.NewMemoryStore(),
		mail:  &mailertest.Recorder{},
		now:   time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	logger := utils.DiscardLogger()

	f.sessions = NewSessionService(f.db, cfg)
	f.sessions.now = clock
	f.users = NewUserService(f.db, cfg, f.mail, f.store, logger)
	f.users.now = clock
	f.courses = NewCourseService(f.db, f.store, logger)
	f.courses.now = clock
	f.contact = NewContactService(f.db, logger)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) register(t *testing.T, username, role string) *models.User {
	t.Helper()
	user, err := f.users.Register(t.Context(), RegisterInput{
		Username: username,
		Email:    username + "@x.com",
		Password: "secret1",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) createCourse(t *testing.T, title string) *models.Course {
	t.Helper()
	course, err := f.courses.Create(t.Context(), CourseInput{
		Title:       title,
		Description: "About " + title,
		Category:    "science",
		CreatedBy:   "1",
	}, image("thumb.png"))
	require.NoError(t, err)
	return course
}

func image(name string) *storage.UploadInput {
	return &storage.UploadInput{Filename: name, ContentType: "image/png", Size: 4, Body: strings.NewReader("data")}
}

func video(name string) *storage.UploadInput {
	return &storage.UploadInput{Filename: name, ContentType: "video/mp4", Size: 4, Body: strings.NewReader("data")}
}
