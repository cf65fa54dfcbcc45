package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"coursehub/backend/models"
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	claims map[string]*utils.Claims
}

func (f fakeVerifier) Verify(ctx context.Context, token string) (*utils.Claims, error) {
	if c, ok := f.claims[token]; ok {
		return c, nil
	}
	return nil, utils.Unauthenticated("Token is not valid")
}

type fakeResolver struct {
	roles map[uint]string
}

func (f fakeResolver) ResolveIdentity(ctx context.Context, claims *utils.Claims) (*services.Identity, error) {
	role, ok := f.roles[claims.UserID]
	if !ok {
		return nil, utils.Unauthenticated("Not authorized, user not found")
	}
	return &services.Identity{UserID: claims.UserID, Role: role, Claims: claims}, nil
}

func newAuthApp() *fiber.App {
	verifier := fakeVerifier{claims: map[string]*utils.Claims{
		"admin-token":   {UserID: 1, Role: models.RoleAdmin},
		"student-token": {UserID: 2, Role: models.RoleStudent},
		// Role in the token is stale; the stored role wins.
		"demoted-token": {UserID: 3, Role: models.RoleAdmin},
		"ghost-token":   {UserID: 9, Role: models.RoleAdmin},
	}}
	resolver := fakeResolver{roles: map[uint]string{
		1: models.RoleAdmin,
		2: models.RoleStudent,
		3: models.RoleStudent,
	}}

	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler(utils.DiscardLogger())})
	auth := AuthMiddleware(verifier, resolver)

	whoami := func(c *fiber.Ctx) error {
		id, ok := CurrentIdentity(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"id": id.UserID, "role": id.Role})
	}
	app.Get("/me", auth, whoami)
	app.Get("/admin", auth, AdminMiddleware(), whoami)
	app.Get("/student", auth, StudentMiddleware(), whoami)
	app.Get("/unguarded", AdminMiddleware(), whoami)
	return app
}

func call(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp.StatusCode, body
}

func authed(path, token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuthMiddleware(t *testing.T) {
	app := newAuthApp()

	tests := []struct {
		name    string
		req     *http.Request
		status  int
		message string
	}{
		{"no token", authed("/me", ""), http.StatusUnauthorized, "Not authorized, no token"},
		{"bad token", authed("/me", "nope"), http.StatusUnauthorized, "Token is not valid"},
		{"deleted user", authed("/me", "ghost-token"), http.StatusUnauthorized, "Not authorized, user not found"},
		{"bearer", authed("/me", "student-token"), http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, tt.req)
			assert.Equal(t, tt.status, status)
			if tt.message != "" {
				assert.Equal(t, tt.message, body["message"])
				assert.Equal(t, false, body["success"])
			}
		})
	}
}

func TestAuthMiddlewareCookieFallback(t *testing.T) {
	app := newAuthApp()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "admin-token"})
	status, body := call(t, app, req)

	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["id"])
}

func TestRoleMiddleware(t *testing.T) {
	app := newAuthApp()

	status, _ := call(t, app, authed("/admin", "admin-token"))
	assert.Equal(t, http.StatusOK, status)

	status, body := call(t, app, authed("/admin", "student-token"))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Forbidden - Admin access required", body["message"])

	status, body = call(t, app, authed("/admin", "demoted-token"))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Forbidden - Admin access required", body["message"])

	status, body = call(t, app, authed("/student", "admin-token"))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access forbidden: Only students can enroll and view the courses.", body["message"])

	status, _ = call(t, app, authed("/unguarded", ""))
	assert.Equal(t, http.StatusUnauthorized, status)
}

func uploadRequest(t *testing.T, field, filename, contentType string, size int) *http.Request {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte{'x'}, size))
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("title", "only text"))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func newUploadApp(rule UploadRule) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler(utils.DiscardLogger())})
	app.Post("/upload", UploadMiddleware(rule), func(c *fiber.Ctx) error {
		fh := UploadedFile(c, rule.Field)
		if fh == nil {
			return c.JSON(fiber.Map{"file": ""})
		}
		return c.JSON(fiber.Map{"file": fh.Filename})
	})
	return app
}

func TestUploadMiddleware(t *testing.T) {
	small := AvatarUpload
	small.MaxSize = 1000000

	tests := []struct {
		name    string
		rule    UploadRule
		req     func(t *testing.T) *http.Request
		status  int
		message string
		file    string
	}{
		{
			name:   "accepted image",
			rule:   ThumbnailUpload.Require(),
			req:    func(t *testing.T) *http.Request { return uploadRequest(t, "thumbnail", "a.WEBP", "image/webp", 8) },
			status: http.StatusOK,
			file:   "a.WEBP",
		},
		{
			name:    "wrong extension",
			rule:    AvatarUpload,
			req:     func(t *testing.T) *http.Request { return uploadRequest(t, "avatar", "a.gif", "image/png", 8) },
			status:  http.StatusBadRequest,
			message: "Error: Images only",
		},
		{
			name:    "extension without matching mime",
			rule:    VideoUpload,
			req:     func(t *testing.T) *http.Request { return uploadRequest(t, "video", "clip.mp4", "text/plain", 8) },
			status:  http.StatusBadRequest,
			message: "Error: Videos only",
		},
		{
			name:    "too large",
			rule:    small,
			req:     func(t *testing.T) *http.Request { return uploadRequest(t, "avatar", "a.png", "image/png", 1000001) },
			status:  http.StatusBadRequest,
			message: "File too large. Maximum size is 1MB",
		},
		{
			name:    "missing required",
			rule:    VideoUpload.Require(),
			req:     func(t *testing.T) *http.Request { return uploadRequest(t, "", "", "", 0) },
			status:  http.StatusBadRequest,
			message: "No file uploaded",
		},
		{
			name:   "missing optional",
			rule:   AvatarUpload,
			req:    func(t *testing.T) *http.Request { return uploadRequest(t, "", "", "", 0) },
			status: http.StatusOK,
		},
		{
			name: "json body optional",
			rule: ThumbnailUpload,
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString(`{"title":"x"}`))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
			status: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, newUploadApp(tt.rule), tt.req(t))
			assert.Equal(t, tt.status, status)
			if tt.message != "" {
				assert.Equal(t, tt.message, body["message"])
			}
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.file, body["file"])
			}
		})
	}
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "10MB", humanSize(AvatarUpload.MaxSize))
	assert.Equal(t, "50MB", humanSize(ThumbnailUpload.MaxSize))
	assert.Equal(t, "500MB", humanSize(VideoUpload.MaxSize))
}
