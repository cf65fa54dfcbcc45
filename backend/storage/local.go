package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"coursehub/backend/models"
)

// LocalStore writes assets under a directory served statically at baseURL.
type LocalStore struct {
	dir     string
	baseURL string
	now     func() time.Time
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Upload(ctx context.Context, in UploadInput) (models.Asset, error) {
	if err := ctx.Err(); err != nil {
		return models.Asset{}, err
	}

	key := objectKey(in.Folder, in.Filename, s.now())
	dst := filepath.Join(s.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return models.Asset{}, err
	}

	f, err := os.Create(dst)
	if err != nil {
		return models.Asset{}, err
	}
	defer f.Close()

	if _, err := io.Copy(f, in.Body); err != nil {
		_ = os.Remove(dst)
		return models.Asset{}, err
	}

	return models.Asset{PublicID: key, SecureURL: s.baseURL + "/" + key}, nil
}

func (s *LocalStore) Delete(ctx context.Context, publicID string) error {
	if !IsManaged(publicID) {
		return nil
	}
	if strings.Contains(publicID, "..") {
		return fmt.Errorf("invalid asset id %q", publicID)
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(publicID)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
