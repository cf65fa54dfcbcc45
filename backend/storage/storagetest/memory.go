// Package storagetest provides an in-memory AssetStore for tests.
package storagetest

import (
	"context"
	"fmt"
	"io"
	"sync"

	"coursehub/backend/models"
	"coursehub/backend/storage"
)

type MemoryStore struct {
	mu      sync.Mutex
	seq     int
	Objects map[string][]byte
	Deleted []string

	// UploadErr / DeleteErr make the next calls fail when set.
	UploadErr error
	DeleteErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Objects: make(map[string][]byte)}
}

func (m *MemoryStore) Upload(ctx context.Context, in storage.UploadInput) (models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UploadErr != nil {
		return models.Asset{}, m.UploadErr
	}

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return models.Asset{}, err
	}

	m.seq++
	id := fmt.Sprintf("%s/%d-%s", in.Folder, m.seq, in.Filename)
	m.Objects[id] = data
	return models.Asset{PublicID: id, SecureURL: "https://assets.test/" + id}, nil
}

func (m *MemoryStore) Delete(ctx context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Objects, publicID)
	m.Deleted = append(m.Deleted, publicID)
	return nil
}

// Has reports whether publicID is currently stored.
func (m *MemoryStore) Has(publicID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Objects[publicID]
	return ok
}

// Seed stores an object directly and returns its asset reference.
func (m *MemoryStore) Seed(publicID string) models.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[publicID] = []byte("seed")
	return models.Asset{PublicID: publicID, SecureURL: "https://assets.test/" + publicID}
}
