package memory

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/storage"
)

// Storage keeps uploaded images in memory. Intended for development and
// tests only.
type Storage struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// New creates an empty in-memory storage.
func New() *Storage {
	return &Storage{files: make(map[string][]byte)}
}

func (s *Storage) Upload(_ context.Context, filename string, content io.Reader) (*storage.UploadResult, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("read upload content: %w", err)
	}

	publicID := uuid.NewString()

	s.mu.Lock()
	s.files[publicID] = data
	s.mu.Unlock()

	return &storage.UploadResult{
		PublicID: publicID,
		URL:      fmt.Sprintf("memory://%s/%s", publicID, filename),
	}, nil
}

func (s *Storage) Destroy(_ context.Context, publicID string) error {
	s.mu.Lock()
	delete(s.files, publicID)
	s.mu.Unlock()
	return nil
}

// Get returns the stored content, used by tests.
func (s *Storage) Get(publicID string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[publicID]
	return data, ok
}

// Len returns how many images are stored.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
