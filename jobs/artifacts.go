package jobs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ArtifactStore keeps finished export files on local disk. Each artifact
// lands in its own directory keyed by a random id, so identical filenames
// from repeated exports never collide.
type ArtifactStore struct {
	root string
}

// NewArtifactStore ensures the root directory exists.
func NewArtifactStore(root string) (*ArtifactStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("jobs: create artifact dir: %w", err)
	}
	return &ArtifactStore{root: root}, nil
}

// Save writes data under a fresh artifact id and returns the relative path.
func (s *ArtifactStore) Save(filename string, data []byte) (string, error) {
	id := uuid.NewString()
	dir := filepath.Join(s.root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("jobs: create artifact dir: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("jobs: write artifact: %w", err)
	}
	return filepath.Join(id, filename), nil
}

// Open resolves a stored artifact path relative to the root.
func (s *ArtifactStore) Open(rel string) (string, error) {
	path := filepath.Join(s.root, filepath.Clean(rel))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("jobs: artifact %s: %w", rel, err)
	}
	return path, nil
}
