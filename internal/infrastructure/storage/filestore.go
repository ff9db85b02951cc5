package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bwils5/cloudbooks-manager/internal/core/domain"
)

// FileStore abstracts blob storage for uploads.
type FileStore interface {
	// Save writes the content under the given name and returns the stored
	// name (sanitised, never containing path separators).
	Save(name string, r io.Reader) (string, error)
	// Open returns a reader over the stored file. The caller closes it.
	Open(name string) (io.ReadCloser, error)
	Delete(name string) error
}

// DiskStore is a FileStore backed by a single local directory.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed and returns a DiskStore.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Save(name string, r io.Reader) (string, error) {
	name = sanitize(name)
	if name == "" {
		return "", fmt.Errorf("empty filename")
	}

	f, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return name, nil
}

func (s *DiskStore) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, sanitize(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrFileNotFound
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (s *DiskStore) Delete(name string) error {
	err := os.Remove(filepath.Join(s.root, sanitize(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ErrFileNotFound
		}
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// sanitize strips any directory components so a crafted name cannot escape
// the store root.
func sanitize(name string) string {
	name = filepath.Base(filepath.Clean(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}
