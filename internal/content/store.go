package content

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded course content and hands back the storage-relative
// path that gets recorded on the module row.
type Store interface {
	Save(courseID, filename string, r io.Reader) (string, error)
}

// DiskStore writes files under root/course-content/<courseID>/. The write is
// synced to disk before the relative path is returned, so a module row only
// ever references a fully written file; a crash mid-upload leaves at worst an
// orphaned file, never a dangling row.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{root: root}
}

func (s *DiskStore) Save(courseID, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	relPath := filepath.ToSlash(filepath.Join("course-content", courseID, uuid.NewString()+ext))
	absPath := filepath.Join(s.root, filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("create content dir: %w", err)
	}

	f, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("create content file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(absPath)
		return "", fmt.Errorf("write content file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(absPath)
		return "", fmt.Errorf("sync content file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(absPath)
		return "", fmt.Errorf("close content file: %w", err)
	}

	return relPath, nil
}
