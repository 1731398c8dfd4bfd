// Package localdisk implements the blob store on the local filesystem.
// Files live under a root directory and are served under a configured base
// URL, typically by the router's static file handler.
package localdisk

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/paydesk/paydesk_backend/internal/core/ports/platform"
)

type Store struct {
	root    string
	baseURL string
}

// New creates a Store rooted at dir, issuing URLs under baseURL.
func New(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", dir, err)
	}
	return &Store{
		root:    dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

var _ platform.BlobStore = (*Store)(nil)

// fullPath resolves a storage path under the root, rejecting escapes.
func (s *Store) fullPath(path string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	if clean == "/" {
		return "", fmt.Errorf("empty storage path")
	}
	return filepath.Join(s.root, clean), nil
}

func (s *Store) Exists(path string) bool {
	full, err := s.fullPath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && !info.IsDir()
}

func (s *Store) Save(r io.Reader, path string) error {
	full, err := s.fullPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func (s *Store) Copy(srcPath, dstPath string) error {
	src, err := s.fullPath(srcPath)
	if err != nil {
		return err
	}
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer f.Close()
	return s.Save(f, dstPath)
}

func (s *Store) Delete(path string) error {
	full, err := s.fullPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

func (s *Store) URL(path string) string {
	return s.baseURL + "/" + strings.TrimLeft(strings.ReplaceAll(path, "\\", "/"), "/")
}

func (s *Store) PathFromURL(url string) (string, bool) {
	rest, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok {
		return "", false
	}
	// Issued URLs may come back with a query string attached.
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}
