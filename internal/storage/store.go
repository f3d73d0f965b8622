// Package storage persists uploaded attachments on local disk and hands
// back the URL they are served under.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrUnsupportedType = errors.New("unsupported file type")

type Store struct {
	root    string
	baseURL string
}

// New creates the media root if it does not exist yet.
func New(root, baseURL string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating media root: %w", err)
	}
	return &Store{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the on-disk media directory, for mounting a file server.
func (s *Store) Root() string { return s.root }

// Save writes the upload under subdir and returns its public URL. The file
// extension must be in the allowed set. Saved names carry a nanosecond
// timestamp prefix so repeated uploads of the same filename never collide.
func (s *Store) Save(subdir, filename string, src io.Reader, allowedExts []string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !extAllowed(ext, allowedExts) {
		return "", ErrUnsupportedType
	}

	dir := filepath.Join(s.root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}

	name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("writing upload file: %w", err)
	}
	return s.baseURL + "/" + subdir + "/" + name, nil
}

func extAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
