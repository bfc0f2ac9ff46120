package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
)

// LocalStore keeps uploads under root, mirroring the public /uploads/...
// path layout on disk.
type LocalStore struct {
	root    string
	maxSize int64
}

func NewLocalStore(root string, maxSize int64) (*LocalStore, error) {
	if root == "" {
		return nil, errors.New("upload directory is required")
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStore{root: root, maxSize: maxSize}, nil
}

func (s *LocalStore) Save(_ context.Context, upload ports.FileUpload) (ports.StoredFile, error) {
	publicPath, data, err := readUpload(upload, s.maxSize)
	if err != nil {
		return ports.StoredFile{}, err
	}
	target := s.diskPath(publicPath)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return ports.StoredFile{}, fmt.Errorf("create upload directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return ports.StoredFile{}, fmt.Errorf("write upload: %w", err)
	}
	return ports.StoredFile{Path: publicPath, Filename: path.Base(publicPath)}, nil
}

// Delete treats a file that is already gone as deleted.
func (s *LocalStore) Delete(_ context.Context, publicPath string) error {
	if !validPublicPath(publicPath) {
		return fmt.Errorf("%w: invalid upload path %q", domain.ErrValidation, publicPath)
	}
	if err := os.Remove(s.diskPath(publicPath)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

func (s *LocalStore) Open(_ context.Context, publicPath string) (io.ReadCloser, string, error) {
	if !validPublicPath(publicPath) {
		return nil, "", domain.ErrNotFound
	}
	f, err := os.Open(s.diskPath(publicPath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", err
	}
	return f, mime.TypeByExtension(path.Ext(publicPath)), nil
}

func (s *LocalStore) diskPath(publicPath string) string {
	rel := strings.TrimPrefix(publicPath, "/uploads/")
	return filepath.Join(s.root, filepath.FromSlash(rel))
}
