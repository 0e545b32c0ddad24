package localstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrInvalidKey = errors.New("invalid object key")

// Store keeps uploads on local disk and serves them under a URL prefix. It is
// the upload sink when no bucket is configured.
type Store struct {
	dir       string
	urlPrefix string
}

func New(dir string, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &Store{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	target, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", filepath.Dir(target), err)
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}

	return path.Join(s.urlPrefix, filepath.ToSlash(key)), nil
}

// PresignUrl returns local URLs unchanged; they are served as static files.
func (s *Store) PresignUrl(ctx context.Context, fileUrl string) (string, error) {
	return fileUrl, nil
}

func (s *Store) DeleteFile(ctx context.Context, fileUrl string) error {
	key := strings.TrimPrefix(fileUrl, s.urlPrefix)
	target, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) resolve(key string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(key))
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
