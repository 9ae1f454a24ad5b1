package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore saves objects to disk under a base directory. Download links
// point at publicBaseURL, which is expected to serve basePath statically.
type FileStore struct {
	basePath      string
	publicBaseURL string
}

// NewFileStore creates the base directory if missing.
func NewFileStore(basePath, publicBaseURL string) (*FileStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{basePath: basePath, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

func (f *FileStore) target(key string) (string, string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", "", err
	}
	return key, filepath.Join(f.basePath, filepath.FromSlash(key)), nil
}

// Put writes the object, replacing any previous content.
func (f *FileStore) Put(_ context.Context, key string, r io.Reader, size int64, _ string) error {
	_, target, err := f.target(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer out.Close()
	src := r
	if size >= 0 {
		src = io.LimitReader(r, size)
	}
	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// PresignGet returns the public URL of the object. Local files carry no
// signature, so expiry is ignored.
func (f *FileStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	key, target, err := f.target(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(target); err != nil {
		return "", fmt.Errorf("stat object: %w", err)
	}
	escaped := make([]string, 0)
	for _, part := range strings.Split(key, "/") {
		escaped = append(escaped, url.PathEscape(part))
	}
	return f.publicBaseURL + "/" + strings.Join(escaped, "/"), nil
}

// Delete removes an object; missing objects are not an error.
func (f *FileStore) Delete(_ context.Context, key string) error {
	_, target, err := f.target(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}
