// Package local stores uploads on the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const storageType = "local"

// Storage keeps every object as a flat file under basePath.
type Storage struct {
	basePath string
}

// New ensures basePath exists and returns the adapter.
func New(basePath string) (*Storage, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("local storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

// PutObject writes data to disk, removing the partial file when the copy fails.
func (s *Storage) PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) error {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(f, contextReader{ctx: ctx, r: data}); err != nil {
		_ = f.Close()
		_ = os.Remove(fullPath)
		return fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(fullPath)
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}

func (s *Storage) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", key, err)
	}
	return f, nil
}

func (s *Storage) DeleteObject(ctx context.Context, key string) error {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (s *Storage) ObjectExists(ctx context.Context, key string) (bool, error) {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat file: %w", err)
	}
	return !info.IsDir(), nil
}

// Ping verifies the base directory is still present.
func (s *Storage) Ping(ctx context.Context) error {
	info, err := os.Stat(s.basePath)
	if err != nil {
		return fmt.Errorf("stat storage directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", s.basePath)
	}
	return nil
}

func (s *Storage) Type() string {
	return storageType
}

// BasePath returns the root directory of the adapter.
func (s *Storage) BasePath() string {
	return s.basePath
}

// keyToPath rejects keys that would resolve outside basePath.
func (s *Storage) keyToPath(key string) (string, error) {
	cleaned := filepath.Clean("/" + filepath.FromSlash(key))
	if cleaned == string(filepath.Separator) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.basePath, cleaned), nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
