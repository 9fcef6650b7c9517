package fsxlocal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/siivi-app/siivi-server/pkg/fsx"
)

// LocalFileSystem implementación local del fsx.FileSystem
type LocalFileSystem struct {
	basePath string
}

// NewLocalFileSystem crea un filesystem local bajo basePath
func NewLocalFileSystem(basePath string) (*LocalFileSystem, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}
	return &LocalFileSystem{basePath: abs}, nil
}

// GetBasePath retorna la ruta base absoluta
func (fs *LocalFileSystem) GetBasePath() string {
	return fs.basePath
}

func (fs *LocalFileSystem) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + path)
	full := filepath.Join(fs.basePath, clean)
	if !strings.HasPrefix(full, fs.basePath) {
		return "", fmt.Errorf("path escapes base directory: %s", path)
	}
	return full, nil
}

func (fs *LocalFileSystem) Write(ctx context.Context, path string, data []byte, contentType string) error {
	full, err := fs.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(full, data, 0o644)
}

func (fs *LocalFileSystem) Read(ctx context.Context, path string) ([]byte, error) {
	full, err := fs.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

func (fs *LocalFileSystem) Exists(ctx context.Context, path string) (bool, error) {
	full, err := fs.resolve(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (fs *LocalFileSystem) Delete(ctx context.Context, path string) error {
	full, err := fs.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

var _ fsx.FileSystem = (*LocalFileSystem)(nil)
