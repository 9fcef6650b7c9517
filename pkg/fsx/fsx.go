package fsx

import "context"

// FileSystem is the blob storage port used for data exports and generated
// images. Paths are forward-slash relative keys.
type FileSystem interface {
	Write(ctx context.Context, path string, data []byte, contentType string) error
	Read(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) error
}
