package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/chirp-app/chirp/pkg/config"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// uploadStore saves cheep images under a local directory and hands back
// the public path they are served from.
type uploadStore struct {
	dir      string
	maxBytes int64
}

func newUploadStore(cfg *config.UploadsConfig) *uploadStore {
	return &uploadStore{
		dir:      cfg.Dir,
		maxBytes: cfg.MaxBytes,
	}
}

// validate checks size, content type and extension
func (u *uploadStore) validate(header *multipart.FileHeader) error {
	if header.Size > u.maxBytes {
		return fmt.Errorf("image exceeds %d bytes", u.maxBytes)
	}

	contentType := strings.ToLower(header.Header.Get("Content-Type"))
	if !allowedImageTypes[contentType] {
		return fmt.Errorf("only JPEG, PNG, and GIF files are allowed")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		return fmt.Errorf("only JPEG, PNG, and GIF files are allowed")
	}
	return nil
}

// save writes the uploaded file under a collision-free name and returns
// the URL path it will be served from
func (u *uploadStore) save(header *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create uploads dir: %w", err)
	}

	name := uuid.NewString() + "_" + filepath.Base(header.Filename)
	dst := filepath.Join(u.dir, name)

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return "/uploads/" + name, nil
}
