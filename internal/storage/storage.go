// Package storage persists uploaded product images and returns their public URL.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned for uploads that are not a supported image type.
var ErrUnsupportedType = errors.New("unsupported image type")

type PutInput struct {
	Filename    string
	ContentType string
	Size        int64
}

type PutResult struct {
	Key string
	URL string
}

// Storage stores image objects.
type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
	Delete(ctx context.Context, key string) error
}

var imageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// IsImageContentType reports whether ct is an accepted image MIME type.
func IsImageContentType(ct string) bool {
	_, ok := imageTypes[normalizeContentType(ct)]
	return ok
}

// objectExt picks the stored extension: the filename's if it is a known image
// extension, otherwise the one implied by the content type.
func objectExt(in PutInput) string {
	ext := strings.ToLower(filepath.Ext(in.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".gif":
		return ext
	}
	return imageTypes[normalizeContentType(in.ContentType)]
}

func normalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
