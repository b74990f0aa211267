package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores images on the local filesystem and serves them under URLPrefix.
// URLs are root-relative unless PublicBaseURL is set.
type Local struct {
	BaseDir       string
	URLPrefix     string
	PublicBaseURL string
}

func NewLocal(baseDir, urlPrefix string) *Local {
	return &Local{BaseDir: baseDir, URLPrefix: urlPrefix}
}

func (l *Local) Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error) {
	if err := ctx.Err(); err != nil {
		return PutResult{}, err
	}

	if err := os.MkdirAll(l.BaseDir, 0o755); err != nil {
		return PutResult{}, fmt.Errorf("creating upload dir: %w", err)
	}

	key := uuid.NewString() + objectExt(in)
	dstPath := filepath.Join(l.BaseDir, key)

	f, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return PutResult{}, fmt.Errorf("creating %s: %w", key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(dstPath)
		return PutResult{}, fmt.Errorf("writing %s: %w", key, err)
	}

	return PutResult{Key: key, URL: l.url(key)}, nil
}

func (l *Local) url(key string) string {
	path := "/" + key
	if prefix := strings.Trim(l.URLPrefix, "/"); prefix != "" {
		path = "/" + prefix + path
	}
	return strings.TrimRight(l.PublicBaseURL, "/") + path
}

func (l *Local) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key = filepath.Base(key)
	return os.Remove(filepath.Join(l.BaseDir, key))
}

func (l *Local) String() string { return fmt.Sprintf("local(%s)", l.BaseDir) }
