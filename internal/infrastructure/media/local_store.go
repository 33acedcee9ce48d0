package media

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore keeps uploaded media on the local filesystem under root and
// serves it below urlPrefix.
type LocalStore struct {
	root      string
	urlPrefix string
}

func NewLocalStore(root, urlPrefix string) *LocalStore {
	if urlPrefix == "" {
		urlPrefix = "/media/"
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &LocalStore{root: root, urlPrefix: urlPrefix}
}

// Root is the directory files are written to.
func (s *LocalStore) Root() string { return s.root }

// Save writes data to <root>/<dir>/<filename> and returns "<dir>/<filename>".
func (s *LocalStore) Save(ctx context.Context, dir, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(dir, "..") {
		return "", fmt.Errorf("media: invalid path %q/%q", dir, filename)
	}

	target := filepath.Join(s.root, filepath.FromSlash(dir))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("media: create dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(target, filename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("media: create file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("media: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("media: close file: %w", err)
	}
	return path.Join(dir, filename), nil
}

// URL returns the site-relative URL of a stored path.
func (s *LocalStore) URL(p string) string {
	if p == "" {
		return ""
	}
	return s.urlPrefix + strings.TrimPrefix(p, "/")
}
