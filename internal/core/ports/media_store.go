package ports

import "context"

// MediaStore persists uploaded images. Save returns the stored path relative to
// the media root; URL turns such a path into a site-relative URL.
type MediaStore interface {
	Save(ctx context.Context, dir, filename string, data []byte) (string, error)
	URL(path string) string
}
