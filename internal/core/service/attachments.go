package service

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

const (
	photoDir     = "visitor_photos"
	signatureDir = "signatures"

	dataURLSeparator = ";base64,"
	defaultImageExt  = "png"
)

// decodeDataURL splits "<mime>;base64,<payload>" and decodes the payload.
// The extension is taken from the subtype of the mime prefix.
func decodeDataURL(s string) (string, []byte, error) {
	header, payload, ok := strings.Cut(s, dataURLSeparator)
	if !ok {
		return "", nil, fmt.Errorf("%w: missing %q separator", domain.ErrInvalidImageData, dataURLSeparator)
	}

	ext := defaultImageExt
	if i := strings.LastIndex(header, "/"); i >= 0 {
		ext = sanitizeExt(header[i+1:])
	}

	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrInvalidImageData, err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("%w: empty payload", domain.ErrInvalidImageData)
	}
	return ext, data, nil
}

// uploadImage checks that an uploaded file really is an image and picks its extension.
func uploadImage(u *ports.Upload) (string, error) {
	if len(u.Data) == 0 {
		return "", fmt.Errorf("%w: empty upload", domain.ErrInvalidImageData)
	}
	detected := http.DetectContentType(u.Data)
	if !strings.HasPrefix(detected, "image/") {
		return "", fmt.Errorf("%w: upload is %s", domain.ErrInvalidImageData, detected)
	}
	if ext := strings.TrimPrefix(filepath.Ext(u.Filename), "."); ext != "" {
		return sanitizeExt(ext), nil
	}
	return sanitizeExt(strings.TrimPrefix(detected, "image/")), nil
}

func sanitizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext == "" || len(ext) > 5 {
		return defaultImageExt
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return defaultImageExt
		}
	}
	return ext
}

// classifySignature decides how a textual signature payload is stored.
func classifySignature(data string, vectorHint bool) domain.SignatureKind {
	trimmed := strings.TrimSpace(data)
	switch {
	case vectorHint, strings.HasPrefix(trimmed, "{") && strings.Contains(trimmed, "paths"):
		return domain.SignatureVector
	case strings.HasPrefix(trimmed, "data:image/"):
		return domain.SignatureImage
	default:
		return domain.SignatureRaw
	}
}

func photoFilename(visitID, ext string) string {
	return fmt.Sprintf("visitor_photo_%s_%s.%s", visitID, randomSuffix(), ext)
}

func signatureFilename(now time.Time, ext string) string {
	return fmt.Sprintf("signature_%s_%s.%s", now.Format("20060102_150405"), randomSuffix(), ext)
}

func randomSuffix() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%08x", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return hex.EncodeToString(b)
}
