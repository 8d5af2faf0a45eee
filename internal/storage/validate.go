package storage

import (
	"bytes"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/asingh/agri-rental-website/internal/domain"
	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize is the upload cap per file.
const MaxImageSize = 5 * 1024 * 1024

var allowedMIMETypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

var extByMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ValidateImage checks an upload before anything is written: size cap,
// sniffed MIME type against the allowlist, and that the bytes decode as an
// actual image. Returns the canonical file extension for the detected type.
func ValidateImage(data []byte) (string, error) {
	if len(data) > MaxImageSize {
		return "", domain.ErrImageTooLarge
	}

	mtype := mimetype.Detect(data)
	allowed := false
	for _, m := range allowedMIMETypes {
		if mtype.Is(m) {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", domain.ErrBadImageType
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", domain.ErrNotAnImage
	}

	return extByMIME[mtype.String()], nil
}
