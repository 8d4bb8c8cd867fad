package security

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNoExtension     = errors.New("file has no extension")
	ErrExtension       = errors.New("file extension not allowed")
	ErrContentMismatch = errors.New("file content does not match extension")
	ErrMIMENotAllowed  = errors.New("file type not allowed")
	ErrEmptyFile       = errors.New("file is empty")
)

// Magic byte signatures for allowed image types
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}, {0x47, 0x49, 0x46, 0x38, 0x39, 0x61}}, // GIF87a & GIF89a
	".webp": {{0x52, 0x49, 0x46, 0x46}},                                                   // RIFF header
}

// MIME type the content sniffer must report for each extension.
// application/octet-stream is never accepted.
var imageMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ImageCheck describes a validated upload.
type ImageCheck struct {
	Extension string
	MIME      string
}

// ValidateImage runs the three upload checks in order: extension whitelist,
// magic bytes matching the extension, sniffed MIME matching the extension.
func ValidateImage(filename string, data []byte) (ImageCheck, error) {
	if len(data) == 0 {
		return ImageCheck{}, ErrEmptyFile
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return ImageCheck{}, ErrNoExtension
	}
	want, ok := imageMIMETypes[ext]
	if !ok {
		return ImageCheck{}, errors.Join(ErrExtension, errors.New(ext))
	}

	if !validateMagicBytes(ext, data) {
		return ImageCheck{}, ErrContentMismatch
	}

	detected := mimetype.Detect(data).String()
	if detected != want {
		return ImageCheck{Extension: ext, MIME: detected}, errors.Join(ErrMIMENotAllowed, errors.New(detected))
	}

	return ImageCheck{Extension: ext, MIME: detected}, nil
}

// validateMagicBytes checks if file content starts with expected magic bytes
func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}
	for _, sig := range magicBytes[ext] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// AllowedImageExtensions lists accepted extensions for error messages.
func AllowedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
}
