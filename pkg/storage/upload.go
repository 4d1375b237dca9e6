package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
)

var (
	// ErrTooLarge signals an upload above the configured byte limit.
	ErrTooLarge = errors.New("upload exceeds size limit")
	// ErrUnsupportedType signals an upload whose sniffed content type is not allowed.
	ErrUnsupportedType = errors.New("upload content type not allowed")
)

// UploadPolicy bounds what the API accepts as an image upload.
type UploadPolicy struct {
	MaxBytes     int64
	AllowedTypes []string
}

// Check sniffs the first bytes of r and returns a reader replaying the whole
// upload along with its detected content type. The declared size is checked
// first so oversized requests are refused before any read.
func (p UploadPolicy) Check(r io.Reader, declaredSize int64) (io.Reader, string, error) {
	if p.MaxBytes > 0 && declaredSize > p.MaxBytes {
		return nil, "", ErrTooLarge
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if semi := strings.IndexByte(contentType, ';'); semi >= 0 {
		contentType = contentType[:semi]
	}
	if !p.allowed(contentType) {
		return nil, contentType, ErrUnsupportedType
	}

	body := io.MultiReader(bytes.NewReader(head), r)
	if p.MaxBytes > 0 {
		body = &limitedReader{r: body, remaining: p.MaxBytes}
	}
	return body, contentType, nil
}

func (p UploadPolicy) allowed(contentType string) bool {
	if len(p.AllowedTypes) == 0 {
		return strings.HasPrefix(contentType, "image/")
	}
	for _, t := range p.AllowedTypes {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// ExtensionFor maps a sniffed image content type to the extension files are
// stored under. Unknown types get ".bin".
func ExtensionFor(contentType string) string {
	if ext, ok := imageExtensions[strings.ToLower(contentType)]; ok {
		return ext
	}
	return ".bin"
}

// ContentTypeFor is the inverse of ExtensionFor, keyed on a stored file name.
// Anything that is not a known image extension is served as octet-stream.
func ContentTypeFor(name string) string {
	ext := strings.ToLower(path.Ext(name))
	for contentType, known := range imageExtensions {
		if known == ext {
			return contentType
		}
	}
	return "application/octet-stream"
}

type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(b []byte) (int, error) {
	n, err := l.r.Read(b)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrTooLarge
	}
	return n, err
}
