// Package storage keeps user uploads in S3-compatible object storage.
//
// Keys are chosen by callers (provider portfolio images live under
// providers/{providerID}/{ulid}.{ext}); the package only validates content
// and moves bytes.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrInvalidConfig = errors.New("storage: invalid configuration")
	ErrEmptyFile     = errors.New("storage: file is empty")
	ErrFileTooLarge  = errors.New("storage: file exceeds size limit")
	ErrInvalidMIME   = errors.New("storage: file type not allowed")
	ErrNotFound      = errors.New("storage: file not found")
	ErrUploadFailed  = errors.New("storage: upload failed")
	ErrDeleteFailed  = errors.New("storage: delete failed")
	ErrPresignFailed = errors.New("storage: presign failed")
)

// Storage is implemented by S3 and Memory.
type Storage interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

// ImageTypes lists the content types accepted for portfolio uploads.
var ImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/heic", "image/avif"}

// Sniffed is the result of inspecting an upload.
type Sniffed struct {
	Body        io.ReadSeeker
	ContentType string
	Ext         string
	Size        int64
}

// Sniff reads at most maxSize bytes from r, detects the content type from the
// bytes themselves and checks it against allowed. Declared client types are
// never trusted.
func Sniff(r io.Reader, maxSize int64, allowed []string) (*Sniffed, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("storage: read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > maxSize {
		return nil, ErrFileTooLarge
	}

	mt := mimetype.Detect(data)
	ok := false
	for _, a := range allowed {
		if mt.Is(a) {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMIME, mt.String())
	}

	return &Sniffed{
		Body:        bytes.NewReader(data),
		ContentType: mt.String(),
		Ext:         mt.Extension(),
		Size:        int64(len(data)),
	}, nil
}
