package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const maxImageSize = 5 << 20 // 5MB

var (
	ErrNotAnImage = errors.New("only image files are allowed")
	ErrTooLarge   = errors.New("image exceeds the 5MB limit")
)

// Uploader stores user images in a Cloud Storage bucket under random
// object names.
type Uploader struct {
	client *storage.Client
	bucket string
}

func NewUploader(client *storage.Client, bucket string) *Uploader {
	return &Uploader{client: client, bucket: bucket}
}

// UploadImage validates and stores a single image, returning its public
// URL.
func (u *Uploader) UploadImage(ctx context.Context, r io.Reader, size int64, contentType string) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotAnImage
	}
	if size > maxImageSize {
		return "", ErrTooLarge
	}

	ext := extensionFor(contentType)
	objectPath := path.Join("uploads", uuid.NewString()+ext)

	// Cancelling the writer's context aborts the upload, so an oversized
	// stream never becomes a finished object.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := u.client.Bucket(u.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	if err := copyCapped(w, r); err != nil {
		cancel()
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, url.PathEscape(objectPath)), nil
}

// copyCapped copies src into dst and fails with ErrTooLarge once the
// stream exceeds maxImageSize. The declared header size is not trusted.
func copyCapped(dst io.Writer, src io.Reader) error {
	n, err := io.Copy(dst, io.LimitReader(src, maxImageSize+1))
	if err != nil {
		return err
	}
	if n > maxImageSize {
		return ErrTooLarge
	}
	return nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
