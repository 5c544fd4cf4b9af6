package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestUploadImageRejectsBeforeWriting(t *testing.T) {
	// The validation paths run before the storage client is touched.
	u := NewUploader(nil, "bucket")

	if _, err := u.UploadImage(context.Background(), strings.NewReader("x"), 1, "text/plain"); !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("err=%v want ErrNotAnImage", err)
	}
	if _, err := u.UploadImage(context.Background(), strings.NewReader("x"), maxImageSize+1, "image/png"); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err=%v want ErrTooLarge", err)
	}
}

func TestCopyCapped(t *testing.T) {
	tests := []struct {
		name    string
		size    int64
		wantErr error
	}{
		{"small", 16, nil},
		{"exactly at limit", maxImageSize, nil},
		{"one byte over", maxImageSize + 1, ErrTooLarge},
		{"well over", maxImageSize * 2, ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst bytes.Buffer
			err := copyCapped(&dst, io.LimitReader(zeros{}, tt.size))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err=%v want=%v", err, tt.wantErr)
			}
			if tt.wantErr == nil && int64(dst.Len()) != tt.size {
				t.Fatalf("copied %d bytes want %d", dst.Len(), tt.size)
			}
		})
	}
}

type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"image/gif", ".gif"},
		{"image/webp", ".webp"},
		{"image/heic", ".jpg"},
	}
	for _, tt := range tests {
		if got := extensionFor(tt.contentType); got != tt.want {
			t.Errorf("extensionFor(%q)=%q want %q", tt.contentType, got, tt.want)
		}
	}
}
