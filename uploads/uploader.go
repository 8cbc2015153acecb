// Package uploads stores images on an external asset host.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ErrDisabled is returned when no asset host is configured.
var ErrDisabled = errors.New("image uploads are not configured")

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, file *multipart.FileHeader, folder string) (string, error)
}

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, fh *multipart.FileHeader, folder string) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	res, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected %s: %s", fh.Filename, res.Error.Message)
	}
	return res.SecureURL, nil
}

// Disabled rejects every upload with ErrDisabled.
type Disabled struct{}

func (Disabled) Upload(context.Context, *multipart.FileHeader, string) (string, error) {
	return "", ErrDisabled
}

// Memory pretends to upload and hands out predictable URLs.
type Memory struct {
	mu    sync.Mutex
	Files []string
}

func (m *Memory) Upload(_ context.Context, fh *multipart.FileHeader, folder string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files = append(m.Files, fh.Filename)
	return fmt.Sprintf("https://assets.test/%s/%d-%s", folder, len(m.Files), fh.Filename), nil
}
