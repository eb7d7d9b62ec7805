package photos

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"jollybaba-backend/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrCloudinaryNotConfigured = errors.New("Cloudinary is not configured")

// CloudinaryStore uploads processed photos to Cloudinary. A nil client
// means the CLOUDINARY_URL was absent; uploads then fail loudly instead of
// silently dropping photos.
type CloudinaryStore struct {
	client *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStore(cfg *config.Config) (*CloudinaryStore, error) {
	if cfg.Cloudinary.URL == "" {
		return &CloudinaryStore{folder: cfg.Cloudinary.RepairedFolder}, nil
	}
	client, err := cloudinary.NewFromURL(cfg.Cloudinary.URL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryStore{client: client, folder: cfg.Cloudinary.RepairedFolder}, nil
}

func (c *CloudinaryStore) IsConfigured() bool {
	return c.client != nil
}

// Upload stores one rendition under the given public id and returns its
// HTTPS delivery URL.
func (c *CloudinaryStore) Upload(ctx context.Context, data []byte, publicID string) (string, error) {
	if c.client == nil {
		return "", ErrCloudinaryNotConfigured
	}

	resp, err := c.client.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     publicID,
		Folder:       c.folder,
		ResourceType: "image",
		Overwrite:    api.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload %s: %w", publicID, err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload %s: %s", publicID, resp.Error.Message)
	}
	return resp.SecureURL, nil
}
