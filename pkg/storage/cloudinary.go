package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryAPI is the upload call of the Cloudinary SDK.
type CloudinaryAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryStore stores profile images on Cloudinary. Images arrive already
// resized, so no transformation is requested.
type CloudinaryStore struct {
	api CloudinaryAPI
}

// NewCloudinaryStore builds a store from a cloudinary:// URL.
func NewCloudinaryStore(cloudinaryURL string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	return &CloudinaryStore{api: &cld.Upload}, nil
}

func NewCloudinaryStoreWithAPI(api CloudinaryAPI) *CloudinaryStore {
	return &CloudinaryStore{api: api}
}

// Put maps key "a/b/c.jpg" to folder "a/b" and public id "c".
func (s *CloudinaryStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	folder, file := path.Split(key)
	publicID := strings.TrimSuffix(file, path.Ext(file))

	res, err := s.api.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       strings.TrimSuffix(folder, "/"),
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload %s: %w", key, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload %s: %s", key, res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload %s: no secure url returned", key)
	}
	return res.SecureURL, nil
}
