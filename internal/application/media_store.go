package application

import (
	"context"
	"io"

	"cloud.google.com/go/storage"

	"github.com/diaryfi/diaryfi-api/pkg/helpers"
)

// MediaStore persists uploaded binary attachments and avatars.
type MediaStore interface {
	// Upload stores the object and returns its public URL.
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
	// Delete removes the object; missing objects are not an error.
	Delete(ctx context.Context, objectPath string) error
}

// GCSMediaStore is the Google Cloud Storage implementation.
type GCSMediaStore struct {
	Client *storage.Client
	Bucket string
}

func NewGCSMediaStore(client *storage.Client, bucket string) *GCSMediaStore {
	return &GCSMediaStore{Client: client, Bucket: bucket}
}

func (s *GCSMediaStore) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, s.Client, s.Bucket, objectPath, contentType, r)
}

func (s *GCSMediaStore) Delete(ctx context.Context, objectPath string) error {
	return helpers.DeleteObject(ctx, s.Client, s.Bucket, objectPath)
}
