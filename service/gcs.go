package service

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/config"
	"google.golang.org/api/option"
)

// GCSService stores certificates in a Google Cloud Storage bucket.
type GCSService struct {
	client *storage.Client
	bucket string
}

// NewGCSService uses the credentials file when set, otherwise application
// default credentials.
func NewGCSService(ctx context.Context, cfg *config.GCSConfig) (*GCSService, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs client: %w", err)
	}
	return &GCSService{client: client, bucket: cfg.Bucket}, nil
}

func (s *GCSService) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, reader); err != nil {
		w.Close()
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", objectName, err)
	}
	return nil
}

func (s *GCSService) Open(ctx context.Context, objectName string) (io.ReadCloser, error) {
	r, err := s.client.Bucket(s.bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", objectName, err)
	}
	return r, nil
}

func (s *GCSService) PublicURL(objectName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName)
}

func (s *GCSService) Close() error {
	return s.client.Close()
}
