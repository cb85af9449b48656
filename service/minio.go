package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BlobStore is durable object storage for certificates and photos.
type BlobStore interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Open(ctx context.Context, objectName string) (io.ReadCloser, error)
	PublicURL(objectName string) string
}

type MinioService struct {
	client *minio.Client
	bucket string
	config *config.MinioConfig
}

func NewMinioService(cfg *config.MinioConfig) (*MinioService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioService{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist and grants anonymous
// reads on its objects when no policy is set, so PublicURL links resolve.
// A policy an operator already attached is left alone.
func (s *MinioService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	current, err := s.client.GetBucketPolicy(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to read bucket policy: %w", err)
	}
	if current != "" {
		return nil
	}

	policy, err := publicReadPolicy(s.bucket)
	if err != nil {
		return err
	}
	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}
	return nil
}

type policyStatement struct {
	Effect    string              `json:"Effect"`
	Principal map[string][]string `json:"Principal"`
	Action    []string            `json:"Action"`
	Resource  []string            `json:"Resource"`
}

type bucketPolicy struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

// publicReadPolicy allows anonymous GetObject on every object in bucket.
// Listing stays private.
func publicReadPolicy(bucket string) (string, error) {
	data, err := json.Marshal(bucketPolicy{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Effect:    "Allow",
			Principal: map[string][]string{"AWS": {"*"}},
			Action:    []string{"s3:GetObject"},
			Resource:  []string{fmt.Sprintf("arn:aws:s3:::%s/*", bucket)},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode bucket policy: %w", err)
	}
	return string(data), nil
}

func (s *MinioService) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return nil
}

func (s *MinioService) Open(ctx context.Context, objectName string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", objectName, err)
	}
	// GetObject is lazy; Stat surfaces a missing object before the caller reads.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", objectName, err)
	}
	return obj, nil
}

// PublicURL returns the object's URL under public_url when configured,
// otherwise under the endpoint itself. EnsureBucket grants the anonymous
// read these links need.
func (s *MinioService) PublicURL(objectName string) string {
	if s.config.PublicURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.config.PublicURL, "/"), s.bucket, objectName)
	}
	protocol := "http"
	if s.config.UseSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, s.config.Endpoint, s.bucket, objectName)
}
