package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/damacus/iron-index/internal/listing"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient is the subset of *minio.Client the store uses
type MinioClient interface {
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// MinioStore serves listings and signed URLs through minio-go.
type MinioStore struct {
	client MinioClient
	bucket string
	logger *slog.Logger
}

func NewMinioStore(client MinioClient, bucket string, logger *slog.Logger) *MinioStore {
	return &MinioStore{client: client, bucket: bucket, logger: logger}
}

func newMinioClient(creds Credentials) (*minio.Client, error) {
	host, secure, err := endpointHost(creds.Endpoint)
	if err != nil {
		return nil, err
	}
	return minio.New(host, &minio.Options{
		Creds:        credentials.NewStaticV4(creds.AccessKey, creds.SecretKey, creds.SessionToken),
		Secure:       secure,
		Region:       creds.Region,
		BucketLookup: minio.BucketLookupPath,
	})
}

// ListObjects drains a recursive listing of the whole bucket.
func (s *MinioStore) ListObjects(ctx context.Context) ([]listing.ObjectRecord, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var records []listing.ObjectRecord
	dropped := 0
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("%w: %s", ErrListingUnavailable, minioMessage(obj.Err))
		}
		rec, ok := toRecord(obj.Key, obj.Size, obj.LastModified)
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}

	if dropped > 0 {
		s.logger.Warn("dropped malformed objects from listing", "bucket", s.bucket, "count", dropped)
	}
	return records, nil
}

// PresignGet signs a GET for key valid for expires.
func (s *MinioStore) PresignGet(ctx context.Context, key string, expires time.Duration) (SignedRequest, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expires, nil)
	if err != nil {
		return SignedRequest{}, fmt.Errorf("%w: %s", ErrSigningFailure, minioMessage(err))
	}
	return SignedRequest{URL: u.String()}, nil
}

func minioMessage(err error) string {
	if resp := minio.ToErrorResponse(err); resp.Message != "" {
		return resp.Message
	}
	return err.Error()
}
