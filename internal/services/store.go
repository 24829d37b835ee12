package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/damacus/iron-index/internal/listing"
)

var (
	// ErrListingUnavailable means the bucket listing could not be fetched.
	ErrListingUnavailable = errors.New("failed to list objects")
	// ErrSigningFailure means no signed URL could be produced for an object.
	ErrSigningFailure = errors.New("failed to sign request")
)

// Credentials represents the object store connection details
type Credentials struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	SessionToken string
}

// SignedRequest is a presigned GET: the URL plus any headers that were part
// of the signature and must be sent with it.
type SignedRequest struct {
	URL    string
	Header http.Header
}

// BucketStore is the collaborator the browse handler talks to.
type BucketStore interface {
	// ListObjects returns every object in the bucket.
	ListObjects(ctx context.Context) ([]listing.ObjectRecord, error)
	// PresignGet returns a time-limited request for the object's bytes.
	PresignGet(ctx context.Context, key string, expires time.Duration) (SignedRequest, error)
}

const (
	BackendMinio = "minio"
	BackendS3    = "s3"
)

// NewStore builds the store for backend.
func NewStore(ctx context.Context, backend string, creds Credentials, bucket string, logger *slog.Logger) (BucketStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch backend {
	case BackendMinio, "":
		client, err := newMinioClient(creds)
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
		return NewMinioStore(client, bucket, logger), nil
	case BackendS3:
		client, err := newS3Client(ctx, creds)
		if err != nil {
			return nil, fmt.Errorf("create s3 client: %w", err)
		}
		return NewS3Store(client, s3PresignClient(client), bucket, logger), nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", backend)
	}
}

// shouldUseSSL determines if SSL should be used based on the endpoint.
// Returns false for localhost, 127.0.0.1, and docker service names.
func shouldUseSSL(endpoint string) bool {
	if endpoint == "localhost:9000" || endpoint == "127.0.0.1:9000" {
		return false
	}
	// Docker service names (minio:9000, minio1:9000, ...) without dots
	if strings.HasPrefix(endpoint, "minio") && !strings.Contains(strings.Split(endpoint, ":")[0], ".") && strings.Contains(endpoint, ":9000") {
		return false
	}
	return true
}

// endpointHost splits an endpoint that may carry a scheme into the bare host
// and whether TLS should be used.
func endpointHost(endpoint string) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		return endpoint, shouldUseSSL(endpoint), nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}
	return u.Host, u.Scheme == "https", nil
}

// endpointURL returns endpoint with a scheme, inferring one when absent.
func endpointURL(endpoint string) (string, error) {
	host, secure, err := endpointHost(endpoint)
	if err != nil {
		return "", err
	}
	if secure {
		return "https://" + host, nil
	}
	return "http://" + host, nil
}
