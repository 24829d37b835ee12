package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/damacus/iron-index/internal/listing"
)

// S3API is the subset of *s3.Client the store uses
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Presigner is the subset of *s3.PresignClient the store uses
type S3Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store serves listings and signed URLs through the AWS SDK.
//
// Only the first ListObjectsV2 page is read; continuation tokens are not followed.
type S3Store struct {
	client    S3API
	presigner S3Presigner
	bucket    string
	logger    *slog.Logger
}

func NewS3Store(client S3API, presigner S3Presigner, bucket string, logger *slog.Logger) *S3Store {
	return &S3Store{client: client, presigner: presigner, bucket: bucket, logger: logger}
}

func newS3Client(ctx context.Context, creds Credentials) (*s3.Client, error) {
	endpoint, err := endpointURL(creds.Endpoint)
	if err != nil {
		return nil, err
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(creds.Region),
	}
	if creds.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKey, creds.SecretKey, creds.SessionToken),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	}), nil
}

func s3PresignClient(client *s3.Client) *s3.PresignClient {
	return s3.NewPresignClient(client)
}

// ListObjects returns the objects of the first listing page.
func (s *S3Store) ListObjects(ctx context.Context) ([]listing.ObjectRecord, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrListingUnavailable, s3Message(err))
	}

	records := make([]listing.ObjectRecord, 0, len(out.Contents))
	dropped := 0
	for _, obj := range out.Contents {
		rec, ok := toRecord(aws.ToString(obj.Key), aws.ToInt64(obj.Size), aws.ToTime(obj.LastModified))
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}

	if dropped > 0 {
		s.logger.Warn("dropped malformed objects from listing", "bucket", s.bucket, "count", dropped)
	}
	if aws.ToBool(out.IsTruncated) {
		s.logger.Warn("bucket listing truncated", "bucket", s.bucket, "objects", len(records))
	}
	return records, nil
}

// PresignGet signs a GET for key valid for expires.
func (s *S3Store) PresignGet(ctx context.Context, key string, expires time.Duration) (SignedRequest, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return SignedRequest{}, fmt.Errorf("%w: %s", ErrSigningFailure, s3Message(err))
	}
	return SignedRequest{URL: req.URL, Header: req.SignedHeader.Clone()}, nil
}

func s3Message(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorMessage() != "" {
		return apiErr.ErrorMessage()
	}
	return err.Error()
}
