package main

import (
	"context"
	"time"

	"github.com/damacus/iron-index/internal/listing"
	"github.com/damacus/iron-index/internal/services"
	"github.com/stretchr/testify/mock"
)

// MockBucketStore implements services.BucketStore for testing
type MockBucketStore struct {
	mock.Mock
}

func (m *MockBucketStore) ListObjects(ctx context.Context) ([]listing.ObjectRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]listing.ObjectRecord), args.Error(1)
}

func (m *MockBucketStore) PresignGet(ctx context.Context, key string, expires time.Duration) (services.SignedRequest, error) {
	args := m.Called(ctx, key, expires)
	return args.Get(0).(services.SignedRequest), args.Error(1)
}
