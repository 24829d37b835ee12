package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMinioStore_ListObjects(t *testing.T) {
	now := time.Now()
	client := new(MockMinioClient)
	client.On("ListObjects", mock.Anything, "media", minio.ListObjectsOptions{Recursive: true}).Return([]minio.ObjectInfo{
		{Key: "a/x.txt", Size: 10, LastModified: now},
		{Key: "", Size: 1, LastModified: now},
		{Key: "b.txt", Size: 5, LastModified: now},
		{Key: "broken", Size: -1, LastModified: now},
	})

	store := NewMinioStore(client, "media", discardLogger())
	records, err := store.ListObjects(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a/x.txt", records[0].Key)
	assert.Equal(t, uint64(10), records[0].Size)
	assert.Equal(t, "b.txt", records[1].Key)
	client.AssertExpectations(t)
}

func TestMinioStore_ListObjectsError(t *testing.T) {
	client := new(MockMinioClient)
	client.On("ListObjects", mock.Anything, "media", mock.Anything).Return([]minio.ObjectInfo{
		{Key: "a.txt", Size: 1, LastModified: time.Now()},
		{Err: minio.ErrorResponse{Code: "AccessDenied", Message: "Access Denied."}},
	})

	store := NewMinioStore(client, "media", discardLogger())
	records, err := store.ListObjects(context.Background())

	assert.Nil(t, records)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrListingUnavailable))
	assert.Contains(t, err.Error(), "Access Denied.")
}

func TestMinioStore_PresignGet(t *testing.T) {
	client := new(MockMinioClient)
	signed, _ := url.Parse("https://s3.example.com/media/a/x.txt?X-Amz-Signature=abc")
	client.On("PresignedGetObject", mock.Anything, "media", "a/x.txt", time.Hour, url.Values(nil)).Return(signed, nil)

	store := NewMinioStore(client, "media", discardLogger())
	req, err := store.PresignGet(context.Background(), "a/x.txt", time.Hour)

	require.NoError(t, err)
	assert.Equal(t, signed.String(), req.URL)
	assert.Empty(t, req.Header)
	client.AssertExpectations(t)
}

func TestMinioStore_PresignGetError(t *testing.T) {
	client := new(MockMinioClient)
	client.On("PresignedGetObject", mock.Anything, "media", "a/x.txt", time.Hour, url.Values(nil)).
		Return(nil, errors.New("no credentials"))

	store := NewMinioStore(client, "media", discardLogger())
	_, err := store.PresignGet(context.Background(), "a/x.txt", time.Hour)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSigningFailure))
	assert.Contains(t, err.Error(), "no credentials")
}
