package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/damacus/iron-index/internal/config"
	"github.com/damacus/iron-index/internal/listing"
	"github.com/damacus/iron-index/internal/metrics"
	"github.com/damacus/iron-index/internal/models"
	"github.com/damacus/iron-index/internal/services"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBrowseJourney(t *testing.T) {
	// 1. Setup
	modified := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	objects := []listing.ObjectRecord{
		{Key: "photos/", Size: 0, LastModified: modified},
		{Key: "photos/2024/cat.jpg", Size: 1024, LastModified: modified},
		{Key: "photos/2024/dog.jpg", Size: 2048, LastModified: modified.Add(time.Hour)},
		{Key: "readme.md", Size: 12, LastModified: modified},
	}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/photos/2024/cat.jpg", r.URL.Path)
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer upstream.Close()

	store := new(MockBucketStore)
	store.On("ListObjects", mock.Anything).Return(objects, nil)
	store.On("PresignGet", mock.Anything, "photos/2024/cat.jpg", config.DefaultSignedURLExpiry).
		Return(services.SignedRequest{URL: upstream.URL + "/files/photos/2024/cat.jpg?X-Amz-Signature=abc"}, nil)

	collector := metrics.New()
	e := newServer(testConfig(), store, collector, discardLogger())

	get := func(target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	// Step A: Root listing shows the directory before the file
	rec := get("/?format=json")
	require.Equal(t, http.StatusOK, rec.Code)
	var root models.ListingJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &root))
	require.Len(t, root.Entries, 2)
	assert.Equal(t, "photos", root.Entries[0].Name)
	assert.Equal(t, uint64(3072), root.Entries[0].Size)
	assert.Equal(t, "readme.md", root.Entries[1].Name)

	// Step B: Follow the directory link
	rec = get(root.Entries[0].Href + "?format=json")
	require.Equal(t, http.StatusOK, rec.Code)
	var photos models.ListingJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &photos))
	assert.Equal(t, "/", photos.Parent)
	require.Len(t, photos.Entries, 1)
	assert.Equal(t, "2024", photos.Entries[0].Name)

	// Step C: HTML view of the nested directory
	rec = get("/photos/2024")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/photos/2024/cat.jpg"`)
	assert.Contains(t, rec.Body.String(), `href="/photos"`)

	// Step D: Download through the signed proxy
	rec = get("/photos/2024/cat.jpg")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "jpeg-bytes", rec.Body.String())

	assert.Equal(t, float64(3), testutil.ToFloat64(collector.Resolutions.WithLabelValues(metrics.KindDirectory)))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.Resolutions.WithLabelValues(metrics.KindFileProxy)))
	store.AssertExpectations(t)
}
