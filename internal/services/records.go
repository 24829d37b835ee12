package services

import (
	"time"

	"github.com/damacus/iron-index/internal/listing"
)

// toRecord validates one listed object. Entries without a key, with a
// negative size, or without a modification time are rejected so the
// aggregation never sees them.
func toRecord(key string, size int64, modified time.Time) (listing.ObjectRecord, bool) {
	if key == "" || size < 0 || modified.IsZero() {
		return listing.ObjectRecord{}, false
	}
	return listing.ObjectRecord{
		Key:          key,
		Size:         uint64(size),
		LastModified: modified,
	}, true
}
