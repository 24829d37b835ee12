// Package listing turns a flat set of object keys into a browsable directory
// tree and decides whether a request path names a file or a directory.
//
// Everything in this package is pure: callers fetch the full object set first
// and hand it in as a snapshot.
package listing

import "time"

// ObjectRecord is a single object as reported by the bucket listing.
type ObjectRecord struct {
	Key          string
	Size         uint64
	LastModified time.Time
}

// DisplayEntry is one row of a directory listing.
//
// For a directory, Size and LastModified aggregate every descendant file.
// A zero LastModified means the value is absent.
type DisplayEntry struct {
	Name         string
	IsDirectory  bool
	IsParent     bool
	Size         uint64
	LastModified time.Time
}

// HasLastModified reports whether the entry carries a modification time.
func (e DisplayEntry) HasLastModified() bool {
	return !e.LastModified.IsZero()
}
