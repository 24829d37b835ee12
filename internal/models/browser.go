// Package models contains data structures handed to the renderer
package models

import "time"

// EntryView is one row of the listing with its display strings
type EntryView struct {
	Name          string
	Href          string
	IsDirectory   bool
	IsParent      bool
	Size          uint64
	FormattedSize string
	LastModified  time.Time
	FormattedDate string
}

// Breadcrumb for navigation
type Breadcrumb struct {
	Name string
	Path string
}

// ListingPage is the data passed to the "listing" template
type ListingPage struct {
	HostName      string
	Path          string
	IsRoot        bool
	CurrentFolder string
	Breadcrumbs   []Breadcrumb
	Entries       []EntryView
}

// EntryJSON is the JSON form of a listing row
type EntryJSON struct {
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Href         string     `json:"href"`
	Size         uint64     `json:"size"`
	LastModified *time.Time `json:"lastModified,omitempty"`
}

// ListingJSON is the JSON form of a directory listing
type ListingJSON struct {
	Path    string      `json:"path"`
	Parent  string      `json:"parent,omitempty"`
	Entries []EntryJSON `json:"entries"`
}
