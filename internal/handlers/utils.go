package handlers

import (
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/damacus/iron-index/internal/listing"
	"github.com/damacus/iron-index/internal/models"
	"github.com/damacus/iron-index/internal/utils"
	"github.com/labstack/echo/v4"
)

// Hop-by-hop headers are meaningful only for a single connection.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// listingError writes the plain-text 500 every provider failure maps to.
func listingError(c echo.Context, err error) error {
	return c.String(http.StatusInternalServerError, "Error listing files: "+err.Error())
}

// wantsJSON reports whether the client asked for the JSON listing.
func wantsJSON(c echo.Context) bool {
	if strings.EqualFold(c.QueryParam("format"), "json") {
		return true
	}
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// hostLabel is the configured title, or the Host the client asked for.
func hostLabel(c echo.Context, title string) string {
	if title != "" {
		return title
	}
	return c.Request().Host
}

// copyHeaders copies upstream response headers to dst, replacing any already
// set, minus hop-by-hop ones and any the upstream named in its Connection header.
func copyHeaders(dst, src http.Header) {
	skip := make(map[string]bool, len(hopHeaders))
	for _, h := range hopHeaders {
		skip[h] = true
	}
	for _, v := range src.Values("Connection") {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				skip[textproto.CanonicalMIMEHeaderKey(name)] = true
			}
		}
	}

	for name, values := range src {
		if skip[textproto.CanonicalMIMEHeaderKey(name)] {
			continue
		}
		dst.Del(name)
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}

// pathHref joins segments into an escaped absolute path.
func pathHref(segs []string) string {
	escaped := make([]string, len(segs))
	for i, s := range segs {
		escaped[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(escaped, listing.Delimiter)
}

func entryHref(dir []string, e listing.DisplayEntry) string {
	if e.IsParent {
		return pathHref(dir[:len(dir)-1])
	}
	child := make([]string, len(dir), len(dir)+1)
	copy(child, dir)
	return pathHref(append(child, e.Name))
}

func breadcrumbs(segs []string) []models.Breadcrumb {
	crumbs := make([]models.Breadcrumb, 0, len(segs))
	for i, s := range segs {
		crumbs = append(crumbs, models.Breadcrumb{Name: s, Path: pathHref(segs[:i+1])})
	}
	return crumbs
}

// formattedSize is "-" for entries with nothing to measure.
func formattedSize(e listing.DisplayEntry) string {
	if e.IsParent || (e.IsDirectory && !e.HasLastModified()) {
		return utils.Placeholder
	}
	return utils.FormatBytes(e.Size)
}

func listingPage(dir listing.DirectoryListing, host string) models.ListingPage {
	current := host
	if !dir.IsRoot() {
		current = dir.Path[len(dir.Path)-1]
	}

	entries := make([]models.EntryView, 0, len(dir.Entries))
	for _, e := range dir.Entries {
		entries = append(entries, models.EntryView{
			Name:          e.Name,
			Href:          entryHref(dir.Path, e),
			IsDirectory:   e.IsDirectory,
			IsParent:      e.IsParent,
			Size:          e.Size,
			FormattedSize: formattedSize(e),
			LastModified:  e.LastModified,
			FormattedDate: utils.FormatTime(e.LastModified),
		})
	}

	return models.ListingPage{
		HostName:      host,
		Path:          listing.Delimiter + strings.Join(dir.Path, listing.Delimiter),
		IsRoot:        dir.IsRoot(),
		CurrentFolder: current,
		Breadcrumbs:   breadcrumbs(dir.Path),
		Entries:       entries,
	}
}

// listingJSON leaves out the ".." entry; the parent is its own field.
func listingJSON(dir listing.DirectoryListing) models.ListingJSON {
	out := models.ListingJSON{
		Path:    listing.Delimiter + strings.Join(dir.Path, listing.Delimiter),
		Entries: []models.EntryJSON{},
	}
	if !dir.IsRoot() {
		out.Parent = pathHref(dir.Path[:len(dir.Path)-1])
	}

	for _, e := range dir.Children() {
		entry := models.EntryJSON{
			Name: e.Name,
			Type: "file",
			Href: entryHref(dir.Path, e),
			Size: e.Size,
		}
		if e.IsDirectory {
			entry.Type = "directory"
		}
		if e.HasLastModified() {
			modified := e.LastModified.UTC()
			entry.LastModified = &modified
		}
		out.Entries = append(out.Entries, entry)
	}
	return out
}
