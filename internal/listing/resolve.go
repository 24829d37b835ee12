package listing

import "strings"

// ParentName is the display name of the synthetic parent-navigation entry.
const ParentName = ".."

// Resolution is the outcome of resolving a request path: either a FileAccess
// or a DirectoryListing.
type Resolution interface {
	resolution()
}

// FileAccess means the request path names an object key exactly.
type FileAccess struct {
	Key string
}

// DirectoryListing is the ordered content of a virtual directory.
type DirectoryListing struct {
	// Path holds the directory's segments; empty at the bucket root.
	Path []string
	// Parent is the request path one level up; empty at the root.
	Parent string
	// Entries starts with the ".." entry unless this is the root.
	Entries []DisplayEntry
}

func (FileAccess) resolution()       {}
func (DirectoryListing) resolution() {}

// IsRoot reports whether the listing is the bucket root.
func (d DirectoryListing) IsRoot() bool {
	return len(d.Path) == 0
}

// Children returns the entries without the ".." entry.
func (d DirectoryListing) Children() []DisplayEntry {
	if len(d.Entries) > 0 && d.Entries[0].IsParent {
		return d.Entries[1:]
	}
	return d.Entries
}

// Resolver classifies request paths against an object snapshot.
type Resolver struct {
	// Compare orders names within the directory and file groups.
	Compare CompareFunc
}

// Resolve returns FileAccess when requestPath, minus one leading and one
// trailing delimiter, equals an object key verbatim. Every other path,
// the root included, resolves to a DirectoryListing.
func (r Resolver) Resolve(requestPath string, objects []ObjectRecord) Resolution {
	if key := trimDelimiters(requestPath); key != "" {
		for _, obj := range objects {
			if obj.Key == key {
				return FileAccess{Key: key}
			}
		}
	}
	return r.Listing(requestPath, objects)
}

// Listing treats requestPath as a directory prefix, whether or not any object
// lives under it. A path with no matching objects yields no children.
func (r Resolver) Listing(requestPath string, objects []ObjectRecord) DirectoryListing {
	prefix := Segments(requestPath)
	entries := Order(ListChildren(objects, prefix), r.Compare)

	listing := DirectoryListing{Path: prefix}
	if len(prefix) > 0 {
		listing.Parent = ParentPath(prefix)
		parent := DisplayEntry{Name: ParentName, IsDirectory: true, IsParent: true}
		entries = append([]DisplayEntry{parent}, entries...)
	}
	listing.Entries = entries
	return listing
}

// Resolve resolves requestPath with codepoint ordering.
func Resolve(requestPath string, objects []ObjectRecord) Resolution {
	return Resolver{}.Resolve(requestPath, objects)
}

// ParentPath strips the last segment and returns the remaining path, or "/".
func ParentPath(segs []string) string {
	if len(segs) <= 1 {
		return Delimiter
	}
	return Delimiter + strings.Join(segs[:len(segs)-1], Delimiter)
}

func trimDelimiters(p string) string {
	p = strings.TrimPrefix(p, Delimiter)
	return strings.TrimSuffix(p, Delimiter)
}
