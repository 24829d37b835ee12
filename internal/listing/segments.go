package listing

import "strings"

// Delimiter separates path segments in object keys and request paths.
const Delimiter = "/"

// Segments splits a key or path on the delimiter, dropping empty segments so
// leading, trailing and doubled delimiters are ignored.
func Segments(key string) []string {
	parts := strings.Split(key, Delimiter)
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

// IsMarker reports whether key is a folder marker, i.e. ends with the delimiter.
func IsMarker(key string) bool {
	return strings.HasSuffix(key, Delimiter)
}

func hasPrefix(segs, prefix []string) bool {
	if len(segs) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if segs[i] != p {
			return false
		}
	}
	return true
}
