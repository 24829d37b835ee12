package listing

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CompareFunc orders two entry names.
type CompareFunc func(a, b string) int

// Order sorts entries with directories first and names ascending within each
// group. A nil compare falls back to codepoint order. The input is not modified.
func Order(entries []DisplayEntry, compare CompareFunc) []DisplayEntry {
	if compare == nil {
		compare = strings.Compare
	}
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b DisplayEntry) int {
		if a.IsDirectory != b.IsDirectory {
			if a.IsDirectory {
				return -1
			}
			return 1
		}
		return compare(a.Name, b.Name)
	})
	return sorted
}

// CollatedCompare orders names by the collation rules of tag. Names the
// collator considers equal fall back to codepoint order so the result stays
// total.
//
// The returned function is not safe for concurrent use; build one per request.
func CollatedCompare(tag language.Tag) CompareFunc {
	c := collate.New(tag)
	return func(a, b string) int {
		if r := c.CompareString(a, b); r != 0 {
			return r
		}
		return strings.Compare(a, b)
	}
}
