package listing

import "time"

// childGroup collects every object that shares one immediate child segment.
type childGroup struct {
	name        string
	exact       []ObjectRecord
	markers     int
	descendants int
	size        uint64
	modified    time.Time
}

// ListChildren returns the immediate children of prefix, one entry per
// distinct child segment, in first-seen order.
//
// A child is a file only when exactly one object is that child and nothing
// lives beneath it. Anything deeper, or a folder marker, makes it a
// directory; exact-key objects and markers never count toward a directory's
// size or modification time.
func ListChildren(objects []ObjectRecord, prefix []string) []DisplayEntry {
	depth := len(prefix)
	groups := make(map[string]*childGroup)
	var order []string

	for _, obj := range objects {
		segs := Segments(obj.Key)
		if len(segs) <= depth || !hasPrefix(segs, prefix) {
			continue
		}

		name := segs[depth]
		g, ok := groups[name]
		if !ok {
			g = &childGroup{name: name}
			groups[name] = g
			order = append(order, name)
		}

		switch {
		case len(segs) > depth+1:
			g.descendants++
			if IsMarker(obj.Key) {
				continue
			}
			g.size += obj.Size
			if obj.LastModified.After(g.modified) {
				g.modified = obj.LastModified
			}
		case IsMarker(obj.Key):
			g.markers++
		default:
			g.exact = append(g.exact, obj)
		}
	}

	entries := make([]DisplayEntry, 0, len(order))
	for _, name := range order {
		entries = append(entries, groups[name].entry())
	}
	return entries
}

func (g *childGroup) entry() DisplayEntry {
	if len(g.exact) == 1 && g.descendants == 0 && g.markers == 0 {
		file := g.exact[0]
		return DisplayEntry{
			Name:         g.name,
			Size:         file.Size,
			LastModified: file.LastModified,
		}
	}
	return DisplayEntry{
		Name:         g.name,
		IsDirectory:  true,
		Size:         g.size,
		LastModified: g.modified,
	}
}
