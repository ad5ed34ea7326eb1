// Package index maps stable identifiers stored in entity metadata to the
// entities' positions in a timeline.
package index

import (
	"sort"

	"github.com/google/uuid"

	"timelinekit/internal/jsonvalue"
	"timelinekit/internal/model"
)

// Key is the field under the namespace object holding the identifier.
const Key = "id"

// GetID reads metadata[ns][Key].
func GetID(e model.Entity, ns string) (string, bool) {
	c := e.Base()
	raw, ok := c.Metadata.Get(ns)
	if !ok {
		return "", false
	}
	obj, ok := raw.(*jsonvalue.Object)
	if !ok {
		return "", false
	}
	v, ok := obj.Get(Key)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// SetID writes metadata[ns][Key], replacing a namespace value that is not an
// object. An empty id removes the key and leaves the namespace object in
// place.
func SetID(e model.Entity, ns, id string) {
	c := e.Base()
	if c.Metadata == nil {
		c.Metadata = jsonvalue.NewObject()
	}
	raw, _ := c.Metadata.Get(ns)
	obj, ok := raw.(*jsonvalue.Object)
	if id == "" {
		if ok {
			obj.Delete(Key)
		}
		return
	}
	if !ok {
		obj = jsonvalue.NewObject()
		c.Metadata.Set(ns, obj)
	}
	obj.Set(Key, id)
}

// Location is where an identified entity sits. Item is -1 for a track.
type Location struct {
	Track  int
	Item   int
	Kind   string
	Entity model.Entity
}

// Index is a lookup table over a timeline. It does not own the entities and
// goes stale when the tree is edited.
type Index struct {
	byID       map[string]Location
	duplicates []string
}

// Build indexes every Track, Clip, Gap and Transition that carries an id.
// When an id repeats, the first occurrence wins and the id is reported by
// Duplicates.
func Build(tl *model.Timeline, ns string) *Index {
	idx := &Index{byID: make(map[string]Location)}
	dup := make(map[string]struct{})
	add := func(e model.Entity, loc Location) {
		id, ok := GetID(e, ns)
		if !ok {
			return
		}
		if _, exists := idx.byID[id]; exists {
			if _, seen := dup[id]; !seen {
				dup[id] = struct{}{}
				idx.duplicates = append(idx.duplicates, id)
			}
			return
		}
		loc.Kind = e.SchemaName()
		loc.Entity = e
		idx.byID[id] = loc
	}
	eachEntity(tl, func(e model.Entity, track, item int) {
		add(e, Location{Track: track, Item: item})
	})
	return idx
}

// Lookup returns the location of id.
func (idx *Index) Lookup(id string) (Location, bool) {
	loc, ok := idx.byID[id]
	return loc, ok
}

// Len returns the number of distinct ids.
func (idx *Index) Len() int {
	return len(idx.byID)
}

// IDs returns the indexed ids ordered by position in the tree.
func (idx *Index) IDs() []string {
	out := make([]string, 0, len(idx.byID))
	for id := range idx.byID {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := idx.byID[out[i]], idx.byID[out[j]]
		if a.Track != b.Track {
			return a.Track < b.Track
		}
		return a.Item < b.Item
	})
	return out
}

// Duplicates returns ids that appear on more than one entity.
func (idx *Index) Duplicates() []string {
	return append([]string(nil), idx.duplicates...)
}

// Assign gives a fresh random id to every indexable entity without one and
// returns how many were written.
func Assign(tl *model.Timeline, ns string) int {
	n := 0
	eachEntity(tl, func(e model.Entity, _, _ int) {
		if _, ok := GetID(e, ns); ok {
			return
		}
		SetID(e, ns, uuid.NewString())
		n++
	})
	return n
}

func eachEntity(tl *model.Timeline, fn func(e model.Entity, track, item int)) {
	if tl == nil || tl.Tracks == nil {
		return
	}
	for i, tr := range tl.Tracks.Children {
		if tr == nil {
			continue
		}
		fn(tr, i, -1)
		for j, it := range tr.Children {
			if it == nil {
				continue
			}
			fn(it, i, j)
		}
	}
}
