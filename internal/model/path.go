package model

import "strconv"

// Path addresses a node of a document, e.g.
// "tracks.children[2].children[0].source_range.duration".
type Path string

// Field appends an object key.
func (p Path) Field(name string) Path {
	if p == "" {
		return Path(name)
	}
	return p + "." + Path(name)
}

// Index appends a sequence index.
func (p Path) Index(i int) Path {
	return p + "[" + Path(strconv.Itoa(i)) + "]"
}

func (p Path) String() string {
	if p == "" {
		return "$"
	}
	return string(p)
}
