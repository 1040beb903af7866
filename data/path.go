package data

import (
	"slices"
	"strings"

	"github.com/mwantia/tenantvfs/data/errors"
)

// Path is an immutable, normalized sequence of path segments.
// The zero value is the root path.
type Path struct {
	elements []string
	str      string
}

// Root is the path without any segments.
var Root = Path{str: "/"}

// ParsePath splits raw on '/' and normalizes the result.
// Empty and "." segments are skipped, ".." removes the previous segment.
// Ascending above root returns ErrInvalidPath.
func ParsePath(raw string) (Path, error) {
	elements := make([]string, 0, strings.Count(raw, "/")+1)
	for token := range strings.SplitSeq(raw, "/") {
		switch token {
		case "", ".":
			continue
		case "..":
			if len(elements) == 0 {
				return Path{}, errors.InvalidPath(nil, raw)
			}
			elements = elements[:len(elements)-1]
		default:
			elements = append(elements, token)
		}
	}

	return newPath(elements), nil
}

// MustParsePath is like ParsePath but panics on invalid input.
func MustParsePath(raw string) Path {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func newPath(elements []string) Path {
	if len(elements) == 0 {
		return Root
	}

	return Path{
		elements: elements,
		str:      "/" + strings.Join(elements, "/"),
	}
}

// IsRoot returns true if the path has no segments.
func (p Path) IsRoot() bool {
	return len(p.elements) == 0
}

// Name returns the last segment, or an empty string for root.
func (p Path) Name() string {
	if p.IsRoot() {
		return ""
	}
	return p.elements[len(p.elements)-1]
}

// Parent returns the path without its last segment.
// The parent of root is root.
func (p Path) Parent() Path {
	if len(p.elements) <= 1 {
		return Root
	}
	return newPath(slices.Clone(p.elements[:len(p.elements)-1]))
}

// Len returns the number of segments.
func (p Path) Len() int {
	return len(p.elements)
}

// Elements returns a copy of the segments.
func (p Path) Elements() []string {
	return slices.Clone(p.elements)
}

// Element returns the segment at index i.
func (p Path) Element(i int) string {
	return p.elements[i]
}

// SubPath returns the segments in [begin, end).
// Indexes are clamped to the valid range.
func (p Path) SubPath(begin, end int) Path {
	begin = max(0, min(begin, len(p.elements)))
	end = max(begin, min(end, len(p.elements)))

	return newPath(slices.Clone(p.elements[begin:end]))
}

// SubPathFrom returns the segments starting at begin.
func (p Path) SubPathFrom(begin int) Path {
	return p.SubPath(begin, len(p.elements))
}

// IsChild returns true if ancestor is a strict prefix of p.
func (p Path) IsChild(ancestor Path) bool {
	if len(ancestor.elements) >= len(p.elements) {
		return false
	}

	for i, element := range ancestor.elements {
		if p.elements[i] != element {
			return false
		}
	}
	return true
}

// Resolve parses relative and appends its segments to p.
// A leading ".." in relative may ascend into p itself but never above root.
func (p Path) Resolve(relative string) (Path, error) {
	return ParsePath(p.str + "/" + relative)
}

// Join appends all segments of other to p.
func (p Path) Join(other Path) Path {
	if other.IsRoot() {
		return p
	}

	elements := make([]string, 0, len(p.elements)+len(other.elements))
	elements = append(elements, p.elements...)
	elements = append(elements, other.elements...)

	return newPath(elements)
}

// Child returns p extended by a single segment.
// The name is not validated and must not contain separators.
func (p Path) Child(name string) Path {
	elements := make([]string, 0, len(p.elements)+1)
	elements = append(elements, p.elements...)
	elements = append(elements, name)

	return newPath(elements)
}

// Relative returns the path of p below ancestor without a leading slash.
// It returns an empty string if p equals ancestor or is not below it.
func (p Path) Relative(ancestor Path) string {
	if !p.IsChild(ancestor) {
		return ""
	}
	return strings.Join(p.elements[len(ancestor.elements):], "/")
}

// Equals compares both paths segment by segment.
func (p Path) Equals(other Path) bool {
	return slices.Equal(p.elements, other.elements)
}

func (p Path) String() string {
	if p.str == "" {
		return "/"
	}
	return p.str
}

// ValidName reports whether name can be used as a single path segment.
func ValidName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.Contains(name, "/")
}
