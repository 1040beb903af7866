package data

import (
	"slices"
	"strings"
)

const (
	// Prefix for system properties, which are read-only unless listed below
	PropertyPrefix = "vfs:"
	// Overrides the media type guessed from the file name
	PropertyMimeType = "vfs:mimeType"
)

// Property is a named multi-value attribute of a virtual file.
type Property struct {
	Name   string   `json:"name"`
	Values []string `json:"value"`
}

// IsReadOnlyProperty returns true for system properties callers cannot change.
func IsReadOnlyProperty(name string) bool {
	return strings.HasPrefix(name, PropertyPrefix) && name != PropertyMimeType
}

// PropertyFilter selects which properties are returned with an item.
type PropertyFilter struct {
	all   bool
	names []string
}

var (
	// AllProperties returns every property.
	AllProperties = PropertyFilter{all: true}
	// NoProperties returns none.
	NoProperties = PropertyFilter{}
)

// ParsePropertyFilter parses "*", "none" or a comma separated list of names.
func ParsePropertyFilter(raw string) PropertyFilter {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", "none":
		return NoProperties
	case "*":
		return AllProperties
	}

	filter := PropertyFilter{}
	for name := range strings.SplitSeq(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			filter.names = append(filter.names, name)
		}
	}
	return filter
}

// Accept returns true if the property name passes the filter.
func (f PropertyFilter) Accept(name string) bool {
	return f.all || slices.Contains(f.names, name)
}

// Apply returns the filtered properties sorted by name.
func (f PropertyFilter) Apply(properties map[string][]string) []Property {
	result := make([]Property, 0, len(properties))
	for name, values := range properties {
		if f.Accept(name) {
			result = append(result, Property{Name: name, Values: slices.Clone(values)})
		}
	}

	slices.SortFunc(result, func(a, b Property) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result
}
