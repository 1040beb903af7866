package search

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/mwantia/tenantvfs/data/errors"
)

const (
	FieldName      = "name"
	FieldPath      = "path"
	FieldMediaType = "mediaType"
	FieldType      = "type"
)

// Term matches a single field against a glob pattern.
type Term struct {
	Field   string
	Pattern string

	glob glob.Glob
}

// Query is a conjunction of terms. The empty query matches everything.
type Query []Term

// ParseQuery splits raw on whitespace into "field:pattern" terms.
// A term without a field matches the name. Patterns are compiled with '/'
// as separator, so '*' stays within a segment and '**' crosses segments.
func ParseQuery(raw string) (Query, error) {
	var query Query
	for _, token := range strings.Fields(raw) {
		field, pattern, found := strings.Cut(token, ":")
		if !found {
			field, pattern = FieldName, token
		}
		if field == "" || pattern == "" {
			return nil, errors.InvalidArgument("invalid search term '%s'", token)
		}

		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.InvalidArgument("invalid search pattern '%s': %v", pattern, err)
		}

		query = append(query, Term{Field: field, Pattern: pattern, glob: g})
	}
	return query, nil
}

// Matches reports whether doc satisfies every term.
func (q Query) Matches(doc Document) bool {
	for _, term := range q {
		if !term.matches(doc) {
			return false
		}
	}
	return true
}

func (t Term) matches(doc Document) bool {
	switch t.Field {
	case FieldName:
		return t.match(doc.Name)
	case FieldPath:
		return t.match(doc.Path)
	case FieldMediaType:
		return t.match(doc.MediaType)
	case FieldType:
		if doc.Folder {
			return t.match("folder")
		}
		return t.match("file")
	}

	for _, value := range doc.Properties[t.Field] {
		if t.match(value) {
			return true
		}
	}
	return false
}

func (t Term) match(value string) bool {
	if t.glob == nil {
		return false
	}
	return t.glob.Match(value)
}
