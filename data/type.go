package data

import "github.com/mwantia/tenantvfs/data/errors"

// ItemType identifies the kind of a virtual file.
type ItemType string

const (
	ItemTypeFile   ItemType = "file"
	ItemTypeFolder ItemType = "folder"
)

// ParseItemType parses an item type filter.
// An empty string returns an empty ItemType, which matches both kinds.
func ParseItemType(raw string) (ItemType, error) {
	switch ItemType(raw) {
	case "":
		return "", nil
	case ItemTypeFile, ItemTypeFolder:
		return ItemType(raw), nil
	default:
		return "", errors.InvalidItemType(raw)
	}
}

// Matches returns true if kind is accepted by the filter t.
func (t ItemType) Matches(kind ItemType) bool {
	return t == "" || t == kind
}
