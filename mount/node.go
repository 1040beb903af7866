package mount

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/identity"
	"github.com/mwantia/tenantvfs/mount/backend"
	"github.com/mwantia/tenantvfs/mount/extension/acl"
	"github.com/tidwall/btree"
)

// System properties maintained by the mount point.
const (
	PropertyCreatedBy  = data.PropertyPrefix + "createdBy"
	PropertyModifiedBy = data.PropertyPrefix + "modifiedBy"
)

// node is the arena record of a file or folder.
// Parents and children are referenced by id only.
type node struct {
	id         string
	name       string
	parentID   string
	kind       data.ItemType
	createdAt  time.Time
	modifiedAt time.Time
	properties map[string][]string
	acl        acl.ACL

	// Folders only, maps child names to ids
	children *btree.Map[string, string]
	// Files only, ordered from oldest to current
	versions []*version
}

// version is an immutable content snapshot of a file.
type version struct {
	id         string
	length     int64
	md5        string
	modifiedAt time.Time
}

func (n *node) isFolder() bool {
	return n.kind == data.ItemTypeFolder
}

func (n *node) current() *version {
	if len(n.versions) == 0 {
		return nil
	}
	return n.versions[len(n.versions)-1]
}

func (n *node) version(id string) *version {
	if id == "" || id == CurrentVersion {
		return n.current()
	}
	for _, v := range n.versions {
		if v.id == id {
			return v
		}
	}
	return nil
}

// mediaType returns the explicit media type property or guesses it from the name.
func (n *node) mediaType() string {
	if n.isFolder() {
		return data.ContentTypeDirectory
	}
	if values := n.properties[data.PropertyMimeType]; len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return data.ContentTypeFromName(n.name)
}

func (n *node) setMediaType(mediaType string) {
	if mediaType == "" {
		return
	}
	n.properties[data.PropertyMimeType] = []string{mediaType}
}

// clone copies n without its relations, its ACL and its versions.
func (n *node) clone(id, name string, user *identity.User) *node {
	result := newNode(id, name, n.kind, user)
	for key, values := range n.properties {
		if key != PropertyCreatedBy && key != PropertyModifiedBy {
			result.properties[key] = slices.Clone(values)
		}
	}
	return result
}

func (n *node) propertiesCopy() map[string][]string {
	result := maps.Clone(n.properties)
	for key, values := range result {
		result[key] = slices.Clone(values)
	}
	return result
}

func contentKey(tenant, id string, v *version) backend.ContentKey {
	return backend.ContentKey{
		Namespace: tenant,
		FileID:    id,
		VersionID: v.id,
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
