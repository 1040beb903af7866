package backend

import (
	"io"

	"github.com/mwantia/tenantvfs/data/errors"
)

// ContentKey addresses a single content version of a file within a tenant.
type ContentKey struct {
	Namespace string
	FileID    string
	VersionID string
}

// Key returns "file/version" without namespace.
func (k ContentKey) Key() string {
	return k.FileID + "/" + k.VersionID
}

// Path returns "namespace/file/version", used by hierarchical stores.
func (k ContentKey) Path() string {
	if k.Namespace == "" {
		return k.Key()
	}
	return k.Namespace + "/" + k.Key()
}

func (k ContentKey) String() string {
	return NamespacedKey(k.Namespace, k.Key())
}

// NamespacedKey combines namespace and key for non-SQL backends.
// Returns "namespace:key" format, or just "key" if namespace is empty.
func NamespacedKey(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + ":" + key
}

// ContentNotFound is returned by ReadContent for unknown keys.
func ContentNotFound(key ContentKey) error {
	return errors.ItemNotFound(nil, "content "+key.String())
}

// ReadLimited reads r fully and fails once more than limit bytes arrive.
// A limit of zero or less disables the check.
func ReadLimited(name string, r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		buffer, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Backend(err, name, "unable to read content")
		}
		return buffer, nil
	}

	buffer, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, errors.Backend(err, name, "unable to read content")
	}
	if int64(len(buffer)) > limit {
		return nil, errors.Backend(nil, name, "content exceeds maximum object size of %d bytes", limit)
	}
	return buffer, nil
}
