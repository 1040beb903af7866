package acl

import (
	"maps"
	"slices"
	"strings"

	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/identity"
)

// PermissionSet is an unordered set of permission names.
type PermissionSet map[string]struct{}

func NewPermissionSet(permissions ...string) PermissionSet {
	set := make(PermissionSet, len(permissions))
	for _, permission := range permissions {
		if permission = strings.TrimSpace(permission); permission != "" {
			set[permission] = struct{}{}
		}
	}
	return set
}

// Allows returns true if the set contains permission or "all".
func (ps PermissionSet) Allows(permission string) bool {
	if _, ok := ps[data.PermissionAll]; ok {
		return true
	}
	_, ok := ps[permission]
	return ok
}

func (ps PermissionSet) Union(other PermissionSet) PermissionSet {
	result := maps.Clone(ps)
	if result == nil {
		result = make(PermissionSet, len(other))
	}
	maps.Copy(result, other)
	return result
}

// Sorted returns the permissions in lexical order.
func (ps PermissionSet) Sorted() []string {
	return slices.Sorted(maps.Keys(ps))
}

// ACL maps principals to their permissions.
type ACL map[data.Principal]PermissionSet

// FromEntries converts wire entries into an ACL.
// Entries with an empty permission list are dropped.
func FromEntries(entries []data.AccessControlEntry) ACL {
	acl := make(ACL, len(entries))
	for _, entry := range entries {
		if set := NewPermissionSet(entry.Permissions...); len(set) > 0 {
			acl[entry.Principal] = acl[entry.Principal].Union(set)
		}
	}
	return acl
}

// Entries returns the ACL sorted by principal type and name.
func (acl ACL) Entries() []data.AccessControlEntry {
	entries := make([]data.AccessControlEntry, 0, len(acl))
	for principal, set := range acl {
		entries = append(entries, data.AccessControlEntry{
			Principal:   principal,
			Permissions: set.Sorted(),
		})
	}

	slices.SortFunc(entries, func(a, b data.AccessControlEntry) int {
		if c := strings.Compare(string(a.Principal.Type), string(b.Principal.Type)); c != 0 {
			return c
		}
		return strings.Compare(a.Principal.Name, b.Principal.Name)
	})
	return entries
}

func (acl ACL) Clone() ACL {
	result := make(ACL, len(acl))
	for principal, set := range acl {
		result[principal] = maps.Clone(set)
	}
	return result
}

// Update applies entries to current and returns the new ACL.
// With override the result only contains entries, otherwise entries are
// merged per principal and an empty permission list removes the principal.
func Update(current ACL, entries []data.AccessControlEntry, override bool) ACL {
	var result ACL
	if override {
		result = make(ACL, len(entries))
	} else {
		result = current.Clone()
	}

	for _, entry := range entries {
		set := NewPermissionSet(entry.Permissions...)
		if len(set) == 0 {
			delete(result, entry.Principal)
			continue
		}
		result[entry.Principal] = result[entry.Principal].Union(set)
	}
	return result
}

// Effective returns the union of permissions granted to user by acl,
// including the ones of the any principal and of the user's groups.
func Effective(acl ACL, user *identity.User) PermissionSet {
	result := make(PermissionSet)
	result = result.Union(acl[data.UserPrincipal(user.ID)])
	result = result.Union(acl[data.UserPrincipal(data.AnyPrincipal)])

	for _, group := range user.Groups {
		result = result.Union(acl[data.GroupPrincipal(group)])
	}
	return result
}

// DefaultRootACL grants everything to group and read access to everyone.
func DefaultRootACL(group string) ACL {
	return ACL{
		data.GroupPrincipal(group):            NewPermissionSet(data.PermissionAll),
		data.UserPrincipal(data.AnyPrincipal): NewPermissionSet(data.PermissionRead),
	}
}
