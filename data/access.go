package data

import "time"

// Basic permissions understood by every node.
const (
	PermissionRead      = "read"
	PermissionWrite     = "write"
	PermissionUpdateACL = "update_acl"
	PermissionAll       = "all"
)

// AnyPrincipal matches every caller.
const AnyPrincipal = "any"

// PrincipalType separates users from groups.
type PrincipalType string

const (
	PrincipalUser  PrincipalType = "user"
	PrincipalGroup PrincipalType = "group"
)

// Principal identifies a user or a group in an access control list.
type Principal struct {
	Name string        `json:"name"`
	Type PrincipalType `json:"type"`
}

func UserPrincipal(name string) Principal {
	return Principal{Name: name, Type: PrincipalUser}
}

func GroupPrincipal(name string) Principal {
	return Principal{Name: name, Type: PrincipalGroup}
}

// AccessControlEntry grants a set of permissions to a principal.
type AccessControlEntry struct {
	Principal   Principal `json:"principal"`
	Permissions []string  `json:"permissions"`
}

// LockInfo describes an acquired lock.
// Timeout is zero for locks without expiry.
type LockInfo struct {
	Token   string        `json:"token"`
	Owner   string        `json:"owner"`
	Timeout time.Duration `json:"timeout"`
}
