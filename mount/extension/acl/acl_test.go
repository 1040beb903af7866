package acl_test

import (
	"testing"

	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/identity"
	"github.com/mwantia/tenantvfs/mount/extension/acl"
	"github.com/stretchr/testify/assert"
)

var (
	alice = data.UserPrincipal("A")
	bob   = data.UserPrincipal("B")
)

func TestUpdate_MergeRemovesEmptyPrincipal(t *testing.T) {
	current := acl.ACL{alice: acl.NewPermissionSet(data.PermissionRead)}

	result := acl.Update(current, []data.AccessControlEntry{
		{Principal: alice, Permissions: []string{}},
	}, false)

	assert.Empty(t, result)
	assert.Contains(t, current, alice, "update must not modify the input")
}

func TestUpdate_MergeUnionsPermissions(t *testing.T) {
	current := acl.ACL{alice: acl.NewPermissionSet(data.PermissionRead)}

	result := acl.Update(current, []data.AccessControlEntry{
		{Principal: alice, Permissions: []string{data.PermissionWrite}},
		{Principal: bob, Permissions: []string{data.PermissionRead}},
	}, false)

	assert.Equal(t, []data.AccessControlEntry{
		{Principal: alice, Permissions: []string{data.PermissionRead, data.PermissionWrite}},
		{Principal: bob, Permissions: []string{data.PermissionRead}},
	}, result.Entries())
}

func TestUpdate_OverrideReplaces(t *testing.T) {
	current := acl.ACL{alice: acl.NewPermissionSet(data.PermissionRead)}

	result := acl.Update(current, []data.AccessControlEntry{
		{Principal: bob, Permissions: []string{data.PermissionWrite}},
	}, true)

	assert.Equal(t, acl.ACL{bob: acl.NewPermissionSet(data.PermissionWrite)}, result)
}

func TestEffective(t *testing.T) {
	list := acl.ACL{
		data.UserPrincipal("alice"):             acl.NewPermissionSet(data.PermissionWrite),
		data.UserPrincipal(data.AnyPrincipal):   acl.NewPermissionSet(data.PermissionRead),
		data.GroupPrincipal("admins"):           acl.NewPermissionSet(data.PermissionUpdateACL),
		data.GroupPrincipal("workspace/viewer"): acl.NewPermissionSet(),
	}

	user := &identity.User{ID: "alice", Groups: []string{"admins"}}
	assert.Equal(t, []string{"read", "update_acl", "write"}, acl.Effective(list, user).Sorted())

	stranger := &identity.User{ID: "eve"}
	assert.Equal(t, []string{"read"}, acl.Effective(list, stranger).Sorted())

	assert.Empty(t, acl.Effective(acl.ACL{}, stranger))
}

func TestPermissionSet_All(t *testing.T) {
	set := acl.NewPermissionSet(data.PermissionAll)

	assert.True(t, set.Allows(data.PermissionRead))
	assert.True(t, set.Allows(data.PermissionUpdateACL))
	assert.False(t, acl.NewPermissionSet(data.PermissionRead).Allows(data.PermissionWrite))
}

func TestDefaultRootACL(t *testing.T) {
	root := acl.DefaultRootACL("workspace/developer")

	developer := &identity.User{ID: "dev", Groups: []string{"workspace/developer"}}
	assert.True(t, acl.Effective(root, developer).Allows(data.PermissionWrite))
	assert.True(t, acl.Effective(root, identity.Anonymous).Allows(data.PermissionRead))
	assert.False(t, acl.Effective(root, identity.Anonymous).Allows(data.PermissionWrite))
}
