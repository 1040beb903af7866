package identity_test

import (
	"context"
	"testing"

	"github.com/mwantia/tenantvfs/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey string

func TestFromContext(t *testing.T) {
	assert.Same(t, identity.Anonymous, identity.FromContext(t.Context()))

	user := &identity.User{ID: "alice", Groups: []string{"dev"}}
	parent := context.WithValue(t.Context(), ctxKey("trace"), "abc")
	ctx := identity.WithUser(parent, user)

	assert.Same(t, user, identity.FromContext(ctx))
	assert.Equal(t, "abc", ctx.Value(ctxKey("trace")))
	assert.True(t, identity.FromContext(ctx).InGroup("dev"))
	assert.False(t, identity.FromContext(ctx).InGroup("ops"))
}

func TestStaticResolver(t *testing.T) {
	resolver := identity.NewStaticResolver()
	resolver.AddMember("workspace/developer", "alice")
	resolver.AddMember("workspace/developer", "alice")
	resolver.AddMember("ops", "alice")

	user, err := identity.Resolve(t.Context(), resolver, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.ID)
	assert.Equal(t, []string{"workspace/developer", "ops"}, user.Groups)

	user, err = identity.Resolve(t.Context(), resolver, "bob")
	require.NoError(t, err)
	assert.Empty(t, user.Groups)
}
