package identity

import (
	"context"
	"slices"
	"sync"
)

// Anonymous is used for callers without an identity in their context.
var Anonymous = &User{ID: "anonymous"}

// User is the caller an operation is evaluated for.
type User struct {
	ID     string
	Groups []string
}

// InGroup returns true if the user is a member of group.
func (u *User) InGroup(group string) bool {
	return slices.Contains(u.Groups, group)
}

type userContext struct {
	context.Context

	user *User
}

type userKey struct{}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *User) context.Context {
	return &userContext{
		Context: ctx,
		user:    user,
	}
}

func (c *userContext) Value(key any) any {
	if _, ok := key.(userKey); ok {
		return c.user
	}
	return c.Context.Value(key)
}

// FromContext returns the user stored in ctx or Anonymous.
func FromContext(ctx context.Context) *User {
	if ctx != nil {
		if user, ok := ctx.Value(userKey{}).(*User); ok && user != nil {
			return user
		}
	}
	return Anonymous
}

// Resolver looks up the groups a user belongs to.
type Resolver interface {
	Groups(ctx context.Context, userID string) ([]string, error)
}

// Resolve builds a User for userID with the groups reported by resolver.
func Resolve(ctx context.Context, resolver Resolver, userID string) (*User, error) {
	groups, err := resolver.Groups(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:     userID,
		Groups: groups,
	}, nil
}

// StaticResolver resolves groups from a fixed membership table.
type StaticResolver struct {
	mu     sync.RWMutex
	groups map[string][]string
}

func NewStaticResolver() *StaticResolver {
	return &StaticResolver{
		groups: make(map[string][]string),
	}
}

// AddMember adds userID to group.
func (sr *StaticResolver) AddMember(group, userID string) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if !slices.Contains(sr.groups[userID], group) {
		sr.groups[userID] = append(sr.groups[userID], group)
	}
}

func (sr *StaticResolver) Groups(ctx context.Context, userID string) ([]string, error) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	return slices.Clone(sr.groups[userID]), nil
}
