package lock

import (
	"sync"
	"testing"
	"time"

	"github.com/mwantia/tenantvfs/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_DoubleLock(t *testing.T) {
	m := NewManager()

	info, err := m.Lock("id", "/a.txt", "alice", 0)
	require.NoError(t, err)
	assert.Len(t, info.Token, 32)
	assert.Equal(t, "alice", info.Owner)
	assert.Zero(t, info.Timeout)

	_, err = m.Lock("id", "/a.txt", "bob", 0)
	assert.ErrorIs(t, err, data.ErrConflict)
	assert.True(t, m.IsLocked("id"))
}

func TestManager_Unlock(t *testing.T) {
	m := NewManager()

	err := m.Unlock("id", "/a.txt", "token")
	assert.ErrorIs(t, err, data.ErrConflict, "unlock without lock")

	info, err := m.Lock("id", "/a.txt", "alice", time.Hour)
	require.NoError(t, err)

	assert.ErrorIs(t, m.Unlock("id", "/a.txt", "wrong"), data.ErrForbidden)
	assert.ErrorIs(t, m.Unlock("id", "/a.txt", ""), data.ErrForbidden)
	assert.True(t, m.IsLocked("id"))

	require.NoError(t, m.Unlock("id", "/a.txt", info.Token))
	assert.False(t, m.IsLocked("id"))
	assert.Zero(t, m.Len())
}

func TestManager_Check(t *testing.T) {
	m := NewManager()
	assert.NoError(t, m.Check("id", "/a.txt", ""), "unlocked files accept any token")

	info, err := m.Lock("id", "/a.txt", "alice", 0)
	require.NoError(t, err)

	assert.NoError(t, m.Check("id", "/a.txt", info.Token))
	assert.ErrorIs(t, m.Check("id", "/a.txt", ""), data.ErrForbidden)
	assert.ErrorIs(t, m.Check("id", "/a.txt", "other"), data.ErrLocked)
}

func TestManager_Expiry(t *testing.T) {
	m := NewManager()

	var mu sync.Mutex
	expired := make([]string, 0)
	m.OnExpire = func(id string, info data.LockInfo) {
		mu.Lock()
		defer mu.Unlock()
		expired = append(expired, id)
	}

	_, err := m.Lock("id", "/a.txt", "alice", 20*time.Millisecond)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(expired) == 1
	}, time.Second, 5*time.Millisecond)

	assert.False(t, m.IsLocked("id"))

	_, err = m.Lock("id", "/a.txt", "bob", 0)
	assert.NoError(t, err, "a fresh lock succeeds after expiry")
}

func TestManager_ExpiryDeadlineWithoutTimer(t *testing.T) {
	m := NewManager()
	now := time.Now()
	m.now = func() time.Time { return now }

	_, err := m.Lock("id", "/a.txt", "alice", time.Hour)
	require.NoError(t, err)
	assert.True(t, m.IsLocked("id"))

	now = now.Add(2 * time.Hour)
	assert.False(t, m.IsLocked("id"))
	assert.ErrorIs(t, m.Unlock("id", "/a.txt", "any"), data.ErrConflict)
}

func TestManager_StaleExpiryDoesNotReleaseNewLock(t *testing.T) {
	m := NewManager()

	first, err := m.Lock("id", "/a.txt", "alice", 30*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, m.Unlock("id", "/a.txt", first.Token))

	second, err := m.Lock("id", "/a.txt", "bob", 0)
	require.NoError(t, err)

	// Simulate the first timer firing late after it was already replaced.
	m.mu.Lock()
	stale := &record{info: first}
	m.mu.Unlock()
	m.expire("id", stale)

	time.Sleep(60 * time.Millisecond)

	info, locked := m.Info("id")
	require.True(t, locked)
	assert.Equal(t, second.Token, info.Token)
}

func TestManager_Reset(t *testing.T) {
	m := NewManager()

	for _, id := range []string{"a", "b", "c"} {
		_, err := m.Lock(id, id, "alice", time.Hour)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, m.Len())

	m.Reset()
	assert.Zero(t, m.Len())

	m.Forget("a")
	assert.False(t, m.IsLocked("a"))
}
