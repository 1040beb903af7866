package lock

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/data/errors"
)

// Manager tracks at most one lock per file id.
// Locks with a timeout are released by a one-shot timer stored next to the record.
type Manager struct {
	mu    sync.Mutex
	locks map[string]*record
	now   func() time.Time

	// Called after an expiry timer released a lock, outside of mu.
	OnExpire func(id string, info data.LockInfo)
}

type record struct {
	info    data.LockInfo
	expires time.Time
	timer   *time.Timer
}

func NewManager() *Manager {
	return &Manager{
		locks: make(map[string]*record),
		now:   time.Now,
	}
}

// Lock places a new lock on id.
// A zero timeout creates a lock without expiry.
func (m *Manager) Lock(id, name, owner string, timeout time.Duration) (data.LockInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec := m.activeUnsafe(id); rec != nil {
		return data.LockInfo{}, errors.AlreadyLocked(name)
	}

	rec := &record{
		info: data.LockInfo{
			Token:   newToken(),
			Owner:   owner,
			Timeout: max(timeout, 0),
		},
	}

	if timeout > 0 {
		rec.expires = m.now().Add(timeout)
		rec.timer = time.AfterFunc(timeout, func() {
			m.expire(id, rec)
		})
	}

	m.locks[id] = rec
	return rec.info, nil
}

// Unlock releases the lock on id if token matches.
func (m *Manager) Unlock(id, name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.activeUnsafe(id)
	if rec == nil {
		return errors.NotLocked(name)
	}

	if token == "" || token != rec.info.Token {
		return errors.LockTokenMismatch(name)
	}

	m.releaseUnsafe(id, rec)
	return nil
}

// Check verifies token against the lock on id.
// Unlocked files accept any token.
func (m *Manager) Check(id, name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.activeUnsafe(id)
	if rec == nil {
		return nil
	}

	if token == "" || token != rec.info.Token {
		return errors.LockTokenMismatch(name)
	}
	return nil
}

// IsLocked returns true if id holds an active lock.
func (m *Manager) IsLocked(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.activeUnsafe(id) != nil
}

// Info returns the active lock of id.
func (m *Manager) Info(id string) (data.LockInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec := m.activeUnsafe(id); rec != nil {
		return rec.info, true
	}
	return data.LockInfo{}, false
}

// Forget drops the lock of id without token checks, e.g. after the file was deleted.
func (m *Manager) Forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, exists := m.locks[id]; exists {
		m.releaseUnsafe(id, rec)
	}
}

// Len returns the number of active locks.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for id := range m.locks {
		if m.activeUnsafe(id) != nil {
			count++
		}
	}
	return count
}

// Reset releases every lock and stops all pending timers.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, rec := range m.locks {
		m.releaseUnsafe(id, rec)
	}
}

// activeUnsafe returns the lock of id unless it already expired.
// MUST be called while holding mu.
func (m *Manager) activeUnsafe(id string) *record {
	rec, exists := m.locks[id]
	if !exists {
		return nil
	}

	// The timer may not have fired yet although the deadline passed.
	if !rec.expires.IsZero() && !m.now().Before(rec.expires) {
		m.releaseUnsafe(id, rec)
		return nil
	}
	return rec
}

// releaseUnsafe removes rec and cancels its timer.
// MUST be called while holding mu.
func (m *Manager) releaseUnsafe(id string, rec *record) {
	if rec.timer != nil {
		rec.timer.Stop()
	}
	if m.locks[id] == rec {
		delete(m.locks, id)
	}
}

func (m *Manager) expire(id string, rec *record) {
	m.mu.Lock()
	// A newer lock may have replaced rec in the meantime.
	if m.locks[id] != rec {
		m.mu.Unlock()
		return
	}
	delete(m.locks, id)
	onExpire := m.OnExpire
	m.mu.Unlock()

	if onExpire != nil {
		onExpire(id, rec.info)
	}
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
