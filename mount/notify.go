package mount

import (
	"context"
	"time"

	"github.com/mwantia/tenantvfs/event"
	"github.com/mwantia/tenantvfs/identity"
	"github.com/mwantia/tenantvfs/mount/backend"
	"github.com/mwantia/tenantvfs/search"
)

// changes collects the side effects of a mutation while the tree is locked.
// They are applied by commit after the lock was released.
type changes struct {
	user    *identity.User
	events  []event.Event
	indexed []search.Document
	removed []string
	garbage []backend.ContentKey
}

func newChanges(user *identity.User) *changes {
	return &changes{
		user: user,
	}
}

// emitUnsafe records an event for n and refreshes its search document.
// MUST be called while holding the read or write lock.
func (mp *MountPoint) emitUnsafe(ch *changes, kind event.EventType, n *node, oldPath string) {
	path := mp.pathUnsafe(n).String()
	ch.events = append(ch.events, event.Event{
		Type:      kind,
		Tenant:    mp.tenant,
		ID:        n.id,
		Path:      path,
		OldPath:   oldPath,
		MediaType: n.mediaType(),
		User:      ch.user.ID,
		Time:      time.Now(),
	})

	if mp.options.Searcher == nil {
		return
	}

	switch kind {
	case event.EventDeleted:
		ch.removed = append(ch.removed, n.id)
	case event.EventLocked, event.EventUnlocked:
	case event.EventRenamed, event.EventMoved:
		mp.walkUnsafe(n, func(cur *node) bool {
			ch.indexed = append(ch.indexed, mp.documentUnsafe(cur))
			return true
		})
	default:
		ch.indexed = append(ch.indexed, mp.documentUnsafe(n))
	}
}

// documentUnsafe converts n into its search document.
// MUST be called while holding the read or write lock.
func (mp *MountPoint) documentUnsafe(n *node) search.Document {
	return search.Document{
		ID:         n.id,
		Name:       n.name,
		Path:       mp.pathUnsafe(n).String(),
		MediaType:  n.mediaType(),
		Folder:     n.isFolder(),
		Properties: n.propertiesCopy(),
	}
}

// commit applies collected changes. Failures are logged since the tree
// mutation already happened.
func (mp *MountPoint) commit(ctx context.Context, ch *changes) {
	for _, key := range ch.garbage {
		if err := mp.backend.DeleteContent(ctx, key); err != nil {
			mp.log.Warn("Unable to delete content '%s': %v", key, err)
		}
	}

	if searcher := mp.options.Searcher; searcher != nil {
		for _, id := range ch.removed {
			if err := searcher.Remove(ctx, id); err != nil {
				mp.log.Warn("Unable to remove '%s' from search index: %v", id, err)
			}
		}
		for _, doc := range ch.indexed {
			if err := searcher.Index(ctx, doc); err != nil {
				mp.log.Warn("Unable to index '%s': %v", doc.Path, err)
			}
		}
	}

	for _, e := range ch.events {
		mp.options.Events.Publish(ctx, e)
	}
}

// discardUnsafe queues the content of every version of the removed files.
// MUST be called while holding the write lock.
func (mp *MountPoint) discardUnsafe(ch *changes, removed []*node) {
	for _, n := range removed {
		for _, v := range n.versions {
			ch.garbage = append(ch.garbage, contentKey(mp.tenant, n.id, v))
		}
	}
}

func touch(n *node, user *identity.User) {
	n.modifiedAt = time.Now()
	n.properties[PropertyModifiedBy] = []string{user.ID}
}
