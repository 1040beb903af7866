package event

import (
	"context"
	"time"
)

type EventType string

const (
	EventCreated           EventType = "created"
	EventContentUpdated    EventType = "content_updated"
	EventPropertiesUpdated EventType = "properties_updated"
	EventACLUpdated        EventType = "acl_updated"
	EventRenamed           EventType = "renamed"
	EventMoved             EventType = "moved"
	EventDeleted           EventType = "deleted"
	EventLocked            EventType = "locked"
	EventUnlocked          EventType = "unlocked"
)

// Event describes a single mutation of a tenant tree.
type Event struct {
	Type      EventType `json:"type"`
	Tenant    string    `json:"tenant"`
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	OldPath   string    `json:"oldPath,omitempty"`
	MediaType string    `json:"mediaType,omitempty"`
	User      string    `json:"user,omitempty"`
	Time      time.Time `json:"time"`
}

// Service receives events. Publish must not block the caller for long
// and must not call back into the tree that emitted the event.
type Service interface {
	Publish(ctx context.Context, event Event)
}

// Discard drops every event.
var Discard Service = discard{}

type discard struct{}

func (discard) Publish(context.Context, Event) {}
