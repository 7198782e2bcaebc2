//go:generate go run go.uber.org/mock/mockgen -source=events.go -destination=../mocks/mock_events.go -package=mocks

package roster

import (
	"context"
	"time"

	"footybot/backend/internal/models"
)

// EventType names a roster change.
type EventType string

const (
	EventSelectionOpened EventType = "selection_opened"
	EventPresenceMarked  EventType = "presence_marked"
	EventSelectionClosed EventType = "selection_closed"
	EventAdminGranted    EventType = "admin_granted"
)

// Event describes a completed roster mutation.
type Event struct {
	Type     EventType       `json:"type"`
	ChatID   int64           `json:"chat_id"`
	ActorID  int64           `json:"actor_id"`
	Presence models.Presence `json:"presence,omitempty"`
	InCount  int             `json:"in_count"`
	TargetID int64           `json:"target_id,omitempty"`
	Teams    []models.Team   `json:"teams,omitempty"`
	At       time.Time       `json:"at"`
}

// Publisher fans roster events out to external consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Archiver records closed rounds.
type Archiver interface {
	ArchiveMatch(ctx context.Context, record *models.MatchRecord) error
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
