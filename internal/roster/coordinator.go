// Package roster implements the per-chat selection rounds: opening and closing
// the voting window, recording opt-ins and opt-outs, admin authorization and
// splitting the players into teams.
package roster

import (
	"context"
	"strconv"
	"strings"
	"time"

	"footybot/backend/internal/config"
	"footybot/backend/internal/logging"
	"footybot/backend/internal/models"

	"github.com/samber/lo"
)

// Actor is the user performing an operation.
type Actor struct {
	ID          int64
	DisplayName string
}

// CloseResult is the outcome of a successful CloseSelection.
type CloseResult struct {
	Teams        []models.Team
	Participants int
}

// NoParticipants reports whether the round closed with nobody IN.
func (r *CloseResult) NoParticipants() bool { return r.Participants == 0 }

// PresenceResult is the outcome of a successful MarkPresence.
type PresenceResult struct {
	Presence models.Presence
	InCount  int
}

// Status is a read-only view of a chat's round.
type Status struct {
	Active bool
	In     []string
	Out    []string
}

// Coordinator runs roster operations against sessions from a Store.
type Coordinator struct {
	store         *Store
	partitioner   *Partitioner
	roles         RoleLookup
	lookupTimeout time.Duration
	publisher     Publisher
	archiver      Archiver
	now           func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithRoleLookup enables group-role checks in IsAdmin, each bounded by timeout.
func WithRoleLookup(lookup RoleLookup, timeout time.Duration) Option {
	return func(c *Coordinator) {
		c.roles = lookup
		if timeout > 0 {
			c.lookupTimeout = timeout
		}
	}
}

// WithPublisher sets where roster events go.
func WithPublisher(p Publisher) Option {
	return func(c *Coordinator) { c.publisher = p }
}

// WithArchiver records every closed round that had players.
func WithArchiver(a Archiver) Option {
	return func(c *Coordinator) { c.archiver = a }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator creates a Coordinator over store.
func NewCoordinator(store *Store, partitioner *Partitioner, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:         store,
		partitioner:   partitioner,
		lookupTimeout: config.DefaultRoleLookupTimeout,
		publisher:     NopPublisher{},
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsAdmin reports whether userID may run admin operations in chatID: either
// it is in the chat's admin set, or the chat is a group and the platform says
// the user owns or administers it. A failed lookup counts as "no".
func (c *Coordinator) IsAdmin(ctx context.Context, chatID, userID int64) bool {
	if c.store.GetOrCreate(chatID).hasAdmin(userID) {
		return true
	}
	if c.roles == nil || !IsGroupChat(chatID) {
		return false
	}

	lookupCtx, cancel := context.WithTimeout(ctx, c.lookupTimeout)
	defer cancel()

	role, err := c.roles.LookupRole(lookupCtx, chatID, userID)
	if err != nil {
		l := logging.Ctx(ctx)
		l.Warn().Err(err).Int64(logging.FieldChatID, chatID).Int64(logging.FieldUserID, userID).
			Msg("group role lookup failed, using local admin set only")
		return false
	}
	return role.Privileged()
}

// OpenSelection opens the voting window and resets every known member to OUT.
// Opening an open round just repeats the reset.
func (c *Coordinator) OpenSelection(ctx context.Context, chatID int64, actor Actor) error {
	if !c.IsAdmin(ctx, chatID, actor.ID) {
		return ErrUnauthorized
	}

	session := c.store.GetOrCreate(chatID)
	session.mu.Lock()
	session.active = true
	for id, m := range session.members {
		m.Presence = models.PresenceOut
		session.members[id] = m
	}
	reset := len(session.members)
	session.mu.Unlock()

	logging.AuditWithDetail(ctx, logging.ActionOpenSelection, chatID, actor.ID, strconv.Itoa(reset), "selection opened")
	c.publish(ctx, Event{Type: EventSelectionOpened, ChatID: chatID, ActorID: actor.ID})
	return nil
}

// CloseSelection closes the voting window and splits the IN members into
// teams, which replace the chat's previous teams.
func (c *Coordinator) CloseSelection(ctx context.Context, chatID int64, actor Actor) (*CloseResult, error) {
	if !c.IsAdmin(ctx, chatID, actor.ID) {
		return nil, ErrUnauthorized
	}

	session := c.store.GetOrCreate(chatID)
	session.mu.Lock()
	if !session.active {
		session.mu.Unlock()
		return nil, ErrNotActive
	}
	in := session.membersIn()
	teams := c.partitioner.Partition(in)
	session.active = false
	session.lastTeams = teams
	result := &CloseResult{Teams: cloneTeams(teams), Participants: len(in)}
	session.mu.Unlock()

	logging.AuditWithDetail(ctx, logging.ActionCloseSelection, chatID, actor.ID, strconv.Itoa(len(in)), "selection closed")
	c.publish(ctx, Event{
		Type:    EventSelectionClosed,
		ChatID:  chatID,
		ActorID: actor.ID,
		InCount: result.Participants,
		Teams:   result.Teams,
	})

	if c.archiver != nil && !result.NoParticipants() {
		record := models.NewMatchRecord(chatID, actor.ID, c.now(), result.Teams)
		if err := c.archiver.ArchiveMatch(ctx, record); err != nil {
			l := logging.Ctx(ctx)
			l.Error().Err(err).Int64(logging.FieldChatID, chatID).Msg("failed to archive match")
		}
	}
	return result, nil
}

// MarkPresence records the actor's own answer for the open round.
func (c *Coordinator) MarkPresence(ctx context.Context, chatID int64, actor Actor, presence models.Presence) (PresenceResult, error) {
	if !presence.Valid() {
		return PresenceResult{}, ErrInvalidArgument
	}

	session := c.store.GetOrCreate(chatID)
	session.mu.Lock()
	if !session.active {
		session.mu.Unlock()
		return PresenceResult{}, ErrSelectionNotActive
	}
	session.members[actor.ID] = models.Member{
		ID:          actor.ID,
		DisplayName: actor.DisplayName,
		Presence:    presence,
	}
	result := PresenceResult{Presence: presence, InCount: session.countIn()}
	session.mu.Unlock()

	c.publish(ctx, Event{
		Type:     EventPresenceMarked,
		ChatID:   chatID,
		ActorID:  actor.ID,
		Presence: presence,
		InCount:  result.InCount,
	})
	return result, nil
}

// QueryStatus returns the round state with IN and OUT names. Admin only.
func (c *Coordinator) QueryStatus(ctx context.Context, chatID int64, actor Actor) (*Status, error) {
	if !c.IsAdmin(ctx, chatID, actor.ID) {
		return nil, ErrUnauthorized
	}

	snap := c.store.GetOrCreate(chatID).Snapshot()
	names := func(p models.Presence) []string {
		return lo.FilterMap(snap.Members, func(m models.Member, _ int) (string, bool) {
			return m.DisplayName, m.Presence == p
		})
	}
	return &Status{
		Active: snap.Active,
		In:     names(models.PresenceIn),
		Out:    names(models.PresenceOut),
	}, nil
}

// LastTeams returns the teams of the most recent close. Admin only.
func (c *Coordinator) LastTeams(ctx context.Context, chatID int64, actor Actor) ([]models.Team, error) {
	if !c.IsAdmin(ctx, chatID, actor.ID) {
		return nil, ErrUnauthorized
	}
	return c.store.GetOrCreate(chatID).Snapshot().LastTeams, nil
}

// GrantAdmin adds the user named by target to the chat's admin set. target is
// a decimal Telegram user ID. Granting an existing admin is a no-op.
func (c *Coordinator) GrantAdmin(ctx context.Context, chatID int64, actor Actor, target string) (int64, error) {
	if !c.IsAdmin(ctx, chatID, actor.ID) {
		return 0, ErrUnauthorized
	}

	targetID, err := ParseUserID(target)
	if err != nil {
		return 0, err
	}

	session := c.store.GetOrCreate(chatID)
	session.mu.Lock()
	session.admins[targetID] = struct{}{}
	session.mu.Unlock()

	logging.AuditWithDetail(ctx, logging.ActionGrantAdmin, chatID, actor.ID, strconv.FormatInt(targetID, 10), "admin granted")
	c.publish(ctx, Event{Type: EventAdminGranted, ChatID: chatID, ActorID: actor.ID, TargetID: targetID})
	return targetID, nil
}

// ParseUserID parses a positive decimal user ID.
func ParseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidArgument
	}
	return id, nil
}

// Session returns a snapshot of the chat's session.
func (c *Coordinator) Session(chatID int64) Snapshot {
	return c.store.GetOrCreate(chatID).Snapshot()
}

func (c *Coordinator) publish(ctx context.Context, event Event) {
	event.At = c.now()
	if err := c.publisher.Publish(ctx, event); err != nil {
		l := logging.Ctx(ctx)
		l.Warn().Err(err).Int64(logging.FieldChatID, event.ChatID).Str("event", string(event.Type)).
			Msg("failed to publish roster event")
	}
}
