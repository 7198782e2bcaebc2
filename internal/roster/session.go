package roster

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"footybot/backend/internal/models"
)

// ChatSession is the roster context of one chat. All access goes through its
// mutex, so operations on the same chat are serialized.
type ChatSession struct {
	mu sync.Mutex

	chatID    int64
	active    bool
	members   map[int64]models.Member
	lastTeams []models.Team
	admins    map[int64]struct{}
}

func newChatSession(chatID int64, bootstrapAdmins []int64) *ChatSession {
	s := &ChatSession{
		chatID:    chatID,
		members:   make(map[int64]models.Member),
		lastTeams: []models.Team{},
		admins:    make(map[int64]struct{}, len(bootstrapAdmins)),
	}
	for _, id := range bootstrapAdmins {
		s.admins[id] = struct{}{}
	}
	return s
}

// Snapshot is a read-only copy of a ChatSession.
type Snapshot struct {
	ChatID    int64
	Active    bool
	Members   []models.Member
	LastTeams []models.Team
	Admins    []int64
}

// ChatID returns the chat this session belongs to.
func (s *ChatSession) ChatID() int64 { return s.chatID }

// Snapshot copies the session state. Members are sorted like status listings,
// admins ascending.
func (s *ChatSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := make([]models.Member, 0, len(s.members))
	for _, m := range s.members {
		members = append(members, m)
	}
	sortMembers(members)

	admins := make([]int64, 0, len(s.admins))
	for id := range s.admins {
		admins = append(admins, id)
	}
	slices.Sort(admins)

	return Snapshot{
		ChatID:    s.chatID,
		Active:    s.active,
		Members:   members,
		LastTeams: cloneTeams(s.lastTeams),
		Admins:    admins,
	}
}

func (s *ChatSession) hasAdmin(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.admins[userID]
	return ok
}

// membersIn returns IN members in a stable order. Callers hold the lock.
func (s *ChatSession) membersIn() []models.Member {
	in := make([]models.Member, 0, len(s.members))
	for _, m := range s.members {
		if m.Presence == models.PresenceIn {
			in = append(in, m)
		}
	}
	sortMembers(in)
	return in
}

func (s *ChatSession) countIn() int {
	n := 0
	for _, m := range s.members {
		if m.Presence == models.PresenceIn {
			n++
		}
	}
	return n
}

func sortMembers(members []models.Member) {
	slices.SortFunc(members, func(a, b models.Member) int {
		if c := cmp.Compare(strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func cloneTeams(teams []models.Team) []models.Team {
	out := make([]models.Team, len(teams))
	for i, t := range teams {
		out[i] = models.Team{Label: t.Label, Members: slices.Clone(t.Members)}
	}
	return out
}
