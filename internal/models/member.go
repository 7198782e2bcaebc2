package models

// Presence is a member's opt-in/opt-out answer for the current round.
type Presence string

const (
	PresenceIn  Presence = "in"
	PresenceOut Presence = "out"
)

// Valid reports whether p is one of the known presence states.
func (p Presence) Valid() bool {
	return p == PresenceIn || p == PresenceOut
}

// Member is one participant of a chat roster. The record is replaced wholesale
// every time the member answers, so DisplayName always carries the latest
// name seen.
type Member struct {
	// ID is the Telegram user ID.
	ID int64 `json:"id"`
	// DisplayName is a best-effort human label.
	DisplayName string `json:"display_name"`
	// Presence is the latest answer for the round.
	Presence Presence `json:"presence"`
}

// Team is one group of players produced when a round is closed.
type Team struct {
	Label   string   `json:"label"`
	Members []Member `json:"members"`
}

// Names returns the display names of the team's members, in team order.
func (t Team) Names() []string {
	names := make([]string, len(t.Members))
	for i, m := range t.Members {
		names[i] = m.DisplayName
	}
	return names
}
