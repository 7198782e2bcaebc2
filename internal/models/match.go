package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// MatchRecord is an archived round: who closed it, when, and the teams that
// were announced. Records are append-only.
type MatchRecord struct {
	ID       string       `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID   int64        `gorm:"not null;index:idx_chat_closed" json:"chat_id"`
	ClosedBy int64        `gorm:"not null" json:"closed_by"`
	ClosedAt time.Time    `gorm:"not null;index:idx_chat_closed" json:"closed_at"`
	Players  int          `gorm:"not null" json:"players"`
	Teams    []TeamRecord `gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE" json:"teams"`
}

// TeamRecord is one team of an archived round.
type TeamRecord struct {
	ID       uint           `gorm:"primaryKey" json:"-"`
	MatchID  string         `gorm:"type:uuid;not null;index" json:"-"`
	Position int            `gorm:"not null" json:"position"`
	Label    string         `gorm:"type:text;not null" json:"label"`
	Players  pq.StringArray `gorm:"type:text[]" json:"players"`
}

// BeforeCreate is a GORM hook that assigns a UUID when ID is not set yet.
func (m *MatchRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// NewMatchRecord builds the archive entry for a closed round.
func NewMatchRecord(chatID, closedBy int64, closedAt time.Time, teams []Team) *MatchRecord {
	record := &MatchRecord{
		ChatID:   chatID,
		ClosedBy: closedBy,
		ClosedAt: closedAt,
		Teams:    make([]TeamRecord, len(teams)),
	}
	for i, team := range teams {
		record.Players += len(team.Members)
		record.Teams[i] = TeamRecord{
			Position: i,
			Label:    team.Label,
			Players:  pq.StringArray(team.Names()),
		}
	}
	return record
}
